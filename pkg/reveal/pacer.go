package reveal

import (
	"context"
	"time"
)

// Default delays between frames.
const (
	DefaultInitialDelay = 500 * time.Millisecond
	DefaultStepDelay    = 10 * time.Millisecond
)

// Pacer replays a Sequence with pauses between frames. The zero Pacer emits
// every frame immediately, which suits non-interactive output.
type Pacer struct {
	Initial time.Duration // pause after the placeholder
	Step    time.Duration // pause after each revealed character
}

// DefaultPacer returns the pacing used by interactive surfaces.
func DefaultPacer() Pacer {
	return Pacer{Initial: DefaultInitialDelay, Step: DefaultStepDelay}
}

// Delay returns the pause that follows frame i.
func (p Pacer) Delay(i int) time.Duration {
	if i == 0 {
		return p.Initial
	}
	return p.Step
}

// Play emits each frame of seq in order, sleeping between frames. It returns
// ctx.Err() if the context ends before the last frame is emitted; no pause
// follows the last frame.
func (p Pacer) Play(ctx context.Context, seq Sequence, emit func(Frame)) error {
	last := seq.Len() - 1
	for i := range seq.Len() {
		if err := ctx.Err(); err != nil {
			return err
		}
		emit(seq.At(i))

		if i == last {
			break
		}
		if err := sleep(ctx, p.Delay(i)); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
