package conversation

import (
	"fmt"
	"sync"
	"time"

	"github.com/papercomputeco/lifeboat/pkg/merkle"
)

// Log is the Conversation State Store: an ordered, append-only sequence of
// turns. There is no way to remove a single turn, only to clear them all.
type Log interface {
	// Append adds a turn to the end of the log and returns it as stored,
	// with its hash and timestamp filled in.
	Append(turn Turn) (Turn, error)

	// All returns a fresh copy of every turn in append order.
	All() []Turn

	// Len returns the number of turns in the log.
	Len() int

	// Clear replaces the log with an empty sequence.
	Clear()
}

type memoryLog struct {
	mu    sync.RWMutex
	turns []Turn
	chain merkle.Chain
	now   func() time.Time
}

// NewMemoryLog creates a Log backed by an in-memory slice.
func NewMemoryLog() Log {
	return &memoryLog{now: time.Now}
}

func (l *memoryLog) Append(turn Turn) (Turn, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	link, err := l.chain.Append(hashed{Role: turn.Role, Content: turn.Content, Fallback: turn.Fallback})
	if err != nil {
		return Turn{}, fmt.Errorf("chaining %s turn: %w", turn.Role, err)
	}

	turn.Hash = link.Hash
	turn.ParentHash = link.ParentHash
	turn.CreatedAt = l.now()

	l.turns = append(l.turns, turn)
	return turn, nil
}

func (l *memoryLog) All() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	copied := make([]Turn, len(l.turns))
	copy(copied, l.turns)
	return copied
}

func (l *memoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

func (l *memoryLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
	l.chain.Reset()
}

// Verify checks that turns are an unbroken, unaltered chain in append order.
func Verify(turns []Turn) error {
	links := make([]merkle.Link, len(turns))
	for i, t := range turns {
		links[i] = merkle.Link{
			Hash:       t.Hash,
			ParentHash: t.ParentHash,
			Content:    hashed{Role: t.Role, Content: t.Content, Fallback: t.Fallback},
		}
	}
	return merkle.Verify(links)
}
