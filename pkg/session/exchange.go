package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/lifeboat/pkg/conversation"
	"github.com/papercomputeco/lifeboat/pkg/dispatch"
	"github.com/papercomputeco/lifeboat/pkg/logger"
	"github.com/papercomputeco/lifeboat/pkg/reveal"
)

// ErrFinished is returned when an exchange is used after Finish.
var ErrFinished = errors.New("session: exchange already finished")

// Exchange is one in-flight submission. Its steps must run in order:
// Dispatch, optionally Reveal, then Finish.
type Exchange struct {
	session  *Session
	query    string
	user     conversation.Turn
	outcome  *dispatch.Outcome
	finished bool
}

// Query returns the trimmed user query.
func (e *Exchange) Query() string {
	return e.query
}

// UserTurn returns the user turn appended by Begin.
func (e *Exchange) UserTurn() conversation.Turn {
	return e.user
}

// Dispatch sends the query to the answer service. Only the first call
// reaches the service; later calls return the same outcome.
func (e *Exchange) Dispatch(ctx context.Context) dispatch.Outcome {
	if e.outcome != nil {
		return *e.outcome
	}

	out := e.session.dispatcher.Dispatch(ctx, e.query)
	e.outcome = &out

	e.session.logger.Debug("query dispatched",
		zap.String("outcome", out.Kind.String()),
		zap.String("answer_preview", logger.Preview(out.Text, 50)),
	)
	return out
}

// Outcome returns the dispatch outcome, or false before Dispatch was called.
func (e *Exchange) Outcome() (dispatch.Outcome, bool) {
	if e.outcome == nil {
		return dispatch.Outcome{}, false
	}
	return *e.outcome, true
}

// Reveal returns the display frames for the outcome text. It dispatches
// first if that has not happened yet.
func (e *Exchange) Reveal() reveal.Sequence {
	out := e.Dispatch(context.Background())
	return reveal.New(out.Text, e.session.opts.Placeholder)
}

// Finish appends the assistant turn and releases the session. If Dispatch
// was never called the exchange is recorded as unavailable.
func (e *Exchange) Finish() (conversation.Turn, error) {
	if e.finished {
		return conversation.Turn{}, ErrFinished
	}
	e.finished = true
	defer e.session.pending.Unlock()

	out, ok := e.Outcome()
	if !ok {
		out = dispatch.Outcome{
			Kind: dispatch.Unavailable,
			Text: fallbackText(e.session.dispatcher),
		}
	}

	turn, err := e.session.log.Append(conversation.Turn{
		Role:     conversation.RoleAssistant,
		Content:  out.Text,
		Fallback: !out.Available(),
	})
	if err != nil {
		return conversation.Turn{}, fmt.Errorf("append assistant turn: %w", err)
	}

	e.session.logger.Info("exchange recorded",
		zap.String("outcome", out.Kind.String()),
		zap.Int("turns", e.session.log.Len()),
	)
	return turn, nil
}

type fallbacker interface {
	Fallback() string
}

func fallbackText(d dispatch.Dispatcher) string {
	if f, ok := d.(fallbacker); ok {
		return f.Fallback()
	}
	return dispatch.DefaultFallback
}
