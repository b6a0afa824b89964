// Package session is the explicit, session-scoped owner of a conversation:
// it accepts a user query, dispatches it, reveals the answer and records
// both turns in order.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/lifeboat/pkg/conversation"
	"github.com/papercomputeco/lifeboat/pkg/dispatch"
	"github.com/papercomputeco/lifeboat/pkg/logger"
	"github.com/papercomputeco/lifeboat/pkg/reveal"
)

var (
	// ErrEmptyQuery is returned when a submission holds no text.
	ErrEmptyQuery = errors.New("session: query must not be empty")

	// ErrBusy is returned when a submission arrives while another is pending.
	ErrBusy = errors.New("session: a query is already pending")
)

// Options tune how answers are revealed.
type Options struct {
	Placeholder string
	Pacer       reveal.Pacer
}

// Session owns one conversation log. Only one exchange may be in flight at a
// time; the log itself is never shared with another session.
type Session struct {
	id         string
	log        conversation.Log
	dispatcher dispatch.Dispatcher
	opts       Options
	logger     *zap.Logger

	pending  sync.Mutex // held for the lifetime of an Exchange
	mu       sync.Mutex
	lastSeen time.Time
}

// New creates a session with an empty log and a unique UUIDv7 identifier.
func New(d dispatch.Dispatcher, opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.Must(uuid.NewV7()).String()

	return &Session{
		id:         id,
		log:        conversation.NewMemoryLog(),
		dispatcher: d,
		opts:       opts,
		logger:     logger.With(zap.String("session", id)),
		lastSeen:   time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Turns returns the full conversation, freshly read from the log.
func (s *Session) Turns() []conversation.Turn {
	s.touch()
	return s.log.All()
}

// Clear empties the conversation log. It returns ErrBusy while an
// Exchange is pending, since finishing it would leave an assistant turn
// with no question before it.
func (s *Session) Clear() error {
	if !s.pending.TryLock() {
		return ErrBusy
	}
	defer s.pending.Unlock()

	s.touch()
	s.log.Clear()
	s.logger.Debug("conversation cleared")
	return nil
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Pending reports whether an exchange is in flight.
func (s *Session) Pending() bool {
	if s.pending.TryLock() {
		s.pending.Unlock()
		return false
	}
	return true
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// Begin starts an exchange for query: it claims the session and appends the
// user turn. The caller must call Finish on the returned Exchange.
func (s *Session) Begin(query string) (*Exchange, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if !s.pending.TryLock() {
		return nil, ErrBusy
	}
	s.touch()

	turn, err := s.log.Append(conversation.Turn{Role: conversation.RoleUser, Content: query})
	if err != nil {
		s.pending.Unlock()
		return nil, fmt.Errorf("append user turn: %w", err)
	}

	s.logger.Debug("user turn appended",
		zap.String("hash", logger.Preview(turn.Hash, 16)),
		zap.String("content_preview", logger.Preview(query, 50)),
	)

	return &Exchange{session: s, query: query, user: turn}, nil
}

// Submit runs one full exchange: append the user turn, dispatch, reveal the
// answer through emit, then append the assistant turn. A nil emit skips the
// reveal. If ctx ends during the reveal the assistant turn is still
// recorded, so the log never holds an unanswered user turn.
func (s *Session) Submit(ctx context.Context, query string, emit func(reveal.Frame)) (conversation.Turn, error) {
	ex, err := s.Begin(query)
	if err != nil {
		return conversation.Turn{}, err
	}

	ex.Dispatch(ctx)

	if emit != nil {
		if err := s.opts.Pacer.Play(ctx, ex.Reveal(), emit); err != nil {
			s.logger.Debug("reveal interrupted", zap.Error(err))
		}
	}

	return ex.Finish()
}
