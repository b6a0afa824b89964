package dashboard

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/lifeboat/pkg/dispatch"
	"github.com/papercomputeco/lifeboat/pkg/session"
)

// registry maps session IDs to independently owned sessions.
type registry struct {
	mu         sync.Mutex
	sessions   map[string]*session.Session
	dispatcher dispatch.Dispatcher
	opts       session.Options
	logger     *zap.Logger
}

func newRegistry(d dispatch.Dispatcher, opts session.Options, logger *zap.Logger) *registry {
	return &registry{
		sessions:   make(map[string]*session.Session),
		dispatcher: d,
		opts:       opts,
		logger:     logger,
	}
}

// get returns the session for id, creating a new one when id is unknown.
// The boolean reports whether a session was created.
func (r *registry) get(id string) (*session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s, false
	}

	s := session.New(r.dispatcher, r.opts, r.logger)
	r.sessions[s.ID()] = s
	r.logger.Debug("session started", zap.String("session", s.ID()))
	return s, true
}

// end drops a session and its conversation.
func (r *registry) end(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// prune ends sessions idle for longer than ttl. Sessions with a pending
// exchange are kept.
func (r *registry) prune(ttl time.Duration, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for id, s := range r.sessions {
		if now.Sub(s.LastSeen()) > ttl && !s.Pending() {
			delete(r.sessions, id)
			pruned++
		}
	}
	if pruned > 0 {
		r.logger.Info("pruned idle sessions", zap.Int("count", pruned), zap.Int("remaining", len(r.sessions)))
	}
	return pruned
}
