package lookup

import (
	"context"
	"sync"

	"github.com/couchcryptid/cep-weather-service/internal/domain"
)

// Session owns the view state of one hosting surface (a CLI prompt, a UI
// instance). Overlapping submissions are allowed, but only the most recent
// one may write its result; older ones are discarded when they finish.
type Session struct {
	orch *Orchestrator

	mu    sync.Mutex
	state domain.ViewState
}

// NewSession creates an idle session backed by o.
func NewSession(o *Orchestrator) *Session {
	return &Session{orch: o}
}

// Submit resets the session to a fresh in-flight state, runs the lookup and
// commits the result unless a newer submission started meanwhile. It returns
// the terminal state and whether it was applied.
func (s *Session) Submit(ctx context.Context, raw string) (domain.ViewState, bool) {
	s.mu.Lock()
	begin := domain.Begin(s.orch.nextSeq())
	s.state = begin
	s.mu.Unlock()

	result := s.orch.run(ctx, begin, raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Seq != result.Seq {
		s.orch.metrics.LookupSuperseded.Inc()
		s.orch.logger.Debug("discarding superseded lookup",
			"seq", result.Seq,
			"current_seq", s.state.Seq,
			"code", result.Code,
		)
		return result, false
	}
	s.state = result
	return result, true
}

// State returns the current view state.
func (s *Session) State() domain.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
