package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
)

type sessionEntry struct {
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Sessions is the table of live connections: connection id to session
// (principal + transport) plus the cancel func for its pump context.
type Sessions struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*sessionEntry
}

func NewSessions() *Sessions {
	return &Sessions{conns: make(map[core.ConnID]*sessionEntry)}
}

func (s *Sessions) Bind(id core.ConnID, sess core.MemberSession, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[id] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.sessions").Str("conn", string(id)).Msg("bound session")
}

func (s *Sessions) Get(id core.ConnID) (core.MemberSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.conns[id]; ok {
		return e.Session, true
	}
	return nil, false
}

func (s *Sessions) Unbind(id core.ConnID) {
	s.mu.Lock()
	e, ok := s.conns[id]
	delete(s.conns, id)
	s.mu.Unlock()
	if ok && e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.sessions").Str("conn", string(id)).Msg("unbound session")
}

// ForceClose tears the connection down: the transport is closed so a
// blocked read returns, then the pump context is canceled.
func (s *Sessions) ForceClose(id core.ConnID) bool {
	s.mu.RLock()
	e, ok := s.conns[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	e.Session.Signal().Close()
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.sessions").Str("conn", string(id)).Msg("force closed")
	return true
}
