package service

import (
	"errors"
	"sync"

	"sysmanager/internal/bon"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrTerminalInvalid = errors.New("identificatorul terminalului este obligatoriu")

// ManagerFactory builds the receipt of a newly seen terminal.
type ManagerFactory func() (*bon.Manager, error)

// Sesiune is the receipt of one terminal. bon.Manager has no locking of its
// own; every access goes through With.
type Sesiune struct {
	ID       uuid.UUID
	Terminal string

	mu  sync.Mutex
	mgr *bon.Manager
}

// With runs fn while holding the session lock.
func (s *Sesiune) With(fn func(m *bon.Manager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.mgr)
}

// SessionRegistry keeps one receipt per terminal for the lifetime of the process.
type SessionRegistry struct {
	mu      sync.RWMutex
	sesiuni map[string]*Sesiune
	newCart ManagerFactory
}

func NewSessionRegistry(newCart ManagerFactory) *SessionRegistry {
	return &SessionRegistry{sesiuni: make(map[string]*Sesiune), newCart: newCart}
}

// Get returns the session of terminal, creating it on first use.
func (r *SessionRegistry) Get(terminal string) (*Sesiune, error) {
	if terminal == "" {
		return nil, ErrTerminalInvalid
	}

	r.mu.RLock()
	s, ok := r.sesiuni[terminal]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sesiuni[terminal]; ok {
		return s, nil
	}
	mgr, err := r.newCart()
	if err != nil {
		return nil, err
	}
	s = &Sesiune{ID: uuid.New(), Terminal: terminal, mgr: mgr}
	r.sesiuni[terminal] = s
	log.Info().Str("terminal", terminal).Str("sesiune", s.ID.String()).Msg("sesiune bon deschisa")
	return s, nil
}

// With looks up the terminal session and runs fn under its lock.
func (r *SessionRegistry) With(terminal string, fn func(m *bon.Manager) error) error {
	s, err := r.Get(terminal)
	if err != nil {
		return err
	}
	return s.With(fn)
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sesiuni)
}
