// Package session owns the bearer credential and the forced-logout guard.
// Every component that issues remote calls holds a *Session instead of
// reaching into ambient storage, so tests can inject a fake.
package session

import (
	"log/slog"
	"sync"
	"time"
)

// Credential is the authenticated identity returned by the ledger service.
type Credential struct {
	Token             string    `json:"token"`
	UserID            string    `json:"user_id"`
	FullName          string    `json:"full_name,omitempty"`
	Email             string    `json:"email,omitempty"`
	PreferredCurrency string    `json:"preferred_currency,omitempty"`
	SavedAt           time.Time `json:"saved_at"`
}

// Store persists a credential between invocations.
type Store interface {
	Load() (*Credential, error)
	Save(*Credential) error
	Clear() error
}

// Session is the single interception point for authorization state. An
// authorization-denied response anywhere triggers exactly one forced-logout
// signal, no matter how many in-flight calls fail at once.
type Session struct {
	store          Store
	onForcedLogout func()

	mu         sync.Mutex
	cred       *Credential
	logoutOnce *sync.Once
}

// New loads any saved credential from the store. onForcedLogout may be nil.
func New(store Store, onForcedLogout func()) *Session {
	s := &Session{
		store:          store,
		onForcedLogout: onForcedLogout,
		logoutOnce:     &sync.Once{},
	}
	cred, err := store.Load()
	if err != nil {
		slog.Debug("No saved credential", "error", err)
		return s
	}
	s.cred = cred
	return s
}

// Token returns the bearer token, or false when not logged in.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil || s.cred.Token == "" {
		return "", false
	}
	return s.cred.Token, true
}

// UserID returns the authenticated user's id, or "" when not logged in.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return ""
	}
	return s.cred.UserID
}

// Credential returns a copy of the current credential, or nil.
func (s *Session) Credential() *Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return nil
	}
	c := *s.cred
	return &c
}

// Login stores a fresh credential and re-arms the forced-logout guard.
func (s *Session) Login(cred *Credential) error {
	if cred.SavedAt.IsZero() {
		cred.SavedAt = time.Now()
	}
	if err := s.store.Save(cred); err != nil {
		return err
	}
	s.mu.Lock()
	s.cred = cred
	s.logoutOnce = &sync.Once{}
	s.mu.Unlock()
	return nil
}

// Logout clears the credential on explicit user request.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()
	return s.store.Clear()
}

// ForceLogout clears the credential and fires the forced-logout signal.
// Safe to call from concurrent request goroutines; the signal is delivered
// at most once per login.
func (s *Session) ForceLogout() {
	s.mu.Lock()
	once := s.logoutOnce
	s.mu.Unlock()

	once.Do(func() {
		s.mu.Lock()
		s.cred = nil
		s.mu.Unlock()
		if err := s.store.Clear(); err != nil {
			slog.Warn("Failed to clear stored credential", "error", err)
		}
		slog.Info("Session expired, logged out")
		if s.onForcedLogout != nil {
			s.onForcedLogout()
		}
	})
}
