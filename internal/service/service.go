// Package service implements the vault session: it owns the only in-memory
// copy of the unwrapped DEK, the idle auto-lock timer, and the lifecycle and
// encryption operations built on top of them.
package service

import (
	"sync"
	"time"

	"github.com/karim-saade/daybook/internal/logging"
	"github.com/karim-saade/daybook/internal/vault"
	"github.com/karim-saade/daybook/krypto"
	"github.com/karim-saade/daybook/store"
)

// Service exposes the vault operations to the application. It is created once
// by the composition root and shared by reference; the DEK lives only here
// and only while unlocked.
type Service struct {
	meta *vault.MetaStore
	log  logging.Logger

	idleOverride time.Duration
	idleMinutes  int

	mu        sync.Mutex
	dek       []byte
	idle      time.Duration
	idleTimer *time.Timer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger routes idle-timer bookkeeping through the given logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithIdleMinutes overrides the idle auto-lock window written at setup.
func WithIdleMinutes(minutes int) Option {
	return func(s *Service) { s.idleMinutes = minutes }
}

// WithIdleTimeout forces an exact idle duration regardless of persisted
// metadata. Intended for hosts that manage the window themselves and for
// tests.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Service) { s.idleOverride = d }
}

// New returns a service bound to a metadata persistence collaborator. The
// session starts Disabled or Locked; a restart never restores a DEK.
func New(kv store.KV, opts ...Option) *Service {
	s := &Service{
		meta:        vault.NewMetaStore(kv),
		idleMinutes: vault.DefaultIdleMinutes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsUnlocked reports whether a DEK is currently cached.
func (s *Service) IsUnlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dek != nil
}

// IsEnabled reports whether the vault has completed first-time setup.
func (s *Service) IsEnabled() (bool, error) {
	return s.meta.IsEnabled()
}

// LockNow clears the cached DEK and the idle timer. It always succeeds, is
// idempotent, and is safe to call from any state.
func (s *Service) LockNow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockLocked()
}

// NotifyActivity resets the idle countdown. The host calls this on user input
// events; it is inert while locked or disabled.
func (s *Service) NotifyActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dek != nil && s.idleTimer != nil {
		s.idleTimer.Reset(s.idle)
	}
}

// Close tears the session down. Meant for process exit.
func (s *Service) Close() {
	s.LockNow()
}

// cacheDEK takes ownership of dek, replacing any previous session, and starts
// the idle countdown. Callers must hold s.mu.
func (s *Service) cacheDEK(dek []byte, idleMinutes int) {
	s.lockLocked()

	if err := krypto.LockMemory(dek); err != nil {
		// Best effort; some platforms cap or deny mlock.
		s.log.Debugf("mlock dek: %v", err)
	}
	s.dek = dek

	s.idle = time.Duration(idleMinutes) * time.Minute
	if s.idleOverride > 0 {
		s.idle = s.idleOverride
	}
	if s.idle > 0 {
		s.idleTimer = time.AfterFunc(s.idle, s.idleExpired)
	}
}

// idleExpired runs on the timer goroutine when the countdown elapses.
func (s *Service) idleExpired() {
	s.log.Infof("vault idle timeout reached, locking")
	s.LockNow()
}

// lockLocked clears session state. Callers must hold s.mu.
func (s *Service) lockLocked() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
	if s.dek != nil {
		if err := krypto.UnlockMemory(s.dek); err != nil {
			s.log.Debugf("munlock dek: %v", err)
		}
		krypto.Zeroize(s.dek)
		s.dek = nil
	}
}
