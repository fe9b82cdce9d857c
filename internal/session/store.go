// Package session holds the bearer credential and the derived
// authentication state. The store is the single writer: screens read it
// and request mutation through it, never around it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// CredentialStore persists the bearer token across restarts.
type CredentialStore interface {
	Credential(ctx context.Context) (string, error)
	SaveCredential(ctx context.Context, token string) error
	DeleteCredential(ctx context.Context) error
}

// Store keeps the in-memory credential and authentication flag in sync
// with the persisted copy. A present credential does not imply validity;
// only the startup probe or a later authorized call establishes that.
type Store struct {
	mu            sync.Mutex
	repo          CredentialStore
	token         string
	authenticated bool
}

func NewStore(repo CredentialStore) *Store {
	return &Store{repo: repo}
}

// Load reads the persisted credential into memory. It does not mark the
// session authenticated; that is the probe's job.
func (s *Store) Load(ctx context.Context) error {
	token, err := s.repo.Credential(ctx)
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.authenticated = false
	s.mu.Unlock()
	return nil
}

// Credential returns the current bearer token, if any.
func (s *Store) Credential() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.authenticated
}

// SetCredential persists the token first and only then marks the session
// authenticated, so a crash between the two leaves a stored-but-unproven
// credential rather than a proven-but-unstored one.
func (s *Store) SetCredential(ctx context.Context, token string) error {
	if err := s.repo.SaveCredential(ctx, token); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.authenticated = true
	s.mu.Unlock()
	slog.InfoContext(ctx, "Session credential stored")
	return nil
}

// Clear drops the credential on explicit logout.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.authenticated = false
	s.mu.Unlock()
	if err := s.repo.DeleteCredential(ctx); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	slog.InfoContext(ctx, "Session cleared")
	return nil
}

// Invalidate clears the session in reaction to an unauthorized response,
// but only when the rejected token is still the current one. A stale
// in-flight request carrying a pre-logout or pre-relogin credential can
// therefore neither clear a newer session nor resurrect a cleared one.
func (s *Store) Invalidate(ctx context.Context, token string) {
	s.mu.Lock()
	if token == "" || s.token != token {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.authenticated = false
	s.mu.Unlock()
	if err := s.repo.DeleteCredential(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to remove rejected credential", "error", err)
	}
	slog.InfoContext(ctx, "Session invalidated by unauthorized response")
}

// Validate runs the one startup probe against the current-user endpoint.
// Without a stored credential the session is simply unauthenticated. Any
// probe failure, network or 401 alike, clears the credential; there is no
// retry and the probe is never re-run automatically.
func (s *Store) Validate(ctx context.Context, probe func(context.Context) error) {
	token, ok := s.Credential()
	if !ok {
		return
	}
	if err := probe(ctx); err != nil {
		slog.WarnContext(ctx, "Session validation probe failed", "error", err)
		// No-op when the gateway already invalidated on a 401.
		s.Invalidate(ctx, token)
		return
	}
	s.mu.Lock()
	s.authenticated = true
	s.mu.Unlock()
	slog.InfoContext(ctx, "Session validated")
}
