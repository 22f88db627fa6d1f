package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/cloudboard/cloudboard/internal/domain/auth"
	apperrors "github.com/cloudboard/cloudboard/internal/errors"
	"github.com/cloudboard/cloudboard/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider      = (*MockIdentityProvider)(nil)
	_ ports.SessionStore          = (*MemorySessionStore)(nil)
	_ ports.PendingChallengeStore = (*MemoryPendingStore)(nil)
)

// MockIdentityProvider simulates an IdP with per-operation overrides and
// deterministic defaults. Zero value: every credential pair authenticates as
// DefaultIdentity (or a generic user when unset), every maintenance
// operation succeeds.
type MockIdentityProvider struct {
	VerifyPasswordFunc      func(ctx context.Context, username, password string) (ports.PasswordResult, error)
	CompleteNewPasswordFunc func(ctx context.Context, pending domainauth.PendingChallenge, newPassword string) (domainauth.Identity, error)
	RequestResetFunc        func(ctx context.Context, email string) error
	ConfirmResetFunc        func(ctx context.Context, in ports.ConfirmResetInput) error
	ChangePasswordFunc      func(ctx context.Context, in ports.ChangePasswordInput) error
	SignOutFunc             func(ctx context.Context, identity domainauth.Identity) error

	DefaultIdentity *domainauth.Identity

	// Call counters for asserting interaction shapes.
	VerifyPasswordCalls int
	SignOutCalls        int
}

// NewMockIdentityProvider creates a provider whose default identity carries
// no admin rights.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		DefaultIdentity: &domainauth.Identity{
			Username:    "mock.user@example.com",
			Groups:      []string{"Staff"},
			AccessToken: "mock-access-token",
			ExpiresAt:   time.Now().Add(time.Hour),
		},
	}
}

func (m *MockIdentityProvider) VerifyPassword(ctx context.Context, username, password string) (ports.PasswordResult, error) {
	m.VerifyPasswordCalls++
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(ctx, username, password)
	}
	id := m.defaultIdentity(username)
	return ports.PasswordResult{Identity: &id}, nil
}

func (m *MockIdentityProvider) CompleteNewPassword(ctx context.Context, pending domainauth.PendingChallenge, newPassword string) (domainauth.Identity, error) {
	if m.CompleteNewPasswordFunc != nil {
		return m.CompleteNewPasswordFunc(ctx, pending, newPassword)
	}
	return m.defaultIdentity(pending.Username), nil
}

func (m *MockIdentityProvider) RequestReset(ctx context.Context, email string) error {
	if m.RequestResetFunc != nil {
		return m.RequestResetFunc(ctx, email)
	}
	return nil
}

func (m *MockIdentityProvider) ConfirmReset(ctx context.Context, in ports.ConfirmResetInput) error {
	if m.ConfirmResetFunc != nil {
		return m.ConfirmResetFunc(ctx, in)
	}
	return nil
}

func (m *MockIdentityProvider) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, in)
	}
	return nil
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, identity domainauth.Identity) error {
	m.SignOutCalls++
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, identity)
	}
	return nil
}

func (m *MockIdentityProvider) defaultIdentity(username string) domainauth.Identity {
	if m.DefaultIdentity != nil {
		id := *m.DefaultIdentity
		if username != "" {
			id.Username = username
		}
		id.Groups = append([]string(nil), m.DefaultIdentity.Groups...)
		return id
	}
	return domainauth.Identity{
		Username:    username,
		AccessToken: "mock-access-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

// MemorySessionStore is an in-memory SessionStore for tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (s *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return apperrors.Validation("session ID cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return domainauth.Session{}, apperrors.NotFound("session not found")
	}
	return sess, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports the number of live sessions, for test assertions.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// MemoryPendingStore is an in-memory PendingChallengeStore for tests.
type MemoryPendingStore struct {
	mu      sync.Mutex
	pending map[string]domainauth.PendingChallenge
}

// NewMemoryPendingStore creates an empty in-memory pending-challenge store.
func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{pending: make(map[string]domainauth.PendingChallenge)}
}

func (s *MemoryPendingStore) SavePending(_ context.Context, token string, pending domainauth.PendingChallenge) error {
	if token == "" {
		return apperrors.Validation("pending token cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[token] = pending
	return nil
}

func (s *MemoryPendingStore) GetPending(_ context.Context, token string) (domainauth.PendingChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[token]
	if !ok {
		return domainauth.PendingChallenge{}, apperrors.NotFound("pending challenge not found")
	}
	return p, nil
}

func (s *MemoryPendingStore) DeletePending(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, token)
	return nil
}
