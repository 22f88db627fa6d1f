package service

import (
	"context"
	"strings"
	"sync"

	domainauth "github.com/cloudboard/cloudboard/internal/domain/auth"
	apperrors "github.com/cloudboard/cloudboard/internal/errors"
	"github.com/cloudboard/cloudboard/internal/ports"
)

// LoginStatus reports how far a BeginLogin call got.
type LoginStatus int

const (
	// LoginAuthenticated means the sign-in completed and the identity is set.
	LoginAuthenticated LoginStatus = iota + 1
	// LoginNewPasswordRequired means the provider demands a forced password
	// change; finish with CompleteNewPassword.
	LoginNewPasswordRequired
)

// SessionManager is the single source of truth for "who is signed in and
// with what privileges" for one principal, and drives the multi-step sign-in
// protocol against the identity provider.
//
// One instance serves one logical session. Calls that reach the provider
// suspend until the round-trip completes; a second call while one is in
// flight is rejected rather than queued. State transitions are applied
// atomically relative to the provider round-trip: an observer never sees a
// half-updated identity/snapshot pair, and a response that lands after
// Logout or Close is discarded instead of mutating discarded state.
type SessionManager struct {
	mu       sync.Mutex
	provider ports.IdentityProvider

	identity  *domainauth.Identity
	challenge domainauth.ChallengeState

	inflight bool
	closed   bool
	gen      uint64 // bumped on Logout/Close so stale responses cannot apply
}

// NewSessionManager constructs a session manager bound to a provider.
func NewSessionManager(provider ports.IdentityProvider) (*SessionManager, error) {
	if provider == nil {
		return nil, apperrors.Precondition("identity provider is required")
	}
	return &SessionManager{provider: provider}, nil
}

// Snapshot returns the derived authorization view. It is a pure read and
// never triggers provider calls.
func (m *SessionManager) Snapshot() domainauth.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domainauth.NewSnapshot(m.identity)
}

// Challenge returns the current challenge state for form rendering.
func (m *SessionManager) Challenge() domainauth.ChallengeState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.challenge
}

// BeginLogin verifies the password with the provider. It returns
// LoginAuthenticated when the sign-in completed, or LoginNewPasswordRequired
// when the provider demands a forced password change. Invalid credentials
// move the challenge state to Failed with a user-facing reason; any other
// provider failure is surfaced without touching state, and nothing is
// retried here.
func (m *SessionManager) BeginLogin(ctx context.Context, username, password string) (LoginStatus, error) {
	if strings.TrimSpace(username) == "" {
		return 0, apperrors.ValidationField("username", "username is required")
	}
	if password == "" {
		return 0, apperrors.ValidationField("password", "password is required")
	}

	gen, err := m.enter()
	if err != nil {
		return 0, err
	}

	result, err := m.provider.VerifyPassword(ctx, username, password)

	m.mu.Lock()
	defer m.mu.Unlock()
	if discardErr := m.lockedLeave(gen); discardErr != nil {
		return 0, discardErr
	}

	if err != nil {
		if apperrors.IsInvalidCredentials(err) {
			m.challenge = domainauth.FailedChallenge(apperrors.UserMessage(err))
		}
		return 0, err
	}

	switch {
	case result.Identity != nil:
		m.identity = result.Identity
		m.challenge = domainauth.NoChallenge()
		return LoginAuthenticated, nil

	case result.Challenge != nil && result.Challenge.Kind == domainauth.ChallengeNewPasswordRequired:
		m.challenge = domainauth.NewPasswordRequired(*result.Challenge)
		return LoginNewPasswordRequired, nil

	case result.Challenge != nil:
		// Recognized or not, a challenge we cannot complete must fail closed
		// rather than let the caller proceed as authenticated.
		return 0, apperrors.Provider("sign-in requires an unsupported verification step: " + string(result.Challenge.Kind))

	default:
		return 0, apperrors.Provider("provider returned neither identity nor challenge")
	}
}

// CompleteNewPassword answers a pending forced-password-change challenge.
// Valid only in the NewPasswordRequired state; calling it otherwise is a
// caller bug and fails fast with ChallengeMismatch. The caller is expected
// to have confirmed the new password against its confirmation field before
// invoking this; a mismatched confirmation submitted here is simply rejected
// by the provider. On failure the challenge stays pending so the user can
// try again.
func (m *SessionManager) CompleteNewPassword(ctx context.Context, newPassword string) error {
	m.mu.Lock()
	pending, ok := m.challenge.Pending()
	m.mu.Unlock()
	if !ok {
		return apperrors.ChallengeMismatch("no new-password challenge is pending")
	}
	if newPassword == "" {
		return apperrors.ValidationField("new_password", "new password is required")
	}

	gen, err := m.enter()
	if err != nil {
		return err
	}

	identity, err := m.provider.CompleteNewPassword(ctx, pending, newPassword)

	m.mu.Lock()
	defer m.mu.Unlock()
	if discardErr := m.lockedLeave(gen); discardErr != nil {
		return discardErr
	}

	if err != nil {
		// Remain in NewPasswordRequired; the reason is surfaced to the form.
		return err
	}

	m.identity = &identity
	m.challenge = domainauth.NoChallenge()
	return nil
}

// RequestPasswordReset asks the provider to send a reset code out of band.
// It is independent of the challenge state and changes nothing locally.
// Success does not disclose whether the account exists.
func (m *SessionManager) RequestPasswordReset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return apperrors.ValidationField("email", "email is required")
	}

	gen, err := m.enter()
	if err != nil {
		return err
	}
	err = m.provider.RequestReset(ctx, email)

	m.mu.Lock()
	defer m.mu.Unlock()
	if discardErr := m.lockedLeave(gen); discardErr != nil {
		return discardErr
	}
	return err
}

// ConfirmPasswordReset completes a reset with the emailed code. It does not
// by itself authenticate the session.
func (m *SessionManager) ConfirmPasswordReset(ctx context.Context, in ports.ConfirmResetInput) error {
	if strings.TrimSpace(in.Email) == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	if strings.TrimSpace(in.Code) == "" {
		return apperrors.ValidationField("code", "confirmation code is required")
	}
	if in.NewPassword == "" {
		return apperrors.ValidationField("new_password", "new password is required")
	}

	gen, err := m.enter()
	if err != nil {
		return err
	}
	err = m.provider.ConfirmReset(ctx, in)

	m.mu.Lock()
	defer m.mu.Unlock()
	if discardErr := m.lockedLeave(gen); discardErr != nil {
		return discardErr
	}
	return err
}

// ChangePassword re-proves the old password and sets a new one. Valid only
// while authenticated. An incorrect old password comes back as the
// distinguished InvalidCredentials reason; all other failures surface as
// their own classes. Success clears any stale failure state.
func (m *SessionManager) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	m.mu.Lock()
	if m.identity == nil {
		m.mu.Unlock()
		return apperrors.ChallengeMismatch("change password requires an authenticated session")
	}
	token := m.identity.AccessToken
	m.mu.Unlock()

	if oldPassword == "" {
		return apperrors.ValidationField("old_password", "old password is required")
	}
	if newPassword == "" {
		return apperrors.ValidationField("new_password", "new password is required")
	}

	gen, err := m.enter()
	if err != nil {
		return err
	}

	err = m.provider.ChangePassword(ctx, ports.ChangePasswordInput{
		AccessToken: token,
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if discardErr := m.lockedLeave(gen); discardErr != nil {
		return discardErr
	}

	if err != nil {
		return err
	}
	m.challenge = domainauth.NoChallenge()
	return nil
}

// Logout unconditionally clears the identity and challenge state, then
// invalidates the session token with the provider. It is idempotent: a
// second call is a no-op. The local state is cleared even when the provider
// sign-out fails; any in-flight operation's late response is discarded.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	identity := m.identity
	m.identity = nil
	m.challenge = domainauth.NoChallenge()
	m.gen++
	m.inflight = false
	m.mu.Unlock()

	if identity == nil {
		return nil
	}
	return m.provider.SignOut(ctx, *identity)
}

// Close tears the manager down. Any in-flight response is discarded and
// subsequent provider-calling operations are rejected.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.gen++
	m.inflight = false
	m.identity = nil
	m.challenge = domainauth.NoChallenge()
}

// enter marks a provider round-trip as in flight and returns the generation
// it belongs to. Overlapping calls on one instance are rejected.
func (m *SessionManager) enter() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, apperrors.Precondition("session manager is closed")
	}
	if m.inflight {
		return 0, apperrors.Precondition("another auth operation is in flight")
	}
	m.inflight = true
	return m.gen, nil
}

// lockedLeave ends the in-flight section. It reports an error when the
// manager was reset while the round-trip was outstanding, in which case the
// response must not be applied. Callers must hold mu.
func (m *SessionManager) lockedLeave(gen uint64) error {
	if m.gen != gen {
		return apperrors.Precondition("session manager was reset during the call")
	}
	m.inflight = false
	return nil
}
