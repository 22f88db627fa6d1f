package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/cloudboard/cloudboard/internal/domain/auth"
)

// PasswordResult is the outcome of a password verification: either a complete
// identity, or a pending challenge the caller must answer before the sign-in
// finishes. Exactly one of the two fields is set on success.
type PasswordResult struct {
	Identity  *domainauth.Identity
	Challenge *domainauth.PendingChallenge
}

// ConfirmResetInput groups parameters for completing a password reset.
type ConfirmResetInput struct {
	Email       string
	Code        string
	NewPassword string
}

// ChangePasswordInput groups parameters for an authenticated password change.
type ChangePasswordInput struct {
	AccessToken string
	OldPassword string
	NewPassword string
}

// IdentityProvider drives the IdP's credential operations. All errors are
// classified into the internal/errors taxonomy at the adapter boundary so
// callers can match on reason rather than parse provider text.
type IdentityProvider interface {
	// VerifyPassword checks the credentials and returns either an identity or
	// a pending challenge (e.g. a forced password change).
	VerifyPassword(ctx context.Context, username, password string) (PasswordResult, error)

	// CompleteNewPassword answers a new-password-required challenge and
	// returns the authenticated identity.
	CompleteNewPassword(ctx context.Context, pending domainauth.PendingChallenge, newPassword string) (domainauth.Identity, error)

	// RequestReset sends a reset code out of band. Providers are expected not
	// to disclose account existence; callers treat success uniformly.
	RequestReset(ctx context.Context, email string) error

	// ConfirmReset completes a reset with the emailed code. It does not
	// authenticate the session.
	ConfirmReset(ctx context.Context, in ConfirmResetInput) error

	// ChangePassword re-proves the old password and sets a new one for an
	// authenticated principal.
	ChangePassword(ctx context.Context, in ChangePasswordInput) error

	// SignOut invalidates the identity's session token with the provider.
	SignOut(ctx context.Context, identity domainauth.Identity) error
}

// SessionStore persists and retrieves server-side user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// PendingChallengeStore parks challenge continuations between the sign-in
// request that raised them and the follow-up that answers them. Entries are
// short-lived; implementations expire them on their own.
type PendingChallengeStore interface {
	SavePending(ctx context.Context, token string, pending domainauth.PendingChallenge) error
	GetPending(ctx context.Context, token string) (domainauth.PendingChallenge, error)
	DeletePending(ctx context.Context, token string) error
}
