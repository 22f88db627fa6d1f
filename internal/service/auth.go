package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/cloudboard/cloudboard/internal/domain/auth"
	apperrors "github.com/cloudboard/cloudboard/internal/errors"
	"github.com/cloudboard/cloudboard/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.IdentityProvider
	Sessions ports.SessionStore
	Pending  ports.PendingChallengeStore
}

// AuthService orchestrates the password sign-in protocol for the HTTP API:
// it verifies credentials with the provider, parks challenge continuations
// between round-trips, and persists server-side sessions. Where a
// SessionManager serves one principal, AuthService serves every browser
// talking to the service.
type AuthService struct {
	provider ports.IdentityProvider
	sessions ports.SessionStore
	pending  ports.PendingChallengeStore
}

var errSessionExpired = errors.New("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		pending:  opts.Pending,
	}
}

// PasswordLoginInput groups the sign-in form fields.
type PasswordLoginInput struct {
	Username string
	Password string
}

// PasswordLoginResult is the outcome of a password sign-in: either a live
// session, or a challenge token the client must echo back when answering the
// forced password change. Exactly one of the two is set.
type PasswordLoginResult struct {
	Session        *domainauth.Session
	ChallengeToken string
	ChallengeKind  domainauth.ChallengeKind
}

// PasswordLogin verifies the credentials and either opens a session or hands
// back a challenge token for the forced-password-change continuation.
func (s *AuthService) PasswordLogin(ctx context.Context, input PasswordLoginInput) (*PasswordLoginResult, error) {
	if input.Username == "" {
		return nil, apperrors.ValidationField("username", "username is required")
	}
	if input.Password == "" {
		return nil, apperrors.ValidationField("password", "password is required")
	}

	result, err := s.provider.VerifyPassword(ctx, input.Username, input.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	switch {
	case result.Identity != nil:
		session, saveErr := s.openSession(ctx, *result.Identity)
		if saveErr != nil {
			return nil, saveErr
		}
		return &PasswordLoginResult{Session: session}, nil

	case result.Challenge != nil && result.Challenge.Kind == domainauth.ChallengeNewPasswordRequired:
		token := uuid.NewString()
		if saveErr := s.pending.SavePending(ctx, token, *result.Challenge); saveErr != nil {
			return nil, fmt.Errorf("save pending challenge: %w", saveErr)
		}
		return &PasswordLoginResult{
			ChallengeToken: token,
			ChallengeKind:  result.Challenge.Kind,
		}, nil

	case result.Challenge != nil:
		return nil, apperrors.Provider("sign-in requires an unsupported verification step: " + string(result.Challenge.Kind))

	default:
		return nil, apperrors.Provider("provider returned neither identity nor challenge")
	}
}

// CompleteChallengeInput groups the forced-password-change form fields.
type CompleteChallengeInput struct {
	ChallengeToken string
	NewPassword    string
}

// CompleteChallenge answers a pending new-password challenge and opens a
// session. An unknown or expired token is a challenge mismatch: there is
// nothing pending for it.
func (s *AuthService) CompleteChallenge(ctx context.Context, input CompleteChallengeInput) (*domainauth.Session, error) {
	if input.ChallengeToken == "" {
		return nil, apperrors.ChallengeMismatch("no challenge token supplied")
	}
	if input.NewPassword == "" {
		return nil, apperrors.ValidationField("new_password", "new password is required")
	}

	pending, err := s.pending.GetPending(ctx, input.ChallengeToken)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ChallengeMismatch("no pending challenge for this token")
		}
		return nil, fmt.Errorf("get pending challenge: %w", err)
	}

	identity, err := s.provider.CompleteNewPassword(ctx, pending, input.NewPassword)
	if err != nil {
		// The continuation stays parked so the user can try another password.
		return nil, fmt.Errorf("complete new password: %w", err)
	}

	if deleteErr := s.pending.DeletePending(ctx, input.ChallengeToken); deleteErr != nil {
		return nil, fmt.Errorf("delete pending challenge: %w", deleteErr)
	}

	return s.openSession(ctx, identity)
}

// RequestPasswordReset asks the provider to send a reset code out of band.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	if err := s.provider.RequestReset(ctx, email); err != nil {
		return fmt.Errorf("request reset: %w", err)
	}
	return nil
}

// ConfirmPasswordReset completes a reset with the emailed code. It does not
// open a session.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, in ports.ConfirmResetInput) error {
	if in.Email == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	if in.Code == "" {
		return apperrors.ValidationField("code", "confirmation code is required")
	}
	if in.NewPassword == "" {
		return apperrors.ValidationField("new_password", "new password is required")
	}
	if err := s.provider.ConfirmReset(ctx, in); err != nil {
		return fmt.Errorf("confirm reset: %w", err)
	}
	return nil
}

// ChangePasswordInput groups the change-password form fields.
type ChangePasswordInput struct {
	SessionID   string
	OldPassword string
	NewPassword string
}

// ChangePassword re-proves the old password for the session's principal and
// sets a new one.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	if input.OldPassword == "" {
		return apperrors.ValidationField("old_password", "old password is required")
	}
	if input.NewPassword == "" {
		return apperrors.ValidationField("new_password", "new password is required")
	}

	session, err := s.GetSession(ctx, input.SessionID)
	if err != nil {
		return err
	}

	err = s.provider.ChangePassword(ctx, ports.ChangePasswordInput{
		AccessToken: session.AccessToken,
		OldPassword: input.OldPassword,
		NewPassword: input.NewPassword,
	})
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	// Check if session is expired
	if time.Now().After(session.ExpiresAt) {
		// Clean up expired session
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// Logout removes the session and invalidates the provider token. It is safe
// to call for a session that is already gone.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("get session: %w", err)
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	identity := domainauth.Identity{
		Username:    session.Username,
		Groups:      session.Groups,
		AccessToken: session.AccessToken,
		ExpiresAt:   session.ExpiresAt,
	}
	if err := s.provider.SignOut(ctx, identity); err != nil {
		return fmt.Errorf("provider sign-out: %w", err)
	}
	return nil
}

// openSession persists a fresh session for the identity.
func (s *AuthService) openSession(ctx context.Context, identity domainauth.Identity) (*domainauth.Session, error) {
	session := domainauth.Session{
		ID:          generateSessionID(),
		Username:    identity.Username,
		Groups:      append([]string(nil), identity.Groups...),
		AccessToken: identity.AccessToken,
		ExpiresAt:   identity.ExpiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &session, nil
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	// Use UUID for session ID - it's URL-safe and has good entropy
	id := uuid.New()
	return id.String()
}
