package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/cloudboard/cloudboard/internal/domain/auth"
	"github.com/cloudboard/cloudboard/internal/ports"
	"github.com/cloudboard/cloudboard/internal/service"
)

// SessionCookieName is the cookie carrying the server-side session ID.
const SessionCookieName = "session_id"

// AuthServiceInterface defines the auth operations the handlers depend on.
type AuthServiceInterface interface {
	PasswordLogin(ctx context.Context, input service.PasswordLoginInput) (*service.PasswordLoginResult, error)
	CompleteChallenge(ctx context.Context, input service.CompleteChallengeInput) (*domainauth.Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, in ports.ConfirmResetInput) error
	ChangePassword(ctx context.Context, input service.ChangePasswordInput) error
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Snapshot       domainauth.Snapshot      `json:"snapshot"`
	ChallengeToken string                   `json:"challenge_token,omitempty"`
	ChallengeKind  domainauth.ChallengeKind `json:"challenge_kind,omitempty"`
}

// Login handles POST /auth/login. A successful sign-in sets the session
// cookie; a forced password change returns a challenge token instead.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.PasswordLogin(r.Context(), service.PasswordLoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.logger().Info("login rejected", slog.String("username", req.Username))
		WriteAppError(w, err)
		return
	}

	if result.Session != nil {
		h.setSessionCookie(w, r, *result.Session)
		WriteJSON(w, http.StatusOK, loginResponse{Snapshot: snapshotFromSession(result.Session)})
		return
	}

	WriteJSON(w, http.StatusOK, loginResponse{
		ChallengeToken: result.ChallengeToken,
		ChallengeKind:  result.ChallengeKind,
	})
}

type completeChallengeRequest struct {
	ChallengeToken string `json:"challenge_token"`
	NewPassword    string `json:"new_password"`
}

// CompleteChallenge handles POST /auth/challenge: the second half of a
// forced-password-change sign-in.
func (h *AuthHandlers) CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	var req completeChallengeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	session, err := h.Svc.CompleteChallenge(r.Context(), service.CompleteChallengeInput{
		ChallengeToken: req.ChallengeToken,
		NewPassword:    req.NewPassword,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.setSessionCookie(w, r, *session)
	WriteJSON(w, http.StatusOK, loginResponse{Snapshot: snapshotFromSession(session)})
}

// Logout handles POST /auth/logout. Always succeeds from the client's view:
// the cookie is cleared even when no server-side session remains.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if logoutErr := h.Svc.Logout(r.Context(), cookie.Value); logoutErr != nil {
			h.logger().Warn("logout cleanup failed", slog.Any("error", logoutErr))
		}
	}
	h.clearSessionCookie(w, r)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

type resetRequest struct {
	Email string `json:"email"`
}

// RequestReset handles POST /auth/reset. The response does not disclose
// whether the account exists.
func (h *AuthHandlers) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.Svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "code_sent"})
}

type confirmResetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// ConfirmReset handles POST /auth/reset/confirm. Success does not open a
// session; the user signs in with the new password.
func (h *AuthHandlers) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req confirmResetRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	err := h.Svc.ConfirmPasswordReset(r.Context(), ports.ConfirmResetInput{
		Email:       req.Email,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "password_reset"})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword handles POST /auth/password. Requires a valid session.
func (h *AuthHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	var req changePasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	changeErr := h.Svc.ChangePassword(r.Context(), service.ChangePasswordInput{
		SessionID:   cookie.Value,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if changeErr != nil {
		WriteAppError(w, changeErr)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
}

// Me handles GET /auth/me: the authorization snapshot for the current
// session. Unauthenticated requests get the logged-out snapshot, not a 401,
// so clients can render their initial state from one call.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		WriteJSON(w, http.StatusOK, domainauth.Snapshot{})
		return
	}
	session, err := h.Svc.GetSession(r.Context(), cookie.Value)
	if err != nil {
		h.clearSessionCookie(w, r)
		WriteJSON(w, http.StatusOK, domainauth.Snapshot{})
		return
	}
	WriteJSON(w, http.StatusOK, snapshotFromSession(session))
}

func snapshotFromSession(session *domainauth.Session) domainauth.Snapshot {
	return domainauth.NewSnapshot(&domainauth.Identity{
		Username:  session.Username,
		Groups:    session.Groups,
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandlers) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
