package httpx

import (
	"context"

	domainauth "github.com/cloudboard/cloudboard/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the user session from context and a boolean indicating presence.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// SnapshotFromContext derives the authorization view for the current request.
// Unauthenticated requests get the zero snapshot.
func SnapshotFromContext(ctx context.Context) domainauth.Snapshot {
	session, ok := GetUserSessionFromContext(ctx)
	if !ok {
		return domainauth.Snapshot{}
	}
	return domainauth.NewSnapshot(&domainauth.Identity{
		Username:  session.Username,
		Groups:    session.Groups,
		ExpiresAt: session.ExpiresAt,
	})
}
