package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// AdminGroup is the distinguished group whose members hold admin privileges.
const AdminGroup = "Admin"

// Identity represents the authenticated principal returned by the IdP.
// Adapters map provider-specific token claims into this shape.
type Identity struct {
	Username    string    `json:"username"` // sign-in email
	Groups      []string  `json:"groups"`
	AccessToken string    `json:"-"` // session token usable for authenticated calls, never serialized out
	ExpiresAt   time.Time `json:"expires_at"` // absolute expiry from IdP token
}

// InGroup reports whether the identity belongs to the named group.
func (id Identity) InGroup(name string) bool {
	for _, g := range id.Groups {
		if g == name {
			return true
		}
	}
	return false
}

// Snapshot is the derived, read-only authorization view handed to callers.
// It is recomputed from the identity on every change and never mutated
// directly, so there is no second path that could leave IsAdmin stale.
type Snapshot struct {
	IsLoggedIn bool      `json:"is_logged_in"`
	IsAdmin    bool      `json:"is_admin"`
	Identity   *Identity `json:"identity,omitempty"` // nil when logged out
}

// NewSnapshot derives a Snapshot from the current identity (nil when logged out).
func NewSnapshot(id *Identity) Snapshot {
	if id == nil {
		return Snapshot{}
	}
	cp := *id
	cp.Groups = append([]string(nil), id.Groups...)
	return Snapshot{
		IsLoggedIn: true,
		IsAdmin:    cp.InGroup(AdminGroup),
		Identity:   &cp,
	}
}

// ChallengeKind enumerates the additional steps the IdP may demand before
// authentication completes. Only NewPasswordRequired is supported here; the
// MFA kinds are recognized so callers can report them distinctly, but the
// session manager fails closed on anything it does not complete itself.
type ChallengeKind string

const (
	ChallengeNewPasswordRequired ChallengeKind = "NEW_PASSWORD_REQUIRED"
	ChallengeSMSMFA              ChallengeKind = "SMS_MFA"
	ChallengeSoftwareTokenMFA    ChallengeKind = "SOFTWARE_TOKEN_MFA"
	ChallengeMFASetup            ChallengeKind = "MFA_SETUP"
)

// PendingChallenge is the provider continuation for an unfinished sign-in:
// the username mid-flow plus the opaque provider session that must be echoed
// back when answering the challenge.
type PendingChallenge struct {
	Kind            ChallengeKind
	Username        string
	ProviderSession string
}

// challengeStateKind tags the ChallengeState variant.
type challengeStateKind int

const (
	stateNone challengeStateKind = iota
	stateNewPasswordRequired
	stateFailed
)

// ChallengeState is a tagged variant: NoChallenge, NewPasswordRequired
// (carrying the pending continuation), or Failed (carrying a user-facing
// reason). Exactly one variant holds at a time; construct values only through
// the constructors below.
type ChallengeState struct {
	kind    challengeStateKind
	pending *PendingChallenge
	reason  string
}

// NoChallenge returns the empty challenge state.
func NoChallenge() ChallengeState {
	return ChallengeState{}
}

// NewPasswordRequired returns the state awaiting a forced password change.
func NewPasswordRequired(pending PendingChallenge) ChallengeState {
	return ChallengeState{kind: stateNewPasswordRequired, pending: &pending}
}

// FailedChallenge returns the state recording a failed sign-in attempt.
func FailedChallenge(reason string) ChallengeState {
	return ChallengeState{kind: stateFailed, reason: reason}
}

// IsNone reports whether no challenge is pending.
func (c ChallengeState) IsNone() bool { return c.kind == stateNone }

// IsNewPasswordRequired reports whether a forced password change is pending.
func (c ChallengeState) IsNewPasswordRequired() bool { return c.kind == stateNewPasswordRequired }

// IsFailed reports whether the last sign-in attempt failed.
func (c ChallengeState) IsFailed() bool { return c.kind == stateFailed }

// Pending returns the provider continuation; meaningful only while
// IsNewPasswordRequired is true.
func (c ChallengeState) Pending() (PendingChallenge, bool) {
	if c.kind != stateNewPasswordRequired || c.pending == nil {
		return PendingChallenge{}, false
	}
	return *c.pending, true
}

// Reason returns the user-facing failure text; meaningful only while
// IsFailed is true.
func (c ChallengeState) Reason() string { return c.reason }

// Session is the server-side record persisted for an authenticated browser.
// ID is an opaque session identifier (random URL-safe string).
type Session struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Groups      []string  `json:"groups"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsAdmin derives admin privilege from group membership. Sessions never store
// the flag itself; membership in AdminGroup is the only source of truth.
func (s Session) IsAdmin() bool {
	for _, g := range s.Groups {
		if g == AdminGroup {
			return true
		}
	}
	return false
}
