package devauth

// Package devauth provides a config-driven, in-memory identity provider and
// user directory for local development. No external IdP is involved.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	domainauth "github.com/cloudboard/cloudboard/internal/domain/auth"
	"github.com/cloudboard/cloudboard/internal/domain/model"
	apperrors "github.com/cloudboard/cloudboard/internal/errors"
	"github.com/cloudboard/cloudboard/internal/ports"
)

// UserConfig seeds one dev account.
type UserConfig struct {
	Email          string
	Password       string
	Groups         []string
	RequireNewPass bool // force a password change on first sign-in
}

// Config controls the dev provider behavior.
type Config struct {
	Users           []UserConfig
	SessionDuration time.Duration // default 8h when zero
}

type account struct {
	email          string
	password       string
	groups         []string
	requireNewPass bool
	enabled        bool
	createdAt      time.Time
}

// Provider implements ports.IdentityProvider and ports.UserDirectory over an
// in-memory account table. Password resets accept any code.
type Provider struct {
	mu              sync.Mutex
	accounts        map[string]*account
	sessions        map[string]string // provider session -> email
	tokens          map[string]string // access token -> email
	sessionDuration time.Duration
	now             func() time.Time
}

// NewProvider constructs a dev provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if len(cfg.Users) == 0 {
		return nil, errors.New("dev auth: at least one user is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	p := &Provider{
		accounts:        make(map[string]*account, len(cfg.Users)),
		sessions:        make(map[string]string),
		tokens:          make(map[string]string),
		sessionDuration: dur,
		now:             time.Now,
	}
	for _, u := range cfg.Users {
		if u.Email == "" || u.Password == "" {
			return nil, errors.New("dev auth: user email and password are required")
		}
		p.accounts[u.Email] = &account{
			email:          u.Email,
			password:       u.Password,
			groups:         append([]string(nil), u.Groups...),
			requireNewPass: u.RequireNewPass,
			enabled:        true,
			createdAt:      time.Now(),
		}
	}
	return p, nil
}

var (
	_ ports.IdentityProvider = (*Provider)(nil)
	_ ports.UserDirectory    = (*Provider)(nil)
)

func (p *Provider) VerifyPassword(_ context.Context, username, password string) (ports.PasswordResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[username]
	if !ok || acct.password != password {
		return ports.PasswordResult{}, apperrors.InvalidCredentials("incorrect username or password")
	}

	if acct.requireNewPass {
		sess, err := randomString(24)
		if err != nil {
			return ports.PasswordResult{}, fmt.Errorf("generate session: %w", err)
		}
		p.sessions[sess] = acct.email
		return ports.PasswordResult{Challenge: &domainauth.PendingChallenge{
			Kind:            domainauth.ChallengeNewPasswordRequired,
			Username:        acct.email,
			ProviderSession: sess,
		}}, nil
	}

	id, err := p.lockedIssueIdentity(acct)
	if err != nil {
		return ports.PasswordResult{}, err
	}
	return ports.PasswordResult{Identity: &id}, nil
}

func (p *Provider) CompleteNewPassword(_ context.Context, pending domainauth.PendingChallenge, newPassword string) (domainauth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.sessions[pending.ProviderSession]
	if !ok || email != pending.Username {
		return domainauth.Identity{}, apperrors.ChallengeMismatch("unknown or expired challenge session")
	}
	if err := checkPolicy(newPassword); err != nil {
		return domainauth.Identity{}, err
	}
	acct := p.accounts[email]
	acct.password = newPassword
	acct.requireNewPass = false
	delete(p.sessions, pending.ProviderSession)
	return p.lockedIssueIdentity(acct)
}

func (p *Provider) RequestReset(_ context.Context, _ string) error {
	// Success regardless of account existence, matching real providers.
	return nil
}

func (p *Provider) ConfirmReset(_ context.Context, in ports.ConfirmResetInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[in.Email]
	if !ok {
		return apperrors.ChallengeMismatch("verification code is invalid or expired")
	}
	if err := checkPolicy(in.NewPassword); err != nil {
		return err
	}
	acct.password = in.NewPassword
	acct.requireNewPass = false
	return nil
}

func (p *Provider) ChangePassword(_ context.Context, in ports.ChangePasswordInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.tokens[in.AccessToken]
	if !ok {
		return apperrors.InvalidCredentials("access token is not recognized")
	}
	acct := p.accounts[email]
	if acct.password != in.OldPassword {
		return apperrors.InvalidCredentials("incorrect username or password")
	}
	if err := checkPolicy(in.NewPassword); err != nil {
		return err
	}
	acct.password = in.NewPassword
	return nil
}

func (p *Provider) SignOut(_ context.Context, identity domainauth.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tokens, identity.AccessToken)
	return nil
}

// CreateUser adds an account with a generated password and forces a change
// on first sign-in, mirroring how pool invitations behave.
func (p *Provider) CreateUser(_ context.Context, in model.NewUserInput) (model.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[in.Email]; exists {
		return model.User{}, apperrors.Validation("an account with this email already exists")
	}
	temp, err := randomString(16)
	if err != nil {
		return model.User{}, fmt.Errorf("generate temporary password: %w", err)
	}
	var groups []string
	if in.IsAdmin {
		groups = []string{domainauth.AdminGroup}
	}
	acct := &account{
		email:          in.Email,
		password:       temp,
		groups:         groups,
		requireNewPass: true,
		enabled:        true,
		createdAt:      p.now(),
	}
	p.accounts[in.Email] = acct
	return p.lockedUserView(acct), nil
}

// ListUsers pages over accounts in email order using the email of the next
// entry as the cursor.
func (p *Provider) ListUsers(_ context.Context, in ports.ListUsersInput) (ports.UserPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	emails := make([]string, 0, len(p.accounts))
	for email := range p.accounts {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	start := 0
	if in.Cursor != nil {
		start = sort.SearchStrings(emails, *in.Cursor)
	}
	limit := int(in.Limit)
	if limit <= 0 {
		limit = 60
	}

	users := make([]model.User, 0, limit)
	for i := start; i < len(emails) && len(users) < limit; i++ {
		users = append(users, p.lockedUserView(p.accounts[emails[i]]))
	}

	page := ports.UserPage{Users: users}
	if next := start + len(users); next < len(emails) {
		page.NextCursor = &emails[next]
	}
	return page, nil
}

func (p *Provider) lockedIssueIdentity(acct *account) (domainauth.Identity, error) {
	token, err := randomString(32)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("generate token: %w", err)
	}
	p.tokens[token] = acct.email
	return domainauth.Identity{
		Username:    acct.email,
		Groups:      append([]string(nil), acct.groups...),
		AccessToken: token,
		ExpiresAt:   p.now().Add(p.sessionDuration),
	}, nil
}

func (p *Provider) lockedUserView(acct *account) model.User {
	status := "CONFIRMED"
	if acct.requireNewPass {
		status = "FORCE_CHANGE_PASSWORD"
	}
	isAdmin := false
	for _, g := range acct.groups {
		if g == domainauth.AdminGroup {
			isAdmin = true
		}
	}
	name, last, _ := strings.Cut(strings.SplitN(acct.email, "@", 2)[0], ".")
	return model.User{
		Email:     acct.email,
		Name:      name,
		LastName:  last,
		IsAdmin:   isAdmin,
		Enabled:   acct.enabled,
		Status:    status,
		CreatedAt: acct.createdAt,
	}
}

// checkPolicy enforces a minimal password shape so policy rejection paths
// are exercisable in development.
func checkPolicy(password string) error {
	if len(password) < 8 {
		return apperrors.PasswordPolicy("password must be at least 8 characters")
	}
	return nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	return s[:n], nil
}
