package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeCognito authenticates against an AWS Cognito user pool.
	AuthModeCognito AuthMode = "cognito"
	// AuthModeMock uses the in-memory dev provider (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "cognito", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: cognito, mock)", v)
	}
}

// CognitoConfig contains Cognito user pool configuration.
// Used when AUTH_MODE=cognito.
type CognitoConfig struct {
	ClientID   string `env:"CLIENT_ID"`
	UserPoolID string `env:"USER_POOL_ID"`
}

// DevAuthConfig seeds the in-memory dev provider with one admin and one
// plain account. Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	AdminEmail    string `env:"ADMIN_EMAIL"    envDefault:"admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin-password"`
	UserEmail     string `env:"USER_EMAIL"     envDefault:"user@example.com"`
	UserPassword  string `env:"USER_PASSWORD"  envDefault:"user-password"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"cognito"`

	// Cognito configuration (used when Mode=cognito).
	Cognito CognitoConfig `envPrefix:"COGNITO_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Validate checks that the selected mode has what it needs.
func (a AuthConfig) Validate() error {
	if a.Mode != AuthModeCognito {
		return nil
	}
	if a.Cognito.ClientID == "" {
		return fmt.Errorf("COGNITO_CLIENT_ID is required when AUTH_MODE=cognito")
	}
	if a.Cognito.UserPoolID == "" {
		return fmt.Errorf("COGNITO_USER_POOL_ID is required when AUTH_MODE=cognito")
	}
	return nil
}
