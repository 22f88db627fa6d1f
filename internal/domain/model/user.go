//revive:disable-next-line:var-naming // legacy package name used across the project
package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// User is a directory entry as reported by the identity provider.
type User struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name"`
	IsAdmin   bool      `json:"is_admin"`
	Enabled   bool      `json:"enabled"`
	Status    string    `json:"status"` // provider lifecycle status, e.g. FORCE_CHANGE_PASSWORD
	CreatedAt time.Time `json:"created_at"`
}

// NewUserInput describes a user to provision. The provider generates a
// temporary password and forces a change on first sign-in.
type NewUserInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	IsAdmin  bool   `json:"is_admin"`
}

// Validate checks the provisioning input.
func (in NewUserInput) Validate() error {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return errors.New("email is required and cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email must be a valid address")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required and cannot be empty")
	}
	return nil
}
