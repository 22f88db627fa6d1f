package service

import (
	"context"
	"fmt"

	"github.com/cloudboard/cloudboard/internal/domain/model"
	apperrors "github.com/cloudboard/cloudboard/internal/errors"
	"github.com/cloudboard/cloudboard/internal/paginate"
	"github.com/cloudboard/cloudboard/internal/ports"
)

// UserService wraps the user directory boundary: account provisioning and
// page-by-page listing for the users view.
type UserService struct {
	dir ports.UserDirectory
}

// NewUserService constructs a UserService over the directory.
func NewUserService(dir ports.UserDirectory) *UserService {
	return &UserService{dir: dir}
}

// CreateUser validates and provisions a new account. The provider generates
// the temporary password and forces a change on first sign-in.
func (s *UserService) CreateUser(ctx context.Context, in model.NewUserInput) (model.User, error) {
	if err := in.Validate(); err != nil {
		return model.User{}, apperrors.Validation(err.Error())
	}
	user, err := s.dir.CreateUser(ctx, in)
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// ListUsers returns one page of directory entries.
func (s *UserService) ListUsers(ctx context.Context, in ports.ListUsersInput) (ports.UserPage, error) {
	page, err := s.dir.ListUsers(ctx, in)
	if err != nil {
		return ports.UserPage{}, fmt.Errorf("list users: %w", err)
	}
	return page, nil
}

// PageFunc adapts the directory listing to the paginator's fetch shape so a
// users view can navigate it with cached cursors.
func (s *UserService) PageFunc() paginate.PageFunc[model.User] {
	return func(ctx context.Context, cursor *string, limit int32) (paginate.Page[model.User], error) {
		page, err := s.ListUsers(ctx, ports.ListUsersInput{Cursor: cursor, Limit: limit})
		if err != nil {
			return paginate.Page[model.User]{}, err
		}
		return paginate.Page[model.User]{Items: page.Users, NextCursor: page.NextCursor}, nil
	}
}
