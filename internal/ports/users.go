package ports

import (
	"context"

	"github.com/cloudboard/cloudboard/internal/domain/model"
)

// ListUsersInput carries the paging window for a directory listing. A nil
// cursor requests the first page; the cursor is an opaque provider token.
type ListUsersInput struct {
	Cursor *string
	Limit  int32
}

// UserPage is one page of directory entries plus the continuation cursor, or
// nil when the listing is exhausted.
type UserPage struct {
	Users      []model.User
	NextCursor *string
}

// UserDirectory is the user-provisioning boundary: create accounts and list
// them page by page. Results are consumed as plain data.
type UserDirectory interface {
	// CreateUser provisions an account with a generated temporary password
	// and, when requested, admin group membership.
	CreateUser(ctx context.Context, in model.NewUserInput) (model.User, error)

	// ListUsers returns one page of directory entries.
	ListUsers(ctx context.Context, in ListUsersInput) (UserPage, error)
}
