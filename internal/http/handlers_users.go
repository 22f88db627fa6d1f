package httpx

import (
	"net/http"

	"github.com/cloudboard/cloudboard/internal/domain/model"
	"github.com/cloudboard/cloudboard/internal/ports"
	"github.com/cloudboard/cloudboard/internal/service"
)

// UserHandlers provides HTTP handlers for directory administration. All
// routes sit behind the admin middleware.
type UserHandlers struct {
	Svc *service.UserService
}

type userPageResponse struct {
	Users      []model.User `json:"users"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// List handles GET /api/users?cursor=<token>&limit=<n>.
func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	in := ports.ListUsersInput{Limit: parseLimit(r)}
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		in.Cursor = &cursor
	}

	page, err := h.Svc.ListUsers(r.Context(), in)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, userPageResponse{
		Users:      page.Users,
		NextCursor: page.NextCursor,
	})
}

// Create handles POST /api/users. The provider emails a temporary password
// and the account must change it on first sign-in.
func (h *UserHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var in model.NewUserInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	user, err := h.Svc.CreateUser(r.Context(), in)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}
