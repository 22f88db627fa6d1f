package httpx

import (
	"net/http"
	"strconv"

	"github.com/cloudboard/cloudboard/internal/domain/model"
	"github.com/cloudboard/cloudboard/internal/ports"
	"github.com/cloudboard/cloudboard/internal/service"
)

const defaultPageLimit = 10

// AlbumHandlers provides HTTP handlers for the album catalog.
type AlbumHandlers struct {
	Svc *service.AlbumService
}

type albumPageResponse struct {
	Albums     []model.Album `json:"albums"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

// List handles GET /api/albums?cursor=<token>&limit=<n>. The cursor comes
// from a previous response and is opaque to the client.
func (h *AlbumHandlers) List(w http.ResponseWriter, r *http.Request) {
	in := ports.ListAlbumsInput{Limit: parseLimit(r)}
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		in.Cursor = &cursor
	}

	page, err := h.Svc.ListAlbums(r.Context(), in)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, albumPageResponse{
		Albums:     page.Albums,
		NextCursor: page.NextCursor,
	})
}

// Create handles POST /api/albums.
func (h *AlbumHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var album model.Album
	if !DecodeJSON(w, r, &album) {
		return
	}
	if err := h.Svc.CreateAlbum(r.Context(), album); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, album)
}

func parseLimit(r *http.Request) int32 {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultPageLimit
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n <= 0 || n > 100 {
		return defaultPageLimit
	}
	return int32(n)
}
