package ports

import (
	"context"

	"github.com/cloudboard/cloudboard/internal/domain/model"
)

// ListAlbumsInput carries the paging window for the album catalog. The
// cursor is an opaque storage token, round-tripped but never parsed here.
type ListAlbumsInput struct {
	Cursor *string
	Limit  int32
}

// AlbumPage is one page of catalog rows plus the continuation cursor, or nil
// at end of data.
type AlbumPage struct {
	Albums     []model.Album
	NextCursor *string
}

// AlbumRepository is the album catalog boundary.
type AlbumRepository interface {
	ListAlbums(ctx context.Context, in ListAlbumsInput) (AlbumPage, error)
	PutAlbum(ctx context.Context, album model.Album) error
}
