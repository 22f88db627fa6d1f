package service

import (
	"context"
	"fmt"

	"github.com/cloudboard/cloudboard/internal/domain/model"
	apperrors "github.com/cloudboard/cloudboard/internal/errors"
	"github.com/cloudboard/cloudboard/internal/paginate"
	"github.com/cloudboard/cloudboard/internal/ports"
)

// AlbumService wraps the album catalog: creation and token-cursor listing
// for the table view.
type AlbumService struct {
	repo ports.AlbumRepository
}

// NewAlbumService constructs an AlbumService over the repository.
func NewAlbumService(repo ports.AlbumRepository) *AlbumService {
	return &AlbumService{repo: repo}
}

// CreateAlbum validates and stores a catalog row.
func (s *AlbumService) CreateAlbum(ctx context.Context, album model.Album) error {
	if err := album.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}
	if err := s.repo.PutAlbum(ctx, album); err != nil {
		return fmt.Errorf("put album: %w", err)
	}
	return nil
}

// ListAlbums returns one page of catalog rows.
func (s *AlbumService) ListAlbums(ctx context.Context, in ports.ListAlbumsInput) (ports.AlbumPage, error) {
	page, err := s.repo.ListAlbums(ctx, in)
	if err != nil {
		return ports.AlbumPage{}, fmt.Errorf("list albums: %w", err)
	}
	return page, nil
}

// PageFunc adapts the catalog listing to the paginator's fetch shape.
func (s *AlbumService) PageFunc() paginate.PageFunc[model.Album] {
	return func(ctx context.Context, cursor *string, limit int32) (paginate.Page[model.Album], error) {
		page, err := s.ListAlbums(ctx, ports.ListAlbumsInput{Cursor: cursor, Limit: limit})
		if err != nil {
			return paginate.Page[model.Album]{}, err
		}
		return paginate.Page[model.Album]{Items: page.Albums, NextCursor: page.NextCursor}, nil
	}
}
