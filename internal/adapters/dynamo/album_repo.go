package dynamo

// Package dynamo adapts a DynamoDB table to the album catalog port.

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/cloudboard/cloudboard/internal/domain/model"
	apperrors "github.com/cloudboard/cloudboard/internal/errors"
	"github.com/cloudboard/cloudboard/internal/ports"
)

// scanAPI is the slice of the DynamoDB client the repository uses.
type scanAPI interface {
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// AlbumRepo implements ports.AlbumRepository over a DynamoDB table. The
// table's LastEvaluatedKey is sealed into an opaque cursor so callers never
// see key structure.
type AlbumRepo struct {
	client scanAPI
	table  string
}

// NewAlbumRepo creates a repository over an already-configured AWS config.
func NewAlbumRepo(cfg aws.Config, table string) (*AlbumRepo, error) {
	if table == "" {
		return nil, errors.New("table name is required")
	}
	return &AlbumRepo{
		client: dynamodb.NewFromConfig(cfg),
		table:  table,
	}, nil
}

var _ ports.AlbumRepository = (*AlbumRepo)(nil)

// ListAlbums scans one page of the table. A nil cursor starts from the top;
// a nil NextCursor in the result means the scan is exhausted.
func (r *AlbumRepo) ListAlbums(ctx context.Context, in ports.ListAlbumsInput) (ports.AlbumPage, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	}
	if in.Limit > 0 {
		input.Limit = aws.Int32(in.Limit)
	}
	if in.Cursor != nil {
		key, err := decodeCursor(*in.Cursor)
		if err != nil {
			return ports.AlbumPage{}, apperrors.Validation("malformed page cursor")
		}
		input.ExclusiveStartKey = key
	}

	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return ports.AlbumPage{}, apperrors.Wrap(err, apperrors.ErrCodeProvider, "scan albums")
	}

	albums := make([]model.Album, 0, len(out.Items))
	for _, item := range out.Items {
		var album model.Album
		if err := attributevalue.UnmarshalMap(item, &album); err != nil {
			return ports.AlbumPage{}, fmt.Errorf("unmarshal album item: %w", err)
		}
		albums = append(albums, album)
	}

	page := ports.AlbumPage{Albums: albums}
	if len(out.LastEvaluatedKey) > 0 {
		cursor, err := encodeCursor(out.LastEvaluatedKey)
		if err != nil {
			return ports.AlbumPage{}, fmt.Errorf("encode page cursor: %w", err)
		}
		page.NextCursor = &cursor
	}
	return page, nil
}

// PutAlbum upserts a catalog row keyed by album name.
func (r *AlbumRepo) PutAlbum(ctx context.Context, album model.Album) error {
	item, err := attributevalue.MarshalMap(album)
	if err != nil {
		return fmt.Errorf("marshal album item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeProvider, "put album")
	}
	return nil
}
