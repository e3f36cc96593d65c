package repositories

import (
	"context"
	"errors"

	"github.com/ps-vitor/sub2lease-seed/internal/domain"
)

var (
	ErrMissingID    = errors.New("document has no _id")
	ErrDuplicateKey = errors.New("duplicate _id")
)

// DocumentWriter is the write capability the seeder needs.
type DocumentWriter interface {
	// UpsertByID replaces each document whose _id matches, inserting it
	// otherwise. Every document must carry an _id.
	UpsertByID(ctx context.Context, collection string, docs []domain.Document) (domain.UpsertResult, error)
	// InsertMany appends docs and returns how many were created.
	InsertMany(ctx context.Context, collection string, docs []domain.Document) (int64, error)
}

type DocumentRepository interface {
	DocumentWriter
	DeleteAll(ctx context.Context, collection string) (int64, error)
	CountAll(ctx context.Context, collection string) (int64, error)
}
