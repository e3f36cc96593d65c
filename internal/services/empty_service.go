package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ps-vitor/sub2lease-seed/pkg/logger"
)

var ErrUnknownCollection = errors.New("unknown collection")

type collectionEraser interface {
	DeleteAll(ctx context.Context, collection string) (int64, error)
}

// EmptyService removes every document from one of the seeded collections.
type EmptyService struct {
	repo        collectionEraser
	collections []string
	log         *logger.Logger
}

func NewEmptyService(repo collectionEraser, collections []string, log *logger.Logger) *EmptyService {
	if log == nil {
		log = logger.Nop()
	}
	return &EmptyService{repo: repo, collections: collections, log: log}
}

func (s *EmptyService) Empty(ctx context.Context, collection string) (int64, error) {
	if !slices.Contains(s.collections, collection) {
		return 0, fmt.Errorf("%w: %q (known: %v)", ErrUnknownCollection, collection, s.collections)
	}

	n, err := s.repo.DeleteAll(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("empty %s: %w", collection, err)
	}
	s.log.Logger.Info().Str("collection", collection).Int64("deleted", n).Msg("emptied collection")
	return n, nil
}
