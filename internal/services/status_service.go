package services

import (
	"context"
	"fmt"

	"github.com/ps-vitor/sub2lease-seed/pkg/logger"
)

type collectionCounter interface {
	CountAll(ctx context.Context, collection string) (int64, error)
}

// CollectionCount is the number of documents currently stored in a collection.
type CollectionCount struct {
	Collection string
	Documents  int64
}

// StatusService reports how many documents each seeded collection holds.
type StatusService struct {
	repo        collectionCounter
	collections []string
	log         *logger.Logger
}

func NewStatusService(repo collectionCounter, collections []string, log *logger.Logger) *StatusService {
	if log == nil {
		log = logger.Nop()
	}
	return &StatusService{repo: repo, collections: collections, log: log}
}

func (s *StatusService) Counts(ctx context.Context) ([]CollectionCount, error) {
	counts := make([]CollectionCount, 0, len(s.collections))
	for _, name := range s.collections {
		n, err := s.repo.CountAll(ctx, name)
		if err != nil {
			return counts, fmt.Errorf("status: %w", err)
		}
		s.log.Logger.Debug().Str("collection", name).Int64("documents", n).Msg("counted")
		counts = append(counts, CollectionCount{Collection: name, Documents: n})
	}
	return counts, nil
}
