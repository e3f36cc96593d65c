package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ps-vitor/sub2lease-seed/internal/domain"
	"github.com/ps-vitor/sub2lease-seed/internal/extjson"
	"github.com/ps-vitor/sub2lease-seed/internal/repositories"
	"github.com/ps-vitor/sub2lease-seed/pkg/logger"
)

// SeederService loads fixture files into collections, one resource at a
// time. Problems with one resource are logged and never stop the run.
type SeederService struct {
	repo   repositories.DocumentWriter
	decode extjson.Decoder
	log    *logger.Logger
}

type Option func(*SeederService)

// WithDecoder swaps the fixture decoder; extjson.Decode is the default.
func WithDecoder(d extjson.Decoder) Option {
	return func(s *SeederService) {
		if d != nil {
			s.decode = d
		}
	}
}

func NewSeederService(repo repositories.DocumentWriter, log *logger.Logger, opts ...Option) *SeederService {
	if log == nil {
		log = logger.Nop()
	}
	s := &SeederService{repo: repo, decode: extjson.Decode, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run seeds every resource in order and returns one summary per resource.
func (s *SeederService) Run(ctx context.Context, resources []domain.Resource) []domain.Summary {
	summaries := make([]domain.Summary, 0, len(resources))
	for _, res := range resources {
		summaries = append(summaries, s.seed(ctx, res))
	}

	total := domain.Totals(summaries)
	var ok, skipped, failed int
	for _, sum := range summaries {
		switch sum.Status {
		case domain.StatusOK:
			ok++
		case domain.StatusSkipped:
			skipped++
		case domain.StatusError:
			failed++
		}
	}
	s.log.Logger.Info().
		Int("ok", ok).
		Int("skipped", skipped).
		Int("errors", failed).
		Int64("upserted", total.Upserted).
		Int64("matched", total.Matched).
		Int64("modified", total.Modified).
		Int64("inserted", total.Inserted).
		Msg("seed finished")
	return summaries
}

func (s *SeederService) seed(ctx context.Context, res domain.Resource) domain.Summary {
	sum := domain.Summary{Collection: res.Collection, Path: res.Path}

	if _, err := os.Stat(res.Path); errors.Is(err, fs.ErrNotExist) {
		return s.skip(sum, "file not found")
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		return s.fail(sum, fmt.Errorf("read %s: %w", res.Path, err), "failed to read")
	}

	batch, err := s.decode(data)
	if err != nil {
		return s.fail(sum, fmt.Errorf("parse %s: %w", res.Path, err), "failed to parse")
	}
	if batch.Ignored > 0 {
		sum.Ignored = batch.Ignored
		s.log.Logger.Warn().
			Str("path", res.Path).
			Int("ignored", batch.Ignored).
			Msg("skipping non-object elements")
	}
	if len(batch.Documents) == 0 {
		return s.skip(sum, "no documents")
	}

	upserts, inserts := domain.Partition(batch.Documents)

	if len(upserts) > 0 {
		result, err := s.repo.UpsertByID(ctx, res.Collection, upserts)
		sum.Upserted, sum.Matched, sum.Modified = result.Upserted, result.Matched, result.Modified
		if err != nil {
			return s.fail(sum, err, "failed writing")
		}
		s.log.Logger.Info().
			Str("collection", res.Collection).
			Int64("upserted", result.Upserted).
			Int64("matched", result.Matched).
			Int64("modified", result.Modified).
			Msg("ok")
	}

	if len(inserts) > 0 {
		n, err := s.repo.InsertMany(ctx, res.Collection, inserts)
		sum.Inserted = n
		if err != nil {
			return s.fail(sum, err, "failed writing")
		}
		s.log.Logger.Info().
			Str("collection", res.Collection).
			Int64("inserted", n).
			Msg("ok")
	}

	sum.Status = domain.StatusOK
	return sum
}

func (s *SeederService) skip(sum domain.Summary, reason string) domain.Summary {
	sum.Status = domain.StatusSkipped
	sum.Reason = reason
	s.log.Logger.Info().
		Str("collection", sum.Collection).
		Str("path", sum.Path).
		Msg("skip: " + reason)
	return sum
}

func (s *SeederService) fail(sum domain.Summary, err error, reason string) domain.Summary {
	sum.Status = domain.StatusError
	sum.Reason = reason
	sum.Err = err
	s.log.Logger.Error().
		Err(err).
		Str("collection", sum.Collection).
		Str("path", sum.Path).
		Msg("error: " + reason)
	return sum
}
