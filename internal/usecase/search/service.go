// Package search composes retrieval, filtering, and reranking into the
// end-to-end query pipeline.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/angelsearch/internal/domain"
	"github.com/kailas-cloud/angelsearch/internal/domain/profile"
	domsearch "github.com/kailas-cloud/angelsearch/internal/domain/search"
	"github.com/kailas-cloud/angelsearch/internal/usecase/filter"
)

// overFetchFactor widens retrieval beyond max_results so filtering and
// reranking still have enough candidates to fill the requested page.
const overFetchFactor = 3

// Service is the search orchestrator.
type Service struct {
	profiles ProfileReader
	index    VectorIndex
	reranker Reranker
	logger   *zap.Logger
}

// New creates a search service.
func New(profiles ProfileReader, index VectorIndex, reranker Reranker, logger *zap.Logger) *Service {
	return &Service{profiles: profiles, index: index, reranker: reranker, logger: logger}
}

// Search runs the pipeline: retrieve by embedding distance, drop non-matching
// candidates, rerank, truncate. Fewer than max_results surviving the filter
// is a legitimate thin result, not an error.
func (s *Service) Search(ctx context.Context, q domsearch.Query) (domsearch.Result, error) {
	if s.profiles.Count() == 0 {
		return domsearch.Result{}, fmt.Errorf("%w: no profiles loaded", domain.ErrServiceUnavailable)
	}
	if s.index.Len() == 0 {
		return domsearch.Result{}, fmt.Errorf("%w: vector index not built", domain.ErrServiceUnavailable)
	}

	k := q.MaxResults() * overFetchFactor
	if k > s.index.Len() {
		k = s.index.Len()
	}

	hits, err := s.index.Search(ctx, q.Text(), k)
	if err != nil {
		s.logger.Error("Vector search failed",
			zap.String("query", q.Text()),
			zap.Int("k", k),
			zap.Error(err),
		)
		return domsearch.Result{}, fmt.Errorf("vector search: %w", err)
	}

	candidates := make([]profile.Record, 0, len(hits))
	for _, hit := range hits {
		rec, err := s.profiles.Get(hit.Row)
		if err != nil {
			// Row outside the store means the two snapshots diverged; skip.
			continue
		}
		if filter.Matches(rec.Raw(), q.Filters()) {
			candidates = append(candidates, *rec)
		}
	}

	results := s.reranker.Rerank(ctx, q.Text(), candidates, q.MaxResults())

	s.logger.Debug("Search completed",
		zap.String("query", q.Text()),
		zap.Int("retrieved", len(hits)),
		zap.Int("filtered", len(candidates)),
		zap.Int("returned", len(results)),
	)

	return domsearch.Result{
		Results:    results,
		TotalFound: len(results),
		Query:      q.Text(),
	}, nil
}
