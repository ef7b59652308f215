// Package rerank reorders filtered candidates by relevance using an external
// oracle, failing open to the original order on any oracle malfunction.
package rerank

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/angelsearch/internal/domain"
	"github.com/kailas-cloud/angelsearch/internal/domain/profile"
)

// Service applies an oracle's ranking permutation to a candidate list.
type Service struct {
	oracle  domain.RerankOracle
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a rerank service. oracle may be nil (no credentials), in which
// case every call passes candidates through in original order.
func New(oracle domain.RerankOracle, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{oracle: oracle, timeout: timeout, logger: logger}
}

// Rerank returns candidates in best-to-worst order, truncated to maxResults.
// A missing oracle, an oracle error, or a ranking with no valid indices all
// degrade to the input order; a partial ranking is completed by appending
// the unmentioned candidates in original order. Rerank never fails a search.
func (s *Service) Rerank(
	ctx context.Context, query string, candidates []profile.Record, maxResults int,
) []profile.Record {
	if len(candidates) == 0 {
		return []profile.Record{}
	}
	if s.oracle == nil {
		return truncate(candidates, maxResults)
	}

	summaries := make([]string, len(candidates))
	for i := range candidates {
		summaries[i] = candidates[i].Text()
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ranking, err := s.oracle.Rank(ctx, query, summaries)
	if err != nil {
		s.logger.Warn("Rerank failed, keeping retrieval order",
			zap.String("query", query),
			zap.Int("candidates", len(candidates)),
			zap.Error(err),
		)
		return truncate(candidates, maxResults)
	}

	return truncate(applyRanking(candidates, ranking), maxResults)
}

// applyRanking reorders candidates by the oracle's index permutation.
// Out-of-range and duplicate indices are ignored; candidates the ranking
// omits are appended in original order so none is silently dropped.
func applyRanking(candidates []profile.Record, ranking []int) []profile.Record {
	seen := make(map[int]bool, len(candidates))
	ordered := make([]profile.Record, 0, len(candidates))
	for _, idx := range ranking {
		if idx < 0 || idx >= len(candidates) || seen[idx] {
			continue
		}
		seen[idx] = true
		ordered = append(ordered, candidates[idx])
	}
	if len(ordered) == 0 {
		return candidates
	}
	for i := range candidates {
		if !seen[i] {
			ordered = append(ordered, candidates[i])
		}
	}
	return ordered
}

func truncate(records []profile.Record, n int) []profile.Record {
	if n > 0 && len(records) > n {
		return records[:n]
	}
	return records
}
