// Package index implements a build-once flat nearest-neighbor index over
// profile embeddings.
package index

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/angelsearch/internal/domain"
)

// Hit is one nearest-neighbor match. Row equals the profile's position in
// the store.
type Hit struct {
	Row      int
	Distance float32
}

// Index wraps an embedding provider and a flat L2 structure. Built exactly
// once before queries are served; reads afterwards need no locking.
type Index struct {
	embedder domain.Embedder
	batch    domain.BatchEmbedder
	timeout  time.Duration
	vectors  [][]float32
	dim      int
	logger   *zap.Logger
}

// New creates an unbuilt index. timeout bounds each embedding provider call;
// zero means no bound beyond the caller's context.
func New(embedder domain.Embedder, batch domain.BatchEmbedder, timeout time.Duration, logger *zap.Logger) *Index {
	return &Index{embedder: embedder, batch: batch, timeout: timeout, logger: logger}
}

// embedCtx derives the bounded context for a provider call.
func (ix *Index) embedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ix.timeout > 0 {
		return context.WithTimeout(ctx, ix.timeout)
	}
	return ctx, func() {}
}

// Build embeds all texts in one batch call and populates the flat structure.
// Row i of the index corresponds to texts[i]; callers pass texts in store
// order so the two stay aligned 1:1.
func (ix *Index) Build(ctx context.Context, texts []string) error {
	if ix.batch == nil {
		return fmt.Errorf("%w: no embedding provider", domain.ErrConfiguration)
	}
	if len(texts) == 0 {
		ix.logger.Warn("No texts to index")
		return nil
	}

	callCtx, cancel := ix.embedCtx(ctx)
	defer cancel()

	result, err := ix.batch.BatchEmbed(callCtx, texts)
	if err != nil {
		return fmt.Errorf("embed corpus: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return fmt.Errorf("%w: got %d vectors for %d texts",
			domain.ErrEmbeddingProviderError, len(result.Embeddings), len(texts))
	}
	dim := len(result.Embeddings[0])
	for i, v := range result.Embeddings {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				domain.ErrEmbeddingProviderError, i, len(v), dim)
		}
	}

	ix.vectors = result.Embeddings
	ix.dim = dim
	ix.logger.Info("Vector index built",
		zap.Int("vectors", len(ix.vectors)),
		zap.Int("dimension", ix.dim),
		zap.Int("tokens", result.TotalTokens),
	)
	return nil
}

// Len returns the number of indexed vectors. Zero means unbuilt.
func (ix *Index) Len() int { return len(ix.vectors) }

// Search embeds the query and returns the k nearest rows by squared L2
// distance in ascending order. k is clamped to the vector count. Ties break
// by row order.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	if len(ix.vectors) == 0 || ix.embedder == nil {
		return nil, fmt.Errorf("%w: vector index not built", domain.ErrServiceUnavailable)
	}
	if k <= 0 {
		return []Hit{}, nil
	}
	if k > len(ix.vectors) {
		k = len(ix.vectors)
	}

	callCtx, cancel := ix.embedCtx(ctx)
	defer cancel()

	result, err := ix.embedder.Embed(callCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(result.Embedding) != ix.dim {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d",
			domain.ErrEmbeddingProviderError, len(result.Embedding), ix.dim)
	}

	hits := make([]Hit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = Hit{Row: i, Distance: l2Squared(result.Embedding, v)}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Distance != hits[b].Distance {
			return hits[a].Distance < hits[b].Distance
		}
		return hits[a].Row < hits[b].Row
	})

	return hits[:k], nil
}

func l2Squared(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
