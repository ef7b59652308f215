package search

import (
	"context"

	"github.com/kailas-cloud/angelsearch/internal/domain/profile"
	"github.com/kailas-cloud/angelsearch/internal/index"
)

// ProfileReader reads the loaded profile snapshot by position.
type ProfileReader interface {
	Count() int
	Get(index int) (*profile.Record, error)
}

// VectorIndex answers nearest-neighbor queries over the profile embeddings.
type VectorIndex interface {
	Len() int
	Search(ctx context.Context, query string, k int) ([]index.Hit, error)
}

// Reranker reorders filtered candidates by relevance. Implementations never
// fail; a broken oracle degrades to the input order.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []profile.Record, maxResults int) []profile.Record
}
