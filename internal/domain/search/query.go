// Package search holds the search query and result types.
package search

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/angelsearch/internal/domain"
	"github.com/kailas-cloud/angelsearch/internal/domain/profile"
)

// Bounds for max_results.
const (
	DefaultMaxResults = 10
	MaxMaxResults     = 100
)

// Query is a validated search request.
type Query struct {
	query      string
	maxResults int
	filters    map[string]any
}

// NewQuery validates and builds a Query. maxResults of 0 means "use the
// default". Filters may be nil.
func NewQuery(query string, maxResults int, filters map[string]any) (Query, error) {
	if strings.TrimSpace(query) == "" {
		return Query{}, fmt.Errorf("%w: query must not be empty", domain.ErrValidation)
	}
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults < 1 || maxResults > MaxMaxResults {
		return Query{}, fmt.Errorf(
			"%w: max_results must be between 1 and %d", domain.ErrValidation, MaxMaxResults,
		)
	}
	return Query{query: query, maxResults: maxResults, filters: filters}, nil
}

// Text returns the free-text query.
func (q Query) Text() string { return q.query }

// MaxResults returns the result cap.
func (q Query) MaxResults() int { return q.maxResults }

// Filters returns the filter mapping, possibly nil.
func (q Query) Filters() map[string]any { return q.filters }

// Result is an ordered search response, most relevant first.
type Result struct {
	Results    []profile.Record
	TotalFound int
	Query      string
}
