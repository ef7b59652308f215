package domain

import "errors"

var (
	// ErrNotFound signals an out-of-range profile lookup.
	ErrNotFound = errors.New("profile not found")
	// ErrServiceUnavailable signals that the store is empty, the index is
	// unbuilt, or a provider client is absent at query time.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrConfiguration signals a missing credential or model at startup.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation signals a malformed search query.
	ErrValidation = errors.New("validation error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRerankProviderError signals a rerank oracle failure. Callers absorb
	// it and fall back to the original candidate order.
	ErrRerankProviderError = errors.New("rerank provider error")
)
