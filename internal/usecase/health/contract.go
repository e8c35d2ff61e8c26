package health

import "context"

// CacheReporter reports whether the corpus embedding cache is populated.
type CacheReporter interface {
	CacheWarm() bool
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
