package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results. CacheWarm reports whether the
// corpus embeddings have been computed; a cold cache is normal right after
// startup and does not degrade the status.
type Report struct {
	Status    Status
	Checks    map[string]CheckResult
	CacheWarm bool
}

// Service coordinates health checks.
type Service struct {
	cache     CacheReporter
	embedding EmbeddingChecker
}

// New creates a Service. embedding can be nil when the provider exposes no
// health endpoint.
func New(cache CacheReporter, embedding EmbeddingChecker) *Service {
	return &Service{cache: cache, embedding: embedding}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{
		Status:    status,
		Checks:    checks,
		CacheWarm: s.cache.CacheWarm(),
	}
}
