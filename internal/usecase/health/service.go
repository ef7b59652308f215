// Package health aggregates readiness checks for the search service.
package health

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates the service can answer searches.
	Healthy Status = "ok"
	// Degraded indicates the service is up but search is unavailable.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component readiness outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// Report aggregates readiness check results.
type Report struct {
	Status        Status
	Checks        map[string]CheckResult
	ProfilesCount int
	IndexReady    bool
}

// ProfileCounter reports the number of loaded profiles.
type ProfileCounter interface {
	Count() int
}

// IndexSizer reports the number of indexed vectors.
type IndexSizer interface {
	Len() int
}

// Service coordinates readiness checks.
type Service struct {
	profiles ProfileCounter
	index    IndexSizer
}

// New creates a Service.
func New(profiles ProfileCounter, index IndexSizer) *Service {
	return &Service{profiles: profiles, index: index}
}

// Check reports whether the profile store and vector index are ready.
func (s *Service) Check() Report {
	checks := make(map[string]CheckResult)

	count := s.profiles.Count()
	if count > 0 {
		checks["profiles"] = CheckOK
	} else {
		checks["profiles"] = CheckError
	}

	ready := s.index.Len() > 0
	if ready {
		checks["index"] = CheckOK
	} else {
		checks["index"] = CheckError
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{
		Status:        status,
		Checks:        checks,
		ProfilesCount: count,
		IndexReady:    ready,
	}
}
