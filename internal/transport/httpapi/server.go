// Package httpapi exposes the search service over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/angelsearch/internal/domain"
	"github.com/kailas-cloud/angelsearch/internal/domain/profile"
	domsearch "github.com/kailas-cloud/angelsearch/internal/domain/search"
	logpkg "github.com/kailas-cloud/angelsearch/internal/logger"
	"github.com/kailas-cloud/angelsearch/internal/repository/store"
	healthuc "github.com/kailas-cloud/angelsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/angelsearch/internal/usecase/search"
	"github.com/kailas-cloud/angelsearch/internal/version"
)

// Pagination bounds for GET /profiles.
const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	search        *searchuc.Service
	profiles      *store.Store
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	profiles *store.Store,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		profiles: profiles,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrServiceUnavailable, http.StatusServiceUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway),
	}
	return s
}

// Routes registers all endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Post("/search", s.handleSearchPost)
	r.Get("/search", s.handleSearchGet)
	r.Get("/profiles", s.handleListProfiles)
	r.Get("/profiles/{id}", s.handleGetProfile)
}

// searchRequest is the POST /search body.
type searchRequest struct {
	Query      string         `json:"query"`
	MaxResults int            `json:"max_results"`
	Filters    map[string]any `json:"filters"`
}

// searchResponse is the search result payload.
type searchResponse struct {
	Results    []profile.Record `json:"results"`
	TotalFound int              `json:"total_found"`
	Query      string           `json:"query"`
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.runSearch(w, r, req)
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := searchRequest{
		Query:   q.Get("query"),
		Filters: map[string]any{},
	}

	if raw := q.Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_results must be an integer")
			return
		}
		req.MaxResults = n
	}

	if raw := q.Get("is_investor"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "is_investor must be a boolean")
			return
		}
		req.Filters["is_investor"] = b
	}
	if v := q.Get("investment_role"); v != "" {
		req.Filters["investment_role"] = v
	}
	if v := q.Get("location"); v != "" {
		req.Filters["location"] = v
	}
	if v := q.Get("sectors"); v != "" {
		req.Filters["sectors_of_interest"] = splitCSV(v)
	}
	if v := q.Get("investment_stage"); v != "" {
		req.Filters["investment_stage"] = splitCSV(v)
	}
	if len(req.Filters) == 0 {
		req.Filters = nil
	}

	s.runSearch(w, r, req)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, req searchRequest) {
	query, err := domsearch.NewQuery(req.Query, req.MaxResults, req.Filters)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	result, err := s.search.Search(r.Context(), query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results:    result.Results,
		TotalFound: result.TotalFound,
		Query:      result.Query,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if s.profiles.Count() == 0 {
		writeError(w, http.StatusServiceUnavailable, "No profiles loaded")
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Profile id must be an integer")
		return
	}

	rec, err := s.profiles.Get(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// profilesResponse is the GET /profiles payload.
type profilesResponse struct {
	Profiles []profile.Record `json:"profiles"`
	Total    int              `json:"total"`
	Skip     int              `json:"skip"`
	Limit    int              `json:"limit"`
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	if s.profiles.Count() == 0 {
		writeError(w, http.StatusServiceUnavailable, "No profiles loaded")
		return
	}

	skip, limit := 0, defaultPageLimit
	q := r.URL.Query()
	if raw := q.Get("skip"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "skip must be a non-negative integer")
			return
		}
		skip = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageLimit {
			writeError(w, http.StatusBadRequest,
				"limit must be between 1 and "+strconv.Itoa(maxPageLimit))
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, profilesResponse{
		Profiles: s.profiles.Page(skip, limit),
		Total:    s.profiles.Count(),
		Skip:     skip,
		Limit:    limit,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check()

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status":         report.Status,
		"checks":         report.Checks,
		"profiles_count": report.ProfilesCount,
		"index_ready":    report.IndexReady,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check()

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "Angel Profile Search API",
		"version":         version.Version,
		"profiles_loaded": report.ProfilesCount,
		"index_ready":     report.IndexReady,
	})
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, safeMessage(err, sentinel))
		return true
	}
}

// safeMessage exposes validation details to the client but keeps provider
// internals out of responses.
func safeMessage(err error, sentinel error) string {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) {
		return err.Error()
	}
	return sentinel.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}

func splitCSV(raw string) []any {
	parts := strings.Split(raw, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
