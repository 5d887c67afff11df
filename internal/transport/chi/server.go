// Package chi wires the HTTP API: routing, bearer auth, error mapping
// and JSON rendering for the search and browse services.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/recdex/recdex/internal/domain"
	browseuc "github.com/recdex/recdex/internal/usecase/browse"
	healthuc "github.com/recdex/recdex/internal/usecase/health"
	searchuc "github.com/recdex/recdex/internal/usecase/search"
)

// Error codes returned in JSON error bodies.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeNotFound          = "not_found"
	codeSearchTimeout     = "search_timeout"
	codeSearchUnavailable = "search_unavailable"
	codeInternalError     = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the records API.
type Server struct {
	search        *searchuc.Service
	browse        *browseuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	browse *browseuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		browse: browse,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrInvalidID, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrSearchTimeout, http.StatusGatewayTimeout, codeSearchTimeout),
		sentinelHandler(domain.ErrSearchUnavailable, http.StatusBadGateway, codeSearchUnavailable),
	}
	return s
}

// Routes mounts the API under /api/v1 with auth on everything except
// health and metrics.
func (s *Server) Routes(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.SearchSummary)
		r.Get("/search/bodies/{bodyID}", s.SearchBody)

		r.Get("/browse", s.Browse)
		r.Get("/browse/bodies/{bodyID}", s.BrowseBody)
		r.Get("/browse/series/{seriesID}", s.BrowseSeries)
		r.Get("/browse/consignments/{consignmentID}", s.BrowseConsignment)

		r.Get("/records/{recordID}", s.GetRecord)
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// SearchSummary handles GET /api/v1/search.
func (s *Server) SearchSummary(w http.ResponseWriter, r *http.Request) {
	out, err := s.search.Summary(r.Context(), searchParams(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// SearchBody handles GET /api/v1/search/bodies/{bodyID}.
func (s *Server) SearchBody(w http.ResponseWriter, r *http.Request) {
	bodyID, err := pathID(r, "bodyID")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out, err := s.search.Body(r.Context(), bodyID, searchParams(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Browse handles GET /api/v1/browse.
func (s *Server) Browse(w http.ResponseWriter, r *http.Request) {
	out, err := s.browse.All(r.Context(), browseParams(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// BrowseBody handles GET /api/v1/browse/bodies/{bodyID}.
func (s *Server) BrowseBody(w http.ResponseWriter, r *http.Request) {
	bodyID, err := pathID(r, "bodyID")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out, err := s.browse.ForBody(r.Context(), bodyID, browseParams(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// BrowseSeries handles GET /api/v1/browse/series/{seriesID}.
func (s *Server) BrowseSeries(w http.ResponseWriter, r *http.Request) {
	seriesID, err := pathID(r, "seriesID")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out, err := s.browse.ForSeries(r.Context(), seriesID, browseParams(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// BrowseConsignment handles GET /api/v1/browse/consignments/{consignmentID}.
func (s *Server) BrowseConsignment(w http.ResponseWriter, r *http.Request) {
	consignmentID, err := pathID(r, "consignmentID")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out, err := s.browse.Files(r.Context(), consignmentID, browseParams(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetRecord handles GET /api/v1/records/{recordID}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	recordID, err := pathID(r, "recordID")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	source, err := s.search.Record(r.Context(), recordID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": source})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// pathID pulls a UUID path parameter. Malformed ids become
// domain.ErrInvalidID before any backend is touched.
func pathID(r *http.Request, name string) (string, error) {
	id := chi.URLParam(r, name)
	if _, err := uuid.Parse(id); err != nil {
		return "", domain.ErrInvalidID
	}
	return id, nil
}

func searchParams(r *http.Request) searchuc.Params {
	q := r.URL.Query()
	return searchuc.Params{
		Query:   q.Get("query"),
		Area:    q.Get("search_area"),
		Sort:    q.Get("sort"),
		Page:    intParam(q.Get("page"), 1),
		PerPage: intParam(q.Get("per_page"), 0),
	}
}

func browseParams(r *http.Request) browseuc.Params {
	q := r.URL.Query()
	return browseuc.Params{
		Values:  q,
		Page:    intParam(q.Get("page"), 1),
		PerPage: intParam(q.Get("per_page"), 0),
	}
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// safeDomainMessage returns a sentinel error message for the client
// without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidID,
		domain.ErrSearchTimeout,
		domain.ErrSearchUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler renders rejected date-range input as a field-keyed
// 400 so the form can redisplay.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	var verr *browseuc.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"code":   codeValidationFailed,
		"errors": verr.Errors,
		"fields": verr.Fields,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
