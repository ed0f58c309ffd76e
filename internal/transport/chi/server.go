// Package chi serves the filter gateway over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dracor/internal/domain"
	corpusdomain "github.com/kailas-cloud/dracor/internal/domain/corpus"
	"github.com/kailas-cloud/dracor/internal/domain/filter"
	logpkg "github.com/kailas-cloud/dracor/internal/logger"
	corpusuc "github.com/kailas-cloud/dracor/internal/usecase/corpus"
	healthuc "github.com/kailas-cloud/dracor/internal/usecase/health"
)

// ErrorResponseCode classifies an error response.
type ErrorResponseCode string

// Error response codes.
const (
	ErrorResponseCodeBadRequest     ErrorResponseCode = "bad_request"
	ErrorResponseCodeInvalidFilter  ErrorResponseCode = "invalid_filter"
	ErrorResponseCodeCorpusNotFound ErrorResponseCode = "corpus_not_found"
	ErrorResponseCodeNotFound       ErrorResponseCode = "not_found"
	ErrorResponseCodeUpstreamError  ErrorResponseCode = "upstream_error"
	ErrorResponseCodeInternalError  ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// PlayIDsResponse lists play ids.
type PlayIDsResponse struct {
	Corpus string   `json:"corpus"`
	IDs    []string `json:"ids"`
}

// AuthorsResponse lists authors by play count.
type AuthorsResponse struct {
	Corpus  string                     `json:"corpus"`
	Authors []corpusdomain.AuthorCount `json:"authors"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface over the corpus use case.
type Server struct {
	corpora       *corpusuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(corpora *corpusuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		corpora: corpora,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		configErrorHandler,
		sentinelHandler(domain.ErrCorpusNotFound, http.StatusNotFound, ErrorResponseCodeCorpusNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrBadRequest, http.StatusBadRequest, ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, ErrorResponseCodeUpstreamError),
	}
	return s
}

// ListPlayIDs handles GET /corpora/{corpus}/plays.
func (s *Server) ListPlayIDs(w http.ResponseWriter, r *http.Request, corpus string) {
	ids, err := s.corpora.PlayIDs(r.Context(), corpus)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PlayIDsResponse{Corpus: corpus, IDs: ids})
}

// FilterPlays handles GET /corpora/{corpus}/filter.
func (s *Server) FilterPlays(w http.ResponseWriter, r *http.Request, corpus string, conditions map[string]any) {
	ids, err := s.corpora.Filter(r.Context(), corpus, conditions)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PlayIDsResponse{Corpus: corpus, IDs: ids})
}

// GetSummary handles GET /corpora/{corpus}/summary.
func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request, corpus string) {
	sum, err := s.corpora.Summary(r.Context(), corpus)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ListAuthors handles GET /corpora/{corpus}/authors.
func (s *Server) ListAuthors(w http.ResponseWriter, r *http.Request, corpus string, params ListAuthorsParams) {
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}
	if limit < 0 {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "limit must not be negative")
		return
	}
	authors, err := s.corpora.Authors(r.Context(), corpus, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthorsResponse{Corpus: corpus, Authors: authors})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrCorpusNotFound,
		domain.ErrNotFound,
		domain.ErrBadRequest,
		domain.ErrUpstream,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// configErrorHandler reports rejected filter conditions by name.
func configErrorHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, filter.ErrConfiguration) {
		return false
	}
	msg := filter.ErrConfiguration.Error()
	var ce *filter.ConfigError
	if errors.As(err, &ce) {
		msg = ce.Error()
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeInvalidFilter, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContext(r.Context())
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
