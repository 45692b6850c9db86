package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/heritage/internal/domain"
	domitem "github.com/kailas-cloud/heritage/internal/domain/item"
	logpkg "github.com/kailas-cloud/heritage/internal/logger"
	healthuc "github.com/kailas-cloud/heritage/internal/usecase/health"
	"github.com/kailas-cloud/heritage/internal/version"
)

// maxBodyBytes bounds request bodies; descriptions are capped well below it.
const maxBodyBytes = 1 << 20

const welcomeMessage = "Welcome to the Cultural Heritage Extinction Risk API"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, r *http.Request, err error) bool

// Server serves the risk and item API.
type Server struct {
	risk          RiskScorer
	items         ItemService
	health        HealthReporter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	risk RiskScorer,
	items ItemService,
	health HealthReporter,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		risk:   risk,
		items:  items,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		s.dimensionMismatchHandler,
		dependencyTimeoutHandler,
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, codeEmbeddingProviderError),
		sentinelHandler(domain.ErrDependency, http.StatusBadGateway, codeDependencyFailure),
	}
	return s
}

// Welcome handles GET /.
func (s *Server) Welcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, welcomeResponse{
		Message: welcomeMessage,
		Version: version.Version,
	})
}

// ScoreRisk handles POST /api/v1/risk/score.
func (s *Server) ScoreRisk(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.risk.Score(r.Context(), req.Text, req.Language)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, riskToResponse(res))
}

// CreateItem handles POST /api/v1/items.
func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	it, err := s.items.Create(r.Context(), req.toDraft())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/items/"+it.ID())
	writeJSON(w, http.StatusCreated, itemToResponse(&it))
}

// ListItems handles GET /api/v1/items.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	var (
		category *string
		limit    *int
	)
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "category", q, &category); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid format for parameter category")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid format for parameter limit")
		return
	}
	if limit != nil && *limit < 1 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be positive")
		return
	}

	var f domitem.Filter
	if category != nil {
		f.Category = *category
	}
	if limit != nil {
		f.Limit = *limit
	}

	list, err := s.items.List(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out := make([]itemResponse, len(list))
	for i := range list {
		out[i] = itemToResponse(&list[i])
	}
	writeJSON(w, http.StatusOK, itemListResponse{Items: out, Count: len(out)})
}

// GetItem handles GET /api/v1/items/{id}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := bindItemID(w, r)
	if !ok {
		return
	}

	it, err := s.items.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToResponse(&it))
}

// UpdateItem handles PUT /api/v1/items/{id}.
func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := bindItemID(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	it, err := s.items.Update(r.Context(), id, req.toDraft())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToResponse(&it))
}

// DeleteItem handles DELETE /api/v1/items/{id}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := bindItemID(w, r)
	if !ok {
		return
	}

	if err := s.items.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func bindItemID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid format for parameter id")
		return "", false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeBadRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var de *domain.DependencyError
	if errors.As(err, &de) {
		return fmt.Sprintf("%s: %s %s", domain.ErrDependency, de.Dependency, de.Kind)
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrDimensionMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrDependency,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, _ *http.Request, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

// validationHandler reports input errors verbatim; they are built from client data.
func validationHandler(w http.ResponseWriter, _ *http.Request, err error) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
	return true
}

func dependencyTimeoutHandler(w http.ResponseWriter, _ *http.Request, err error) bool {
	var de *domain.DependencyError
	if !errors.As(err, &de) || de.Kind != domain.DependencyTimeout {
		return false
	}
	writeError(w, http.StatusGatewayTimeout, codeDependencyTimeout, safeDomainMessage(err))
	return true
}

// dimensionMismatchHandler treats a mixed-dimension corpus as fatal for the request.
func (s *Server) dimensionMismatchHandler(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		return false
	}
	s.requestLogger(r).Error("embedding dimension mismatch", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeDimensionMismatch, domain.ErrDimensionMismatch.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, r, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// requestLogger prefers the per-request logger set by the wide-event middleware.
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if l := logpkg.FromContext(r.Context()); l.Core().Enabled(zap.ErrorLevel) {
		return l
	}
	return s.logger
}
