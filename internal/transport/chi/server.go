package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kaveri-labs/grounder/internal/domain"
	"github.com/kaveri-labs/grounder/internal/store"
	askuc "github.com/kaveri-labs/grounder/internal/usecase/ask"
	healthuc "github.com/kaveri-labs/grounder/internal/usecase/health"
	ingestuc "github.com/kaveri-labs/grounder/internal/usecase/ingest"
)

// maxDocumentBytes caps an ingest request body. Large corpora should be
// uploaded in several requests; the chunker makes the split seamless.
const maxDocumentBytes = 8 << 20

type errorCode string

const (
	codeBadRequest              errorCode = "bad_request"
	codeUnauthorized            errorCode = "unauthorized"
	codeValidationFailed        errorCode = "validation_failed"
	codeInvalidTenantID         errorCode = "invalid_tenant_id"
	codeVectorDimMismatch       errorCode = "vector_dim_mismatch"
	codeIndexCorrupted          errorCode = "index_corrupted"
	codeEmbeddingProviderError  errorCode = "embedding_provider_error"
	codeGenerationProviderError errorCode = "generation_provider_error"
	codeInternalError           errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// StatsProvider is the consumer interface for per-tenant index statistics.
type StatsProvider interface {
	Stats(ctx context.Context, tenant string) (store.Stats, error)
}

// Server exposes the tenant knowledge-base API over HTTP.
type Server struct {
	ingest        *ingestuc.Service
	ask           *askuc.Service
	stats         StatsProvider
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest *ingestuc.Service,
	ask *askuc.Service,
	stats StatsProvider,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest: ingest,
		ask:    ask,
		stats:  stats,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidTenantID, http.StatusBadRequest, codeInvalidTenantID),
		sentinelHandler(domain.ErrInvalidChunking, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusConflict, codeVectorDimMismatch),
		sentinelHandler(domain.ErrIndexCorrupted, http.StatusInternalServerError, codeIndexCorrupted),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProviderError),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, codeGenerationProviderError),
	}
	return s
}

// Register mounts the API routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1/tenants/{tenantID}", func(r chi.Router) {
		r.Post("/documents", s.IngestDocument)
		r.Delete("/documents", s.ClearDocuments)
		r.Post("/ask", s.Ask)
		r.Get("/stats", s.TenantStats)
	})
}

type ingestRequest struct {
	Text string `json:"text"`
}

type ingestResponse struct {
	ChunksAdded int `json:"chunks_added"`
	TotalChunks int `json:"total_chunks"`
	Tokens      int `json:"tokens,omitempty"`
}

// IngestDocument handles POST /v1/tenants/{tenantID}/documents.
func (s *Server) IngestDocument(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenantID")

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "text is required")
		return
	}

	res, err := s.ingest.Ingest(r.Context(), tenant, req.Text)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := ingestResponse{ChunksAdded: res.Chunks, TotalChunks: res.Chunks, Tokens: res.Tokens}
	if st, err := s.stats.Stats(r.Context(), tenant); err == nil {
		resp.TotalChunks = st.Chunks
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ClearDocuments handles DELETE /v1/tenants/{tenantID}/documents.
// Clearing a tenant that has no data is a no-op.
func (s *Server) ClearDocuments(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenantID")

	if err := s.ingest.Clear(r.Context(), tenant); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type askResponse struct {
	Answer          string      `json:"answer"`
	SimilarityScore float64     `json:"similarity_score"`
	ModelConfidence float64     `json:"model_confidence"`
	Chunks          []chunkItem `json:"chunks"`
}

type chunkItem struct {
	Text     string  `json:"text"`
	Distance float32 `json:"distance"`
}

// Ask handles POST /v1/tenants/{tenantID}/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenantID")

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "question is required")
		return
	}
	if req.TopK < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "top_k must not be negative")
		return
	}

	result, err := s.ask.Ask(r.Context(), tenant, req.Question, req.TopK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	chunks := make([]chunkItem, len(result.Chunks))
	for i, c := range result.Chunks {
		chunks[i] = chunkItem{Text: c.Text, Distance: c.Distance}
	}

	writeJSON(w, http.StatusOK, askResponse{
		Answer:          result.Answer,
		SimilarityScore: result.SimilarityScore,
		ModelConfidence: result.ModelConfidence,
		Chunks:          chunks,
	})
}

type statsResponse struct {
	Exists    bool `json:"exists"`
	Chunks    int  `json:"chunks"`
	Dimension int  `json:"dimension"`
}

// TenantStats handles GET /v1/tenants/{tenantID}/stats.
func (s *Server) TenantStats(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenantID")

	st, err := s.stats.Stats(r.Context(), tenant)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Exists:    st.Exists,
		Chunks:    st.Chunks,
		Dimension: st.Dimension,
	})
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
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
	sentinels := []error{
		domain.ErrInvalidTenantID,
		domain.ErrInvalidChunking,
		domain.ErrVectorDimMismatch,
		domain.ErrIndexCorrupted,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
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
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
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
