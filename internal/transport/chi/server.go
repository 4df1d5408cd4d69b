package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/loader"
	healthuc "github.com/asheesh07/Production-Grade-RAG-System/internal/usecase/health"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/usecase/pipeline"
)

const maxBatchSize = 100

// Error response codes returned to API clients.
const (
	codeBadRequest          = "bad_request"
	codeValidationFailed    = "validation_failed"
	codeUnsupportedDocument = "unsupported_document"
	codeUpstreamError       = "upstream_error"
	codeIngestFailed        = "ingest_failed"
	codeInternalError       = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the ingest and query flows over HTTP.
type Server struct {
	pipeline      *pipeline.Service
	loader        *loader.Loader
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	pipeline *pipeline.Service,
	ldr *loader.Loader,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		pipeline: pipeline,
		loader:   ldr,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnsupportedDocument, http.StatusBadRequest, codeUnsupportedDocument),
		sentinelHandler(domain.ErrInvalidChunking, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeUpstreamError),
		sentinelHandler(domain.ErrRerankFailed, http.StatusBadGateway, codeUpstreamError),
		sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, codeUpstreamError),
		sentinelHandler(domain.ErrIngestFailed, http.StatusInternalServerError, codeIngestFailed),
	}
	return s
}

// Routes mounts all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/query", s.Query)
	r.Post("/api/v1/ingest", s.Ingest)
	r.Post("/api/v1/ingest/batch", s.IngestBatch)
	r.Get("/health", s.HealthCheck)
	r.Get("/health/live", s.Live)
	r.Get("/health/ready", s.Ready)
	r.Get("/metrics", s.Metrics)
}

type queryRequest struct {
	Query string `json:"query"`
}

type sourceItem struct {
	ChunkID     string  `json:"chunk_id"`
	DocID       string  `json:"doc_id"`
	Title       string  `json:"title,omitempty"`
	Text        string  `json:"text"`
	RerankScore float64 `json:"rerank_score"`
}

type queryResponse struct {
	Answer  string       `json:"answer"`
	Cached  bool         `json:"cached"`
	Sources []sourceItem `json:"sources"`
}

// Query handles POST /api/v1/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}

	answer, err := s.pipeline.Query(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	sources := make([]sourceItem, len(answer.Sources))
	for i, src := range answer.Sources {
		sources[i] = sourceItem{
			ChunkID:     src.Chunk.ID,
			DocID:       src.Chunk.DocID,
			Title:       src.Chunk.Title,
			Text:        src.Chunk.Text,
			RerankScore: src.RerankScore,
		}
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Answer:  answer.Text,
		Cached:  answer.Cached,
		Sources: sources,
	})
}

type ingestRequest struct {
	Text     string `json:"text"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
}

type ingestResponse struct {
	DocID   string `json:"doc_id"`
	Chunks  int    `json:"chunks"`
	Indexed int    `json:"indexed"`
}

// Ingest handles POST /api/v1/ingest.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Text == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "text is required")
		return
	}

	doc, err := s.loadDocument(req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	report, err := s.pipeline.Ingest(r.Context(), doc)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ingestResponse{
		DocID:   report.DocID,
		Chunks:  report.Chunks,
		Indexed: report.Indexed,
	})
}

type batchIngestRequest struct {
	Documents []ingestRequest `json:"documents"`
}

type batchIngestItem struct {
	DocID   string `json:"doc_id,omitempty"`
	Chunks  int    `json:"chunks"`
	Indexed int    `json:"indexed"`
	Error   string `json:"error,omitempty"`
}

type batchIngestResponse struct {
	Items     []batchIngestItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// IngestBatch handles POST /api/v1/ingest/batch. A failing document does
// not abort the rest; per-document outcomes come back in items.
func (s *Server) IngestBatch(w http.ResponseWriter, r *http.Request) {
	var req batchIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Documents) == 0 || len(req.Documents) > maxBatchSize {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			"documents count must be between 1 and 100")
		return
	}

	docs := make([]domain.Document, 0, len(req.Documents))
	items := make([]batchIngestItem, len(req.Documents))
	docIdx := make([]int, 0, len(req.Documents))

	for i, item := range req.Documents {
		if item.Text == "" {
			items[i] = batchIngestItem{Error: "text is required"}
			continue
		}
		doc, err := s.loadDocument(item)
		if err != nil {
			items[i] = batchIngestItem{Error: safeDomainMessage(err)}
			continue
		}
		docs = append(docs, doc)
		docIdx = append(docIdx, i)
	}

	reports, errs := s.pipeline.IngestBatch(r.Context(), docs)

	for j, i := range docIdx {
		items[i] = batchIngestItem{
			DocID:   reports[j].DocID,
			Chunks:  reports[j].Chunks,
			Indexed: reports[j].Indexed,
		}
		if errs[j] != nil {
			items[i].Error = safeDomainMessage(errs[j])
		}
	}

	succeeded, failed := 0, 0
	for _, item := range items {
		if item.Error == "" {
			succeeded++
		} else {
			failed++
		}
	}

	writeJSON(w, http.StatusOK, batchIngestResponse{
		Items:     items,
		Succeeded: succeeded,
		Failed:    failed,
	})
}

func (s *Server) loadDocument(req ingestRequest) (domain.Document, error) {
	if req.Filename != "" {
		return s.loader.Load(req.Filename, []byte(req.Text), req.Title)
	}
	return s.loader.LoadText(req.Text, req.Title)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Live handles GET /health/live. Process-up only.
func (s *Server) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	if !s.health.Ready(r.Context()) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnsupportedDocument,
		domain.ErrInvalidChunking,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrRerankFailed,
		domain.ErrGenerationFailed,
		domain.ErrIngestFailed,
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
