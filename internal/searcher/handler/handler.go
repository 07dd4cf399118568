package handler

import (
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/parallel"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/middleware"
)

type SearchEngine interface {
	AddDocument(id int, text string, status index.DocumentStatus, ratings []int) error
	FindTopDocumentsPolicy(policy parallel.Policy, raw string, predicate ranker.Predicate) ([]ranker.Document, error)
	MatchDocumentPolicy(policy parallel.Policy, raw string, id int) ([]string, index.DocumentStatus, error)
	RemoveDocumentPolicy(policy parallel.Policy, id int) bool
	GetDocumentCount() int
	DocumentIDs() iter.Seq[int]
	WordFrequencies(id int) map[string]float64
	ProcessQueries(queries []string) ([][]ranker.Document, error)
	ProcessQueriesJoined(queries []string) ([]ranker.Document, error)
}

type SearchResponse struct {
	Query   string            `json:"query"`
	Mode    string            `json:"mode"`
	Status  string            `json:"status"`
	Results []ranker.Document `json:"results"`
}

type BatchRequest struct {
	Queries []string `json:"queries"`
	Joined  bool     `json:"joined"`
}

type AddDocumentRequest struct {
	ID      int                  `json:"id"`
	Text    string               `json:"text"`
	Status  index.DocumentStatus `json:"status"`
	Ratings []int                `json:"ratings"`
}

type MatchResponse struct {
	DocumentID int                  `json:"document_id"`
	Terms      []string             `json:"terms"`
	Status     index.DocumentStatus `json:"status"`
}

type Handler struct {
	engine      SearchEngine
	aggregator  *analytics.Aggregator
	metrics     *metrics.Metrics
	defaultMode parallel.Policy
	batchLimit  int
	logger      *slog.Logger
}

// New creates the API handler. m may be nil to disable instrumentation.
func New(engine SearchEngine, aggregator *analytics.Aggregator, m *metrics.Metrics, defaultMode parallel.Policy, batchLimit int) *Handler {
	return &Handler{
		engine:      engine,
		aggregator:  aggregator,
		metrics:     m,
		defaultMode: defaultMode,
		batchLimit:  batchLimit,
		logger:      slog.Default().With("component", "search-handler"),
	}
}

// Register mounts every API route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/search/batch", h.Batch)
	mux.HandleFunc("GET /api/v1/documents", h.ListDocuments)
	mux.HandleFunc("POST /api/v1/documents", h.AddDocument)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.RemoveDocument)
	mux.HandleFunc("GET /api/v1/documents/{id}/match", h.MatchDocument)
	mux.HandleFunc("GET /api/v1/documents/{id}/frequencies", h.WordFrequencies)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	params := r.URL.Query()
	if !params.Has("q") {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	query := params.Get("q")
	mode, ok := h.mode(w, r)
	if !ok {
		return
	}
	status, err := index.ParseStatus(params.Get("status"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	docs, err := h.engine.FindTopDocumentsPolicy(mode, query, ranker.ByStatus(status))
	latency := time.Since(start)
	event := analytics.SearchEvent{
		Query:     query,
		Mode:      mode.String(),
		Returned:  len(docs),
		LatencyMs: latency.Milliseconds(),
		Failed:    err != nil,
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(ctx),
	}
	if h.aggregator != nil {
		h.aggregator.Track(event)
	}
	if err != nil {
		h.observeSearch("error", mode, latency, 0)
		log.Warn("search rejected", "query", query, "error", err)
		h.writeAppError(w, err)
		return
	}
	if h.aggregator != nil {
		h.aggregator.Queue().Record(docs)
	}
	resultType := "hit"
	if len(docs) == 0 {
		resultType = "zero_result"
	}
	h.observeSearch(resultType, mode, latency, len(docs))

	log.Info("search completed",
		"query", query,
		"mode", mode,
		"status", status,
		"returned", len(docs),
		"latency_ms", latency.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, SearchResponse{
		Query:   query,
		Mode:    mode.String(),
		Status:  status.String(),
		Results: docs,
	})
}

func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if h.batchLimit > 0 && len(req.Queries) > h.batchLimit {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d queries per batch", h.batchLimit))
		return
	}
	if req.Joined {
		docs, err := h.engine.ProcessQueriesJoined(req.Queries)
		if err != nil {
			h.writeAppError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]any{"results": docs})
		return
	}
	perQuery, err := h.engine.ProcessQueries(req.Queries)
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"results": perQuery})
}

func (h *Handler) AddDocument(w http.ResponseWriter, r *http.Request) {
	var req AddDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.engine.AddDocument(req.ID, req.Text, req.Status, req.Ratings); err != nil {
		if h.metrics != nil {
			h.metrics.DocsRejectedTotal.Inc()
		}
		h.writeAppError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.DocsIndexedTotal.Inc()
		h.metrics.IndexDocumentCount.Set(float64(h.engine.GetDocumentCount()))
	}
	logger.FromContext(r.Context()).Info("document added", "doc_id", req.ID, "status", req.Status)
	h.writeJSON(w, http.StatusCreated, map[string]any{"id": req.ID, "status": req.Status})
}

func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	mode, ok := h.mode(w, r)
	if !ok {
		return
	}
	removed := h.engine.RemoveDocumentPolicy(mode, id)
	if h.metrics != nil && removed {
		h.metrics.DocsRemovedTotal.WithLabelValues(mode.String()).Inc()
		h.metrics.IndexDocumentCount.Set(float64(h.engine.GetDocumentCount()))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"id": id, "removed": removed})
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids := slices.Collect(h.engine.DocumentIDs())
	h.writeJSON(w, http.StatusOK, map[string]any{
		"count": len(ids),
		"ids":   ids,
	})
}

func (h *Handler) MatchDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	mode, ok := h.mode(w, r)
	if !ok {
		return
	}
	terms, status, err := h.engine.MatchDocumentPolicy(mode, r.URL.Query().Get("q"), id)
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, MatchResponse{DocumentID: id, Terms: terms, Status: status})
}

func (h *Handler) WordFrequencies(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"document_id": id,
		"frequencies": h.engine.WordFrequencies(id),
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.aggregator == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	h.writeJSON(w, http.StatusOK, h.aggregator.Stats())
}

func (h *Handler) observeSearch(resultType string, mode parallel.Policy, latency time.Duration, returned int) {
	if h.metrics == nil {
		return
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	if resultType == "error" {
		return
	}
	h.metrics.SearchLatency.WithLabelValues(mode.String()).Observe(latency.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(returned))
}

func (h *Handler) mode(w http.ResponseWriter, r *http.Request) (parallel.Policy, bool) {
	raw := r.URL.Query().Get("mode")
	if raw == "" {
		return h.defaultMode, true
	}
	mode, err := parallel.ParsePolicy(raw)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return mode, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "document id must be an integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
