// Package server exposes the search engine over HTTP. It owns the JSON
// adapter layer: request decoding with positional error diagnostics,
// response encoding, and the exclusive-access discipline the engine
// requires.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kgoto/aliasearch/internal/engine"
	"github.com/kgoto/aliasearch/pkg/logger"
	"github.com/kgoto/aliasearch/pkg/metrics"
)

// maxSnapshotBytes caps the accepted snapshot upload size.
const maxSnapshotBytes = 64 << 20

type Handler struct {
	store        *Store
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

func NewHandler(store *Store, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		store:        store,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "http-handler"),
	}
}

type bulkRequest struct {
	Documents []engine.Document `json:"documents"`
}

type aliasesRequest struct {
	Aliases []string `json:"aliases"`
}

type searchResponse struct {
	Query    []string `json:"query"`
	Limit    int      `json:"limit"`
	Results  []string `json:"results"`
	CacheHit bool     `json:"cache_hit"`
	TookMS   float64  `json:"took_ms"`
}

// Search answers GET /api/v1/search. Repeated q parameters form the term
// list; a single q containing a space runs the AND-search path.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	terms := r.URL.Query()["q"]
	if len(terms) == 0 {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	names, cacheHit, err := h.store.Search(ctx, terms, limit)
	if err != nil {
		log.Error("search failed", "terms", terms, "error", err)
		h.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	took := time.Since(start)
	if h.metrics != nil {
		kind := "ranked"
		if len(terms) == 1 && strings.ContainsRune(terms[0], ' ') {
			kind = "and"
		}
		h.metrics.SearchesTotal.WithLabelValues(kind).Inc()
		h.metrics.SearchLatency.Observe(took.Seconds())
		h.metrics.SearchResultsCount.Observe(float64(len(names)))
	}
	log.Debug("search served", "terms", terms, "hits", len(names), "cache_hit", cacheHit, "took", took)

	h.writeJSON(w, http.StatusOK, searchResponse{
		Query:    terms,
		Limit:    limit,
		Results:  names,
		CacheHit: cacheHit,
		TookMS:   float64(took.Microseconds()) / 1000,
	})
}

// BulkLoad answers POST /api/v1/documents with {"documents":[{name,aliases}]}.
// Parsing happens before any mutation, so a malformed payload leaves the
// store untouched.
func (h *Handler) BulkLoad(w http.ResponseWriter, r *http.Request) {
	docs, ok := h.readBulk(w, r)
	if !ok {
		return
	}
	h.store.AddMany(r.Context(), docs)
	h.writeJSON(w, http.StatusOK, map[string]int{"indexed": len(docs), "total": h.store.Len()})
}

// ReplaceAll answers PUT /api/v1/documents, swapping the whole corpus.
func (h *Handler) ReplaceAll(w http.ResponseWriter, r *http.Request) {
	docs, ok := h.readBulk(w, r)
	if !ok {
		return
	}
	h.store.ReplaceAll(r.Context(), docs)
	h.writeJSON(w, http.StatusOK, map[string]int{"indexed": len(docs), "total": h.store.Len()})
}

// AddDocument answers POST /api/v1/documents/{name} with an alias list body.
func (h *Handler) AddDocument(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	aliases, ok := h.readAliases(w, r)
	if !ok {
		return
	}
	h.store.Add(r.Context(), name, aliases)
	h.writeJSON(w, http.StatusOK, map[string]string{"name": name, "status": "indexed"})
}

// UpdateDocument answers PUT /api/v1/documents/{name}. Unknown names answer
// 404; that is an outcome, not a server failure.
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	aliases, ok := h.readAliases(w, r)
	if !ok {
		return
	}
	if !h.store.Update(r.Context(), name, aliases) {
		h.writeError(w, http.StatusNotFound, "document not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"name": name, "status": "updated"})
}

// RemoveDocument answers DELETE /api/v1/documents/{name}.
func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !h.store.Remove(r.Context(), name) {
		h.writeError(w, http.StatusNotFound, "document not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"name": name, "status": "removed"})
}

// ClearDocuments answers DELETE /api/v1/documents.
func (h *Handler) ClearDocuments(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(r.Context())
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// DumpSnapshot answers GET /api/v1/snapshot with the versioned binary dump.
func (h *Handler) DumpSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.Dump()
	if err != nil {
		h.logger.Error("snapshot dump failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "snapshot dump failed")
		return
	}
	if h.metrics != nil {
		h.metrics.SnapshotBytes.Set(float64(len(data)))
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// LoadSnapshot answers PUT /api/v1/snapshot with a current-or-legacy buffer.
func (h *Handler) LoadSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "reading snapshot body failed")
		return
	}
	if err := h.store.Load(r.Context(), data); err != nil {
		if h.metrics != nil {
			h.metrics.SnapshotLoadsTotal.WithLabelValues("error").Inc()
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.metrics != nil {
		h.metrics.SnapshotLoadsTotal.WithLabelValues("ok").Inc()
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"documents": h.store.Len()})
}

// CacheStats answers GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	hits, misses, enabled := h.store.CacheStats()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"enabled": enabled,
		"hits":    hits,
		"misses":  misses,
	})
}

func (h *Handler) readBulk(w http.ResponseWriter, r *http.Request) ([]engine.Document, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "reading request body failed")
		return nil, false
	}
	var req bulkRequest
	if err := decodeJSON(body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	for _, doc := range req.Documents {
		if doc.Name == "" {
			h.writeError(w, http.StatusBadRequest, "every document needs a non-empty name")
			return nil, false
		}
	}
	return req.Documents, true
}

// readAliases accepts either a bare JSON array of strings or an object with
// an "aliases" field.
func (h *Handler) readAliases(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "reading request body failed")
		return nil, false
	}
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var aliases []string
		if err := decodeJSON(body, &aliases); err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		return aliases, true
	}
	var req aliasesRequest
	if err := decodeJSON(body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return req.Aliases, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response failed", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
