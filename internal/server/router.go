package server

import (
	"net/http"
	"time"

	"github.com/kgoto/aliasearch/pkg/health"
	"github.com/kgoto/aliasearch/pkg/metrics"
	"github.com/kgoto/aliasearch/pkg/middleware"
)

// NewRouter builds the service HTTP handler.
//
// Route table:
//
//	GET    /api/v1/search               → ranked / AND search
//	POST   /api/v1/documents            → bulk load
//	PUT    /api/v1/documents            → replace all
//	DELETE /api/v1/documents            → clear
//	POST   /api/v1/documents/{name}     → add one
//	PUT    /api/v1/documents/{name}     → update aliases (404 when absent)
//	DELETE /api/v1/documents/{name}     → remove (404 when absent)
//	GET    /api/v1/snapshot             → versioned binary dump
//	PUT    /api/v1/snapshot             → load current-or-legacy snapshot
//	GET    /api/v1/cache/stats          → query-cache counters
//	GET    /health/live, /health/ready  → probes
//
// Middleware chain (outermost first): RequestID → Metrics → Timeout.
func NewRouter(h *Handler, checker *health.Checker, m *metrics.Metrics, timeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/search", h.Search)

	mux.HandleFunc("POST /api/v1/documents", h.BulkLoad)
	mux.HandleFunc("PUT /api/v1/documents", h.ReplaceAll)
	mux.HandleFunc("DELETE /api/v1/documents", h.ClearDocuments)
	mux.HandleFunc("POST /api/v1/documents/{name}", h.AddDocument)
	mux.HandleFunc("PUT /api/v1/documents/{name}", h.UpdateDocument)
	mux.HandleFunc("DELETE /api/v1/documents/{name}", h.RemoveDocument)

	mux.HandleFunc("GET /api/v1/snapshot", h.DumpSnapshot)
	mux.HandleFunc("PUT /api/v1/snapshot", h.LoadSnapshot)

	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)

	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if timeout > 0 {
		chain = middleware.Timeout(timeout)(chain)
	}
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)
	return chain
}
