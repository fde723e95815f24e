package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raphaelgruber/ordermatters/internal/live"
	"github.com/raphaelgruber/ordermatters/internal/service"
)

// HTTPOptions wires the HTTP routes.
type HTTPOptions struct {
	Engine   *service.Engine
	Sessions *service.SessionManager
	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
	// MCP is mounted on /mcp when set.
	MCP    *Server
	Logger *slog.Logger
}

// NewHTTPHandler builds the server routes:
//
//	/ws       live sessions
//	/results  reference dataset
//	/stats    runtime statistics
//	/metrics  prometheus exposition
//	/mcp      MCP over streamable HTTP
//	/health   liveness
func NewHTTPHandler(opts HTTPOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", live.NewHandler(opts.Sessions, logger))

	mux.HandleFunc("GET /results", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, opts.Engine.Dataset())
	})

	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		c := opts.Engine.Metrics()
		if c == nil {
			http.Error(w, "metrics disabled", http.StatusNotFound)
			return
		}
		writeJSON(w, logger, c.Snapshot())
	})

	if opts.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if opts.MCP != nil {
		mux.Handle("/mcp", opts.MCP.StreamableHandler())
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	return RequestLogger(logger)(mux)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", "error", err)
	}
}
