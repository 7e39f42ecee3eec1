// Package api implements the read-only HTTP surface of the proxy pool
// manager: proxy listing, aggregate stats, task status, health, metrics,
// and bulk export, all served over plain net/http and encoding/json.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"proxypool/internal/apperror"
	"proxypool/internal/export"
	"proxypool/internal/logger"
	"proxypool/internal/metrics"
	"proxypool/internal/scheduler"
	"proxypool/internal/service"
	"proxypool/internal/store"
	"proxypool/internal/telemetry"
)

// Server holds the collaborators the read API needs to answer requests.
type Server struct {
	proxies         *service.ProxyService
	scheduler       *scheduler.Scheduler
	maxProxiesLimit int
	maxExportRows   int
}

// New builds a Server. maxProxiesLimit caps the ?limit= query parameter on
// GET /api/proxies; maxExportRows caps the number of rows any export format
// will render.
func New(proxies *service.ProxyService, sched *scheduler.Scheduler, maxProxiesLimit, maxExportRows int) *Server {
	return &Server{proxies: proxies, scheduler: sched, maxProxiesLimit: maxProxiesLimit, maxExportRows: maxExportRows}
}

// Routes builds the HTTP mux, wrapped in the tracing middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/proxies", s.handleListProxies)
	mux.HandleFunc("GET /api/proxies/export", s.handleExportProxies)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/tasks", s.handleTasks)
	mux.Handle("GET /api/metrics", metrics.Handler())
	return telemetry.HTTPMiddleware(mux)
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error("failed to encode response body", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperror.HTTPStatusFor(err), envelope{Success: false, Error: err.Error()})
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func (s *Server) activeFilter(r *http.Request) store.ActiveFilter {
	q := r.URL.Query()
	return store.ActiveFilter{
		Protocol:  q.Get("protocol"),
		Country:   q.Get("country"),
		Anonymity: q.Get("anonymity"),
	}
}

func (s *Server) limitParam(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > s.maxProxiesLimit {
		return s.maxProxiesLimit
	}
	return n
}

func (s *Server) handleListProxies(w http.ResponseWriter, r *http.Request) {
	limit := s.limitParam(r, s.maxProxiesLimit)
	proxies, err := s.proxies.GetActiveProxies(r.Context(), s.activeFilter(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, proxies)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.proxies.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]string{"status": "ok"})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeData(w, []scheduler.Status{})
		return
	}
	writeData(w, s.scheduler.Status())
}

func (s *Server) handleExportProxies(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	limit := s.maxExportRows
	proxies, err := s.proxies.GetActiveProxies(r.Context(), s.activeFilter(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="proxies.csv"`)
		if err := export.WriteActiveCSV(w, proxies); err != nil {
			logger.Log.Error("csv export failed", "error", err)
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="proxies.xlsx"`)
		if err := export.WriteActiveXLSX(w, proxies); err != nil {
			logger.Log.Error("xlsx export failed", "error", err)
		}
	case "pdf":
		stats, statsErr := s.proxies.Stats(r.Context())
		if statsErr != nil {
			writeError(w, statsErr)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="proxies.pdf"`)
		if err := export.WriteStatsPDF(w, stats, proxies); err != nil {
			logger.Log.Error("pdf export failed", "error", err)
		}
	default:
		writeError(w, apperror.NewWithField(apperror.CodeInvalidArgument, "unsupported export format", "format"))
	}
}
