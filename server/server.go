// Package server exposes the tool registry and dispatcher over HTTP: tool
// calls, resource reads, prompt rendering, the catalog, and the invocation
// history listing.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/petal-labs/anther/tool"
)

// Config configures a Server instance.
type Config struct {
	Dispatcher *tool.Dispatcher
	Scheduler  *tool.HealthScheduler
	History    History
	CORSOrigin string
	MaxBody    int64
	Logger     *slog.Logger
}

// Server is the Anther HTTP API server.
type Server struct {
	dispatcher *tool.Dispatcher
	registry   *tool.Registry
	scheduler  *tool.HealthScheduler
	history    History
	corsOrigin string
	maxBody    int64
	logger     *slog.Logger
}

// New creates a Server with the given configuration. The dispatcher (and
// its registry) is required; everything else has defaults.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	corsOrigin := cfg.CORSOrigin
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	maxBody := cfg.MaxBody
	if maxBody <= 0 {
		maxBody = 1 << 20 // 1 MB default
	}
	return &Server{
		dispatcher: cfg.Dispatcher,
		registry:   cfg.Dispatcher.Registry(),
		scheduler:  cfg.Scheduler,
		history:    cfg.History,
		corsOrigin: corsOrigin,
		maxBody:    maxBody,
		logger:     logger,
	}
}

// Handler returns an http.Handler with all routes and middleware wired.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	var handler http.Handler = mux
	handler = s.corsMiddleware(handler)
	handler = s.maxBodyMiddleware(handler)

	return handler
}

// RegisterRoutes mounts the API routes onto an existing mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /tool/{name}", s.handleToolCall)
	mux.HandleFunc("GET /resource/{uri...}", s.handleResourceRead)
	mux.HandleFunc("POST /prompt/{name}", s.handlePromptRender)
	mux.HandleFunc("GET /api/tools", s.handleListTools)
	mux.HandleFunc("GET /api/tools/{name}", s.handleGetTool)
	mux.HandleFunc("GET /api/tools/{name}/health", s.handleToolHealth)
	mux.HandleFunc("GET /api/invocations", s.handleListInvocations)
}

// --- Middleware ---

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) maxBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
		next.ServeHTTP(w, r)
	})
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// apiError is the wire error envelope: {"error": {"kind", "message"}}.
type apiError struct {
	Error apiErrorBody `json:"error"`
}

type apiErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, apiError{Error: apiErrorBody{Kind: kind, Message: message}})
}

func writeToolError(w http.ResponseWriter, err *tool.Error) {
	writeError(w, tool.HTTPStatus(err.Kind), err.Kind, err.Message)
}

func writeResult(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}
