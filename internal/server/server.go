// Package server exposes classification and the research tools as a JSON
// HTTP API. One research session is shared by every request for the life of
// the process.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/xavjones8/On-Device-Models-Playground/internal/logger"
	"github.com/xavjones8/On-Device-Models-Playground/internal/research"
	"github.com/xavjones8/On-Device-Models-Playground/internal/router"
	"github.com/xavjones8/On-Device-Models-Playground/internal/trace"
)

// Config holds server wiring.
type Config struct {
	Port           int
	TimeoutSeconds int
	Router         *router.Router
	Session        *research.Session
}

// Server is the HTTP face of the playground.
type Server struct {
	mux     *chi.Mux
	server  *http.Server
	router  *router.Router
	session *research.Session
	started time.Time
}

// New creates the server with middleware and routes installed.
func New(cfg Config) *Server {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &Server{
		mux:     chi.NewRouter(),
		router:  cfg.Router,
		session: cfg.Session,
		started: time.Now(),
	}
	s.setupMiddleware(timeout)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.mux,
		ReadTimeout: 15 * time.Second,
		// Must outlast the per-request timeout middleware
		WriteTimeout: timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware(timeout time.Duration) {
	s.mux.Use(middleware.Recoverer)
	s.mux.Use(middleware.RequestID)
	s.mux.Use(middleware.RealIP)
	s.mux.Use(s.loggingMiddleware)
	s.mux.Use(middleware.Timeout(timeout))

	// The playground web UI runs on a separate origin
	s.mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.mux.Get("/health", s.handleHealth)

	s.mux.Route("/api", func(r chi.Router) {
		r.Post("/classify", s.handleClassify)

		r.Route("/research", func(r chi.Router) {
			r.Post("/fetch", s.handleFetch)
			r.Get("/compare", s.handleCompare)
			r.Route("/{ticker}", func(r chi.Router) {
				r.Get("/metrics", s.handleMetrics)
				r.Get("/chart", s.handleChart)
				r.Get("/report", s.handleReport)
			})
		})

		r.Post("/session/reset", s.handleReset)
	})
}

// Handler exposes the routed mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	logger.Info(context.Background(), "Starting HTTP server",
		"addr", s.server.Addr, "session_id", s.session.ID())
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info(ctx, "Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := trace.StartSpan(r.Context(), "http "+r.URL.Path)
		defer span.End()
		r = r.WithContext(ctx)
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(ctx),
		}
		if traceID, spanID, ok := trace.GetTraceFields(ctx); ok {
			fields = append(fields, "trace_id", traceID, "span_id", spanID)
		}
		logger.Info(ctx, "HTTP request", fields...)
	})
}
