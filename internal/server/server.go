// Package server exposes canvas sessions over HTTP for the browser toolbar.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ha1tch/deluxecanvas/internal/config"
	"github.com/ha1tch/deluxecanvas/internal/editor"
)

//go:embed static
var staticFiles embed.FS

// Server routes toolbar actions to per-session editors.
type Server struct {
	cfg      *config.Config
	sessions *Registry
	logger   *slog.Logger
	router   chi.Router
}

// New builds the router. Sessions get editors configured from cfg.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, logger: logger}
	s.sessions = NewRegistry(func(id string) (*editor.Editor, error) {
		return editor.New(cfg.Editor(logger.With("session", id)))
	}, cfg.SessionIdleTimeout, logger)
	s.router = s.routes()
	return s
}

// Sessions exposes the registry, mainly for tests and shutdown.
func (s *Server) Sessions() *Registry { return s.sessions }

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, static, "index.html")
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDelete)

			r.Group(func(r chi.Router) {
				r.Use(s.withEditor)
				r.Get("/", s.handleState)
				r.Post("/shapes/{kind}", s.handleShape)
				r.Post("/text", s.handleText)
				r.Post("/images", s.handleImage)
				r.Post("/strokes", s.handleStroke)
				r.Post("/clear", s.handleClear)
				r.Post("/undo", s.handleUndo)
				r.Post("/mode/{tool}", s.handleMode)
				r.Put("/brush", s.handleBrush)
				r.Get("/canvas.png", s.handleDownload)
				r.Get("/preview.png", s.handlePreview)
			})
		})
	})
	return r
}

// requestLogger logs one line per request with slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// Run serves on cfg.Listen until ctx is cancelled, then shuts down and
// releases every session.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	reapCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go s.sessions.Run(reapCtx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("canvasd listening", "addr", s.cfg.Listen)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.sessions.CloseAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.sessions.CloseAll()
	s.logger.Info("canvasd stopped")
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
