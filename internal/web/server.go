// Package web serves the task list over HTTP: HTML pages for people and a
// small JSON surface for scripts.
package web

import (
	"context"
	"embed"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"task-manager/internal/api"
	"task-manager/internal/config"
	"task-manager/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// shutdownTimeout bounds how long in-flight requests get once the context is cancelled.
const shutdownTimeout = 5 * time.Second

var pages = map[string]*template.Template{
	"tasks":  parsePage("tasks.html"),
	"new":    parsePage("new.html"),
	"select": parsePage("select.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// Server serves the task pages and JSON endpoints.
type Server struct {
	api    api.API
	config *config.Config
	logger *log.Logger
	mux    *http.ServeMux
}

// NewServer builds the routes. A nil cfg uses the defaults, a nil logger discards.
func NewServer(a api.API, cfg *config.Config, logger *log.Logger) *Server {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		api:    a,
		config: cfg,
		logger: logger.WithPrefix("web"),
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/tasks", http.StatusFound)
	})
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.mux.HandleFunc("GET /tasks", s.handleListTasks)
	s.mux.HandleFunc("GET /tasks/new", s.handleNewTask)
	s.mux.HandleFunc("POST /tasks", s.handleCreateTask)
	s.mux.HandleFunc("GET /tasks/complete", s.handleSelect(completeAction))
	s.mux.HandleFunc("POST /tasks/complete", s.handleApply(completeAction))
	s.mux.HandleFunc("GET /tasks/delete", s.handleSelect(deleteAction))
	s.mux.HandleFunc("POST /tasks/delete", s.handleApply(deleteAction))

	s.mux.HandleFunc("GET /api/tasks", s.handleAPITasks)
	s.mux.HandleFunc("GET /api/stats", s.handleAPIStats)
	s.mux.HandleFunc("GET /export", s.handleExport)
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.logger, s.mux)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.config.Server.Addr
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.config.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", server.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
