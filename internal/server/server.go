package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jamesruggles/scanledger/internal/config"
	"github.com/jamesruggles/scanledger/internal/database"
	"github.com/jamesruggles/scanledger/internal/records"
	"github.com/jamesruggles/scanledger/internal/report"
	"github.com/jamesruggles/scanledger/internal/session"
	"github.com/jamesruggles/scanledger/web"
)

type Server struct {
	cfg       *config.Config
	db        *database.DB
	hub       *Hub
	writer    *records.Writer
	reportGen *report.Generator
	sessions  *session.Manager
	mux       *http.ServeMux
	pages     map[string]*template.Template
}

func New(cfg *config.Config, db *database.DB, store session.Store) (*Server, error) {
	hub := NewHub()

	s := &Server{
		cfg:       cfg,
		db:        db,
		hub:       hub,
		writer:    records.NewWriter(db, hub),
		reportGen: report.NewGenerator(db, cfg.Reports.Directory),
		sessions:  session.NewManager(store, cfg.Session.CookieName),
		mux:       http.NewServeMux(),
		pages:     make(map[string]*template.Template),
	}

	if err := s.loadTemplates(); err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	s.registerRoutes()
	return s, nil
}

var templateFuncs = template.FuncMap{
	"opt": func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	},
}

func (s *Server) loadTemplates() error {
	pageFiles := []string{
		"index.html",
		"artifacts.html",
		"artifact_form.html",
		"artifact_scans.html",
		"scans.html",
		"scan_form.html",
	}

	for _, page := range pageFiles {
		tmpl, err := template.New(page).Funcs(templateFuncs).
			ParseFS(web.Templates, "templates/layout.html", "templates/"+page)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", page, err)
		}
		s.pages[page] = tmpl
	}
	return nil
}

// Handler is the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return recoveryMiddleware(securityHeaders(loggingMiddleware(s.mux)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	staticFS, _ := fs.Sub(web.Static, "static")
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	// Artifacts
	s.mux.HandleFunc("GET /artifacts", s.handleArtifacts)
	s.mux.HandleFunc("GET /artifacts/export", s.handleArtifactsExport)
	s.mux.HandleFunc("GET /artifacts/new", s.handleArtifactNew)
	s.mux.HandleFunc("POST /artifacts/new", s.handleArtifactCreate)
	s.mux.HandleFunc("GET /artifacts/{id}/edit", s.handleArtifactEdit)
	s.mux.HandleFunc("POST /artifacts/{id}/edit", s.handleArtifactUpdate)
	s.mux.HandleFunc("POST /artifacts/{id}/delete", s.handleArtifactDelete)
	s.mux.HandleFunc("GET /artifacts/{id}/scans", s.handleArtifactScans)

	// Scans
	s.mux.HandleFunc("GET /scans", s.handleScans)
	s.mux.HandleFunc("GET /scans/export", s.handleScansExport)
	s.mux.HandleFunc("GET /scans/new", s.handleScanNew)
	s.mux.HandleFunc("POST /scans/new", s.handleScanCreate)
	s.mux.HandleFunc("GET /scans/{id}/edit", s.handleScanEdit)
	s.mux.HandleFunc("POST /scans/{id}/edit", s.handleScanUpdate)
	s.mux.HandleFunc("POST /scans/{id}/delete", s.handleScanDelete)

	// Operations
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
}
