package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jamesruggles/scanledger/internal/database"
	"github.com/jamesruggles/scanledger/internal/filters"
	"github.com/jamesruggles/scanledger/internal/records"
	"github.com/jamesruggles/scanledger/internal/session"
)

type pageData struct {
	ActivePage string
	Flashes    []session.Flash

	Stats *database.Stats

	ArtifactFilters filters.ArtifactFilters
	ScanFilters     filters.ScanFilters
	Artifacts       []database.Artifact
	Scans           []database.ScanRow

	// Form and detail pages.
	Action        string
	Artifact      *database.Artifact
	ArtifactScans []database.Scan
	Scan          *database.Scan
	Options       []database.ArtifactOption
}

func (s *Server) renderPage(w http.ResponseWriter, page string, data pageData) {
	tmpl, ok := s.pages[page]
	if !ok {
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		slog.Error("template render error", "page", page, "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// flashes takes the queued notices and persists their removal.
func (s *Server) flashes(r *http.Request, sess *session.Session) []session.Flash {
	f := sess.Data.TakeFlashes()
	if len(f) > 0 {
		s.sessions.Save(r.Context(), sess)
	}
	return f
}

// redirectWithFlash queues a notice and sends the browser to target.
func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, sess *session.Session, category, msg, target string) {
	sess.Data.AddFlash(category, msg)
	s.sessions.Save(r.Context(), sess)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// writeFailed reports a failed write as an error notice on the listing page.
func (s *Server) writeFailed(w http.ResponseWriter, r *http.Request, sess *session.Session, noun string, id int64, err error, target string) {
	var msg string
	var ie *records.InputError
	var ce *database.ConstraintError
	switch {
	case errors.As(err, &ie):
		msg = "Invalid input: " + ie.Error()
	case errors.As(err, &ce):
		msg = "Database constraint violated: " + ce.Error()
	case errors.Is(err, database.ErrNotFound):
		msg = fmt.Sprintf("%s %d not found", noun, id)
	default:
		slog.Error("write failed", "record", noun, "id", id, "error", err)
		msg = "Unexpected error saving " + noun
	}
	s.redirectWithFlash(w, r, sess, "error", msg, target)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Load(w, r)
	stats, err := s.db.GetStats(r.Context())
	if err != nil {
		slog.Error("loading stats", "error", err)
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}
	s.renderPage(w, "index.html", pageData{
		ActivePage: "index",
		Flashes:    s.flashes(r, sess),
		Stats:      stats,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
