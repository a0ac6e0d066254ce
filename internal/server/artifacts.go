package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jamesruggles/scanledger/internal/database"
	"github.com/jamesruggles/scanledger/internal/filters"
)

const artifactsPath = "/artifacts"

func (s *Server) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Load(w, r)
	res := filters.Resolve(r.URL.Query(), sess.Data.ArtifactFilters, filters.ParseArtifacts)
	if res.Changed {
		sess.Data.ArtifactFilters = res.Next
		s.sessions.Save(r.Context(), sess)
	}
	if res.Cleared {
		http.Redirect(w, r, artifactsPath, http.StatusSeeOther)
		return
	}

	rows, err := s.db.ListArtifacts(r.Context(), res.Active)
	if err != nil {
		slog.Error("listing artifacts", "error", err)
		http.Error(w, "failed to list artifacts", http.StatusInternalServerError)
		return
	}
	s.renderPage(w, "artifacts.html", pageData{
		ActivePage:      "artifacts",
		Flashes:         s.flashes(r, sess),
		ArtifactFilters: res.Active,
		Artifacts:       rows,
	})
}

// handleArtifactsExport exports the rows the listing currently shows, using
// the filters stored for the session.
func (s *Server) handleArtifactsExport(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Load(w, r)
	var f filters.ArtifactFilters
	if sess.Data.ArtifactFilters != nil {
		f = *sess.Data.ArtifactFilters
	}

	sheet, err := s.reportGen.Artifacts(r.Context(), f)
	if err != nil {
		slog.Error("exporting artifacts", "error", err)
		http.Error(w, "failed to export artifacts", http.StatusInternalServerError)
		return
	}
	s.sendExport(w, r, sheet)
}

func (s *Server) handleArtifactNew(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Load(w, r)
	s.renderPage(w, "artifact_form.html", pageData{
		ActivePage: "artifacts",
		Flashes:    s.flashes(r, sess),
		Action:     "/artifacts/new",
		Artifact:   &database.Artifact{},
	})
}

func (s *Server) handleArtifactCreate(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Load(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	id, err := s.writer.CreateArtifact(r.Context(), r.PostForm)
	if err != nil {
		s.writeFailed(w, r, sess, "Artifact", 0, err, artifactsPath)
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Artifact "+strconv.FormatInt(id, 10)+" created", artifactsPath)
}

func (s *Server) handleArtifactEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess := s.sessions.Load(w, r)

	a, err := s.db.GetArtifact(r.Context(), id)
	if err != nil {
		s.writeFailed(w, r, sess, "Artifact", id, err, artifactsPath)
		return
	}
	s.renderPage(w, "artifact_form.html", pageData{
		ActivePage: "artifacts",
		Flashes:    s.flashes(r, sess),
		Action:     "/artifacts/" + strconv.FormatInt(id, 10) + "/edit",
		Artifact:   a,
	})
}

func (s *Server) handleArtifactUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess := s.sessions.Load(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if err := s.writer.UpdateArtifact(r.Context(), id, r.PostForm); err != nil {
		s.writeFailed(w, r, sess, "Artifact", id, err, artifactsPath)
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Artifact "+strconv.FormatInt(id, 10)+" updated", artifactsPath)
}

func (s *Server) handleArtifactDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess := s.sessions.Load(w, r)

	if err := s.writer.SoftDeleteArtifact(r.Context(), id); err != nil {
		s.writeFailed(w, r, sess, "Artifact", id, err, artifactsPath)
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Artifact "+strconv.FormatInt(id, 10)+" deleted", artifactsPath)
}

func (s *Server) handleArtifactScans(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess := s.sessions.Load(w, r)

	a, err := s.db.GetArtifact(r.Context(), id)
	if err != nil {
		s.writeFailed(w, r, sess, "Artifact", id, err, artifactsPath)
		return
	}
	scans, err := s.db.ListScansByArtifact(r.Context(), id)
	if err != nil {
		slog.Error("listing artifact scans", "artifact", id, "error", err)
		http.Error(w, "failed to list scans", http.StatusInternalServerError)
		return
	}
	s.renderPage(w, "artifact_scans.html", pageData{
		ActivePage:    "artifacts",
		Flashes:       s.flashes(r, sess),
		Artifact:      a,
		ArtifactScans: scans,
	})
}
