package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jamesruggles/scanledger/internal/database"
	"github.com/jamesruggles/scanledger/internal/filters"
)

const scansPath = "/scans"

func (s *Server) handleScans(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Load(w, r)
	res := filters.Resolve(r.URL.Query(), sess.Data.ScanFilters, filters.ParseScans)
	if res.Changed {
		sess.Data.ScanFilters = res.Next
		s.sessions.Save(r.Context(), sess)
	}
	if res.Cleared {
		http.Redirect(w, r, scansPath, http.StatusSeeOther)
		return
	}

	rows, err := s.db.ListScans(r.Context(), res.Active)
	if err != nil {
		slog.Error("listing scans", "error", err)
		http.Error(w, "failed to list scans", http.StatusInternalServerError)
		return
	}
	s.renderPage(w, "scans.html", pageData{
		ActivePage:  "scans",
		Flashes:     s.flashes(r, sess),
		ScanFilters: res.Active,
		Scans:       rows,
	})
}

func (s *Server) handleScansExport(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Load(w, r)
	var f filters.ScanFilters
	if sess.Data.ScanFilters != nil {
		f = *sess.Data.ScanFilters
	}

	sheet, err := s.reportGen.Scans(r.Context(), f)
	if err != nil {
		slog.Error("exporting scans", "error", err)
		http.Error(w, "failed to export scans", http.StatusInternalServerError)
		return
	}
	s.sendExport(w, r, sheet)
}

func (s *Server) scanForm(w http.ResponseWriter, r *http.Request, data pageData) {
	opts, err := s.db.ListArtifactOptions(r.Context())
	if err != nil {
		slog.Error("listing artifact options", "error", err)
		http.Error(w, "failed to load artifacts", http.StatusInternalServerError)
		return
	}
	data.ActivePage = "scans"
	data.Options = opts
	s.renderPage(w, "scan_form.html", data)
}

func (s *Server) handleScanNew(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Load(w, r)
	scan := &database.Scan{ScanRepeatCount: 1}
	if id, err := strconv.ParseInt(r.URL.Query().Get("artifact_id"), 10, 64); err == nil {
		scan.ArtifactID = id
	}
	s.scanForm(w, r, pageData{
		Flashes: s.flashes(r, sess),
		Action:  "/scans/new",
		Scan:    scan,
	})
}

func (s *Server) handleScanCreate(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Load(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	id, err := s.writer.CreateScan(r.Context(), r.PostForm)
	if err != nil {
		s.writeFailed(w, r, sess, "Scan", 0, err, scansPath)
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Scan "+strconv.FormatInt(id, 10)+" created", scansPath)
}

func (s *Server) handleScanEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess := s.sessions.Load(w, r)

	scan, err := s.db.GetScan(r.Context(), id)
	if err != nil {
		s.writeFailed(w, r, sess, "Scan", id, err, scansPath)
		return
	}
	s.scanForm(w, r, pageData{
		Flashes: s.flashes(r, sess),
		Action:  "/scans/" + strconv.FormatInt(id, 10) + "/edit",
		Scan:    scan,
	})
}

func (s *Server) handleScanUpdate(w http.ResponseWriter, r *http.Request) {
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

	if err := s.writer.UpdateScan(r.Context(), id, r.PostForm); err != nil {
		s.writeFailed(w, r, sess, "Scan", id, err, scansPath)
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Scan "+strconv.FormatInt(id, 10)+" updated", scansPath)
}

func (s *Server) handleScanDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess := s.sessions.Load(w, r)

	if err := s.writer.DeleteScan(r.Context(), id); err != nil {
		s.writeFailed(w, r, sess, "Scan", id, err, scansPath)
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Scan "+strconv.FormatInt(id, 10)+" deleted", scansPath)
}
