package server

import (
	"bytes"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/jamesruggles/scanledger/internal/report"
)

// sendExport renders sheet in the requested format and sends it as an
// attachment. Nothing is sent until rendering succeeds.
func (s *Server) sendExport(w http.ResponseWriter, r *http.Request, sheet report.Sheet) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := s.reportGen.Write(&buf, sheet, format); err != nil {
		slog.Error("rendering export", "kind", sheet.Kind, "format", format, "error", err)
		http.Error(w, "failed to render export", http.StatusInternalServerError)
		return
	}

	name := s.reportGen.Filename(sheet, format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("export write interrupted", "error", err)
	}
}
