package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jamesruggles/scanledger/internal/database"
	"github.com/jamesruggles/scanledger/internal/filters"
	"github.com/jamesruggles/scanledger/internal/metrics"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "xlsx":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("format must be 'xlsx' or 'pdf', got %q", s)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Source provides the rows behind an export. The listing pages read the
// same methods, so an export always matches what the listing shows.
type Source interface {
	ListArtifacts(ctx context.Context, f filters.ArtifactFilters) ([]database.Artifact, error)
	ListScans(ctx context.Context, f filters.ScanFilters) ([]database.ScanRow, error)
}

type Generator struct {
	src        Source
	reportsDir string
	now        func() time.Time
}

func NewGenerator(src Source, reportsDir string) *Generator {
	return &Generator{src: src, reportsDir: reportsDir, now: time.Now}
}

func (g *Generator) Artifacts(ctx context.Context, f filters.ArtifactFilters) (Sheet, error) {
	rows, err := g.src.ListArtifacts(ctx, f)
	if err != nil {
		return Sheet{}, err
	}
	return ArtifactSheet(rows, f), nil
}

func (g *Generator) Scans(ctx context.Context, f filters.ScanFilters) (Sheet, error) {
	rows, err := g.src.ListScans(ctx, f)
	if err != nil {
		return Sheet{}, err
	}
	return ScanSheet(rows, f), nil
}

// Filename is {Kind}_{Title}_{YYYYMMDD_HHMMSS}.{ext}.
func (g *Generator) Filename(s Sheet, format Format) string {
	return fmt.Sprintf("%s_%s_%s.%s", s.Kind, s.Title, g.now().Format("20060102_150405"), format)
}

func (g *Generator) Write(w io.Writer, s Sheet, format Format) error {
	var err error
	switch format {
	case FormatPDF:
		err = WritePDF(w, s)
	default:
		err = WriteXLSX(w, s)
	}
	if err != nil {
		return err
	}
	metrics.Exports.WithLabelValues(s.Kind, string(format)).Inc()
	metrics.ExportRows.WithLabelValues(s.Kind).Observe(float64(len(s.Rows)))
	return nil
}

// Save writes the export into the reports directory and returns its path.
func (g *Generator) Save(s Sheet, format Format) (string, error) {
	if err := os.MkdirAll(g.reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}
	path := filepath.Join(g.reportsDir, g.Filename(s, format))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report: %w", err)
	}
	if err := g.Write(f, s, format); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing report: %w", err)
	}
	return path, nil
}
