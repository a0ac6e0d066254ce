package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jamesruggles/scanledger/internal/database"
	"github.com/jamesruggles/scanledger/internal/filters"
	"github.com/jamesruggles/scanledger/internal/records"
	"github.com/jamesruggles/scanledger/internal/report"
)

var exportCmd = &cobra.Command{
	Use:       "export artifacts|scans",
	Short:     "Write a filtered export into the reports directory",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{records.KindArtifacts, records.KindScans},
	RunE:      runExport,
}

var (
	exportFormat   string
	artifactFilter filters.ArtifactFilters
	scanFilter     filters.ScanFilters
)

func init() {
	rootCmd.AddCommand(exportCmd)

	f := exportCmd.Flags()
	f.StringVar(&exportFormat, "format", "xlsx", "output format: xlsx or pdf")
	f.StringVar(&artifactFilter.BusinessUnit, "business-unit", "", "exact business unit")
	f.StringVar(&artifactFilter.AlteraProduct, "altera-product", "", "artifacts: Altera product contains")
	f.StringVar(&artifactFilter.Rapid7App, "rapid7-app", "", "artifacts: Rapid7 app contains")
	f.StringVar(&artifactFilter.CheckmarxProduct, "checkmarx-product", "", "artifacts: Checkmarx product contains")
	f.StringVar(&artifactFilter.MendProduct, "mend-product", "", "artifacts: Mend product contains")
	f.StringVar(&artifactFilter.MendProject, "mend-project", "", "artifacts: Mend project contains")
	f.StringVar(&scanFilter.ScanTool, "scan-tool", "", "scans: scan tool contains")
	f.StringVar(&scanFilter.ScanType, "scan-type", "", "scans: scan type contains")
	f.BoolVar(&scanFilter.MostRecentOnly, "most-recent", false, "scans: keep only the latest scan per artifact, tool and type")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	gen := report.NewGenerator(db, cfg.Reports.Directory)

	var sheet report.Sheet
	switch args[0] {
	case records.KindArtifacts:
		sheet, err = gen.Artifacts(cmd.Context(), artifactFilter)
	case records.KindScans:
		scanFilter.BusinessUnit = artifactFilter.BusinessUnit
		sheet, err = gen.Scans(cmd.Context(), scanFilter)
	}
	if err != nil {
		return fmt.Errorf("exporting %s: %w", args[0], err)
	}

	path, err := gen.Save(sheet, format)
	if err != nil {
		return err
	}
	slog.Info("export written", "path", path, "rows", len(sheet.Rows))
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
