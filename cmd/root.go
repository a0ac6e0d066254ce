// Package cmd implements the scanledger command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesruggles/scanledger/internal/config"
	"github.com/jamesruggles/scanledger/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "scanledger",
	Short: "Track artifacts and the security scans recorded against them",
	Long: `scanledger keeps a register of software artifacts per business unit and
the SCA, SAST and DAST scan results recorded against them.

  scanledger serve                       # browse, edit and export over HTTP
  scanledger export scans --most-recent  # write a spreadsheet into reports.directory`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "path to config file")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		return err
	}
	return nil
}

// loadConfig reads the config file and installs the configured logger as
// the process default.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.Log))
	return cfg, nil
}
