package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jamesruggles/scanledger/internal/config"
	"github.com/jamesruggles/scanledger/internal/database"
	"github.com/jamesruggles/scanledger/internal/server"
	"github.com/jamesruggles/scanledger/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface",
	RunE:  runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "host to bind to (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides server.port)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	store, closeStore, err := openSessionStore(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer closeStore()

	srv, err := server.New(cfg, db, store)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return srv.Run(ctx)
}

func openSessionStore(ctx context.Context, cfg config.SessionConfig) (session.Store, func(), error) {
	if cfg.Backend == "redis" {
		store, err := session.NewRedisStore(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using redis session store")
		return store, func() { store.Close() }, nil
	}
	return session.NewMemoryStore(cfg.TTL), func() {}, nil
}
