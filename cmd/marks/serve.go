package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/nikbrunner/marks/internal/auth"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/server"
	"github.com/nikbrunner/marks/internal/storage"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local database over HTTP",
	Long: `Serve the configured database to remote clients. Requests authenticate
with a bearer token from 'marks token'; each user sees only their own data.

Logs go to stderr. Metrics are exposed on /metrics and a health check on /healthz.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var tokenCmd = &cobra.Command{
	Use:   "token <user>",
	Short: "Issue an API token for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tokens, err := auth.NewTokens(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
		if err != nil {
			return fmt.Errorf("server.jwt_secret must be set: %w", err)
		}
		token, err := tokens.Issue(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and print the schema version",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(serveCmd, tokenCmd, migrateCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default server.listen)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty, "")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	tokens, err := auth.NewTokens(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	if err != nil {
		return fmt.Errorf("server.jwt_secret must be set: %w", err)
	}

	db, err := storage.Open(storageOptions(cfg, log))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	listen := cfg.Server.Listen
	if serveListen != "" {
		listen = serveListen
	}
	srv := server.New(db.Gateway(), server.Options{
		Listen:         listen,
		Tokens:         tokens,
		AllowedOrigins: cfg.Server.CORSOrigins,
		RateLimit:      rate.Limit(cfg.Server.RateLimit),
		Burst:          cfg.Server.RateBurst,
		Logger:         log,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := storageOptions(cfg, nil)
	// Opening the database applies pending migrations.
	db, err := storage.Open(opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Close(); err != nil {
		return err
	}

	dbURL, err := storage.MigrationURL(opts)
	if err != nil {
		return err
	}
	version, dirty, err := storage.SchemaVersion(cfg.Database.Driver, dbURL)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Schema version: %d\n", version)
	if dirty {
		fmt.Fprintln(out, "⚠ schema is dirty; the last migration did not complete")
	}
	return nil
}
