package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"statement-import-service/internal/jobs"
	"statement-import-service/internal/remoteparse"
	"statement-import-service/internal/server"
	"statement-import-service/internal/store"
	"statement-import-service/pkg/logger"
)

// Flags for the serve command
var (
	listenAddr      string
	serveDSN        string
	serveParseURL   string
	rematchSchedule string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the statement import HTTP service",
	Long: `Serve exposes statement upload, listing and auto-match over HTTP and
runs the periodic re-match job for accounts with unmatched lines.

Examples:
  importer serve --listen :8080 --dsn $DATABASE_URL
  importer serve --listen :8080 --dsn $DATABASE_URL --rematch-schedule "@hourly"
  importer serve --listen :8080 --dsn $DATABASE_URL \
    --parse-service-url http://docparse:9090`,

	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "address to listen on")
	serveCmd.Flags().StringVar(&serveDSN, "dsn", "", "PostgreSQL connection string (or IMPORTER_DSN)")
	serveCmd.Flags().StringVar(&serveParseURL, "parse-service-url", "", "base URL of the document parsing service for PDFs")
	serveCmd.Flags().StringVar(&rematchSchedule, "rematch-schedule", "@hourly", "cron schedule for the re-match job (empty disables it)")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("serve-dsn", serveCmd.Flags().Lookup("dsn"))
	viper.BindPFlag("serve-parse-service-url", serveCmd.Flags().Lookup("parse-service-url"))
	viper.BindPFlag("rematch-schedule", serveCmd.Flags().Lookup("rematch-schedule"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logger.WithComponent("serve")

	if serveDSN == "" {
		serveDSN = viper.GetString("serve-dsn")
	}
	if serveDSN == "" {
		serveDSN = viper.GetString("dsn")
	}
	if serveDSN == "" {
		return fmt.Errorf("a database DSN is required (use --dsn or IMPORTER_DSN)")
	}

	st, err := store.Open(ctx, serveDSN)
	if err != nil {
		return err
	}
	defer st.Close()

	var remote server.DocumentParser
	if serveParseURL != "" {
		remote = remoteparse.NewClient(serveParseURL, 0)
	}

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      server.New(st, remote).Router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	var rematcher *jobs.Rematcher
	if rematchSchedule != "" {
		rematcher = jobs.NewRematcher(st, rematchSchedule)
		if err := rematcher.Start(); err != nil {
			return fmt.Errorf("invalid rematch schedule %q: %w", rematchSchedule, err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", listenAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("Shutting down")
	}

	if rematcher != nil {
		rematcher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
