package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"educenter/internal/api"
	"educenter/internal/ledger"
	"educenter/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve notices and finance reports over HTTP",
	Long: `Start a read-only HTTP API over the configured ledger. Every request reads
the ledger afresh, so changes to the backup file, database or sheet are
visible immediately.

Endpoints:
  GET /healthz
  GET /api/invoices/{id}/notice[?format=text]
  GET /api/months/{YYYY-MM}/notices
  GET /api/reports/debts[?class=&search=&sort=&desc=&top=&format=csv]
  GET /api/reports/revenue[?month=YYYY-MM]`,
	Example: `  educenter serve --addr :8080`,
	Args:    cobra.NoArgs,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: HTTP_ADDR or :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	addr, _ := cmd.Flags().GetString("addr")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.HTTPAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := ledger.Open(ctx, cfg.LedgerOptions())
	if err != nil {
		return fmt.Errorf("failed to open %s ledger: %w", cfg.LedgerSource, err)
	}
	defer store.Close()

	server := api.NewServer(store, api.Options{
		Overrides:      cfg.BankOverrides(),
		RateLimit:      cfg.HTTPRateLimit,
		NoticeCacheTTL: cfg.NoticeCacheTTL,
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", addr).
			Str("source", cfg.LedgerSource).
			Msg("HTTP server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
