package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"educenter/internal/config"
	"educenter/internal/ledger"
)

// loadConfig reads and validates the environment configuration.
func loadConfig(log zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return nil, fmt.Errorf("invalid configuration. Check LEDGER_SOURCE, LEDGER_PATH and GOOGLE_SHEET_URL in your .env file: %w", err)
	}
	return cfg, nil
}

// loadSnapshot opens the configured ledger, reads it once and applies the
// bank overrides from the environment.
func loadSnapshot(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*ledger.Snapshot, error) {
	store, err := ledger.Open(ctx, cfg.LedgerOptions())
	if err != nil {
		log.Error().Err(err).Str("source", cfg.LedgerSource).Msg("Failed to open ledger")
		return nil, fmt.Errorf("failed to open %s ledger: %w", cfg.LedgerSource, err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close ledger")
		}
	}()

	snap, err := store.Load(ctx)
	if err != nil {
		log.Error().Err(err).Str("source", cfg.LedgerSource).Msg("Failed to load ledger")
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	log.Debug().
		Str("source", cfg.LedgerSource).
		Int("students", len(snap.Students())).
		Int("invoices", len(snap.Invoices())).
		Msg("Ledger loaded")

	return snap.WithSettings(cfg.BankOverrides()), nil
}

// createContext creates a context with timeout that is also canceled on
// SIGINT or SIGTERM.
func createContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(data []byte, path string, log zerolog.Logger) error {
	if path == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Error().Err(err).Str("output_file", path).Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().Str("output_file", path).Int("bytes", len(data)).Msg("Output written to file")
	return nil
}
