package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"educenter/internal/finance"
	"educenter/internal/logger"
	"educenter/internal/report"
)

var noticeCmd = &cobra.Command{
	Use:   "notice [invoice-id]",
	Short: "Print the tuition fee notice for one invoice",
	Long: `Build the tuition fee notice ("phiếu báo học phí") for an invoice.

The notice recovers the student's balance just before the invoice was applied,
splits it into the previous debt or credit, adds the new charge and computes
the total due. When a bank account is configured and something is due, the
notice carries a VietQR transfer link with the amount and transfer reference
filled in.

The ledger is read from the source configured by LEDGER_SOURCE:
  file    - JSON backup exported from the admin app (LEDGER_PATH)
  sqlite  - SQLite database created by "educenter import" (LEDGER_PATH)
  sheets  - Google Sheet (GOOGLE_SHEET_URL plus credentials)`,
	Example: `  # Notice as JSON
  educenter notice INV-0324-HS001

  # Printable text slip written to a file
  educenter notice INV-0324-HS001 --format text -o phieu.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runNotice,
}

func init() {
	rootCmd.AddCommand(noticeCmd)

	noticeCmd.Flags().String("format", "json", "Output format (json, text)")
	noticeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	noticeCmd.Flags().Int("timeout", 60, "Timeout in seconds")
}

func runNotice(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("notice")

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	invoiceID := args[0]

	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format: %s (must be 'json' or 'text')", format)
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	ctx, cancel := createContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	snap, err := loadSnapshot(ctx, cfg, log)
	if err != nil {
		return err
	}

	n, err := finance.BuildNotice(snap, invoiceID)
	if errors.Is(err, finance.ErrInvoiceNotFound) {
		return fmt.Errorf("invoice %s not found in the ledger", invoiceID)
	}
	if err != nil {
		return fmt.Errorf("failed to build notice: %w", err)
	}

	logNotice(log, n)

	var out bytes.Buffer
	switch format {
	case "text":
		if err := report.RenderNotice(&out, n); err != nil {
			return err
		}
	default:
		data, err := json.MarshalIndent(n, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		out.Write(data)
		out.WriteByte('\n')
	}

	return writeOutput(out.Bytes(), outputPath, log)
}

func logNotice(log zerolog.Logger, n *finance.Notice) {
	event := log.Info().
		Str("invoice_id", n.InvoiceID).
		Str("student_id", n.StudentID).
		Str("status", string(n.Status)).
		Str("total_due", n.TotalDue.String())
	if n.Reconciliation != nil {
		event = event.
			Bool("used_fallback", n.Reconciliation.UsedFallback).
			Int("matches", n.Reconciliation.MatchCount)
	}
	if n.QRUnavailable != "" {
		event = event.Str("qr_unavailable", n.QRUnavailable)
	}
	event.Msg("Notice built")
}
