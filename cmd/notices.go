package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"educenter/internal/finance"
	"educenter/internal/logger"
	"educenter/internal/report"
	"educenter/internal/sheets"
	"educenter/pkg/models"
)

var noticesCmd = &cobra.Command{
	Use:   "notices",
	Short: "Build the tuition notices of a month and optionally register them in Google Sheets",
	Long: `Build the tuition fee notice of every invoice billed in a month.

Notices are built in parallel and reported in ledger order. With --write-sheet
the results are appended to the named sheet of the spreadsheet at
GOOGLE_SHEET_URL; the sheet and its header row are created when missing.

Optional environment variables:
  BATCH_WORKERS - Number of parallel workers (default: 8)`,
	Example: `  # Summary of the March 2024 notices
  educenter notices --month 2024-03

  # Register them in the GOOGLE_SHEET_NOTICES sheet
  educenter notices --month 2024-03 --register

  # Register them in another sheet
  educenter notices --month 2024-03 --write-sheet Thang_03

  # Build everything but leave the sheet untouched
  educenter notices --month 2024-03 --write-sheet Phieu_Bao_Hoc_Phi --dry-run`,
	Args: cobra.NoArgs,
	RunE: runNotices,
}

// NoticeResult is the outcome of building one notice of the batch.
type NoticeResult struct {
	Invoice models.Invoice
	Notice  *finance.Notice
	Error   error
	Status  string // "success", "warning", "error"
	Index   int    // Original order index
}

// noticeJob is an invoice waiting for a worker.
type noticeJob struct {
	Invoice models.Invoice
	Index   int
}

func init() {
	rootCmd.AddCommand(noticesCmd)

	noticesCmd.Flags().String("month", "", "Billing month (YYYY-MM) [REQUIRED]")
	noticesCmd.Flags().Int("workers", 0, "Number of parallel workers (default: BATCH_WORKERS or 8)")
	noticesCmd.Flags().String("write-sheet", "", "Append the notices to this sheet of GOOGLE_SHEET_URL")
	noticesCmd.Flags().Bool("register", false, "Append the notices to the GOOGLE_SHEET_NOTICES sheet")
	noticesCmd.Flags().Bool("dry-run", false, "Build notices but don't write to Google Sheet")
	noticesCmd.Flags().Bool("verbose", false, "Show detailed processing information")

	noticesCmd.MarkFlagRequired("month")
}

func runNotices(cmd *cobra.Command, args []string) error {
	month, _ := cmd.Flags().GetString("month")
	numWorkers, _ := cmd.Flags().GetInt("workers")
	sheetName, _ := cmd.Flags().GetString("write-sheet")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	register, _ := cmd.Flags().GetBool("register")
	verbose, _ := cmd.Flags().GetBool("verbose")

	log := logger.WithFields(map[string]interface{}{
		"component": "notices",
		"month":     month,
	})

	if _, err := time.Parse(models.MonthLayout, month); err != nil {
		return fmt.Errorf("invalid month: %s (must be YYYY-MM)", month)
	}
	if numWorkers <= 0 {
		numWorkers = getNumWorkers()
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if sheetName == "" && register {
		sheetName = cfg.GoogleSheetNoticeTarget
	}

	log.Info().
		Int("workers", numWorkers).
		Str("sheet", sheetName).
		Bool("dry_run", dryRun).
		Msg("Starting notice batch")

	ctx, cancel := createContext(10*time.Minute, log)
	defer cancel()

	snap, err := loadSnapshot(ctx, cfg, log)
	if err != nil {
		return err
	}

	invoices := snap.InvoicesForMonth(month)

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                      PHIẾU BÁO HỌC PHÍ - THEO THÁNG")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Kỳ: %s\n", month)
	if dryRun {
		fmt.Println("Chế độ: Dry Run (không ghi Google Sheet)")
	}
	fmt.Println()

	if len(invoices) == 0 {
		fmt.Println("Không có hóa đơn nào trong tháng.")
		return nil
	}

	fmt.Printf("Lập %d phiếu với %d worker...\n\n", len(invoices), numWorkers)

	service := finance.NewService(cfg.NoticeCacheTTL)
	results := buildNoticesInParallel(ctx, snap, service, invoices, numWorkers, log, verbose)

	successCount, warningCount, errorCount := 0, 0, 0
	totalDue := decimal.Zero
	for _, result := range results {
		switch result.Status {
		case "success":
			successCount++
		case "warning":
			warningCount++
		case "error":
			errorCount++
		}
		if result.Notice != nil {
			totalDue = totalDue.Add(result.Notice.TotalDue)
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                 KẾT QUẢ")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Thành công: %d\n", successCount)
	if warningCount > 0 {
		fmt.Printf("Cảnh báo: %d\n", warningCount)
	}
	if errorCount > 0 {
		fmt.Printf("Lỗi: %d\n", errorCount)
	}
	fmt.Printf("Tổng phải thu: %s\n", report.FormatVND(totalDue))
	fmt.Println()

	if sheetName != "" && !dryRun {
		if cfg.GoogleSheetURL == "" {
			return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required for --write-sheet")
		}

		fmt.Println("Ghi dữ liệu vào Google Sheet...")

		sheetsService, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL, sheets.Credentials{
			File: cfg.GoogleCredentialsFile,
			JSON: cfg.GoogleCredentialsJSON,
		})
		if err != nil {
			return fmt.Errorf("failed to create Google Sheets service: %w", err)
		}

		rows := noticeRows(results, time.Now())
		if err := sheetsService.WriteNoticeRows(ctx, rows, sheetName); err != nil {
			return fmt.Errorf("failed to write to Google Sheet: %w", err)
		}

		fmt.Printf("Sheet: %s\n", sheetName)
		fmt.Printf("Số dòng đã thêm: %d\n", len(rows))
	}

	fmt.Println(strings.Repeat("=", 80))

	log.Info().
		Int("total", len(invoices)).
		Int("success", successCount).
		Int("warnings", warningCount).
		Int("errors", errorCount).
		Str("total_due", totalDue.String()).
		Msg("Notice batch completed")

	return nil
}

// getNumWorkers returns the number of workers from environment or default
func getNumWorkers() int {
	if workersStr := os.Getenv("BATCH_WORKERS"); workersStr != "" {
		if workers, err := strconv.Atoi(workersStr); err == nil && workers > 0 {
			return workers
		}
	}
	return 8
}

// buildSingleNotice builds one notice and classifies the outcome. Notices
// without a QR code or with a missing student are warnings.
func buildSingleNotice(l finance.Ledger, service *finance.Service, invoice models.Invoice) NoticeResult {
	result := NoticeResult{Invoice: invoice, Status: "error"}

	n, err := service.Notice(l, invoice.ID)
	if err != nil {
		result.Error = err
		return result
	}

	result.Notice = n
	result.Status = "success"
	if n.Status == finance.NoticeStudentMissing ||
		(n.QR == nil && n.TotalDue.IsPositive()) ||
		(n.Reconciliation != nil && n.Reconciliation.UsedFallback) {
		result.Status = "warning"
	}
	return result
}

// buildNoticesInParallel builds notices using a worker pool. Results keep the
// order of invoices.
func buildNoticesInParallel(ctx context.Context, l finance.Ledger, service *finance.Service, invoices []models.Invoice, numWorkers int, log zerolog.Logger, verbose bool) []NoticeResult {
	jobs := make(chan noticeJob, len(invoices))
	results := make([]NoticeResult, len(invoices))

	var processedCount int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for job := range jobs {
				var result NoticeResult
				if err := ctx.Err(); err != nil {
					result = NoticeResult{Invoice: job.Invoice, Status: "error", Error: err}
				} else {
					log.Debug().
						Int("worker", workerID).
						Str("invoice_id", job.Invoice.ID).
						Msg("Worker building notice")
					result = buildSingleNotice(l, service, job.Invoice)
				}
				result.Index = job.Index
				results[job.Index] = result

				mu.Lock()
				processedCount++
				fmt.Printf("[%d/%d] %s - %s", processedCount, len(invoices), job.Invoice.ID, statusMark(result.Status))
				switch {
				case result.Error != nil:
					fmt.Printf(" (%s)", result.Error.Error())
				case result.Notice.Status == finance.NoticeStudentMissing:
					fmt.Printf(" (học viên %s không tồn tại)", job.Invoice.StudentID)
				default:
					fmt.Printf(" (%s)", report.FormatVND(result.Notice.TotalDue))
				}
				fmt.Println()
				mu.Unlock()

				if verbose && result.Notice != nil {
					log.Info().
						Str("invoice_id", job.Invoice.ID).
						Str("student", result.Notice.StudentName).
						Str("reference", result.Notice.TransferReference).
						Str("total_due", result.Notice.TotalDue.String()).
						Msg("Notice built")
				}
			}
		}(w)
	}

	for i, inv := range invoices {
		jobs <- noticeJob{Invoice: inv, Index: i}
	}
	close(jobs)

	wg.Wait()

	return results
}

func statusMark(status string) string {
	switch status {
	case "success":
		return "✅"
	case "warning":
		return "⚠️"
	default:
		return "❌"
	}
}

// noticeRows converts batch results to sheet rows.
func noticeRows(results []NoticeResult, processedAt time.Time) []sheets.NoticeRow {
	rows := make([]sheets.NoticeRow, 0, len(results))
	for _, r := range results {
		row := sheets.NoticeRow{
			InvoiceID:     r.Invoice.ID,
			StudentID:     r.Invoice.StudentID,
			Month:         r.Invoice.Month,
			InvoiceAmount: r.Invoice.Amount.InexactFloat64(),
			Status:        r.Status,
			ProcessedAt:   processedAt.Format("02/01/2006 15:04"),
		}
		switch {
		case r.Error != nil:
			row.Note = r.Error.Error()
		case r.Notice != nil:
			n := r.Notice
			row.StudentName = n.StudentName
			row.OutstandingDebt = n.OutstandingDebt.InexactFloat64()
			row.OpeningCredit = n.OpeningCredit.InexactFloat64()
			row.TotalDue = n.TotalDue.InexactFloat64()
			row.TransferReference = n.TransferReference
			if n.QR != nil {
				row.QRURL = n.QR.URL
			}
			row.Note = n.QRUnavailable
		}
		rows = append(rows, row)
	}
	return rows
}
