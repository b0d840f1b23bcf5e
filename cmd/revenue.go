package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"educenter/internal/logger"
	"educenter/internal/report"
	"educenter/pkg/models"
)

var revenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "Show revenue collected in a month and total receivables",
	Long: `Sum the payments and credit adjustments received in a month, leaving out
invoice cancellations, add the other income of the month, and show the total
still owed by all students.`,
	Example: `  # Current month
  educenter revenue

  # A given month
  educenter revenue --month 2024-03`,
	Args: cobra.NoArgs,
	RunE: runRevenue,
}

func init() {
	rootCmd.AddCommand(revenueCmd)

	revenueCmd.Flags().String("month", "", "Month (YYYY-MM, default: current month)")
	revenueCmd.Flags().Int("top", 5, "Number of largest debts to list")
}

func runRevenue(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("revenue")

	month, _ := cmd.Flags().GetString("month")
	top, _ := cmd.Flags().GetInt("top")
	if month == "" {
		month = time.Now().Format(models.MonthLayout)
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	ctx, cancel := createContext(time.Minute, log)
	defer cancel()

	snap, err := loadSnapshot(ctx, cfg, log)
	if err != nil {
		return err
	}

	collected, err := report.MonthlyRevenue(snap.Transactions(), snap.Income(), month)
	if err != nil {
		return err
	}
	receivables := report.TotalReceivables(snap.Students())

	log.Info().
		Str("month", month).
		Str("tuition", collected.Tuition.String()).
		Str("other_income", collected.OtherIncome.String()).
		Str("collected", collected.Total.String()).
		Int("transactions", collected.Transactions).
		Str("receivables", receivables.String()).
		Msg("Revenue computed")

	fmt.Printf("Học phí đã thu tháng %s: %s (%d giao dịch)\n", month, report.FormatVND(collected.Tuition), collected.Transactions)
	fmt.Printf("Thu nhập khác: %s (%d khoản)\n", report.FormatVND(collected.OtherIncome), collected.IncomeItems)
	fmt.Printf("Tổng doanh thu: %s\n", report.FormatVND(collected.Total))
	fmt.Printf("Tổng công nợ phải thu: %s\n", report.FormatVND(receivables.Abs()))

	if top > 0 {
		debtors := report.TopDebtors(snap, top)
		if len(debtors) > 0 {
			fmt.Println()
			fmt.Println("Học viên nợ nhiều nhất:")
			for i, r := range debtors {
				fmt.Printf("  %d. %s (%s): %s\n", i+1, r.Name, r.StudentID, report.FormatVND(r.Debt()))
			}
		}
	}
	return nil
}
