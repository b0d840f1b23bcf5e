package cmd

import (
	"bytes"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"educenter/internal/logger"
	"educenter/internal/report"
)

var debtsCmd = &cobra.Command{
	Use:   "debts",
	Short: "List students with unpaid tuition",
	Long: `List every student whose balance is negative, with their classes and the
amount owed, and the total outstanding tuition.

The report can be narrowed to a class or a search on name or student id, and
exported as CSV (columns Họ Tên, Các Lớp Học, Số Tiền Nợ).`,
	Example: `  # All debtors, largest debt first
  educenter debts

  # Members of class L1 sorted by name
  educenter debts --class L1 --sort name

  # Five largest debts
  educenter debts --top 5

  # Export to CSV
  educenter debts --csv BaoCaoCongNo.csv`,
	Args: cobra.NoArgs,
	RunE: runDebts,
}

func init() {
	rootCmd.AddCommand(debtsCmd)

	debtsCmd.Flags().String("class", "", "Only list members of this class id")
	debtsCmd.Flags().String("search", "", "Case-insensitive search on name or student id")
	debtsCmd.Flags().String("sort", "balance", "Sort by balance or name")
	debtsCmd.Flags().Bool("desc", false, "Reverse the sort order")
	debtsCmd.Flags().Int("top", 0, "Only list the first N students (0 = all)")
	debtsCmd.Flags().String("csv", "", "Write the report as CSV to this file")
}

func runDebts(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("debts")

	classID, _ := cmd.Flags().GetString("class")
	search, _ := cmd.Flags().GetString("search")
	sortKey, _ := cmd.Flags().GetString("sort")
	desc, _ := cmd.Flags().GetBool("desc")
	top, _ := cmd.Flags().GetInt("top")
	csvPath, _ := cmd.Flags().GetString("csv")

	sortBy, err := report.ParseDebtSort(sortKey)
	if err != nil {
		return err
	}
	if top < 0 {
		return fmt.Errorf("--top must not be negative")
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

	debts := report.Debts(snap, report.DebtFilter{
		ClassID:    classID,
		Search:     search,
		Sort:       sortBy,
		Descending: desc,
	})
	if top > 0 && len(debts.Rows) > top {
		debts.Rows = debts.Rows[:top]
	}

	log.Info().
		Int("students", len(debts.Rows)).
		Str("total", debts.Total.String()).
		Msg("Debt report built")

	if csvPath != "" {
		var buf bytes.Buffer
		if err := report.WriteDebtCSV(&buf, debts.Rows); err != nil {
			return err
		}
		return writeOutput(buf.Bytes(), csvPath, log)
	}

	if len(debts.Rows) == 0 {
		fmt.Println("Không có học viên nào nợ học phí.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Mã HS\tHọ Tên\tCác Lớp Học\tSố Tiền Nợ\t")
	for _, r := range debts.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", r.StudentID, r.Name, r.ClassNames(), report.FormatVND(r.Debt()))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Printf("\nTổng công nợ: %s (%d học viên)\n", report.FormatVND(debts.TotalDebt()), len(debts.Rows))
	return nil
}
