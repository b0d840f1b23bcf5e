package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"educenter/internal/ledger"
	"educenter/internal/logger"
)

var importCmd = &cobra.Command{
	Use:   "import [backup.json]",
	Short: "Load a JSON backup into a SQLite ledger",
	Long: `Replace the content of a SQLite ledger database with a JSON backup exported
from the admin app. The database and its schema are created when missing.

Afterwards point LEDGER_SOURCE=sqlite and LEDGER_PATH at the database.`,
	Example: `  educenter import backup.json --db ledger.db`,
	Args:    cobra.ExactArgs(1),
	RunE:    runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("db", "ledger.db", "SQLite database file")
}

func runImport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("import")

	dbPath, _ := cmd.Flags().GetString("db")
	backupPath := args[0]

	ctx, cancel := createContext(5*time.Minute, log)
	defer cancel()

	snap, err := ledger.NewFileStore(backupPath).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	store, err := ledger.OpenSQLite(ctx, dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Import(ctx, snap.Data()); err != nil {
		return err
	}

	fmt.Printf("Đã nhập %d học viên, %d giao dịch, %d hóa đơn, %d khoản thu khác vào %s\n",
		len(snap.Students()), len(snap.Transactions()), len(snap.Invoices()), len(snap.Income()), dbPath)
	return nil
}
