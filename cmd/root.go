package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"educenter/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "educenter",
	Short: "Tuition notices and finance reports for an education center",
	Long: `educenter reads the ledger of an education center (students, classes,
transactions and monthly invoices) from a JSON backup, a SQLite database or a
Google Sheet, and derives tuition fee notices with VietQR transfer codes,
debt reports and monthly revenue.

The ledger source is configured through LEDGER_SOURCE and LEDGER_PATH or
GOOGLE_SHEET_URL, usually from a .env file.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("educenter executed without subcommand")

		cmd.Help()
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
