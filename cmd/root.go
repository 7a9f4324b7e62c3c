package cmd

import (
	"os"

	"github.com/mezonai/hashledger/logx"
	"github.com/spf13/cobra"
)

var logToStderr bool

var rootCmd = &cobra.Command{
	Use:   "hashledger",
	Short: "Hash-linked ledger simulator",
	Long:  "Build, store, inspect and validate chains of balanced ledger transactions.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logToStderr {
			logx.SetOutput(os.Stderr)
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&logToStderr, "log-stderr", false, "write logs to stderr instead of the log file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed: ", err)
		os.Exit(1)
	}
}
