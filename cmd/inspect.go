package cmd

import (
	"github.com/mezonai/hashledger/report"
	"github.com/mezonai/hashledger/store"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "List the blocks of a chain file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := store.ReadChainFile(args[0])
		if err != nil {
			return err
		}
		return report.Blocks(cmd.OutOrStdout(), c)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
