package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/scout/internal/output"
	"github.com/Aman-CERP/scout/internal/ui"
)

func newHistoryCmd(sess *session) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		Long:  `Show the last five searches, most recent first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := sess.newHistory(false).Entries()
			if jsonOutput {
				return output.New(cmd.OutOrStdout()).JSON(entries)
			}
			ui.NewPlainRenderer(sess.uiConfig(cmd)).History(entries)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as a JSON array")
	cmd.AddCommand(newHistoryClearCmd(sess))

	return cmd
}

func newHistoryClearCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget all recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess.newHistory(false).Clear()
			output.New(cmd.OutOrStdout()).Success("Search history cleared")
			return nil
		},
	}
}
