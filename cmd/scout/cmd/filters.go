package cmd

import (
	"github.com/spf13/cobra"

	scouterrors "github.com/Aman-CERP/scout/internal/errors"
	"github.com/Aman-CERP/scout/internal/output"
	"github.com/Aman-CERP/scout/internal/ui"
)

func newFiltersCmd(sess *session) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the values each search filter accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return scouterrors.ValidationError(err.Error(), err)
			}

			client, err := sess.newClient()
			if err != nil {
				return err
			}
			opts, err := client.FilterOptions(cmd.Context())
			if err != nil {
				return err
			}

			if f == output.FormatJSON {
				return output.New(cmd.OutOrStdout()).JSON(opts)
			}
			ui.NewPlainRenderer(sess.uiConfig(cmd)).FilterOptions(*opts)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}
