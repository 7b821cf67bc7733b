package cmd

import (
	"github.com/spf13/cobra"

	scouterrors "github.com/Aman-CERP/scout/internal/errors"
	"github.com/Aman-CERP/scout/internal/output"
	"github.com/Aman-CERP/scout/internal/ui"
)

func newHealthCmd(sess *session) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the search API is reachable",
		Long: `Ask the search API for its health report and print the status and
the number of startups it serves. Exits non-zero when the API is
unreachable or answers with an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return scouterrors.ValidationError(err.Error(), err)
			}

			client, err := sess.newClient()
			if err != nil {
				return err
			}
			status, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}

			if f == output.FormatJSON {
				return output.New(cmd.OutOrStdout()).JSON(status)
			}
			ui.NewPlainRenderer(sess.uiConfig(cmd)).Health(*status, client.BaseURL())
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}
