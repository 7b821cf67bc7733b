package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/scout/internal/ui"
)

func newTUICmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive search screen",
		Long: `Open the interactive search screen (the default when scout runs
without a command).

Keys:
  type        search as you type (after a short pause)
  enter       search now
  tab         move between the search box, recent searches and filters
  ctrl+f      show or hide the filter panel
  ←/→         change the selected filter or recent search
  ctrl+x      clear the box, the filters or the recent searches
  ctrl+c      quit`,
		Annotations: map[string]string{annotationFileLog: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, sess)
		},
	}
}

func runTUI(cmd *cobra.Command, sess *session) error {
	uiCfg := sess.uiConfig(cmd)
	if !ui.Interactive(uiCfg) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(),
			"scout: the search screen needs an interactive terminal; use 'scout search <query>' instead")
		return nil
	}

	client, err := sess.newClient()
	if err != nil {
		return err
	}
	store := sess.newHistory(false)
	orch := sess.newOrchestrator(client, store, 0)
	defer orch.Close()

	sess.logger.Info("starting search screen",
		"api", client.BaseURL(),
		"history_entries", len(store.Entries()))

	return ui.Run(cmd.Context(), orch, uiCfg)
}
