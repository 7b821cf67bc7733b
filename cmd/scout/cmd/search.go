package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	scouterrors "github.com/Aman-CERP/scout/internal/errors"
	"github.com/Aman-CERP/scout/internal/output"
	"github.com/Aman-CERP/scout/internal/searchapi"
	"github.com/Aman-CERP/scout/internal/ui"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	sector    string
	stage     string
	location  string
	limit     int
	format    string // "text", "json"
	noHistory bool
}

func newSearchCmd(sess *session) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search the startup directory once",
		Long: `Run a single search and print the ranked results.

The query may be empty when at least one filter is given. Successful
searches with a query are added to the recent-search history unless
--no-history is set. Sector and stage must be values listed by
'scout filters'; case does not matter.`,
		Example: `  scout search AI
  scout search "payments infrastructure" --sector FinTech
  scout search --stage Seed --location "Berlin, Germany"
  scout search climate --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, sess, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.sector, "sector", "", "Only startups in this sector")
	cmd.Flags().StringVar(&opts.stage, "stage", "", "Only startups at this funding stage")
	cmd.Flags().StringVar(&opts.location, "location", "", "Only startups in this location")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this search")

	return cmd
}

func runSearch(cmd *cobra.Command, sess *session, query string, opts searchOptions) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return scouterrors.ValidationError(err.Error(), err)
	}
	if opts.limit < 0 {
		return scouterrors.ValidationError("--limit must be positive", nil)
	}

	filters := searchapi.Filters{
		Sector:       opts.sector,
		FundingStage: opts.stage,
		Location:     opts.location,
	}.Normalize()

	if strings.TrimSpace(query) == "" && filters.IsEmpty() {
		return scouterrors.New(scouterrors.ErrCodeQueryEmpty, "nothing to search for", nil).
			WithSuggestion("Give a query, a filter (--sector, --stage, --location), or run 'scout' for the interactive screen")
	}

	client, err := sess.newClient()
	if err != nil {
		return err
	}
	filters, err = checkFilters(cmd.Context(), client, sess.logger, filters)
	if err != nil {
		return err
	}

	orch := sess.newOrchestrator(client, sess.newHistory(opts.noHistory), opts.limit)
	defer orch.Close()

	orch.SubmitSearch(query, filters)
	orch.Wait()
	state := orch.State()

	out := output.New(cmd.OutOrStdout())
	if state.Err != nil {
		if format == output.FormatJSON {
			if data, jerr := scouterrors.FormatJSON(state.Err); jerr == nil {
				_, _ = cmd.OutOrStdout().Write(append(data, '\n'))
			}
		}
		return state.Err
	}

	if format == output.FormatJSON {
		return out.JSON(state.Response)
	}
	ui.NewPlainRenderer(sess.uiConfig(cmd)).Results(state.Results(), query)
	return nil
}

// checkFilters rejects a sector or funding stage the service does not list
// and rewrites a case-insensitive match to the listed spelling. Location is
// matched by substring on the service side, so any value passes. When the
// list cannot be fetched the filters are sent as given.
func checkFilters(ctx context.Context, client *searchapi.Client, logger *slog.Logger, f searchapi.Filters) (searchapi.Filters, error) {
	if f.Sector == "" && f.FundingStage == "" {
		return f, nil
	}

	opts, err := client.FilterOptions(ctx)
	if err != nil || opts == nil {
		logger.Debug("skipping filter check", "error", err)
		return f, nil
	}

	if f.Sector, err = pickListed("--sector", f.Sector, opts.Sectors); err != nil {
		return f, err
	}
	if f.FundingStage, err = pickListed("--stage", f.FundingStage, opts.FundingStages); err != nil {
		return f, err
	}
	return f, nil
}

func pickListed(flag, value string, listed []string) (string, error) {
	if value == "" || len(listed) == 0 {
		return value, nil
	}
	for _, v := range listed {
		if strings.EqualFold(v, value) {
			return v, nil
		}
	}
	return "", scouterrors.New(scouterrors.ErrCodeInvalidFilter,
		fmt.Sprintf("unknown %s value %q", flag, value), nil).
		WithSuggestion("Run 'scout filters' to list valid values: " + strings.Join(listed, ", "))
}
