// Package cmd provides the CLI commands for scout.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/scout/internal/config"
	scouterrors "github.com/Aman-CERP/scout/internal/errors"
	"github.com/Aman-CERP/scout/internal/logging"
	"github.com/Aman-CERP/scout/pkg/version"
)

// annotationFileLog marks commands whose stdout belongs to a full-screen UI,
// so logs must go to the log file rather than stderr.
const annotationFileLog = "scout/file-log"

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	debug       bool
	noColor     bool
	apiURL      string
	configPath  string
	metricsAddr string
}

// NewRootCmd creates the root command for the scout CLI.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	sess := &session{flags: flags}

	cmd := &cobra.Command{
		Use:   "scout",
		Short: "Search a startup directory from the terminal",
		Long: `scout searches a startup directory served by a remote search API.

Run 'scout' with no arguments for the interactive search screen: results
update as you type, filters narrow by sector, funding stage and location,
and your last five searches are kept for one-key recall.

One-shot commands ('scout search', 'scout filters', 'scout health') print
plain text or JSON for scripts.`,
		Version:       version.Version,
		Annotations:   map[string]string{annotationFileLog: "true"},
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, sess)
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return sess.start(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return sess.stop()
		},
	}

	cmd.SetVersionTemplate("scout version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging to ~/.scout/logs/")
	cmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Search API base URL (overrides SCOUT_API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a config file layered over the user config")
	cmd.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")

	cmd.AddCommand(newTUICmd(sess))
	cmd.AddCommand(newSearchCmd(sess))
	cmd.AddCommand(newFiltersCmd(sess))
	cmd.AddCommand(newHealthCmd(sess))
	cmd.AddCommand(newHistoryCmd(sess))
	cmd.AddCommand(newConfigCmd(sess))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command until it finishes or the process is
// interrupted, printing any error to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprint(os.Stderr, scouterrors.FormatForCLI(err))
	}
	return err
}

// setupLogging picks the log destination for cmd: the rotating file for
// --debug and full-screen commands, stderr warnings for everything else.
func (s *session) setupLogging(cmd *cobra.Command) error {
	toFile := s.flags.debug || cmd.Annotations[annotationFileLog] == "true"
	if !toFile {
		s.logger = logging.NewStderr("")
		return nil
	}

	logCfg := s.cfg.LogSetup()
	if s.flags.debug {
		logCfg.Level = "debug"
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	s.logger = logger
	s.cleanups = append(s.cleanups, cleanup)
	slog.SetDefault(logger)

	if s.flags.debug {
		slog.Info("Debug logging enabled",
			slog.String("log_file", logCfg.FilePath),
			slog.String("version", version.Version),
			slog.String("command", cmd.CommandPath()))
	}
	return nil
}

// loadConfig reads the layered configuration and applies flag overrides.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	if flags.apiURL != "" {
		cfg.API.BaseURL = flags.apiURL
	}
	if flags.metricsAddr != "" {
		cfg.Metrics.Addr = flags.metricsAddr
	}
	if flags.noColor {
		cfg.UI.NoColor = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, scouterrors.ConfigError("invalid configuration: "+err.Error(), err)
	}
	return cfg, nil
}
