package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/scout/internal/config"
	scouterrors "github.com/Aman-CERP/scout/internal/errors"
	"github.com/Aman-CERP/scout/internal/history"
	"github.com/Aman-CERP/scout/internal/logging"
	"github.com/Aman-CERP/scout/internal/orchestrator"
	"github.com/Aman-CERP/scout/internal/searchapi"
	"github.com/Aman-CERP/scout/internal/ui"
)

// annotationNoConfig marks commands that must work with a missing or
// broken configuration.
const annotationNoConfig = "scout/no-config"

const metricsShutdownTimeout = 2 * time.Second

// session carries what a single command invocation builds: the effective
// config, the logger and, with --metrics-addr, the metrics endpoint.
type session struct {
	flags *rootFlags

	cfg      *config.Config
	logger   *slog.Logger
	cleanups []func()

	registry    *prometheus.Registry
	metricsSrv  *http.Server
	metricsAddr string
}

func (s *session) start(cmd *cobra.Command) error {
	if cmd.Annotations[annotationNoConfig] == "true" {
		s.logger = logging.NewStderr("")
		return nil
	}

	cfg, err := loadConfig(s.flags)
	if err != nil {
		return err
	}
	s.cfg = cfg

	if err := s.setupLogging(cmd); err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		if err := s.startMetrics(cfg.Metrics.Addr); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) stop() error {
	if s.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := s.metricsSrv.Shutdown(ctx); err != nil {
			s.logger.Warn("metrics server shutdown failed", "error", err)
		}
		s.metricsSrv = nil
	}

	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
	return nil
}

// startMetrics serves the registry on addr until stop.
func (s *session) startMetrics(addr string) error {
	s.registry = prometheus.NewRegistry()
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return scouterrors.New(scouterrors.ErrCodeConfigInvalid,
			fmt.Sprintf("cannot listen on metrics address %s", addr), err).
			WithSuggestion("Pick a free port with --metrics-addr or SCOUT_METRICS_ADDR")
	}
	s.metricsAddr = ln.Addr().String()

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.metricsSrv = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("metrics server error", "error", err)
		}
	}()

	s.logger.Info("metrics endpoint listening", "addr", s.metricsAddr)
	return nil
}

// prometheusRegisterer returns the session registry, or nil when metrics
// are off so components skip registration entirely.
func (s *session) prometheusRegisterer() prometheus.Registerer {
	if s.registry == nil {
		return nil
	}
	return s.registry
}

func (s *session) newClient() (*searchapi.Client, error) {
	opts := []searchapi.Option{
		searchapi.WithTimeout(s.cfg.APITimeout()),
		searchapi.WithLogger(s.logger),
	}
	if reg := s.prometheusRegisterer(); reg != nil {
		opts = append(opts, searchapi.WithPrometheus(reg))
	}
	return searchapi.New(s.cfg.API.BaseURL, opts...)
}

// newHistory opens the history file, or an in-memory list when history is
// disabled by config or flag.
func (s *session) newHistory(disabled bool) *history.Store {
	if disabled || s.cfg.History.Disabled {
		return history.New(nil, s.logger)
	}
	return history.New(history.NewFileStorage(s.cfg.History.Path), s.logger)
}

func (s *session) newOrchestrator(client searchapi.Searcher, store *history.Store, limit int) *orchestrator.Orchestrator {
	if limit <= 0 {
		limit = s.cfg.Search.Limit
	}
	opts := []orchestrator.Option{
		orchestrator.WithDebounce(s.cfg.DebounceDuration()),
		orchestrator.WithLimit(limit),
		orchestrator.WithLogger(s.logger),
	}
	if reg := s.prometheusRegisterer(); reg != nil {
		opts = append(opts, orchestrator.WithPrometheus(reg))
	}
	return orchestrator.New(client, store, opts...)
}

func (s *session) uiConfig(cmd *cobra.Command) ui.Config {
	return ui.NewConfig(cmd.OutOrStdout(),
		ui.WithNoColor(s.cfg == nil || s.cfg.UI.NoColor),
		ui.WithDebug(s.flags.debug))
}
