package main

import (
	"context"
	"emailcount/internal/batch"
	"emailcount/internal/config"
	"emailcount/internal/input"
	"emailcount/pkg/emailcount/tomba"
	"emailcount/pkg/logger"
	"emailcount/pkg/metrics"
	"emailcount/pkg/ratelimit"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// countOptions holds the command line overrides of the count command.
type countOptions struct {
	inputPath  string
	domains    []string
	maxResults int
}

// countCommand constructs the 'count' subcommand that runs one batch of
// email count lookups and writes the records to the configured output.
func countCommand(a *app) *cobra.Command {
	var opts countOptions

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Looks up the email count of every input domain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if !cmd.Flags().Changed("input") {
				if _, err := os.Stat(opts.inputPath); errors.Is(err, fs.ErrNotExist) {
					opts.inputPath = ""
				}
			}

			return runCount(ctx, a.cfg, opts, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
		},
	}

	cmd.Flags().StringVarP(&opts.inputPath, "input", "i", "input.json", "Input File Path (JSON or YAML)")
	cmd.Flags().StringSliceVar(&opts.domains, "domains", nil, "Domains to look up, overriding the input file")
	cmd.Flags().IntVar(&opts.maxResults, "max-results", 0, "Maximum number of records, overriding the input file")

	return cmd
}

// runCount executes a single batch run. It returns an error when the input is
// unusable, the output cannot be opened, or the run itself fails.
func runCount(ctx context.Context, cfg *config.Config, opts countOptions,
	reg prometheus.Registerer, gatherer prometheus.Gatherer,
) error {
	runID := uuid.New()
	ctx = logger.WithRunID(ctx, runID.String())

	logger.Info(ctx, "Starting Tomba Email-Count run...")

	in, err := input.Load(opts.inputPath, cfg.Batch.MaxResults)
	if err != nil {
		return fmt.Errorf("could not load input: %w", err)
	}
	if len(opts.domains) > 0 {
		in.SetDomains(opts.domains)
	}
	if opts.maxResults > 0 {
		in.MaxResults = opts.maxResults
	}
	if err := in.Validate(); err != nil {
		return err
	}

	counter, err := tomba.New(&http.Client{Timeout: cfg.Tomba.Timeout}, cfg.Tomba.BaseURL, in.TombaAPIKey, in.TombaAPISecret)
	if err != nil {
		return err
	}

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		mp, err := metrics.NewMeterProvider(reg)
		if err != nil {
			return err
		}
		defer func() {
			if err := mp.Shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.Warn(ctx, "could not shut down meter provider", zap.Error(err))
			}
		}()

		recorder, err = metrics.NewRecorder(mp)
		if err != nil {
			return err
		}
	}

	limiter, err := ratelimit.New(ratelimit.Options{
		Strategy: ratelimit.Strategy(cfg.RateLimit.Strategy),
		Capacity: cfg.RateLimit.Capacity,
		Window:   cfg.RateLimit.Window,
		OnWait:   recorder.ObserveWait,
	})
	if err != nil {
		return err
	}

	sink, err := newSink(ctx, cfg, runID)
	if err != nil {
		return fmt.Errorf("could not open %s output: %w", cfg.Output.Backend, err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn(ctx, "could not close output", zap.Error(err))
		}
	}()

	processor := batch.New(counter, limiter, sink, batch.Options{Recorder: recorder})

	g, gctx := errgroup.WithContext(ctx)
	serverCtx, stopServer := context.WithCancel(gctx)
	defer stopServer()

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(metrics.ServerOptions{
			Addr:     cfg.Metrics.Addr,
			Path:     cfg.Metrics.Path,
			Pprof:    cfg.Metrics.Pprof,
			Gatherer: gatherer,
		})
		g.Go(func() error {
			return metrics.Serve(serverCtx, srv, cfg.GracefulShutdownTimeout)
		})
	}

	g.Go(func() error {
		defer stopServer()

		_, _, err := processor.Run(gctx, in.Domains, in.MaxResults)

		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Tomba Email-Count run completed")

	return nil
}
