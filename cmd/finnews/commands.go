package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"FinNewsAnalyzer/internal/app"
	"FinNewsAnalyzer/internal/config"
	"FinNewsAnalyzer/internal/logging"
	"FinNewsAnalyzer/internal/ports"
	"FinNewsAnalyzer/internal/report"
)

type cli struct {
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "finnews",
		Short: "Financial news summarization and sentiment pipeline",
		Long: `finnews fetches financial news, summarizes each article, scores its
market sentiment and publishes a quality report for every batch.

Example usage:
  finnews run                       # process one batch and exit
  finnews serve                     # run batches on a schedule, expose /metrics
  finnews evaluate dataset.yaml     # score an offline labeled dataset`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.init() },
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (overrides FINNEWS_CONFIG)")

	root.AddCommand(c.runCmd(), c.serveCmd(), c.evaluateCmd())
	return root
}

func (c *cli) init() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}
	if c.cfgFile != "" {
		if err := os.Setenv("FINNEWS_CONFIG", c.cfgFile); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

func (c *cli) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process a single batch and print its report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer application.Close()

			rep, runErr := application.Run(ctx)
			if rep.BatchID != "" {
				if err := report.Render(cmd.OutOrStdout(), rep); err != nil {
					return err
				}
			}
			return runErr
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run batches on the configured interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Serve(ctx)
		},
	}
}

func (c *cli) evaluateCmd() *cobra.Command {
	var store bool
	cmd := &cobra.Command{
		Use:   "evaluate <dataset>",
		Short: "Score an offline dataset of summaries and sentiment labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var sink ports.ResultSink
			if store {
				var err error
				if sink, err = app.NewSink(ctx, c.cfg.Storage); err != nil {
					return err
				}
			}

			rep, err := app.Evaluate(ctx, args[0], cmd.OutOrStdout(), sink)
			if err != nil {
				return err
			}
			c.logger.Info("evaluation done", "batch_id", rep.BatchID, "articles", rep.ProcessedCount)
			return nil
		},
	}
	cmd.Flags().BoolVar(&store, "store", false, "also write the report to the configured sinks")
	return cmd
}
