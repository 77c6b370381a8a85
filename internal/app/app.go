package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"FinNewsAnalyzer/internal/config"
	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/infrastructure/labels"
	"FinNewsAnalyzer/internal/infrastructure/llm"
	"FinNewsAnalyzer/internal/infrastructure/ml"
	"FinNewsAnalyzer/internal/infrastructure/parser"
	"FinNewsAnalyzer/internal/infrastructure/scheduler"
	"FinNewsAnalyzer/internal/infrastructure/storage"
	"FinNewsAnalyzer/internal/infrastructure/telegram"
	"FinNewsAnalyzer/internal/logging"
	"FinNewsAnalyzer/internal/ports"
	"FinNewsAnalyzer/internal/scanner"
	"FinNewsAnalyzer/internal/textnorm"
	"FinNewsAnalyzer/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	runner    *usecase.BatchRunner
	scheduler *usecase.Scheduler
	closers   []func() error

	metricsAddr net.Addr
}

// New builds the application from configuration. Optional adapters (Postgres,
// Redis, S3, Telegram, labels) are wired only when configured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewPageScanner(nil, baseLogger.With("component", "scanner.page")))
	registry.Register(parser.NewNewsAPIScanner(nil, cfg.NewsAPI.BaseURL, cfg.NewsAPI.APIKey))

	source := parser.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))

	summarizer, scorer, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Normalizer:  textnorm.NewNormalizer(),
		Summarizer:  summarizer,
		Scorer:      scorer,
		Logger:      baseLogger.With("component", "orchestrator"),
		BatchSize:   cfg.Pipeline.BatchSize,
		Concurrency: cfg.Pipeline.Concurrency,
		MaxLength:   cfg.Pipeline.MaxLength,
		MinLength:   cfg.Pipeline.MinLength,
	})

	deps := usecase.BatchDeps{
		Source:       source,
		Orchestrator: orchestrator,
		Logger:       baseLogger.With("component", "batch"),
		Keywords:     cfg.Pipeline.Keywords,
	}
	if err := a.wireAdapters(ctx, &deps); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.runner = usecase.NewBatchRunner(deps)
	a.scheduler = usecase.NewScheduler(
		scheduler.NewTickerScheduler(cfg.Scheduler.Interval),
		a.runner,
		cfg.Scheduler.Window,
		baseLogger.With("component", "scheduler"),
	)
	return a, nil
}

func newBackend(cfg config.Config) (ports.Summarizer, ports.SentimentScorer, error) {
	switch cfg.Backend {
	case config.BackendOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, nil, fmt.Errorf("openai backend requires an api key")
		}
		client := llm.NewOpenAIClient(cfg.OpenAI)
		return client, client, nil
	case config.BackendML, "":
		client := ml.NewClient(cfg.ML.InferenceURL, cfg.ML.APIKey, cfg.ML.RequestsPerSecond)
		return client, client, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func (a *Application) wireAdapters(ctx context.Context, deps *usecase.BatchDeps) error {
	cfg := a.cfg

	if dsn := cfg.Storage.Database.DSN; dsn != "" {
		db, err := openDatabase(ctx, dsn)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)

		repo := storage.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		deps.Repository = repo
		deps.Index = repo
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
		}
		deps.Index = storage.NewRedisIndex(client, cfg.Redis.Key, cfg.Redis.TTL)
	}

	sink, err := NewSink(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	deps.Sink = sink

	if cfg.Labels.Path != "" {
		src, err := labels.Load(cfg.Labels.Path)
		if err != nil {
			return err
		}
		deps.Labels = src
	}

	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier, err := telegram.NewNotifier(tg.BotToken, tg.ChatID, a.logger.With("component", "telegram"))
		if err != nil {
			return err
		}
		deps.Notifier = notifier
	}

	return nil
}

func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// NewSink returns the configured sinks, nil when none is configured.
func NewSink(ctx context.Context, cfg config.StorageConfig) (ports.ResultSink, error) {
	var sinks storage.MultiSink
	if cfg.ResultsDir != "" {
		sinks = append(sinks, storage.NewFileSink(cfg.ResultsDir))
	}
	if cfg.S3.Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3.Region))
		if err != nil {
			return nil, fmt.Errorf("unable to load aws config: %w", err)
		}
		sinks = append(sinks, storage.NewS3Sink(awsCfg, cfg.S3.Bucket, cfg.S3.Prefix))
	}

	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}

// Run performs a single batch over the configured window ending now.
func (a *Application) Run(ctx context.Context) (domain.BatchReport, error) {
	now := time.Now().In(a.cfg.Scheduler.Location())
	since := now.Add(-a.cfg.Scheduler.Window)
	a.logger.Info("batch starting", "since", since.Format(time.RFC3339))
	return a.runner.Run(ctx, since)
}

// Serve runs scheduled batches and exposes /metrics until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	var srv *http.Server
	errCh := make(chan error, 1)

	if addr := a.cfg.Metrics.Addr; addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("metrics listen %s: %w", addr, err)
		}
		a.metricsAddr = ln.Addr()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			a.logger.Info("metrics listening", "addr", ln.Addr().String())
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	shutdown := func(errs ...error) error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := a.scheduler.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
		}
		if srv != nil {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			}
		}
		return errors.Join(errs...)
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return shutdown(fmt.Errorf("start scheduler: %w", err))
	}
	a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval.String())

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}
	return shutdown(serveErr)
}

// Close releases database and cache connections.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
