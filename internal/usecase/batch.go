package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/evaluation"
	"FinNewsAnalyzer/internal/metrics"
	"FinNewsAnalyzer/internal/ports"
	"FinNewsAnalyzer/internal/report"
)

const digestHeadlines = 10

// BatchDeps wires all driven adapters into the batch workflow. Everything
// except Source and Orchestrator is optional.
type BatchDeps struct {
	Source       ports.ArticleSource
	Orchestrator *Orchestrator
	Index        ports.ProcessedIndex
	Labels       ports.LabelSource
	Repository   ports.ResultRepository
	Sink         ports.ResultSink
	Notifier     ports.Notifier
	Logger       *slog.Logger
	Keywords     []string

	Now     func() time.Time
	BatchID func() string
}

// BatchRunner implements one fetch, process, evaluate and publish cycle.
type BatchRunner struct {
	source       ports.ArticleSource
	orchestrator *Orchestrator
	index        ports.ProcessedIndex
	labels       ports.LabelSource
	repository   ports.ResultRepository
	sink         ports.ResultSink
	notifier     ports.Notifier
	logger       *slog.Logger
	keywords     []string
	now          func() time.Time
	batchID      func() string
}

// NewBatchRunner constructs the batch component.
func NewBatchRunner(deps BatchDeps) *BatchRunner {
	b := &BatchRunner{
		source:       deps.Source,
		orchestrator: deps.Orchestrator,
		index:        deps.Index,
		labels:       deps.Labels,
		repository:   deps.Repository,
		sink:         deps.Sink,
		notifier:     deps.Notifier,
		logger:       deps.Logger,
		keywords:     deps.Keywords,
		now:          deps.Now,
		batchID:      deps.BatchID,
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}
	if b.now == nil {
		b.now = func() time.Time { return time.Now().UTC() }
	}
	if b.batchID == nil {
		b.batchID = uuid.NewString
	}
	return b
}

// Run fetches articles published since the given time, processes the new
// ones and publishes the results. Sink errors do not stop other sinks; they
// are returned joined next to a complete report.
func (b *BatchRunner) Run(ctx context.Context, since time.Time) (domain.BatchReport, error) {
	if b.source == nil || b.orchestrator == nil {
		return domain.BatchReport{}, fmt.Errorf("batch runner is not configured")
	}

	batchID := b.batchID()
	logger := b.logger.With("batch_id", batchID)

	articles, err := b.source.Fetch(ctx, since)
	if err != nil {
		return domain.BatchReport{}, fmt.Errorf("fetch articles: %w: %w", domain.ErrSourceUnavailable, err)
	}
	logger.Info("articles fetched", "count", len(articles), "since", since.Format(time.RFC3339))

	articles, err = b.skipProcessed(ctx, articles)
	if err != nil {
		return domain.BatchReport{}, err
	}

	res, procErr := b.orchestrator.Process(ctx, articles, ProcessOptions{Keywords: b.keywords})
	results := res.Results()

	pairs := make([]evaluation.Pair, 0, len(results))
	for _, art := range results {
		pairs = append(pairs, evaluation.Pair{ArticleID: art.ArticleID, Reference: art.CleanedText, Generated: art.Summary})
	}
	scores := evaluation.ScoreSummaries(pairs)

	var errs []error
	sentiment, err := b.sentimentQuality(ctx, results)
	if err != nil {
		logger.Warn("sentiment evaluation skipped", "error", err)
		errs = append(errs, err)
	}

	rep := report.Build(report.Input{
		BatchID:       batchID,
		Outcomes:      res.Outcomes,
		SummaryScores: scores,
		Sentiment:     sentiment,
		EmptyReason:   res.EmptyReason,
		GeneratedAt:   b.now(),
	})
	metrics.RecordBatch(rep.ProcessedCount, rep.FailedCount)
	logger.Info("batch processed", "processed", rep.ProcessedCount, "failed", rep.FailedCount, "filtered", res.Filtered, "empty", rep.Empty)

	if procErr != nil {
		return rep, fmt.Errorf("process batch: %w", procErr)
	}

	errs = append(errs, b.publish(ctx, logger, rep, results, scores)...)
	return rep, errors.Join(errs...)
}

func (b *BatchRunner) skipProcessed(ctx context.Context, articles []domain.Article) ([]domain.Article, error) {
	if b.index == nil || len(articles) == 0 {
		return articles, nil
	}

	ids := make([]string, len(articles))
	for i, art := range articles {
		ids[i] = art.ID
	}

	skip, err := b.index.AlreadyProcessed(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load processed: %w", err)
	}

	fresh := make([]domain.Article, 0, len(articles))
	seen := make(map[string]bool, len(articles))
	for _, art := range articles {
		if skip[art.ID] || seen[art.ID] {
			continue
		}
		seen[art.ID] = true
		fresh = append(fresh, art)
	}
	return fresh, nil
}

// sentimentQuality scores predictions against reference labels when a label
// source knows at least one of the processed articles.
func (b *BatchRunner) sentimentQuality(ctx context.Context, results []domain.ProcessedArticle) (*domain.SentimentQualityReport, error) {
	if b.labels == nil || len(results) == 0 {
		return nil, nil
	}

	ids := make([]string, len(results))
	for i, art := range results {
		ids[i] = art.ArticleID
	}
	known, err := b.labels.TrueLabels(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load true labels: %w", err)
	}

	var trueLabels, predicted []domain.Sentiment
	var confidences []float64
	for _, art := range results {
		label, ok := known[art.ArticleID]
		if !ok {
			continue
		}
		trueLabels = append(trueLabels, label)
		predicted = append(predicted, art.SentimentLabel)
		confidences = append(confidences, art.SentimentConfidence)
	}
	if len(trueLabels) == 0 {
		return nil, nil
	}

	rep, err := evaluation.ScoreSentiment(trueLabels, predicted, confidences)
	if err != nil {
		return nil, fmt.Errorf("score sentiment: %w", err)
	}
	return &rep, nil
}

func (b *BatchRunner) publish(ctx context.Context, logger *slog.Logger, rep domain.BatchReport, results []domain.ProcessedArticle, scores []domain.SummaryQualityScore) []error {
	var errs []error
	fail := func(sink string, err error) {
		metrics.RecordSinkError(sink)
		logger.Error("sink failed", "sink", sink, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", sink, err))
	}

	byID := make(map[string]*domain.SummaryQualityScore, len(scores))
	for i := range scores {
		byID[scores[i].ArticleID] = &scores[i]
	}

	if b.sink != nil {
		if len(results) > 0 {
			records := make([]domain.ResultRecord, 0, len(results))
			for _, art := range results {
				records = append(records, domain.NewResultRecord(art, byID[art.ArticleID]))
			}
			if location, err := b.sink.WriteResults(ctx, rep.BatchID, records); err != nil {
				fail("results", err)
			} else {
				logger.Info("results written", "location", location, "records", len(records))
			}
		}
		if location, err := b.sink.WriteReport(ctx, rep); err != nil {
			fail("report", err)
		} else {
			logger.Info("report written", "location", location)
		}
	}

	if b.repository != nil {
		for _, art := range results {
			if err := b.repository.SaveProcessed(ctx, art, byID[art.ArticleID]); err != nil {
				fail("repository", fmt.Errorf("persist article %s: %w", art.ArticleID, err))
			}
		}
	}

	if b.index != nil && len(results) > 0 {
		ids := make([]string, len(results))
		for i, art := range results {
			ids[i] = art.ArticleID
		}
		if err := b.index.MarkProcessed(ctx, ids); err != nil {
			fail("index", err)
		}
	}

	if b.notifier != nil {
		message, err := buildDigestMessage(rep, results)
		if err != nil {
			fail("notifier", err)
		} else if err := b.notifier.PublishDigest(ctx, message); err != nil {
			fail("notifier", err)
		}
	}

	return errs
}

func buildDigestMessage(rep domain.BatchReport, results []domain.ProcessedArticle) (string, error) {
	var buf bytes.Buffer
	if err := report.Render(&buf, rep); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	if len(results) == 0 {
		return buf.String(), nil
	}

	var digest strings.Builder
	digest.WriteString(buf.String())
	digest.WriteString("\nHeadlines\n")
	for i, art := range results {
		if i == digestHeadlines {
			fmt.Fprintf(&digest, "... and %d more\n", len(results)-digestHeadlines)
			break
		}
		fmt.Fprintf(&digest, "- %s [%s %.2f]\n%s\n%s\n\n",
			art.Title,
			art.SentimentLabel,
			art.SentimentConfidence,
			art.Summary,
			art.URL)
	}
	return digest.String(), nil
}
