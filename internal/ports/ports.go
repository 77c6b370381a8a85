package ports

import (
	"context"
	"time"

	"FinNewsAnalyzer/internal/domain"
)

// ArticleSource pulls fresh articles from upstream providers.
type ArticleSource interface {
	Fetch(ctx context.Context, since time.Time) ([]domain.Article, error)
}

// TextNormalizer turns raw article content into cleaned text.
type TextNormalizer interface {
	Normalize(raw string) (string, error)
}

// Summarizer produces a summary of at least minLength and at most
// maxLength words. An empty string signals an internal failure.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error)
}

// SentimentScorer classifies text into the fixed label set.
type SentimentScorer interface {
	Score(ctx context.Context, text string) (domain.SentimentPrediction, error)
}

// LabelSource supplies reference sentiment labels keyed by article ID.
type LabelSource interface {
	TrueLabels(ctx context.Context, ids []string) (map[string]domain.Sentiment, error)
}

// ProcessedIndex remembers article IDs that already went through a batch.
type ProcessedIndex interface {
	AlreadyProcessed(ctx context.Context, ids []string) (map[string]bool, error)
	MarkProcessed(ctx context.Context, ids []string) error
}

// ResultRepository persists processed articles for history and audit.
type ResultRepository interface {
	SaveProcessed(ctx context.Context, article domain.ProcessedArticle, score *domain.SummaryQualityScore) error
}

// ResultSink writes batch artifacts to a batch-identified location.
type ResultSink interface {
	WriteResults(ctx context.Context, batchID string, records []domain.ResultRecord) (string, error)
	WriteReport(ctx context.Context, report domain.BatchReport) (string, error)
}

// Notifier streams rendered reports to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
