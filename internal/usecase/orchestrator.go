package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/metrics"
	"FinNewsAnalyzer/internal/ports"
)

const (
	defaultBatchSize = 16
	defaultMaxLength = 150
	defaultMinLength = 40
)

// OrchestratorDeps wires the text capabilities into the orchestrator.
type OrchestratorDeps struct {
	Normalizer ports.TextNormalizer
	Summarizer ports.Summarizer
	Scorer     ports.SentimentScorer
	Logger     *slog.Logger

	BatchSize   int
	Concurrency int
	MaxLength   int
	MinLength   int
}

// ProcessOptions tunes a single Process call.
type ProcessOptions struct {
	// Keywords keeps only articles whose cleaned text contains at least one
	// of them, case-insensitively. Empty means no filtering.
	Keywords []string
}

// BatchResult holds one outcome per processed article in input order.
type BatchResult struct {
	Outcomes []domain.Outcome
	// Filtered counts articles dropped by the keyword filter.
	Filtered    int
	Empty       bool
	EmptyReason string
}

// Results returns the successfully processed articles in input order.
func (r BatchResult) Results() []domain.ProcessedArticle {
	out := make([]domain.ProcessedArticle, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if s, ok := o.(domain.Success); ok {
			out = append(out, s.Article)
		}
	}
	return out
}

// Failures returns the stage failures in input order.
func (r BatchResult) Failures() []domain.StageFailure {
	var out []domain.StageFailure
	for _, o := range r.Outcomes {
		if f, ok := o.(domain.Failure); ok {
			out = append(out, f.StageFailure)
		}
	}
	return out
}

// Orchestrator drives articles through normalize, summarize, score and
// assemble. A failing stage only affects its own article.
type Orchestrator struct {
	normalizer  ports.TextNormalizer
	summarizer  ports.Summarizer
	scorer      ports.SentimentScorer
	logger      *slog.Logger
	batchSize   int
	concurrency int
	maxLength   int
	minLength   int
}

// NewOrchestrator constructs the orchestrator with defaults for unset sizes.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	o := &Orchestrator{
		normalizer:  deps.Normalizer,
		summarizer:  deps.Summarizer,
		scorer:      deps.Scorer,
		logger:      deps.Logger,
		batchSize:   deps.BatchSize,
		concurrency: deps.Concurrency,
		maxLength:   deps.MaxLength,
		minLength:   deps.MinLength,
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.batchSize <= 0 {
		o.batchSize = defaultBatchSize
	}
	if o.concurrency <= 0 {
		o.concurrency = 1
	}
	if o.maxLength <= 0 {
		o.maxLength = defaultMaxLength
	}
	if o.minLength <= 0 {
		o.minLength = min(defaultMinLength, o.maxLength)
	}
	return o
}

// run is the working state of one article.
type run struct {
	article     domain.Article
	original    string
	cleaned     string
	summary     string
	prediction  domain.SentimentPrediction
	failure     *domain.StageFailure
	filtered    bool
	interrupted bool
}

func (r *run) pending() bool {
	return r.failure == nil && !r.filtered && !r.interrupted
}

// Process runs every article through the stages. Cancelling ctx stops new
// article work; the outcomes finished so far are returned with ctx.Err().
func (o *Orchestrator) Process(ctx context.Context, articles []domain.Article, opts ProcessOptions) (BatchResult, error) {
	var result BatchResult
	if len(articles) == 0 {
		return result, nil
	}

	keywords := normalizeKeywords(opts.Keywords)
	result.Outcomes = make([]domain.Outcome, 0, len(articles))

	var candidates int
	for start := 0; start < len(articles); start += o.batchSize {
		end := min(start+o.batchSize, len(articles))
		chunk := articles[start:end]

		if err := ctx.Err(); err != nil {
			return result, err
		}

		runs, err := o.processChunk(ctx, chunk, keywords)
		for i := range runs {
			r := &runs[i]
			if r.interrupted {
				return result, ctx.Err()
			}
			if r.filtered {
				result.Filtered++
				continue
			}
			if r.failure == nil || r.failure.Stage != domain.StageNormalize {
				candidates++
			}
			result.Outcomes = append(result.Outcomes, o.assemble(r))
		}
		if err != nil {
			return result, err
		}
	}

	if len(keywords) > 0 && candidates == 0 && result.Filtered > 0 {
		result.Empty = true
		result.EmptyReason = fmt.Sprintf("%v: no article matched keywords %s", domain.ErrEmptyResult, strings.Join(keywords, ", "))
		o.logger.Warn("keyword filter left no articles", "keywords", keywords, "filtered", result.Filtered)
	}

	return result, nil
}

// processChunk prepares every article sequentially and then runs the model
// calls, concurrently when configured. Each worker only touches its own run.
func (o *Orchestrator) processChunk(ctx context.Context, chunk []domain.Article, keywords []string) ([]run, error) {
	runs := make([]run, len(chunk))

	if o.concurrency <= 1 {
		for i, article := range chunk {
			if ctx.Err() != nil {
				for j := i; j < len(runs); j++ {
					runs[j].interrupted = true
				}
				return runs, ctx.Err()
			}
			runs[i] = o.prepare(article, keywords)
			o.infer(ctx, &runs[i])
		}
		return runs, nil
	}

	for i, article := range chunk {
		runs[i] = o.prepare(article, keywords)
	}

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i := range runs {
		if !runs[i].pending() {
			continue
		}
		g.Go(func() error {
			o.infer(ctx, &runs[i])
			return nil
		})
	}
	_ = g.Wait()

	return runs, nil
}

func (o *Orchestrator) prepare(article domain.Article, keywords []string) run {
	r := run{article: article}
	started := time.Now()

	content, ok := article.Content()
	if !ok {
		o.fail(&r, domain.StageNormalize, domain.ErrNullContent, started)
		return r
	}
	r.original = content

	cleaned, err := o.normalizer.Normalize(content)
	if err != nil {
		o.fail(&r, domain.StageNormalize, err, started)
		return r
	}
	r.cleaned = cleaned
	o.succeed(&r, domain.StageNormalize, started)

	if len(keywords) > 0 && !matchesAny(cleaned, keywords) {
		r.filtered = true
		o.logger.Debug("article filtered by keywords", "article_id", article.ID)
	}
	return r
}

// infer runs the summarize and score stages. These are the only calls that
// may run concurrently across articles.
func (o *Orchestrator) infer(ctx context.Context, r *run) {
	if !r.pending() {
		return
	}
	if ctx.Err() != nil {
		r.interrupted = true
		return
	}

	started := time.Now()
	if strings.TrimSpace(r.cleaned) == "" {
		o.fail(r, domain.StageSummarize, domain.ErrEmptyInput, started)
		return
	}

	maxLength := o.maxLength
	minLength := min(o.minLength, wordCount(r.cleaned))
	summary, err := o.summarizer.Summarize(ctx, r.cleaned, maxLength, minLength)
	if err != nil {
		if ctx.Err() != nil {
			r.interrupted = true
			return
		}
		o.fail(r, domain.StageSummarize, err, started)
		return
	}
	if err := checkSummary(summary, minLength, maxLength); err != nil {
		o.fail(r, domain.StageSummarize, err, started)
		return
	}
	r.summary = strings.TrimSpace(summary)
	o.succeed(r, domain.StageSummarize, started)

	started = time.Now()
	prediction, err := o.scorer.Score(ctx, r.summary)
	if err != nil {
		if ctx.Err() != nil {
			r.interrupted = true
			return
		}
		o.fail(r, domain.StageScore, err, started)
		return
	}
	if err := checkPrediction(prediction); err != nil {
		o.fail(r, domain.StageScore, err, started)
		return
	}
	r.prediction = prediction
	o.succeed(r, domain.StageScore, started)
}

func (o *Orchestrator) assemble(r *run) domain.Outcome {
	if r.failure != nil {
		return domain.Failure{StageFailure: *r.failure}
	}

	started := time.Now()
	confidence := r.prediction.Distribution[r.prediction.Label]
	switch {
	case r.article.ID == "":
		o.fail(r, domain.StageAssemble, fmt.Errorf("%w: missing article id", domain.ErrInvalidArticle), started)
	case confidence < 0 || confidence > 1:
		o.fail(r, domain.StageAssemble, fmt.Errorf("%w: confidence %v outside [0,1]", domain.ErrInvalidArticle, confidence), started)
	}
	if r.failure != nil {
		return domain.Failure{StageFailure: *r.failure}
	}
	o.succeed(r, domain.StageAssemble, started)

	return domain.Success{Article: domain.ProcessedArticle{
		ArticleID:             r.article.ID,
		Title:                 r.article.Title,
		URL:                   r.article.URL,
		Source:                r.article.Source,
		PublishedAt:           r.article.PublishedAt,
		OriginalText:          r.original,
		CleanedText:           r.cleaned,
		Summary:               r.summary,
		SentimentLabel:        r.prediction.Label,
		SentimentConfidence:   confidence,
		SentimentDistribution: r.prediction.Distribution.Clone(),
	}}
}

func (o *Orchestrator) fail(r *run, stage domain.Stage, cause error, started time.Time) {
	r.failure = &domain.StageFailure{Stage: stage, ArticleID: r.article.ID, Cause: cause}
	metrics.RecordStage(string(stage), metrics.StatusFailed, time.Since(started).Seconds())
	o.logger.Warn("stage failed", "article_id", r.article.ID, "stage", stage, "error", cause)
}

func (o *Orchestrator) succeed(r *run, stage domain.Stage, started time.Time) {
	metrics.RecordStage(string(stage), metrics.StatusOK, time.Since(started).Seconds())
	o.logger.Debug("stage done", "article_id", r.article.ID, "stage", stage)
}

func checkSummary(summary string, minLength, maxLength int) error {
	if strings.TrimSpace(summary) == "" {
		return domain.ErrEmptySummary
	}
	if n := wordCount(summary); n < minLength || n > maxLength {
		return fmt.Errorf("%w: %d words, want %d..%d", domain.ErrSummaryLength, n, minLength, maxLength)
	}
	return nil
}

func checkPrediction(p domain.SentimentPrediction) error {
	if _, ok := domain.LabelIndex(p.Label); !ok {
		return fmt.Errorf("%w: unknown label %q", domain.ErrInvalidDistribution, p.Label)
	}
	if err := p.Distribution.Validate(); err != nil {
		return err
	}
	if top := p.Distribution.Argmax(); p.Distribution[p.Label] < p.Distribution[top] {
		return fmt.Errorf("%w: label %s is not the most probable (%s)", domain.ErrInvalidDistribution, p.Label, top)
	}
	return nil
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
