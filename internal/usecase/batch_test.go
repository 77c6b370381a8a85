package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/evaluation"
)

var batchTime = time.Date(2025, time.May, 5, 8, 0, 0, 0, time.UTC)

func newTestRunner(source stubSource, deps BatchDeps) *BatchRunner {
	deps.Source = source
	if deps.Orchestrator == nil {
		deps.Orchestrator = newTestOrchestrator(&headSummarizer{failOn: "BROKEN"}, &fixedScorer{prediction: positivePrediction()}, 1, 0)
	}
	deps.Now = func() time.Time { return batchTime }
	deps.BatchID = func() string { return "batch-1" }
	return NewBatchRunner(deps)
}

func TestBatchRunnerSourceUnavailable(t *testing.T) {
	runner := newTestRunner(stubSource{err: errors.New("connection refused")}, BatchDeps{})

	rep, err := runner.Run(context.Background(), batchTime.Add(-24*time.Hour))
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Zero(t, rep.ProcessedCount)
	assert.Empty(t, rep.BatchID)
}

func TestBatchRunnerFullCycle(t *testing.T) {
	a1 := article("https://news.example/b1", "Stocks rallied after the jobs report beat forecasts.")
	a2 := article("https://news.example/b2", "BROKEN feed entry.")
	a3 := article("https://news.example/b3", "Treasury yields fell as investors sought safety.")

	sink := &recordingSink{}
	repo := &recordingRepo{}
	notifier := &recordingNotifier{}
	index := &memoryIndex{}

	runner := newTestRunner(stubSource{articles: []domain.Article{a1, a2, a3}}, BatchDeps{
		Index:      index,
		Labels:     staticLabels{a1.ID: domain.Positive, a3.ID: domain.Negative},
		Repository: repo,
		Sink:       sink,
		Notifier:   notifier,
	})

	rep, err := runner.Run(context.Background(), batchTime.Add(-24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "batch-1", rep.BatchID)
	assert.Equal(t, batchTime, rep.GeneratedAt)
	assert.Equal(t, 2, rep.ProcessedCount)
	assert.Equal(t, 1, rep.FailedCount)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, a2.ID, rep.Failures[0].ArticleID)
	assert.Equal(t, domain.StageSummarize, rep.Failures[0].Stage)

	// head summarizer returns the whole cleaned text, so the summaries match
	// their references exactly.
	require.NotNil(t, rep.AverageSummaryScores)
	assert.InDelta(t, 1.0, rep.AverageSummaryScores.Rouge1F1, 1e-12)

	require.NotNil(t, rep.SentimentQuality)
	assert.InDelta(t, 0.5, rep.SentimentQuality.Accuracy, 1e-12)
	assert.InDelta(t, 0.7, rep.SentimentQuality.ConfidenceStats.Mean, 1e-12)

	assert.Equal(t, "batch-1", sink.batchID)
	require.Len(t, sink.records, 2)
	assert.Equal(t, a1.ID, sink.records[0].ID)
	require.NotNil(t, sink.records[0].Evaluation)
	require.NotNil(t, sink.report)
	assert.Equal(t, []string{a1.ID, a3.ID}, repo.saved)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "2 articles processed successfully, 1 failed")
	assert.Contains(t, notifier.messages[0], a1.Title)

	again, err := runner.Run(context.Background(), batchTime.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, again.ProcessedCount)
	assert.Equal(t, 1, again.FailedCount, "failed articles are retried on the next run")
}

func TestBatchRunnerWithoutLabelsSkipsSentimentQuality(t *testing.T) {
	runner := newTestRunner(stubSource{articles: []domain.Article{
		article("https://news.example/l1", "Retail sales rose in April."),
	}}, BatchDeps{})

	rep, err := runner.Run(context.Background(), batchTime)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.ProcessedCount)
	assert.Nil(t, rep.SentimentQuality)
}

func TestBatchRunnerFlagsEmptyBatch(t *testing.T) {
	sink := &recordingSink{}
	runner := newTestRunner(stubSource{articles: []domain.Article{
		article("https://news.example/e1", "A new bakery opened."),
	}}, BatchDeps{Sink: sink, Keywords: []string{"inflation"}})

	rep, err := runner.Run(context.Background(), batchTime)
	require.NoError(t, err)
	assert.True(t, rep.Empty)
	assert.Contains(t, rep.EmptyReason, "inflation")
	assert.Nil(t, rep.AverageSummaryScores)
	assert.Nil(t, sink.records)
	require.NotNil(t, sink.report)
	assert.True(t, sink.report.Empty)
}

func TestBatchRunnerJoinsSinkErrors(t *testing.T) {
	sinkErr := errors.New("disk full")
	sink := &recordingSink{err: sinkErr}
	repo := &recordingRepo{}
	runner := newTestRunner(stubSource{articles: []domain.Article{
		article("https://news.example/j1", "Factory orders increased."),
	}}, BatchDeps{Sink: sink, Repository: repo})

	rep, err := runner.Run(context.Background(), batchTime)
	assert.ErrorIs(t, err, sinkErr)
	assert.Equal(t, 1, rep.ProcessedCount)
	assert.Len(t, repo.saved, 1, "other sinks still run")
}

func TestEvaluateDataset(t *testing.T) {
	ds := evaluation.Dataset{
		Pairs: []evaluation.Pair{
			{ArticleID: "a1", Reference: "Oil prices rose", Generated: "Oil prices rose"},
			{ArticleID: "a2", Reference: "Gold fell", Generated: ""},
		},
		Sentiment: []evaluation.LabeledExample{
			{ArticleID: "a1", True: "positive", Predicted: "positive", Confidence: 0.9},
			{ArticleID: "a3", True: "negative", Predicted: "positive", Confidence: 0.6},
			{ArticleID: "a4", True: "neutral", Predicted: "neutral", Confidence: 0.8},
		},
	}

	rep, err := EvaluateDataset(ds)
	require.NoError(t, err)

	assert.Equal(t, 4, rep.ProcessedCount)
	require.NotNil(t, rep.AverageSummaryScores)
	assert.InDelta(t, 0.5, rep.AverageSummaryScores.Rouge1F1, 1e-12)
	require.NotNil(t, rep.SentimentQuality)
	assert.InDelta(t, 0.7667, rep.SentimentQuality.ConfidenceStats.Mean, 0.001)
	assert.NotEmpty(t, rep.BatchID)
}

func TestEvaluateDatasetEmpty(t *testing.T) {
	_, err := EvaluateDataset(evaluation.Dataset{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsBatch(t *testing.T) {
	repo := &recordingRepo{}
	runner := newTestRunner(stubSource{articles: []domain.Article{
		article("https://news.example/s1", "Housing starts climbed."),
	}}, BatchDeps{Repository: repo})

	driver := &manualDriver{}
	s := NewScheduler(driver, runner, 24*time.Hour, nil)
	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, driver.job)

	driver.job(batchTime)
	assert.Len(t, repo.saved, 1)

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}
