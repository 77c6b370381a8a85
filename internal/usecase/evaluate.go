package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/evaluation"
	"FinNewsAnalyzer/internal/report"
)

// EvaluateDataset scores a labeled offline dataset without calling any
// model. ProcessedCount is the number of distinct article IDs in it.
func EvaluateDataset(ds evaluation.Dataset) (domain.BatchReport, error) {
	if len(ds.Pairs) == 0 && len(ds.Sentiment) == 0 {
		return domain.BatchReport{}, fmt.Errorf("%w: dataset has no pairs and no sentiment rows", domain.ErrInvalidInput)
	}

	rep := domain.BatchReport{
		BatchID:     uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Failures:    []domain.FailureRecord{},
	}

	ids := map[string]struct{}{}
	for _, p := range ds.Pairs {
		ids[p.ArticleID] = struct{}{}
	}
	for _, ex := range ds.Sentiment {
		ids[ex.ArticleID] = struct{}{}
	}
	rep.ProcessedCount = len(ids)

	if len(ds.Pairs) > 0 {
		avg, err := report.Aggregate(evaluation.ScoreSummaries(ds.Pairs))
		if err != nil {
			return domain.BatchReport{}, fmt.Errorf("aggregate summaries: %w", err)
		}
		rep.AverageSummaryScores = &avg
	}

	if len(ds.Sentiment) > 0 {
		trueLabels, predicted, confidences, err := ds.SentimentColumns()
		if err != nil {
			return domain.BatchReport{}, err
		}
		sq, err := evaluation.ScoreSentiment(trueLabels, predicted, confidences)
		if err != nil {
			return domain.BatchReport{}, fmt.Errorf("score sentiment: %w", err)
		}
		rep.SentimentQuality = &sq
	}

	return rep, nil
}
