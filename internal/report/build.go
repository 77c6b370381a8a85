package report

import (
	"fmt"
	"time"

	"FinNewsAnalyzer/internal/domain"
)

// Input collects everything a batch report is built from.
type Input struct {
	BatchID       string
	Outcomes      []domain.Outcome
	SummaryScores []domain.SummaryQualityScore
	Sentiment     *domain.SentimentQualityReport
	// EmptyReason overrides the default reason of an empty batch.
	EmptyReason string
	GeneratedAt time.Time
}

// Build assembles the immutable report of a batch. A batch without a single
// processed article is flagged as empty instead of being aggregated.
func Build(in Input) domain.BatchReport {
	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	rep := domain.BatchReport{
		BatchID:     in.BatchID,
		GeneratedAt: generatedAt,
		Failures:    []domain.FailureRecord{},
	}

	for _, outcome := range in.Outcomes {
		switch o := outcome.(type) {
		case domain.Success:
			rep.ProcessedCount++
		case domain.Failure:
			rep.FailedCount++
			rep.Failures = append(rep.Failures, domain.FailureRecord{
				ArticleID: o.ArticleID,
				Stage:     o.Stage,
				Reason:    o.Reason(),
			})
		}
	}

	if rep.ProcessedCount == 0 {
		rep.Empty = true
		rep.EmptyReason = in.EmptyReason
		if rep.EmptyReason == "" {
			rep.EmptyReason = defaultEmptyReason(len(in.Outcomes))
		}
		return rep
	}

	if avg, err := Aggregate(in.SummaryScores); err == nil {
		rep.AverageSummaryScores = &avg
	}
	if in.Sentiment != nil {
		s := *in.Sentiment
		rep.SentimentQuality = &s
	}

	return rep
}

func defaultEmptyReason(total int) string {
	if total == 0 {
		return fmt.Sprintf("%v: no articles in batch", domain.ErrEmptyResult)
	}
	return fmt.Sprintf("%v: all %d articles failed", domain.ErrEmptyResult, total)
}
