// Package report reduces per-article scores into batch reports and renders
// them for humans.
package report

import (
	"fmt"
	"sort"

	"FinNewsAnalyzer/internal/domain"
)

// Aggregate returns the arithmetic mean of every summary metric. Values are
// summed in ascending order so the result does not depend on input order.
func Aggregate(scores []domain.SummaryQualityScore) (domain.SummaryAverages, error) {
	if len(scores) == 0 {
		return domain.SummaryAverages{}, fmt.Errorf("%w: no summary scores to aggregate", domain.ErrInvalidInput)
	}

	r1 := make([]float64, len(scores))
	r2 := make([]float64, len(scores))
	rl := make([]float64, len(scores))
	for i, s := range scores {
		r1[i] = s.Rouge1F1
		r2[i] = s.Rouge2F1
		rl[i] = s.RougeLF1
	}

	return domain.SummaryAverages{
		Rouge1F1: mean(r1),
		Rouge2F1: mean(r2),
		RougeLF1: mean(rl),
	}, nil
}

func mean(values []float64) float64 {
	sort.Float64s(values)
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
