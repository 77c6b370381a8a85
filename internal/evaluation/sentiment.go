package evaluation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"FinNewsAnalyzer/internal/domain"
)

// ScoreSentiment compares predicted labels with reference labels and
// summarizes the scorer confidences.
func ScoreSentiment(trueLabels, predicted []domain.Sentiment, confidences []float64) (domain.SentimentQualityReport, error) {
	if len(confidences) == 0 {
		return domain.SentimentQualityReport{}, fmt.Errorf("%w: empty confidence sequence", domain.ErrInvalidInput)
	}
	if len(trueLabels) != len(predicted) || len(trueLabels) != len(confidences) {
		return domain.SentimentQualityReport{}, fmt.Errorf("%w: sequence lengths differ (true=%d predicted=%d confidences=%d)",
			domain.ErrInvalidInput, len(trueLabels), len(predicted), len(confidences))
	}

	n := len(domain.Labels)
	matrix := make([][]int, n)
	for i := range matrix {
		matrix[i] = make([]int, n)
	}

	for i := range trueLabels {
		row, ok := domain.LabelIndex(trueLabels[i])
		if !ok {
			return domain.SentimentQualityReport{}, fmt.Errorf("%w: unknown true label %q at %d", domain.ErrInvalidInput, trueLabels[i], i)
		}
		col, ok := domain.LabelIndex(predicted[i])
		if !ok {
			return domain.SentimentQualityReport{}, fmt.Errorf("%w: unknown predicted label %q at %d", domain.ErrInvalidInput, predicted[i], i)
		}
		matrix[row][col]++
	}

	for i, c := range confidences {
		if math.IsNaN(c) || c < 0 || c > 1 {
			return domain.SentimentQualityReport{}, fmt.Errorf("%w: confidence %v at %d outside [0,1]", domain.ErrInvalidInput, c, i)
		}
	}

	report := domain.SentimentQualityReport{
		LabelSetVersion: domain.LabelSetVersion,
		Labels:          append([]domain.Sentiment(nil), domain.Labels...),
		PerClass:        make(map[domain.Sentiment]domain.ClassMetrics, n),
		ConfusionMatrix: matrix,
		ConfidenceStats: confidenceStats(confidences),
	}

	total := len(trueLabels)
	var correct int
	var macro, weighted domain.ClassMetrics
	for i, label := range domain.Labels {
		var predictedCount, support int
		for j := 0; j < n; j++ {
			predictedCount += matrix[j][i]
			support += matrix[i][j]
		}
		tp := matrix[i][i]
		correct += tp

		m := domain.ClassMetrics{
			Precision: ratio(tp, predictedCount),
			Recall:    ratio(tp, support),
			Support:   support,
		}
		m.F1 = fmeasure(m.Precision, m.Recall)
		report.PerClass[label] = m

		macro.Precision += m.Precision / float64(n)
		macro.Recall += m.Recall / float64(n)
		macro.F1 += m.F1 / float64(n)

		w := float64(support) / float64(total)
		weighted.Precision += m.Precision * w
		weighted.Recall += m.Recall * w
		weighted.F1 += m.F1 * w
	}

	macro.Support = total
	weighted.Support = total
	report.MacroAvg = macro
	report.WeightedAvg = weighted
	report.Accuracy = ratio(correct, total)

	return report, nil
}

func confidenceStats(values []float64) domain.ConfidenceStats {
	mean, variance := stat.PopMeanVariance(values, nil)
	return domain.ConfidenceStats{
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}
}
