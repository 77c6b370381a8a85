package domain

import (
	"fmt"
	"math"
	"strings"
)

// Sentiment is a classification label.
type Sentiment string

const (
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
	Positive Sentiment = "positive"
)

// LabelSetVersion changes whenever Labels changes.
const LabelSetVersion = "v1"

// DistributionTolerance bounds how far a distribution sum may drift from 1.
const DistributionTolerance = 1e-6

// Labels is the fixed label set in sorted order. Confusion matrix axes and
// every rendered table follow this order.
var Labels = []Sentiment{Negative, Neutral, Positive}

// LabelIndex returns the position of s in Labels.
func LabelIndex(s Sentiment) (int, bool) {
	for i, l := range Labels {
		if l == s {
			return i, true
		}
	}
	return -1, false
}

// ParseSentiment accepts a label name in any case.
func ParseSentiment(raw string) (Sentiment, error) {
	s := Sentiment(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := LabelIndex(s); !ok {
		return "", fmt.Errorf("unknown sentiment label %q", raw)
	}
	return s, nil
}

// Distribution maps each label to its probability.
type Distribution map[Sentiment]float64

// Validate checks the keys are exactly Labels and the values form a
// probability distribution.
func (d Distribution) Validate() error {
	if len(d) != len(Labels) {
		return fmt.Errorf("%w: expected %d labels, got %d", ErrInvalidDistribution, len(Labels), len(d))
	}

	var sum float64
	for _, label := range Labels {
		p, ok := d[label]
		if !ok {
			return fmt.Errorf("%w: missing label %s", ErrInvalidDistribution, label)
		}
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: probability %v for %s out of range", ErrInvalidDistribution, p, label)
		}
		sum += p
	}

	if math.Abs(sum-1) > DistributionTolerance {
		return fmt.Errorf("%w: probabilities sum to %v", ErrInvalidDistribution, sum)
	}
	return nil
}

// Argmax returns the most probable label; ties resolve to the earlier label
// in Labels.
func (d Distribution) Argmax() Sentiment {
	best := Labels[0]
	for _, label := range Labels[1:] {
		if d[label] > d[best] {
			best = label
		}
	}
	return best
}

// Clone returns an independent copy.
func (d Distribution) Clone() Distribution {
	out := make(Distribution, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// SentimentPrediction is the output contract of a sentiment scorer.
type SentimentPrediction struct {
	Label        Sentiment
	Distribution Distribution
}
