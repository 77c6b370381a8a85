package evaluation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"FinNewsAnalyzer/internal/domain"
)

// Dataset is an offline evaluation set. JSON files parse as well since
// YAML is a superset of JSON.
type Dataset struct {
	Pairs     []Pair            `yaml:"pairs"`
	Sentiment []LabeledExample `yaml:"sentiment"`
}

// LabeledExample is one reference/prediction row of a sentiment dataset.
type LabeledExample struct {
	ArticleID  string  `yaml:"article_id"`
	True       string  `yaml:"true"`
	Predicted  string  `yaml:"predicted"`
	Confidence float64 `yaml:"confidence"`
}

// LoadDataset reads a dataset file.
func LoadDataset(path string) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset %s: %w", path, err)
	}

	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return Dataset{}, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return ds, nil
}

// SentimentColumns splits the labeled examples into the three sequences
// expected by ScoreSentiment.
func (d Dataset) SentimentColumns() ([]domain.Sentiment, []domain.Sentiment, []float64, error) {
	trueLabels := make([]domain.Sentiment, 0, len(d.Sentiment))
	predicted := make([]domain.Sentiment, 0, len(d.Sentiment))
	confidences := make([]float64, 0, len(d.Sentiment))

	for i, ex := range d.Sentiment {
		t, err := domain.ParseSentiment(ex.True)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: row %d: %v", domain.ErrInvalidInput, i, err)
		}
		p, err := domain.ParseSentiment(ex.Predicted)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: row %d: %v", domain.ErrInvalidInput, i, err)
		}
		trueLabels = append(trueLabels, t)
		predicted = append(predicted, p)
		confidences = append(confidences, ex.Confidence)
	}

	return trueLabels, predicted, confidences, nil
}
