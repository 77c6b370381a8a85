package labels

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/ports"
)

// FileSource serves reference labels loaded from a YAML mapping of
// article ID to label.
type FileSource struct {
	labels map[string]domain.Sentiment
}

var _ ports.LabelSource = (*FileSource)(nil)

// Load reads the label file. Unknown labels are rejected up front.
func Load(path string) (*FileSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels %s: %w", path, err)
	}

	var entries map[string]string
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse labels %s: %w", path, err)
	}

	labels := make(map[string]domain.Sentiment, len(entries))
	for id, value := range entries {
		label, err := domain.ParseSentiment(value)
		if err != nil {
			return nil, fmt.Errorf("label for %s: %w", id, err)
		}
		labels[id] = label
	}
	return &FileSource{labels: labels}, nil
}

// TrueLabels returns the labels known for the given IDs.
func (s *FileSource) TrueLabels(_ context.Context, ids []string) (map[string]domain.Sentiment, error) {
	out := make(map[string]domain.Sentiment)
	for _, id := range ids {
		if label, ok := s.labels[id]; ok {
			out[id] = label
		}
	}
	return out, nil
}
