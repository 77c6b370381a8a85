package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"FinNewsAnalyzer/internal/domain"
)

type trimNormalizer struct{}

func (trimNormalizer) Normalize(raw string) (string, error) {
	return strings.Join(strings.Fields(raw), " "), nil
}

// headSummarizer keeps the leading words of the text.
type headSummarizer struct {
	calls  atomic.Int32
	failOn string
	err    error
}

func (s *headSummarizer) Summarize(_ context.Context, text string, maxLength, _ int) (string, error) {
	s.calls.Add(1)
	if s.failOn != "" && strings.Contains(text, s.failOn) {
		if s.err != nil {
			return "", s.err
		}
		return "", errors.New("model unavailable")
	}
	words := strings.Fields(text)
	return strings.Join(words[:min(len(words), maxLength)], " "), nil
}

type fixedScorer struct {
	calls      atomic.Int32
	prediction domain.SentimentPrediction
	onScore    func()
}

func (s *fixedScorer) Score(context.Context, string) (domain.SentimentPrediction, error) {
	s.calls.Add(1)
	if s.onScore != nil {
		s.onScore()
	}
	return domain.SentimentPrediction{
		Label:        s.prediction.Label,
		Distribution: s.prediction.Distribution.Clone(),
	}, nil
}

func positivePrediction() domain.SentimentPrediction {
	return domain.SentimentPrediction{
		Label: domain.Positive,
		Distribution: domain.Distribution{
			domain.Negative: 0.1,
			domain.Neutral:  0.2,
			domain.Positive: 0.7,
		},
	}
}

type mockSummarizer struct {
	mock.Mock
}

func (m *mockSummarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	args := m.Called(ctx, text, maxLength, minLength)
	return args.String(0), args.Error(1)
}

type stubSource struct {
	articles []domain.Article
	err      error
}

func (s stubSource) Fetch(context.Context, time.Time) ([]domain.Article, error) {
	return s.articles, s.err
}

type memoryIndex struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (m *memoryIndex) AlreadyProcessed(_ context.Context, ids []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]bool{}
	for _, id := range ids {
		if m.seen[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (m *memoryIndex) MarkProcessed(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	for _, id := range ids {
		m.seen[id] = true
	}
	return nil
}

type staticLabels map[string]domain.Sentiment

func (s staticLabels) TrueLabels(_ context.Context, ids []string) (map[string]domain.Sentiment, error) {
	out := map[string]domain.Sentiment{}
	for _, id := range ids {
		if l, ok := s[id]; ok {
			out[id] = l
		}
	}
	return out, nil
}

type recordingSink struct {
	batchID string
	records []domain.ResultRecord
	report  *domain.BatchReport
	err     error
}

func (s *recordingSink) WriteResults(_ context.Context, batchID string, records []domain.ResultRecord) (string, error) {
	s.batchID = batchID
	s.records = records
	return "mem://" + batchID + "/results.json", s.err
}

func (s *recordingSink) WriteReport(_ context.Context, rep domain.BatchReport) (string, error) {
	s.report = &rep
	return "mem://" + rep.BatchID + "/report.json", nil
}

type recordingRepo struct {
	saved []string
}

func (r *recordingRepo) SaveProcessed(_ context.Context, article domain.ProcessedArticle, _ *domain.SummaryQualityScore) error {
	r.saved = append(r.saved, article.ArticleID)
	return nil
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	n.messages = append(n.messages, digest)
	return nil
}
