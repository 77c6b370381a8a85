package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/ports"
)

// Client talks to an external inference service for summarization and
// sentiment scoring.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
}

var _ ports.Summarizer = (*Client)(nil)
var _ ports.SentimentScorer = (*Client)(nil)

// NewClient creates a reusable HTTP client. requestsPerSecond <= 0 disables
// pacing.
func NewClient(endpoint, apiKey string, requestsPerSecond float64) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 60 * time.Second},
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Summarize requests a summary bounded by the word limits.
func (c *Client) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	payload := map[string]any{
		"text":       text,
		"max_length": maxLength,
		"min_length": minLength,
	}

	var resp struct {
		Summary string `json:"summary"`
	}

	if err := c.post(ctx, "/summarize", payload, &resp); err != nil {
		return "", err
	}

	return resp.Summary, nil
}

// Score requests the sentiment label and per-label probabilities.
func (c *Client) Score(ctx context.Context, text string) (domain.SentimentPrediction, error) {
	var resp struct {
		Label  string             `json:"label"`
		Scores map[string]float64 `json:"scores"`
	}

	if err := c.post(ctx, "/sentiment", map[string]any{"text": text}, &resp); err != nil {
		return domain.SentimentPrediction{}, err
	}

	return toPrediction(resp.Label, resp.Scores)
}

// toPrediction maps a wire response onto the label set. Label names are
// matched case-insensitively; unknown labels are rejected.
func toPrediction(label string, scores map[string]float64) (domain.SentimentPrediction, error) {
	parsed, err := domain.ParseSentiment(label)
	if err != nil {
		return domain.SentimentPrediction{}, fmt.Errorf("%w: %v", domain.ErrInvalidDistribution, err)
	}

	dist := make(domain.Distribution, len(scores))
	for name, p := range scores {
		s, err := domain.ParseSentiment(name)
		if err != nil {
			return domain.SentimentPrediction{}, fmt.Errorf("%w: %v", domain.ErrInvalidDistribution, err)
		}
		dist[s] = p
	}

	return domain.SentimentPrediction{Label: parsed, Distribution: dist}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
