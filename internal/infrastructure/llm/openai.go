package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"FinNewsAnalyzer/internal/config"
	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/ports"
)

const defaultSystemPrompt = "You are a financial news analyst. Be factual and concise."

// OpenAIClient implements the summarization and sentiment capabilities on
// top of an OpenAI-compatible chat completions API.
type OpenAIClient struct {
	client       openai.Client
	model        string
	systemPrompt string
}

var _ ports.Summarizer = (*OpenAIClient)(nil)
var _ ports.SentimentScorer = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client from configuration. The SDK does not
// retry; retry policy belongs to the caller.
func NewOpenAIClient(cfg config.OpenAIConfig) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	prompt := strings.TrimSpace(cfg.SystemPrompt)
	if prompt == "" {
		prompt = defaultSystemPrompt
	}

	return &OpenAIClient{
		client:       openai.NewClient(opts...),
		model:        cfg.Model,
		systemPrompt: prompt,
	}
}

// Summarize asks the model for a summary within the word limits.
func (c *OpenAIClient) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	prompt := fmt.Sprintf("Summarize the following news article in %d to %d words. Reply with the summary only.\n\n%s",
		minLength, maxLength, text)

	content, err := c.complete(ctx, prompt, 2*maxLength+64)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// Score asks the model for a sentiment label and a probability per label.
func (c *OpenAIClient) Score(ctx context.Context, text string) (domain.SentimentPrediction, error) {
	var sb strings.Builder
	sb.WriteString("Classify the sentiment of this financial news text for investors.\n")
	sb.WriteString("Respond with JSON only: ")
	sb.WriteString(`{"label": "negative|neutral|positive", "scores": {"negative": 0.0, "neutral": 0.0, "positive": 0.0}}`)
	sb.WriteString("\nThe scores must sum to 1.\n\nText:\n")
	sb.WriteString(text)

	content, err := c.complete(ctx, sb.String(), 200)
	if err != nil {
		return domain.SentimentPrediction{}, err
	}

	var resp struct {
		Label  string             `json:"label"`
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &resp); err != nil {
		return domain.SentimentPrediction{}, fmt.Errorf("parse openai response: %w", err)
	}

	return toPrediction(resp.Label, resp.Scores)
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return response.Choices[0].Message.Content, nil
}

// toPrediction rescales the model scores so they sum to one; models rarely
// return an exact distribution.
func toPrediction(label string, scores map[string]float64) (domain.SentimentPrediction, error) {
	parsed, err := domain.ParseSentiment(label)
	if err != nil {
		return domain.SentimentPrediction{}, fmt.Errorf("%w: %v", domain.ErrInvalidDistribution, err)
	}

	dist := make(domain.Distribution, len(domain.Labels))
	var sum float64
	for name, p := range scores {
		s, err := domain.ParseSentiment(name)
		if err != nil {
			return domain.SentimentPrediction{}, fmt.Errorf("%w: %v", domain.ErrInvalidDistribution, err)
		}
		dist[s] = p
		sum += p
	}
	if sum > 0 {
		for s := range dist {
			dist[s] /= sum
		}
	}

	return domain.SentimentPrediction{Label: parsed, Distribution: dist}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
