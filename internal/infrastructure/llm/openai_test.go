package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinNewsAnalyzer/internal/config"
	"FinNewsAnalyzer/internal/domain"
)

func completionServer(t *testing.T, content string, requests *[]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if requests != nil {
			*requests = append(*requests, body)
		}

		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestClient(url string) *OpenAIClient {
	return NewOpenAIClient(config.OpenAIConfig{
		BaseURL: url + "/",
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
	})
}

func TestOpenAISummarize(t *testing.T) {
	var requests []map[string]any
	server := completionServer(t, "  Oil rose on supply cuts.\n", &requests)
	defer server.Close()

	summary, err := newTestClient(server.URL).Summarize(context.Background(), "Oil prices rose after producers cut supply.", 30, 5)
	require.NoError(t, err)

	assert.Equal(t, "Oil rose on supply cuts.", summary)
	require.Len(t, requests, 1)
	assert.Equal(t, "gpt-4o-mini", requests[0]["model"])
	assert.Equal(t, 0.0, requests[0]["temperature"])
	messages, ok := requests[0]["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestOpenAIScore(t *testing.T) {
	server := completionServer(t, "```json\n{\"label\":\"Positive\",\"scores\":{\"negative\":0.1,\"neutral\":0.2,\"positive\":0.8}}\n```", nil)
	defer server.Close()

	pred, err := newTestClient(server.URL).Score(context.Background(), "Profits beat expectations.")
	require.NoError(t, err)

	assert.Equal(t, domain.Positive, pred.Label)
	assert.NoError(t, pred.Distribution.Validate())
	assert.InDelta(t, 0.8/1.1, pred.Distribution[domain.Positive], 1e-9)
	assert.Equal(t, domain.Positive, pred.Distribution.Argmax())
}

func TestOpenAIScoreRejectsMalformedReply(t *testing.T) {
	server := completionServer(t, "I think it is positive.", nil)
	defer server.Close()

	_, err := newTestClient(server.URL).Score(context.Background(), "text")
	assert.Error(t, err)
}

func TestOpenAIScoreRejectsUnknownLabel(t *testing.T) {
	server := completionServer(t, `{"label":"bullish","scores":{"positive":1}}`, nil)
	defer server.Close()

	_, err := newTestClient(server.URL).Score(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrInvalidDistribution)
}

func TestOpenAIErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Summarize(context.Background(), "text", 10, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai request failed")
}
