package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/scanner"
)

const (
	newsAPIBaseURL     = "https://newsapi.org/v2"
	defaultNewsQuery   = "finance OR \"stock market\" OR economy"
	defaultNewsPageLen = 50
)

// NewsAPIScanner queries the NewsAPI "everything" endpoint.
type NewsAPIScanner struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewNewsAPIScanner wires credentials; an empty baseURL means the public API.
func NewNewsAPIScanner(client *http.Client, baseURL, apiKey string) *NewsAPIScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if baseURL == "" {
		baseURL = newsAPIBaseURL
	}
	return &NewsAPIScanner{client: client, baseURL: strings.TrimSuffix(baseURL, "/"), apiKey: apiKey}
}

// Name identifies the strategy inside the registry.
func (n *NewsAPIScanner) Name() string {
	return "newsapi"
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Content     *string   `json:"content"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// Scan runs one query per request. Options: query, language, sources,
// pageSize. Articles keep a null content as null.
func (n *NewsAPIScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if n.apiKey == "" {
		return nil, fmt.Errorf("newsapi key is not configured for site %s", req.SiteName)
	}

	endpoint, err := buildEverythingURL(n.baseURL, req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("X-Api-Key", n.apiKey)
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request newsapi: %w", err)
	}
	defer resp.Body.Close()

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode newsapi response (%s): %w", resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK || payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi returned %s: %s %s", resp.Status, payload.Code, payload.Message)
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, item := range payload.Articles {
		if item.URL == "" {
			continue
		}
		source := item.Source.Name
		if source == "" {
			source = req.SiteName
		}
		articles = append(articles, domain.Article{
			ID:          domain.ArticleID(item.URL),
			Title:       strings.TrimSpace(item.Title),
			RawContent:  item.Content,
			URL:         item.URL,
			Source:      source,
			PublishedAt: item.PublishedAt.UTC(),
		})
	}

	return articles, nil
}

func buildEverythingURL(base string, req scanner.Request) (string, error) {
	parsed, err := url.Parse(base + "/everything")
	if err != nil {
		return "", fmt.Errorf("invalid newsapi url %s: %w", base, err)
	}

	option := func(key, fallback string) string {
		if v := strings.TrimSpace(req.Options[key]); v != "" {
			return v
		}
		return fallback
	}

	pageSize := defaultNewsPageLen
	if v, err := strconv.Atoi(option("pageSize", "")); err == nil && v > 0 {
		pageSize = v
	}

	query := parsed.Query()
	query.Set("q", option("query", defaultNewsQuery))
	query.Set("language", option("language", "en"))
	query.Set("sortBy", "publishedAt")
	query.Set("pageSize", strconv.Itoa(pageSize))
	if sources := option("sources", ""); sources != "" {
		query.Set("sources", sources)
	}
	if !req.Since.IsZero() {
		query.Set("from", req.Since.UTC().Format(time.RFC3339))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
