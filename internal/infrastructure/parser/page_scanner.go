package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"

	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/scanner"
)

const userAgent = "Mozilla/5.0 (compatible; FinNewsAnalyzer/1.0)"

var (
	contentSelectors = []string{"article", ".article-content", ".article-body", "#article-body", ".story-content"}
	titleSelectors   = []string{"h1", ".article-title", ".headline"}
)

// PageScanner downloads single article pages and extracts title and body.
type PageScanner struct {
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewPageScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewPageScanner(client *http.Client, logger *slog.Logger) *PageScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PageScanner{client: client, logger: logger, now: time.Now}
}

// Name identifies the strategy inside the registry.
func (p *PageScanner) Name() string {
	return "page"
}

// Scan fetches every target page. A page that cannot be fetched is skipped;
// the scan fails only when no page could be fetched at all.
func (p *PageScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if len(req.Targets) == 0 {
		return nil, fmt.Errorf("no targets provided for site %s", req.SiteName)
	}

	var (
		results []domain.Article
		lastErr error
		fetched int
	)
	for _, target := range req.Targets {
		doc, err := p.fetchDocument(ctx, target.URL)
		if err != nil {
			lastErr = fmt.Errorf("target %s: %w", target.Name, err)
			p.logger.Warn("page skipped", "site", req.SiteName, "url", target.URL, "error", err)
			continue
		}
		fetched++

		article := parsePage(doc, target.URL, req.SiteName, p.now())
		if !req.Since.IsZero() && article.PublishedAt.Before(req.Since) {
			continue
		}
		results = append(results, article)
	}

	if fetched == 0 && lastErr != nil {
		return nil, lastErr
	}
	return results, nil
}

func (p *PageScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func parsePage(doc *goquery.Document, pageURL, siteName string, now time.Time) domain.Article {
	title := extractTitle(doc)
	publishedAt := extractPublished(doc, now)

	source := siteName
	if source == "" {
		if u, err := url.Parse(pageURL); err == nil {
			source = u.Host
		}
	}

	// Readability works on the full markup, so render it before selectors
	// strip scripts from the shared document.
	html, _ := doc.Html()
	content := extractContent(doc)
	if content == "" {
		content = readableText(html)
	}

	return domain.NewArticle(pageURL, title, content, source, publishedAt)
}

func extractTitle(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	if text := strings.TrimSpace(doc.Find("title").First().Text()); text != "" {
		return text
	}
	return "Untitled"
}

func extractContent(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		node := doc.Find(selector).First()
		if node.Length() == 0 {
			continue
		}
		node.Find("script, style").Remove()
		if text := collapse(node.Text()); text != "" {
			return text
		}
	}

	paragraphs := make([]string, 0)
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := collapse(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, " ")
}

func readableText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return ""
	}
	var buf strings.Builder
	if err := article.RenderText(&buf); err != nil {
		return ""
	}
	return collapse(buf.String())
}

func extractPublished(doc *goquery.Document, now time.Time) time.Time {
	candidates := []string{
		doc.Find(`meta[property="article:published_time"]`).AttrOr("content", ""),
		doc.Find("time[datetime]").First().AttrOr("datetime", ""),
	}
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw)); err == nil {
			return t.UTC()
		}
	}
	return now.UTC()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
