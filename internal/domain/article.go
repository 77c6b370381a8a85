package domain

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// Article is a raw news record delivered by a source.
type Article struct {
	ID          string
	Title       string
	RawContent  *string
	URL         string
	Source      string
	PublishedAt time.Time
}

// NewArticle builds an article with an ID derived from its URL.
func NewArticle(url, title, content, source string, publishedAt time.Time) Article {
	return Article{
		ID:          ArticleID(url),
		Title:       title,
		RawContent:  &content,
		URL:         url,
		Source:      source,
		PublishedAt: publishedAt,
	}
}

// ArticleID derives a stable identifier from the article URL.
func ArticleID(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return fmt.Sprintf("%x", sum)[:16]
}

// Content returns the raw content and whether it was provided at all.
func (a Article) Content() (string, bool) {
	if a.RawContent == nil {
		return "", false
	}
	return *a.RawContent, true
}

// ProcessedArticle is the result of running an article through every stage.
type ProcessedArticle struct {
	ArticleID             string
	Title                 string
	URL                   string
	Source                string
	PublishedAt           time.Time
	OriginalText          string
	CleanedText           string
	Summary               string
	SentimentLabel        Sentiment
	SentimentConfidence   float64
	SentimentDistribution Distribution
}
