package domain

import "errors"

// Batch-level errors.
var (
	// ErrSourceUnavailable means the article source delivered nothing usable;
	// the batch aborts with zero results.
	ErrSourceUnavailable = errors.New("article source unavailable")

	// ErrEmptyResult flags a batch that ended with zero processable articles.
	// It marks the report and is not returned as an error.
	ErrEmptyResult = errors.New("no processable articles")

	// ErrInvalidInput is a precondition violation on a metrics or aggregate call.
	ErrInvalidInput = errors.New("invalid input")
)

// Stage failure causes.
var (
	ErrNullContent         = errors.New("article content is null")
	ErrEmptyInput          = errors.New("empty input")
	ErrEmptySummary        = errors.New("summarizer returned empty summary")
	ErrSummaryLength       = errors.New("summary length outside requested bounds")
	ErrInvalidDistribution = errors.New("invalid sentiment distribution")
	ErrInvalidArticle      = errors.New("invalid processed article")
)
