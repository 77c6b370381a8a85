package domain

import "fmt"

// Stage names a step of per-article processing.
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageSummarize Stage = "summarize"
	StageScore     Stage = "score"
	StageAssemble  Stage = "assemble"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageNormalize, StageSummarize, StageScore, StageAssemble}

// StageFailure records why one article could not be processed.
type StageFailure struct {
	Stage     Stage
	ArticleID string
	Cause     error
}

func (f StageFailure) Error() string {
	return fmt.Sprintf("article %s failed at %s: %v", f.ArticleID, f.Stage, f.Cause)
}

func (f StageFailure) Unwrap() error {
	return f.Cause
}

// Reason is the human readable cause.
func (f StageFailure) Reason() string {
	if f.Cause == nil {
		return "unknown"
	}
	return f.Cause.Error()
}

// Outcome is the per-article result of a batch: either Success or Failure.
// Consumers switch on the concrete type.
type Outcome interface {
	OutcomeArticleID() string
	isOutcome()
}

// Success carries a fully processed article.
type Success struct {
	Article ProcessedArticle
}

// Failure carries the stage failure of an article.
type Failure struct {
	StageFailure
}

func (s Success) OutcomeArticleID() string { return s.Article.ArticleID }
func (f Failure) OutcomeArticleID() string { return f.ArticleID }

func (Success) isOutcome() {}
func (Failure) isOutcome() {}
