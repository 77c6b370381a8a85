package domain

import "time"

// Metric names of summary quality scores.
const (
	MetricRouge1F1 = "rouge1_f1"
	MetricRouge2F1 = "rouge2_f1"
	MetricRougeLF1 = "rougeL_f1"
)

// SummaryMetrics lists the metric names in display order.
var SummaryMetrics = []string{MetricRouge1F1, MetricRouge2F1, MetricRougeLF1}

// SummaryScores holds one value per summary metric.
type SummaryScores struct {
	Rouge1F1 float64 `json:"rouge1_f1"`
	Rouge2F1 float64 `json:"rouge2_f1"`
	RougeLF1 float64 `json:"rougeL_f1"`
}

// Get returns the value of a metric by name.
func (s SummaryScores) Get(metric string) (float64, bool) {
	switch metric {
	case MetricRouge1F1:
		return s.Rouge1F1, true
	case MetricRouge2F1:
		return s.Rouge2F1, true
	case MetricRougeLF1:
		return s.RougeLF1, true
	}
	return 0, false
}

// SummaryQualityScore scores one generated summary against its reference.
type SummaryQualityScore struct {
	ArticleID string `json:"article_id"`
	SummaryScores
}

// SummaryAverages is the per-metric mean across a batch.
type SummaryAverages = SummaryScores

// ClassMetrics are the per-label classification scores.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ConfidenceStats summarize the scorer confidences of a batch.
type ConfidenceStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// SentimentQualityReport is computed once per batch.
type SentimentQualityReport struct {
	LabelSetVersion string                     `json:"label_set_version"`
	Labels          []Sentiment                `json:"labels"`
	PerClass        map[Sentiment]ClassMetrics `json:"per_class"`
	ConfusionMatrix [][]int                    `json:"confusion_matrix"`
	ConfidenceStats ConfidenceStats            `json:"confidence_stats"`
	Accuracy        float64                    `json:"accuracy"`
	MacroAvg        ClassMetrics               `json:"macro_avg"`
	WeightedAvg     ClassMetrics               `json:"weighted_avg"`
}

// FailureRecord is the serializable form of a StageFailure.
type FailureRecord struct {
	ArticleID string `json:"article_id"`
	Stage     Stage  `json:"stage"`
	Reason    string `json:"reason"`
}

// BatchReport is the final artifact of a batch run.
type BatchReport struct {
	BatchID              string                  `json:"batch_id"`
	GeneratedAt          time.Time               `json:"generated_at"`
	ProcessedCount       int                     `json:"processed_count"`
	FailedCount          int                     `json:"failed_count"`
	Failures             []FailureRecord         `json:"failures"`
	AverageSummaryScores *SummaryAverages        `json:"average_summary_scores"`
	SentimentQuality     *SentimentQualityReport `json:"sentiment_quality"`
	Empty                bool                    `json:"empty"`
	EmptyReason          string                  `json:"empty_reason,omitempty"`
}

// ResultRecord is the persisted per-article record. Field names are a
// stable contract for downstream consumers.
type ResultRecord struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	OriginalText string          `json:"original_text"`
	Summary      string          `json:"summary"`
	Source       string          `json:"source"`
	URL          string          `json:"url"`
	PublishedAt  time.Time       `json:"published_at"`
	Sentiment    SentimentRecord `json:"sentiment"`
	Evaluation   *SummaryScores  `json:"evaluation"`
}

// SentimentRecord is the sentiment part of a ResultRecord.
type SentimentRecord struct {
	Label      Sentiment    `json:"label"`
	Confidence float64      `json:"confidence"`
	Scores     Distribution `json:"scores"`
}

// NewResultRecord joins a processed article with its optional evaluation.
func NewResultRecord(article ProcessedArticle, score *SummaryQualityScore) ResultRecord {
	rec := ResultRecord{
		ID:           article.ArticleID,
		Title:        article.Title,
		OriginalText: article.OriginalText,
		Summary:      article.Summary,
		Source:       article.Source,
		URL:          article.URL,
		PublishedAt:  article.PublishedAt,
		Sentiment: SentimentRecord{
			Label:      article.SentimentLabel,
			Confidence: article.SentimentConfidence,
			Scores:     article.SentimentDistribution.Clone(),
		},
	}
	if score != nil {
		s := score.SummaryScores
		rec.Evaluation = &s
	}
	return rec
}
