package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/ports"
)

// Schema creates the table used by PostgresRepository.
const Schema = `CREATE TABLE IF NOT EXISTS processed_articles (
    external_id          TEXT PRIMARY KEY,
    title                TEXT,
    url                  TEXT,
    source               TEXT,
    published_at         TIMESTAMPTZ,
    summary              TEXT,
    sentiment_label      TEXT,
    sentiment_confidence DOUBLE PRECISION,
    sentiment_scores     JSONB,
    rouge1_f1            DOUBLE PRECISION,
    rouge2_f1            DOUBLE PRECISION,
    rougel_f1            DOUBLE PRECISION,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const processedTable = "processed_articles"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists processed articles into Postgres and doubles
// as the processed-article index.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.ResultRepository = (*PostgresRepository)(nil)
var _ ports.ProcessedIndex = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the table when it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// AlreadyProcessed returns a map with IDs that already exist in storage.
func (r *PostgresRepository) AlreadyProcessed(ctx context.Context, ids []string) (map[string]bool, error) {
	if r.db == nil || len(ids) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := psql.Select("external_id").
		From(processedTable).
		Where("external_id = ANY(?)", pq.StringArray(ids)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build processed query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query processed: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan id: %w", err)
		}
		result[id] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// MarkProcessed records bare IDs; rows written by SaveProcessed are kept.
func (r *PostgresRepository) MarkProcessed(ctx context.Context, ids []string) error {
	if r.db == nil || len(ids) == 0 {
		return nil
	}

	builder := psql.Insert(processedTable).Columns("external_id")
	for _, id := range ids {
		builder = builder.Values(id)
	}
	query, args, err := builder.Suffix("ON CONFLICT (external_id) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build mark query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// SaveProcessed upserts the processed article snapshot.
func (r *PostgresRepository) SaveProcessed(ctx context.Context, article domain.ProcessedArticle, score *domain.SummaryQualityScore) error {
	if r.db == nil {
		return nil
	}

	scores, err := json.Marshal(article.SentimentDistribution)
	if err != nil {
		return fmt.Errorf("marshal sentiment scores: %w", err)
	}

	var rouge1, rouge2, rougeL sql.NullFloat64
	if score != nil {
		rouge1 = sql.NullFloat64{Float64: score.Rouge1F1, Valid: true}
		rouge2 = sql.NullFloat64{Float64: score.Rouge2F1, Valid: true}
		rougeL = sql.NullFloat64{Float64: score.RougeLF1, Valid: true}
	}

	query, args, err := psql.Insert(processedTable).
		Columns("external_id", "title", "url", "source", "published_at", "summary",
			"sentiment_label", "sentiment_confidence", "sentiment_scores",
			"rouge1_f1", "rouge2_f1", "rougel_f1").
		Values(article.ArticleID, article.Title, article.URL, article.Source, article.PublishedAt, article.Summary,
			string(article.SentimentLabel), article.SentimentConfidence, string(scores),
			rouge1, rouge2, rougeL).
		Suffix(`ON CONFLICT (external_id) DO UPDATE
              SET title = EXCLUDED.title,
                  url = EXCLUDED.url,
                  source = EXCLUDED.source,
                  published_at = EXCLUDED.published_at,
                  summary = EXCLUDED.summary,
                  sentiment_label = EXCLUDED.sentiment_label,
                  sentiment_confidence = EXCLUDED.sentiment_confidence,
                  sentiment_scores = EXCLUDED.sentiment_scores,
                  rouge1_f1 = EXCLUDED.rouge1_f1,
                  rouge2_f1 = EXCLUDED.rouge2_f1,
                  rougel_f1 = EXCLUDED.rougel_f1,
                  updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert processed: %w", err)
	}

	return nil
}
