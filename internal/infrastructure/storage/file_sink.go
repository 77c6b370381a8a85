package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/ports"
)

const fileTimestampLayout = "20060102_150405"

// FileSink writes batch artifacts as indented JSON into a directory.
type FileSink struct {
	dir string
	now func() time.Time
}

var _ ports.ResultSink = (*FileSink)(nil)

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir, now: func() time.Time { return time.Now().UTC() }}
}

// WriteResults stores results_<timestamp>_<batch>.json and returns its path.
func (s *FileSink) WriteResults(ctx context.Context, batchID string, records []domain.ResultRecord) (string, error) {
	if records == nil {
		records = []domain.ResultRecord{}
	}
	return s.write(ctx, "results", batchID, records)
}

// WriteReport stores report_<timestamp>_<batch>.json and returns its path.
func (s *FileSink) WriteReport(ctx context.Context, report domain.BatchReport) (string, error) {
	return s.write(ctx, "report", report.BatchID, report)
}

func (s *FileSink) write(ctx context.Context, kind, batchID string, v any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", kind, err)
	}

	name := fmt.Sprintf("%s_%s_%s.json", kind, s.now().Format(fileTimestampLayout), batchID)
	path := filepath.Join(s.dir, name)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", kind, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("rename %s: %w", kind, err)
	}
	return path, nil
}
