package app

import (
	"context"
	"fmt"
	"io"

	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/evaluation"
	"FinNewsAnalyzer/internal/ports"
	"FinNewsAnalyzer/internal/report"
	"FinNewsAnalyzer/internal/usecase"
)

// Evaluate scores an offline dataset file, renders the report to w and,
// when sink is set, stores it there as well.
func Evaluate(ctx context.Context, path string, w io.Writer, sink ports.ResultSink) (domain.BatchReport, error) {
	ds, err := evaluation.LoadDataset(path)
	if err != nil {
		return domain.BatchReport{}, err
	}

	rep, err := usecase.EvaluateDataset(ds)
	if err != nil {
		return domain.BatchReport{}, err
	}

	if err := report.Render(w, rep); err != nil {
		return rep, fmt.Errorf("render report: %w", err)
	}

	if sink != nil {
		if _, err := sink.WriteReport(ctx, rep); err != nil {
			return rep, fmt.Errorf("write report: %w", err)
		}
	}
	return rep, nil
}
