package storage

import (
	"context"
	"errors"
	"strings"

	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/ports"
)

// MultiSink fans artifacts out to several sinks. Every sink is attempted;
// locations of the successful writes are joined with ", ".
type MultiSink []ports.ResultSink

var _ ports.ResultSink = MultiSink(nil)

func (m MultiSink) WriteResults(ctx context.Context, batchID string, records []domain.ResultRecord) (string, error) {
	return m.each(func(s ports.ResultSink) (string, error) {
		return s.WriteResults(ctx, batchID, records)
	})
}

func (m MultiSink) WriteReport(ctx context.Context, report domain.BatchReport) (string, error) {
	return m.each(func(s ports.ResultSink) (string, error) {
		return s.WriteReport(ctx, report)
	})
}

func (m MultiSink) each(write func(ports.ResultSink) (string, error)) (string, error) {
	var locations []string
	var errs []error
	for _, s := range m {
		location, err := write(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		locations = append(locations, location)
	}
	return strings.Join(locations, ", "), errors.Join(errs...)
}
