package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"FinNewsAnalyzer/internal/domain"
)

// Render writes a human readable form of the report. The layout is for
// display only.
func Render(w io.Writer, rep domain.BatchReport) error {
	if _, err := fmt.Fprintf(w, "Batch %s generated %s\n", rep.BatchID, rep.GeneratedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if rep.Empty {
		if _, err := fmt.Fprintf(w, "EMPTY BATCH: %s\n", rep.EmptyReason); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, CountsLine(rep)); err != nil {
		return err
	}

	if len(rep.Failures) > 0 {
		rows := make([][]string, 0, len(rep.Failures))
		for _, f := range rep.Failures {
			rows = append(rows, []string{f.ArticleID, string(f.Stage), f.Reason})
		}
		if err := section(w, "Failures", []string{"Article", "Stage", "Reason"}, rows); err != nil {
			return err
		}
	}

	if avg := rep.AverageSummaryScores; avg != nil {
		rows := make([][]string, 0, len(domain.SummaryMetrics))
		for _, metric := range domain.SummaryMetrics {
			v, _ := avg.Get(metric)
			rows = append(rows, []string{metric, decimal(v)})
		}
		if err := section(w, "Summary quality", []string{"Metric", "Average"}, rows); err != nil {
			return err
		}
	}

	if sq := rep.SentimentQuality; sq != nil {
		if err := renderSentiment(w, sq); err != nil {
			return err
		}
	}

	return nil
}

// CountsLine states processed and failed counts together.
func CountsLine(rep domain.BatchReport) string {
	return fmt.Sprintf("%d articles processed successfully, %d failed", rep.ProcessedCount, rep.FailedCount)
}

func renderSentiment(w io.Writer, sq *domain.SentimentQualityReport) error {
	labels := sq.Labels
	if len(labels) == 0 {
		labels = domain.Labels
	}

	rows := make([][]string, 0, len(labels)+2)
	for _, label := range labels {
		rows = append(rows, classRow(string(label), sq.PerClass[label]))
	}
	rows = append(rows, classRow("macro avg", sq.MacroAvg), classRow("weighted avg", sq.WeightedAvg))
	rows = append(rows, []string{"accuracy", "", "", decimal(sq.Accuracy), strconv.Itoa(sq.MacroAvg.Support)})
	if err := section(w, "Sentiment quality ("+sq.LabelSetVersion+")", []string{"Label", "Precision", "Recall", "F1", "Support"}, rows); err != nil {
		return err
	}

	header := []string{"true \\ predicted"}
	for _, label := range labels {
		header = append(header, string(label))
	}
	matrix := make([][]string, 0, len(sq.ConfusionMatrix))
	for i, counts := range sq.ConfusionMatrix {
		row := []string{string(labels[i])}
		for _, c := range counts {
			row = append(row, strconv.Itoa(c))
		}
		matrix = append(matrix, row)
	}
	if err := section(w, "Confusion matrix", header, matrix); err != nil {
		return err
	}

	cs := sq.ConfidenceStats
	return section(w, "Confidence", []string{"Mean", "StdDev", "Min", "Max"},
		[][]string{{decimal(cs.Mean), decimal(cs.StdDev), decimal(cs.Min), decimal(cs.Max)}})
}

func classRow(name string, m domain.ClassMetrics) []string {
	return []string{name, decimal(m.Precision), decimal(m.Recall), decimal(m.F1), strconv.Itoa(m.Support)}
}

func decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func section(w io.Writer, title string, header []string, rows [][]string) error {
	if _, err := fmt.Fprintf(w, "\n%s\n", title); err != nil {
		return err
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("render %s: %w", title, err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render %s: %w", title, err)
	}
	return nil
}
