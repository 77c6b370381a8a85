package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"FinNewsAnalyzer/internal/config"
	"FinNewsAnalyzer/internal/domain"
	"FinNewsAnalyzer/internal/ports"
	"FinNewsAnalyzer/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// Fetch iterates over configured sites and executes their scanners. The
// same article reported by two sites is kept once.
func (s *StrategySource) Fetch(ctx context.Context, since time.Time) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch", "sites", len(s.sites), "since", since.Format(time.RFC3339))

	var aggregated []domain.Article
	seen := map[string]struct{}{}
	for _, site := range s.sites {
		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "targets", len(site.Targets))
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		req := scanner.Request{
			Since:    since,
			SiteName: site.Name,
			Options:  site.Options,
			Targets:  toScannerTargets(site.Targets),
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
		}

		var added int
		for _, article := range results {
			if _, ok := seen[article.ID]; ok {
				continue
			}
			seen[article.ID] = struct{}{}
			if article.Source == "" {
				article.Source = site.Name
			}
			aggregated = append(aggregated, article)
			added++
		}
		s.debug("site produced articles", "site", site.Name, "count", len(results), "added", added)
	}

	s.debug("strategy source done", "total_articles", len(aggregated))
	return aggregated, nil
}

func toScannerTargets(cfg []config.TargetConfig) []scanner.Target {
	targets := make([]scanner.Target, 0, len(cfg))
	for _, t := range cfg {
		targets = append(targets, scanner.Target{
			Name: t.Name,
			URL:  t.URL,
		})
	}
	return targets
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
