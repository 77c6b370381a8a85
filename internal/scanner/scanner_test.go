package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinNewsAnalyzer/internal/domain"
)

type namedScanner string

func (n namedScanner) Name() string { return string(n) }

func (n namedScanner) Scan(context.Context, Request) ([]domain.Article, error) { return nil, nil }

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(namedScanner("page"))
	reg.Register(namedScanner("newsapi"))

	sc, err := reg.Resolve("page")
	require.NoError(t, err)
	assert.Equal(t, "page", sc.Name())

	_, err = reg.Resolve("rss")
	assert.Error(t, err)

	assert.Equal(t, []string{"newsapi", "page"}, reg.Names())
}

func TestRegistryZeroValue(t *testing.T) {
	var reg Registry
	reg.Register(namedScanner("page"))

	_, err := reg.Resolve("page")
	assert.NoError(t, err)
}
