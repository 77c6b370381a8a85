package labels

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinNewsAnalyzer/internal/domain"
)

func writeLabels(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAndLookup(t *testing.T) {
	src, err := Load(writeLabels(t, "a1: positive\na2: Negative\n"))
	require.NoError(t, err)

	got, err := src.TrueLabels(context.Background(), []string{"a1", "a2", "a3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Sentiment{"a1": domain.Positive, "a2": domain.Negative}, got)
}

func TestLoadRejectsUnknownLabel(t *testing.T) {
	_, err := Load(writeLabels(t, "a1: bullish\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
