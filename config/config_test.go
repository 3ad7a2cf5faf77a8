package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg := Load(zap.NewNop())

	assert.Equal(t, 5, cfg.SearchK)
	assert.Equal(t, 0.95, cfg.NearExactThreshold)
	assert.Equal(t, 0.6, cfg.SimilarFAQThreshold)
	assert.Equal(t, 8, cfg.MaxQueryVariants)
	assert.Equal(t, 20, cfg.IndexBatchSize)
	assert.Equal(t, "chromem", cfg.NeighborBackend)
	assert.Equal(t, 3*time.Second, cfg.NeighborTimeout)
	assert.Equal(t, 60*time.Second, cfg.LLMRequestTimeout)
	assert.Equal(t, "https://bakai.kg/ru/individual/cards/", cfg.BankLinks["cards"])
	assert.Equal(t, "https://bakai.kg/ru/individual/", cfg.BankLinks["general"])
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SEARCH_K", "7")
	t.Setenv("NEIGHBOR_BACKEND", "PGVECTOR")
	t.Setenv("NEIGHBOR_TIMEOUT_MS", "250")

	cfg := Load(zap.NewNop())

	assert.Equal(t, 7, cfg.SearchK)
	assert.Equal(t, "pgvector", cfg.NeighborBackend)
	assert.Equal(t, 250*time.Millisecond, cfg.NeighborTimeout)
}

func TestLoadFileOverridesLinks(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "custom.yaml")
	content := "SEARCH_K: 3\nBANK_LINKS:\n  cards: https://example.kg/cards/\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := LoadFile(path, zap.NewNop())

	assert.Equal(t, 3, cfg.SearchK)
	assert.Equal(t, "https://example.kg/cards/", cfg.BankLinks["cards"])
	// Categories absent from the file keep their defaults.
	assert.Equal(t, DefaultBankLinks["credits"], cfg.BankLinks["credits"])
}

func TestNormalizeClampsInvalidValues(t *testing.T) {
	cfg := &Config{SearchK: -1, NearExactThreshold: 2, SimilarFAQThreshold: 0, MaxQueryVariants: 0}
	cfg.normalize()

	assert.Equal(t, 5, cfg.SearchK)
	assert.Equal(t, 0.95, cfg.NearExactThreshold)
	assert.Equal(t, 0.6, cfg.SimilarFAQThreshold)
	assert.Equal(t, 8, cfg.MaxQueryVariants)
	assert.Equal(t, 1, cfg.NeighborConcurrency)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zap.DebugLevel},
		{"WARNING", zap.WarnLevel},
		{"error", zap.ErrorLevel},
		{"", zap.InfoLevel},
		{"verbose", zap.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
