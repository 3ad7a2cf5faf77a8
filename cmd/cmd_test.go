package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"bakai-assistant/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const knowledgeFile = `[
  {"content": "FAQ: Как открыть карту?\nОтвет: Обратитесь в любой филиал с паспортом.", "metadata": {"url": "https://bakai.kg/ru/individual/cards/"}},
  {"content": "Банкоматы работают круглосуточно."}
]`

func useTestConfig(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge.json")
	require.NoError(t, os.WriteFile(path, []byte(knowledgeFile), 0o644))

	prevCfg, prevLogger := cfg, logger
	t.Cleanup(func() { cfg, logger = prevCfg, prevLogger })

	cfg = &config.Config{
		KnowledgeSource:     "json",
		KnowledgeFile:       path,
		NeighborBackend:     "none",
		SearchK:             5,
		NearExactThreshold:  0.95,
		SimilarFAQThreshold: 0.6,
		MaxQueryVariants:    8,
		NeighborConcurrency: 1,
		ResolutionCacheSize: 8,
		IndexBatchSize:      20,
		BankLinks:           config.DefaultBankLinks,
	}
	logger = zap.NewNop()
}

func TestQueryCommand(t *testing.T) {
	useTestConfig(t)

	var out bytes.Buffer
	queryCmd.SetOut(&out)
	queryCmd.SetContext(context.Background())
	t.Cleanup(func() { queryCmd.SetOut(nil) })

	require.NoError(t, queryCmd.RunE(queryCmd, []string{"Как", "открыть", "карту?"}))
	assert.Contains(t, out.String(), "exact_match")
	assert.Contains(t, out.String(), "Обратитесь в любой филиал с паспортом.")
	assert.Contains(t, out.String(), "https://bakai.kg/ru/individual/cards/")
}

func TestIndexCommandWithoutBackend(t *testing.T) {
	useTestConfig(t)

	var out bytes.Buffer
	indexCmd.SetOut(&out)
	indexCmd.SetContext(context.Background())
	t.Cleanup(func() { indexCmd.SetOut(nil) })

	require.NoError(t, indexCmd.RunE(indexCmd, nil))
	assert.Contains(t, out.String(), "Checked 2 entries (1 FAQs)")
}

func TestCategoriesCommand(t *testing.T) {
	useTestConfig(t)

	var out bytes.Buffer
	categoriesCmd.SetOut(&out)
	t.Cleanup(func() { categoriesCmd.SetOut(nil) })

	require.NoError(t, categoriesCmd.RunE(categoriesCmd, nil))
	assert.Contains(t, out.String(), "All links are valid")
	assert.Contains(t, out.String(), "https://bakai.kg/ru/office/")

	out.Reset()
	categoriesQuery = "кредит"
	t.Cleanup(func() { categoriesQuery = "" })
	require.NoError(t, categoriesCmd.RunE(categoriesCmd, nil))
	assert.Contains(t, out.String(), "Category: credits -> https://bakai.kg/ru/individual/credits/")
}

func TestNewAppRejectsUnknownBackends(t *testing.T) {
	useTestConfig(t)

	cfg.NeighborBackend = "faiss"
	_, err := newApp(context.Background(), cfg, logger)
	assert.Error(t, err)

	cfg.NeighborBackend = "none"
	cfg.KnowledgeSource = "s3"
	_, err = newApp(context.Background(), cfg, logger)
	assert.Error(t, err)
}
