package rag

import (
	"context"
	"fmt"

	"bakai-assistant/config"
	apperrors "bakai-assistant/errors"
	"bakai-assistant/llmclient"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// NewEmbeddingFunc returns the embedding backend selected by EMBEDDING_PROVIDER.
func NewEmbeddingFunc(cfg *config.Config, logger *zap.Logger) (chromem.EmbeddingFunc, error) {
	switch cfg.EmbeddingProvider {
	case "", "ollama":
		return chromem.NewEmbeddingFuncOllama(cfg.EmbeddingModel, cfg.EmbeddingLLMHost), nil
	case "llamacpp":
		return createLlamaCppEmbedding(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q: %w", cfg.EmbeddingProvider, apperrors.ErrInvalidInput)
	}
}

func createLlamaCppEmbedding(cfg *config.Config, logger *zap.Logger) chromem.EmbeddingFunc {
	client := llmclient.New(cfg, logger)
	return func(ctx context.Context, doc string) ([]float32, error) {
		return client.Embed(ctx, cfg.EmbeddingLLMHost, doc)
	}
}
