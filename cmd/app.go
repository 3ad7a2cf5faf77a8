package cmd

import (
	"context"
	"fmt"

	"bakai-assistant/category"
	"bakai-assistant/config"
	"bakai-assistant/database"
	apperrors "bakai-assistant/errors"
	"bakai-assistant/rag"
	"bakai-assistant/web/handlers"
	"bakai-assistant/web/services"

	"go.uber.org/zap"
)

// app holds the components shared by the subcommands.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *database.PostgresStore
	source     rag.KnowledgeSource
	neighbors  rag.NeighborService
	indexer    rag.NeighborIndexer
	retriever  *rag.Retriever
	links      *category.Links
	classifier *category.Classifier
}

// newApp wires storage, the neighbor backend and the retriever from cfg.
// The index is not built here.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	needStore := cfg.KnowledgeSource == "postgres" || cfg.NeighborBackend == "pgvector" || cfg.QueryLogEnabled
	if needStore {
		store, err := database.NewPostgresStore(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := store.EnsureSchema(ctx, cfg.EmbeddingDimensions); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		a.store = store
	}

	switch cfg.KnowledgeSource {
	case "", "json":
		a.source = rag.NewFileSource(cfg.KnowledgeFile)
	case "postgres":
		a.source = a.store
	default:
		a.close()
		return nil, fmt.Errorf("unknown knowledge source %q: %w", cfg.KnowledgeSource, apperrors.ErrInvalidInput)
	}

	if err := a.openNeighbors(); err != nil {
		a.close()
		return nil, err
	}

	retriever, err := rag.New(cfg, a.neighbors, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize retriever: %w", err)
	}
	a.retriever = retriever

	a.links = category.NewLinks(cfg.BankLinks)
	if err := a.links.Validate(); err != nil {
		logger.Warn("Bank links failed validation", zap.Error(err))
	}
	a.classifier, err = category.NewClassifier(a.links, cfg.ResolutionCacheSize, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) openNeighbors() error {
	switch a.cfg.NeighborBackend {
	case "none", "":
		a.logger.Info("Nearest-neighbor retrieval disabled")
		return nil
	}

	embed, err := rag.NewEmbeddingFunc(a.cfg, a.logger)
	if err != nil {
		return err
	}

	switch a.cfg.NeighborBackend {
	case "chromem":
		db, err := rag.OpenChromemDB(a.cfg)
		if err != nil {
			return err
		}
		neighbors, err := rag.NewChromemNeighbors(db, a.cfg.ChromemCollection, embed, a.logger)
		if err != nil {
			return err
		}
		a.logger.Info("Using chromem neighbor store",
			zap.String("path", a.cfg.ChromemPath),
			zap.String("collection", a.cfg.ChromemCollection),
			zap.Int("documents", neighbors.Count()))
		a.neighbors, a.indexer = neighbors, neighbors
	case "pgvector":
		neighbors, err := database.NewVectorNeighbors(a.store, database.EmbedFunc(embed), a.logger)
		if err != nil {
			return err
		}
		a.logger.Info("Using pgvector neighbor store")
		a.neighbors, a.indexer = neighbors, neighbors
	default:
		return fmt.Errorf("unknown neighbor backend %q: %w", a.cfg.NeighborBackend, apperrors.ErrInvalidInput)
	}
	return nil
}

// queryLog returns the store as logger and history when query logging is on,
// and nil interfaces otherwise.
func (a *app) queryLog() (services.QueryLogger, handlers.QueryHistory) {
	if a.cfg.QueryLogEnabled && a.store != nil {
		return a.store, a.store
	}
	return nil, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Failed to close database", zap.Error(err))
		}
	}
}
