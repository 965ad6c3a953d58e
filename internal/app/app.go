// -----------------------------------------------------------------------
// Application Wiring - Construct and hold all services for the process
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/interfaces"
	"github.com/ternarybob/scholar/internal/services/embeddings"
	"github.com/ternarybob/scholar/internal/services/llm"
	"github.com/ternarybob/scholar/internal/services/pdf"
	"github.com/ternarybob/scholar/internal/services/processing"
	"github.com/ternarybob/scholar/internal/services/vectorstore"
	"github.com/ternarybob/scholar/internal/storage/badger"
)

// App holds all application components and dependencies. Services are
// constructed once here and injected everywhere else; nothing reaches for
// globals beyond the logger.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Extractor        interfaces.PDFExtractor
	Processor        interfaces.DocumentProcessor
	EmbeddingService interfaces.EmbeddingService
	VectorStore      interfaces.VectorStore
	AnswerService    interfaces.AnswerService
	Catalog          interfaces.CatalogService

	db *badger.BadgerDB
}

// New constructs the full service graph. Construction order follows
// dependencies: storage, embeddings, vector store, answer provider, then
// the document pipeline.
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	db, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	catalog, err := badger.NewCatalogStorage(db, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}

	embedder, err := embeddings.NewEmbeddingService(ctx, config, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create embedding service: %w", err)
	}

	store, err := vectorstore.NewQdrantStore(ctx, config, embedder, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to vector store: %w", err)
	}

	answerService, err := llm.NewAnswerService(ctx, config, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create answer service: %w", err)
	}

	extractor := pdf.NewExtractor(config.Documents.TempDir, logger)
	processor := processing.NewService(extractor, config.Documents.ChunkSize, config.Documents.ChunkOverlap, logger)

	logger.Info().
		Str("embedding_provider", config.Embedding.Provider).
		Str("answer_provider", string(config.LLM.DefaultProvider)).
		Str("collection", config.Qdrant.Collection).
		Msg("Application services initialized")

	return &App{
		Config:           config,
		Logger:           logger,
		Extractor:        extractor,
		Processor:        processor,
		EmbeddingService: embedder,
		VectorStore:      store,
		AnswerService:    answerService,
		Catalog:          catalog,
		db:               db,
	}, nil
}

// Close releases resources held by the application.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
