package embeddings

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/interfaces"
)

// NewEmbeddingService selects an embedder by configuration. Unknown
// providers are an error; "offline" never fails and needs no credentials.
func NewEmbeddingService(ctx context.Context, config *common.Config, logger arbor.ILogger) (interfaces.EmbeddingService, error) {
	switch config.Embedding.Provider {
	case "gemini":
		return NewGeminiEmbedder(ctx, config, logger)
	case "offline":
		return NewOfflineEmbedder(config.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", config.Embedding.Provider)
	}
}
