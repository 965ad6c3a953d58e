// -----------------------------------------------------------------------
// Gemini Embedding Service - Dense vectors via the Gemini embedding API
// -----------------------------------------------------------------------

package embeddings

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/interfaces"
)

// GeminiEmbedder produces embeddings through the hosted Gemini embedding
// model.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
	logger    arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.EmbeddingService = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder creates an embedder backed by the configured Gemini
// embedding model.
func NewGeminiEmbedder(ctx context.Context, config *common.Config, logger arbor.ILogger) (*GeminiEmbedder, error) {
	if config.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required for embeddings")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiEmbedder{
		client:    client,
		model:     config.Embedding.Model,
		dimension: config.Embedding.Dimension,
		logger:    logger,
	}, nil
}

// Embed returns one vector for text.
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	outputDim := int32(g.dimension)
	result, err := g.client.Models.EmbedContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &outputDim})
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("no embedding returned from API")
	}

	embedding := result.Embeddings[0].Values
	if len(embedding) != g.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", g.dimension, len(embedding))
	}

	return embedding, nil
}

// EmbedBatch embeds texts sequentially, preserving order.
func (g *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vector, err := g.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}

// Dimension returns the configured vector width.
func (g *GeminiEmbedder) Dimension() int {
	return g.dimension
}
