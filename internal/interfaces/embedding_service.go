package interfaces

import "context"

// EmbeddingService produces dense vectors for text.
type EmbeddingService interface {
	// Embed returns one vector of the configured dimension.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds texts in order. Vector i corresponds to texts[i].
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension reports the vector width this service produces.
	Dimension() int
}
