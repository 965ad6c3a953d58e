package interfaces

import (
	"context"

	"github.com/ternarybob/scholar/internal/models"
)

// AnswerService turns a question plus retrieved context into an answer.
type AnswerService interface {
	// Generate always returns a renderable result. When the provider fails
	// after retries the result carries an explanatory placeholder answer
	// and a non-success status rather than an error.
	Generate(ctx context.Context, question string, results []models.SearchResult, history []models.Exchange) models.AnswerResult

	// GetStatus reports provider connectivity and the active model.
	GetStatus(ctx context.Context) models.ProviderStatus
}
