package interfaces

import (
	"context"

	"github.com/ternarybob/scholar/internal/models"
)

// VectorStore persists embedded chunks and serves filtered similarity search.
type VectorStore interface {
	// AddDocuments embeds and upserts chunks. Chunks with empty content or
	// incomplete metadata are skipped, not failed.
	AddDocuments(ctx context.Context, chunks []models.Chunk) (models.AddResult, error)

	// Search returns up to topK results above the score threshold, most
	// similar first. Backend failures degrade to an empty result set.
	Search(ctx context.Context, query string, topK int, filters models.SearchFilters) []models.SearchResult

	// DeleteDocumentByMetadata removes all points matching source, subject,
	// year and type exactly. Returns false when the delete request fails.
	DeleteDocumentByMetadata(ctx context.Context, source, subject, year, docType string) bool

	// DeleteCollection drops and recreates the collection.
	DeleteCollection(ctx context.Context) error

	GetStats(ctx context.Context) models.StoreStats
	GetDocumentStatsByType(ctx context.Context) map[string]int
	GetUploadedDocuments(ctx context.Context) []models.DocumentInfo
}
