package interfaces

import (
	"context"

	"github.com/ternarybob/scholar/internal/models"
)

// DocumentProcessor runs the extract -> chunk -> tag pipeline for PDFs.
type DocumentProcessor interface {
	// Process converts one PDF into tagged chunks. A missing or unreadable
	// file yields an empty slice, not an error.
	Process(ctx context.Context, filePath string, docType models.DocType, subject, year string) ([]models.Chunk, error)

	// BatchProcess processes files in fixed-size groups. A per-file failure
	// is logged and skipped; results are concatenated in input order.
	BatchProcess(ctx context.Context, filePaths []string, docType models.DocType, subject, year string, batchSize int) ([]models.Chunk, error)

	// Stats summarizes a chunk sequence.
	Stats(chunks []models.Chunk) models.ProcessingStats
}
