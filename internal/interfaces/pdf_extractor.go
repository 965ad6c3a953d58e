package interfaces

import (
	"context"

	"github.com/ternarybob/scholar/internal/models"
)

// PDFExtractor extracts per-page text from a PDF file on disk.
//
// Implementations must treat unreadable documents as a recoverable "no
// content" outcome: if every extraction strategy fails, they return an empty
// page slice and a nil error so a corrupt upload degrades to zero chunks
// instead of aborting a batch.
type PDFExtractor interface {
	// ExtractPages returns the non-empty pages of the document in page
	// order, each tagged with a math-content flag.
	ExtractPages(ctx context.Context, filePath string) ([]models.Page, error)
}
