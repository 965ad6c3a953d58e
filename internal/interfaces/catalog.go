package interfaces

import "github.com/ternarybob/scholar/internal/models"

// CatalogService tracks uploaded documents and usage counters in local storage.
type CatalogService interface {
	RecordDocument(record models.DocumentRecord) error
	ListDocuments() ([]models.DocumentRecord, error)
	ListDocumentsBySubject(subject string) ([]models.DocumentRecord, error)
	DeleteDocument(source, subject, year string, docType models.DocType) error

	RecordQuestion() error
	RecordUpload(chunks int) error
	GetUsageStats() (models.UsageStats, error)

	Close() error
}
