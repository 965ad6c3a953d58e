// -----------------------------------------------------------------------
// Catalog Storage - Local record of uploaded documents and usage counters
// -----------------------------------------------------------------------

package badger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/scholar/internal/interfaces"
	"github.com/ternarybob/scholar/internal/models"
)

// usageStatsKey is the fixed key for the single UsageStats record.
const usageStatsKey = "usage_stats"

// CatalogStorage persists document records and usage counters in BadgerDB.
type CatalogStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.CatalogService = (*CatalogStorage)(nil)

// NewCatalogStorage creates catalog storage over an open Badger connection.
// The session start time is recorded on first open.
func NewCatalogStorage(db *BadgerDB, logger arbor.ILogger) (*CatalogStorage, error) {
	s := &CatalogStorage{
		db:     db,
		logger: logger,
	}

	stats, err := s.GetUsageStats()
	if err != nil {
		return nil, err
	}
	if stats.SessionStart.IsZero() {
		stats.SessionStart = time.Now().UTC()
		if err := s.db.Store().Upsert(usageStatsKey, stats); err != nil {
			return nil, fmt.Errorf("failed to initialize usage stats: %w", err)
		}
	}

	return s, nil
}

// RecordDocument upserts the catalog entry for one uploaded document.
func (s *CatalogStorage) RecordDocument(record models.DocumentRecord) error {
	if record.Key == "" {
		record.Key = models.CatalogKey(record.Source, record.Subject, record.Year, record.Type)
	}
	if record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now().UTC()
	}

	if err := s.db.Store().Upsert(record.Key, record); err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}

	s.logger.Debug().
		Str("source", record.Source).
		Str("subject", record.Subject).
		Int("chunks", record.Chunks).
		Msg("Recorded document in catalog")

	return nil
}

// ListDocuments returns all catalog entries sorted by (subject, year, type,
// source), matching the vector store listing order.
func (s *CatalogStorage) ListDocuments() ([]models.DocumentRecord, error) {
	var records []models.DocumentRecord
	if err := s.db.Store().Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	sortRecords(records)
	return records, nil
}

// ListDocumentsBySubject returns catalog entries for one subject.
func (s *CatalogStorage) ListDocumentsBySubject(subject string) ([]models.DocumentRecord, error) {
	var records []models.DocumentRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("Subject").Eq(subject)); err != nil {
		return nil, fmt.Errorf("failed to list documents for subject %s: %w", subject, err)
	}

	sortRecords(records)
	return records, nil
}

// DeleteDocument removes the catalog entry matching the composite key.
func (s *CatalogStorage) DeleteDocument(source, subject, year string, docType models.DocType) error {
	key := models.CatalogKey(source, subject, year, docType)
	err := s.db.Store().Delete(key, models.DocumentRecord{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete catalog entry: %w", err)
	}
	return nil
}

// RecordQuestion increments the question counter.
func (s *CatalogStorage) RecordQuestion() error {
	stats, err := s.GetUsageStats()
	if err != nil {
		return err
	}

	stats.TotalQuestions++
	stats.LastQuestionAt = time.Now().UTC()

	return s.db.Store().Upsert(usageStatsKey, stats)
}

// RecordUpload increments the upload counters.
func (s *CatalogStorage) RecordUpload(chunks int) error {
	stats, err := s.GetUsageStats()
	if err != nil {
		return err
	}

	stats.DocumentsUploaded++
	stats.TotalChunks += chunks

	return s.db.Store().Upsert(usageStatsKey, stats)
}

// GetUsageStats returns the current counters, zero-valued when none have
// been recorded yet.
func (s *CatalogStorage) GetUsageStats() (models.UsageStats, error) {
	var stats models.UsageStats
	err := s.db.Store().Get(usageStatsKey, &stats)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return models.UsageStats{}, nil
		}
		return models.UsageStats{}, fmt.Errorf("failed to load usage stats: %w", err)
	}
	return stats, nil
}

// Close closes the underlying database connection.
func (s *CatalogStorage) Close() error {
	return s.db.Close()
}

func sortRecords(records []models.DocumentRecord) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Source < b.Source
	})
}
