// -----------------------------------------------------------------------
// Processing Service - PDF to chunk pipeline with metadata tagging
// -----------------------------------------------------------------------

package processing

import (
	"context"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scholar/internal/interfaces"
	"github.com/ternarybob/scholar/internal/models"
)

// Service orchestrates extraction, chunking and metadata assembly for one
// or many PDF files.
type Service struct {
	extractor interfaces.PDFExtractor
	chunker   *Chunker
	logger    arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.DocumentProcessor = (*Service)(nil)

// NewService creates a document processing service.
func NewService(extractor interfaces.PDFExtractor, chunkSize, chunkOverlap int, logger arbor.ILogger) *Service {
	return &Service{
		extractor: extractor,
		chunker:   NewChunker(chunkSize, chunkOverlap),
		logger:    logger,
	}
}

// Process converts a single PDF into tagged chunks. A missing file or a
// document with no extractable text yields an empty result, not an error.
func (s *Service) Process(ctx context.Context, filePath string, docType models.DocType, subject, year string) ([]models.Chunk, error) {
	if _, err := os.Stat(filePath); err != nil {
		s.logger.Warn().Str("file", filePath).Err(err).Msg("File not found, skipping")
		return nil, nil
	}

	pages, err := s.extractor.ExtractPages(ctx, filePath)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		s.logger.Warn().Str("file", filePath).Msg("No text extracted")
		return nil, nil
	}

	meta := models.ChunkMetadata{
		Source:     filepath.Base(filePath),
		Type:       docType,
		Subject:    subject,
		Year:       year,
		FilePath:   filePath,
		TotalPages: len(pages),
	}

	chunks := s.assemble(pages, meta)

	s.logger.Info().
		Str("file", meta.Source).
		Int("pages", len(pages)).
		Int("chunks", len(chunks)).
		Msg("Processed document")

	return chunks, nil
}

// BatchProcess processes files in fixed-size groups. A per-file failure is
// logged and skipped so one bad document cannot abort the batch.
func (s *Service) BatchProcess(ctx context.Context, filePaths []string, docType models.DocType, subject, year string, batchSize int) ([]models.Chunk, error) {
	if batchSize <= 0 {
		batchSize = 10
	}

	var all []models.Chunk
	for start := 0; start < len(filePaths); start += batchSize {
		end := start + batchSize
		if end > len(filePaths) {
			end = len(filePaths)
		}

		s.logger.Debug().
			Int("batch_start", start).
			Int("batch_end", end).
			Int("total", len(filePaths)).
			Msg("Processing batch")

		for _, filePath := range filePaths[start:end] {
			chunks, err := s.Process(ctx, filePath, docType, subject, year)
			if err != nil {
				s.logger.Warn().Str("file", filePath).Err(err).Msg("Skipping failed file")
				continue
			}
			all = append(all, chunks...)
		}
	}

	return all, nil
}

// assemble runs the chunker over each page and attaches full metadata to
// every surviving segment. Whitespace-only segments are dropped and do not
// count toward total_chunks.
func (s *Service) assemble(pages []models.Page, meta models.ChunkMetadata) []models.Chunk {
	var out []models.Chunk

	for _, page := range pages {
		segments := s.chunker.Chunk(page.Text, page.HasMath)
		if len(segments) == 0 {
			continue
		}

		for i, segment := range segments {
			m := meta
			m.Page = page.PageNumber
			m.ChunkID = i
			m.TotalChunks = len(segments)
			m.HasMath = page.HasMath

			out = append(out, models.Chunk{
				Content:  segment,
				Metadata: m,
			})
		}
	}

	return out
}

// Stats summarizes a chunk sequence for reporting.
func (s *Service) Stats(chunks []models.Chunk) models.ProcessingStats {
	stats := models.ProcessingStats{
		TotalChunks: len(chunks),
	}
	if len(chunks) == 0 {
		return stats
	}

	sources := make(map[string]struct{})
	totalSize := 0
	for _, chunk := range chunks {
		sources[chunk.Metadata.Source] = struct{}{}
		totalSize += utf8.RuneCountInString(chunk.Content)
		if chunk.Metadata.HasMath {
			stats.MathChunks++
		}
		if chunk.Metadata.TotalPages > stats.PagesProcessed {
			stats.PagesProcessed = chunk.Metadata.TotalPages
		}
	}

	stats.UniqueSources = len(sources)
	stats.AvgChunkSize = totalSize / len(chunks)
	for source := range sources {
		stats.Sources = append(stats.Sources, source)
	}

	return stats
}
