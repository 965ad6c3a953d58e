package processing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/models"
)

type stubExtractor struct {
	pages []models.Page
	err   error
	calls int
}

func (s *stubExtractor) ExtractPages(ctx context.Context, filePath string) ([]models.Page, error) {
	s.calls++
	return s.pages, s.err
}

func writeTempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))
	return path
}

func TestProcessMissingFile(t *testing.T) {
	extractor := &stubExtractor{}
	svc := NewService(extractor, 500, 100, common.GetLogger())

	chunks, err := svc.Process(context.Background(), "/nonexistent/file.pdf", models.DocTypeNotes, "Mathematics", "Year 1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Zero(t, extractor.calls, "extractor should not run for a missing file")
}

func TestProcessAttachesMetadata(t *testing.T) {
	extractor := &stubExtractor{
		pages: []models.Page{
			{PageNumber: 1, Text: "Normalization reduces redundancy in relational schemas.", HasMath: false},
			{PageNumber: 2, Text: "The identity sin^2(x) + cos^2(x) = 1 holds for all x.", HasMath: true},
		},
	}
	svc := NewService(extractor, 500, 100, common.GetLogger())

	path := writeTempFile(t, "dbms_notes.pdf")
	chunks, err := svc.Process(context.Background(), path, models.DocTypeNotes, "Database Management Systems", "Year 1")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	perPage := make(map[int]map[int]bool)
	for _, chunk := range chunks {
		m := chunk.Metadata
		assert.Equal(t, "dbms_notes.pdf", m.Source)
		assert.Equal(t, models.DocTypeNotes, m.Type)
		assert.Equal(t, "Database Management Systems", m.Subject)
		assert.Equal(t, "Year 1", m.Year)
		assert.Equal(t, path, m.FilePath)
		assert.Equal(t, 2, m.TotalPages)
		assert.NotEmpty(t, chunk.Content)

		require.GreaterOrEqual(t, m.ChunkID, 0)
		require.Less(t, m.ChunkID, m.TotalChunks)

		if perPage[m.Page] == nil {
			perPage[m.Page] = make(map[int]bool)
		}
		assert.False(t, perPage[m.Page][m.ChunkID], "duplicate chunk_id %d on page %d", m.ChunkID, m.Page)
		perPage[m.Page][m.ChunkID] = true
	}

	// Chunk ids cover 0..total_chunks-1 for each page.
	for page, ids := range perPage {
		for i := 0; i < len(ids); i++ {
			assert.True(t, ids[i], "page %d missing chunk_id %d", page, i)
		}
	}

	// Page 2 carries the math flag through to its chunks.
	found := false
	for _, chunk := range chunks {
		if chunk.Metadata.Page == 2 {
			assert.True(t, chunk.Metadata.HasMath)
			found = true
		}
	}
	assert.True(t, found)
}

func TestProcessNoExtractableText(t *testing.T) {
	extractor := &stubExtractor{pages: nil}
	svc := NewService(extractor, 500, 100, common.GetLogger())

	path := writeTempFile(t, "scanned.pdf")
	chunks, err := svc.Process(context.Background(), path, models.DocTypeNotes, "Mathematics", "Year 1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestBatchProcessSkipsFailedFiles(t *testing.T) {
	extractor := &stubExtractor{
		pages: []models.Page{{PageNumber: 1, Text: "Operating systems schedule processes.", HasMath: false}},
	}
	svc := NewService(extractor, 500, 100, common.GetLogger())

	good1 := writeTempFile(t, "os_unit1.pdf")
	good2 := writeTempFile(t, "os_unit2.pdf")
	paths := []string{good1, "/missing/os_unit3.pdf", good2}

	chunks, err := svc.BatchProcess(context.Background(), paths, models.DocTypeNotes, "Operating Systems", "Year 2", 2)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
	assert.Equal(t, 2, extractor.calls)
}

func TestStats(t *testing.T) {
	svc := NewService(&stubExtractor{}, 500, 100, common.GetLogger())

	chunks := []models.Chunk{
		{Content: "abcd", Metadata: models.ChunkMetadata{Source: "a.pdf", TotalPages: 3, HasMath: true}},
		{Content: "abcdefgh", Metadata: models.ChunkMetadata{Source: "a.pdf", TotalPages: 3}},
		{Content: "ab", Metadata: models.ChunkMetadata{Source: "b.pdf", TotalPages: 5}},
	}

	stats := svc.Stats(chunks)
	assert.Equal(t, 3, stats.TotalChunks)
	assert.Equal(t, 2, stats.UniqueSources)
	assert.Equal(t, 4, stats.AvgChunkSize)
	assert.Equal(t, 1, stats.MathChunks)
	assert.Equal(t, 5, stats.PagesProcessed)
	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf"}, stats.Sources)
}

func TestStatsEmpty(t *testing.T) {
	svc := NewService(&stubExtractor{}, 500, 100, common.GetLogger())
	stats := svc.Stats(nil)
	assert.Zero(t, stats.TotalChunks)
	assert.Zero(t, stats.AvgChunkSize)
}
