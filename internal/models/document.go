package models

import "fmt"

// DocType categorizes an uploaded document.
type DocType string

const (
	DocTypeNotes         DocType = "notes"
	DocTypeAssignments   DocType = "assignments"
	DocTypeQuestionPaper DocType = "question_paper"
	DocTypeQuestionBank  DocType = "question_bank"
	DocTypeTextbook      DocType = "textbook"
	DocTypeSyllabus      DocType = "syllabus"
)

// DocTypes is the fixed set of accepted document categories, in display order.
var DocTypes = []DocType{
	DocTypeNotes,
	DocTypeAssignments,
	DocTypeQuestionPaper,
	DocTypeQuestionBank,
	DocTypeTextbook,
	DocTypeSyllabus,
}

// Valid reports whether t is one of the accepted document categories.
func (t DocType) Valid() bool {
	for _, dt := range DocTypes {
		if t == dt {
			return true
		}
	}
	return false
}

// Years is the fixed set of academic years accepted at the ingestion boundary.
var Years = []string{"Year 1", "Year 2"}

// ValidYear reports whether year is one of the accepted academic years.
func ValidYear(year string) bool {
	for _, y := range Years {
		if year == y {
			return true
		}
	}
	return false
}

// Page is the intermediate extraction artifact for a single PDF page.
// Produced by the extractor, consumed by the chunker, never persisted.
type Page struct {
	PageNumber int
	Text       string
	HasMath    bool
}

// ChunkMetadata carries the document-level and chunk-level tags attached to
// every chunk. All fields are persisted in the vector store payload.
type ChunkMetadata struct {
	Source      string  `json:"source"`
	Type        DocType `json:"type"`
	Subject     string  `json:"subject"`
	Year        string  `json:"year"`
	FilePath    string  `json:"file_path"`
	TotalPages  int     `json:"total_pages"`
	Page        int     `json:"page"`
	ChunkID     int     `json:"chunk_id"`
	TotalChunks int     `json:"total_chunks"`
	HasMath     bool    `json:"has_math"`
}

// CanonicalString renders the metadata in a fixed field order. It feeds the
// deterministic point ID, so the format must never depend on map iteration
// or locale.
func (m ChunkMetadata) CanonicalString() string {
	return fmt.Sprintf("source=%s|type=%s|subject=%s|year=%s|page=%d|chunk_id=%d|total_chunks=%d|has_math=%t",
		m.Source, m.Type, m.Subject, m.Year, m.Page, m.ChunkID, m.TotalChunks, m.HasMath)
}

// Chunk is the atomic unit stored and retrieved. Immutable once created.
type Chunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ResultMetadata is the subset of chunk metadata returned with search hits.
type ResultMetadata struct {
	Source  string  `json:"source"`
	Type    DocType `json:"type"`
	Subject string  `json:"subject"`
	Year    string  `json:"year"`
	Page    int     `json:"page"`
}

// SearchResult is a single ranked hit from the vector store. Higher score is
// more relevant. Recomputed per query, never persisted.
type SearchResult struct {
	Text     string         `json:"text"`
	Metadata ResultMetadata `json:"metadata"`
	Score    float64        `json:"score"`
}

// SearchFilters restricts a similarity search to exact metadata matches.
// Empty or "All" values are ignored.
type SearchFilters struct {
	Subject string `json:"subject,omitempty"`
	Year    string `json:"year,omitempty"`
	Type    string `json:"type,omitempty"`
	Source  string `json:"source,omitempty"`
}

// AddResult summarizes a bulk ingestion into the vector store.
type AddResult struct {
	Status         string `json:"status"`
	DocumentsAdded int    `json:"documents_added"`
	Message        string `json:"message"`
}

// StoreStats reports aggregate vector store counts and health.
type StoreStats struct {
	DocumentCount  int    `json:"document_count"`
	ChunkCount     int    `json:"chunk_count"`
	EmbeddingCount int    `json:"embedding_count"`
	Status         string `json:"status"`
	Provider       string `json:"provider"`
}

// DocumentInfo identifies one uploaded document in store listings,
// deduplicated by the (source, subject, year, type) composite key.
type DocumentInfo struct {
	Source  string  `json:"source"`
	Subject string  `json:"subject"`
	Year    string  `json:"year"`
	Type    DocType `json:"type"`
	Page    int     `json:"page,omitempty"`
}

// ProcessingStats summarizes a chunk sequence produced by the pipeline.
type ProcessingStats struct {
	TotalChunks    int      `json:"total_chunks"`
	UniqueSources  int      `json:"unique_sources"`
	AvgChunkSize   int      `json:"avg_chunk_size"`
	MathChunks     int      `json:"math_chunks"`
	PagesProcessed int      `json:"pages_processed"`
	Sources        []string `json:"sources,omitempty"`
}
