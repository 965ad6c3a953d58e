package models

import "time"

// DocumentRecord is the local catalog entry for one uploaded document,
// keyed by the same (source, subject, year, type) tuple the vector store
// dedupes on. Kept in BadgerDB so dashboard listings do not require a
// full scroll over the remote index.
type DocumentRecord struct {
	Key        string    `badgerhold:"key" json:"key"`
	Source     string    `badgerholdIndex:"Source" json:"source"`
	Subject    string    `json:"subject"`
	Year       string    `json:"year"`
	Type       DocType   `badgerholdIndex:"Type" json:"type"`
	Pages      int       `json:"pages"`
	Chunks     int       `json:"chunks"`
	MathChunks int       `json:"math_chunks"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// CatalogKey builds the composite catalog key for a document.
func CatalogKey(source, subject, year string, docType DocType) string {
	return source + "|" + subject + "|" + year + "|" + string(docType)
}

// UsageStats tracks application counters shown on the status dashboard.
type UsageStats struct {
	TotalQuestions    int       `json:"total_questions"`
	DocumentsUploaded int       `json:"documents_uploaded"`
	TotalChunks       int       `json:"total_chunks"`
	LastQuestionAt    time.Time `json:"last_question_at"`
	SessionStart      time.Time `json:"session_start"`
}
