package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/models"
)

type fakeStore struct {
	results    []models.SearchResult
	lastQuery  string
	lastTopK   int
	lastFilter models.SearchFilters
	deleteOK   bool
}

func (f *fakeStore) AddDocuments(ctx context.Context, chunks []models.Chunk) (models.AddResult, error) {
	return models.AddResult{Status: "success", DocumentsAdded: len(chunks)}, nil
}

func (f *fakeStore) Search(ctx context.Context, query string, topK int, filters models.SearchFilters) []models.SearchResult {
	f.lastQuery = query
	f.lastTopK = topK
	f.lastFilter = filters
	return f.results
}

func (f *fakeStore) DeleteDocumentByMetadata(ctx context.Context, source, subject, year, docType string) bool {
	return f.deleteOK
}

func (f *fakeStore) DeleteCollection(ctx context.Context) error { return nil }

func (f *fakeStore) GetStats(ctx context.Context) models.StoreStats {
	return models.StoreStats{Status: "green", Provider: "qdrant"}
}

func (f *fakeStore) GetDocumentStatsByType(ctx context.Context) map[string]int { return nil }

func (f *fakeStore) GetUploadedDocuments(ctx context.Context) []models.DocumentInfo { return nil }

type fakeAnswers struct {
	result models.AnswerResult
}

func (f *fakeAnswers) Generate(ctx context.Context, question string, results []models.SearchResult, history []models.Exchange) models.AnswerResult {
	return f.result
}

func (f *fakeAnswers) GetStatus(ctx context.Context) models.ProviderStatus {
	return models.ProviderStatus{Connected: true, Provider: "fake", Model: "fake", Status: "connected"}
}

type fakeCatalog struct {
	questions int
}

func (f *fakeCatalog) RecordDocument(record models.DocumentRecord) error        { return nil }
func (f *fakeCatalog) ListDocuments() ([]models.DocumentRecord, error)          { return nil, nil }
func (f *fakeCatalog) ListDocumentsBySubject(string) ([]models.DocumentRecord, error) {
	return nil, nil
}
func (f *fakeCatalog) DeleteDocument(source, subject, year string, docType models.DocType) error {
	return nil
}
func (f *fakeCatalog) RecordQuestion() error { f.questions++; return nil }
func (f *fakeCatalog) RecordUpload(chunks int) error { return nil }
func (f *fakeCatalog) GetUsageStats() (models.UsageStats, error) {
	return models.UsageStats{}, nil
}
func (f *fakeCatalog) Close() error { return nil }

func TestAskReturnsAnswerWithSources(t *testing.T) {
	store := &fakeStore{
		results: []models.SearchResult{{
			Text:     "Normalization reduces redundancy.",
			Metadata: models.ResultMetadata{Source: "dbms.pdf", Subject: "Database Management Systems", Page: 4},
			Score:    0.9,
		}},
	}
	answers := &fakeAnswers{result: models.AnswerResult{
		Answer:  "It organizes data to reduce redundancy.",
		Sources: []models.Source{{Document: "dbms.pdf", Subject: "Database Management Systems", Page: 4}},
		Model:   "fake",
		Status:  models.AnswerStatusSuccess,
	}}
	catalog := &fakeCatalog{}
	h := NewChatHandler(store, answers, catalog, common.NewDefaultConfig(), common.GetLogger())

	body, _ := json.Marshal(map[string]any{
		"question": "What is normalization?",
		"filters":  map[string]string{"subject": "Database Management Systems"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Ask(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.AnswerResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, models.AnswerStatusSuccess, result.Status)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "dbms.pdf", result.Sources[0].Document)

	assert.Equal(t, "What is normalization?", store.lastQuery)
	assert.Equal(t, "Database Management Systems", store.lastFilter.Subject)
	assert.Equal(t, 1, catalog.questions)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	h := NewChatHandler(&fakeStore{}, &fakeAnswers{}, &fakeCatalog{}, common.NewDefaultConfig(), common.GetLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte(`{"question":""}`)))
	rec := httptest.NewRecorder()

	h.Ask(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskRejectsWrongMethod(t *testing.T) {
	h := NewChatHandler(&fakeStore{}, &fakeAnswers{}, &fakeCatalog{}, common.NewDefaultConfig(), common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()

	h.Ask(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSearchUsesDefaultTopK(t *testing.T) {
	store := &fakeStore{}
	config := common.NewDefaultConfig()
	h := NewSearchHandler(store, config, common.GetLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader([]byte(`{"query":"indexes"}`)))
	rec := httptest.NewRecorder()

	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, config.Search.TopK, store.lastTopK)
	assert.Equal(t, "indexes", store.lastQuery)
}

func TestDeleteRequiresAllFields(t *testing.T) {
	h := NewDocumentHandler(nil, &fakeStore{deleteOK: true}, &fakeCatalog{}, common.NewDefaultConfig(), common.GetLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/delete?source=a.pdf&subject=Math", nil)
	rec := httptest.NewRecorder()

	h.Delete(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteRemovesDocument(t *testing.T) {
	h := NewDocumentHandler(nil, &fakeStore{deleteOK: true}, &fakeCatalog{}, common.NewDefaultConfig(), common.GetLogger())

	req := httptest.NewRequest(http.MethodDelete,
		"/api/documents/delete?source=a.pdf&subject=Mathematics&year=Year+1&type=notes", nil)
	rec := httptest.NewRecorder()

	h.Delete(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
