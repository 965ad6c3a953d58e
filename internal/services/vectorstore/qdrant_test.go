package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/models"
	"github.com/ternarybob/scholar/internal/services/embeddings"
)

// fakeQdrant records request bodies per endpoint and serves canned responses.
type fakeQdrant struct {
	mu       sync.Mutex
	requests map[string][]json.RawMessage
	searchFn func(w http.ResponseWriter)
	failAll  bool
}

func newFakeQdrant() *fakeQdrant {
	return &fakeQdrant{requests: make(map[string][]json.RawMessage)}
}

func (f *fakeQdrant) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		var body json.RawMessage
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		key := r.Method + " " + r.URL.Path
		f.requests[key] = append(f.requests[key], body)
		f.mu.Unlock()

		if f.failAll {
			http.Error(w, `{"status":{"error":"unavailable"}}`, http.StatusInternalServerError)
			return
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/collections/test_docs/points/search":
			if f.searchFn != nil {
				f.searchFn(w)
				return
			}
			w.Write([]byte(`{"result":[]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/collections/test_docs/points/scroll":
			w.Write([]byte(`{"result":{"points":[],"next_page_offset":null}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/collections/test_docs":
			w.Write([]byte(`{"result":{"points_count":42,"status":"green"}}`))
		default:
			w.Write([]byte(`{"result":true,"status":"ok"}`))
		}
	})
}

func (f *fakeQdrant) bodies(method, path string) []json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[method+" "+path]
}

func newTestStore(t *testing.T, fake *fakeQdrant) *QdrantStore {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	config := common.NewDefaultConfig()
	config.Qdrant.URL = server.URL
	config.Qdrant.Collection = "test_docs"
	config.Qdrant.VectorSize = 64
	config.Embedding.Dimension = 64

	store, err := NewQdrantStore(context.Background(), config, embeddings.NewOfflineEmbedder(64), common.GetLogger())
	require.NoError(t, err)
	return store
}

func testChunk(content, source, subject, year string, docType models.DocType) models.Chunk {
	return models.Chunk{
		Content: content,
		Metadata: models.ChunkMetadata{
			Source:      source,
			Type:        docType,
			Subject:     subject,
			Year:        year,
			Page:        1,
			TotalChunks: 1,
		},
	}
}

func TestAddDocumentsIdempotentIDs(t *testing.T) {
	fake := newFakeQdrant()
	store := newTestStore(t, fake)
	ctx := context.Background()

	chunk := testChunk("B-trees balance on insert.", "dbms.pdf", "Database Management Systems", "Year 1", models.DocTypeNotes)

	result, err := store.AddDocuments(ctx, []models.Chunk{chunk})
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, 1, result.DocumentsAdded)

	_, err = store.AddDocuments(ctx, []models.Chunk{chunk})
	require.NoError(t, err)

	upserts := fake.bodies(http.MethodPut, "/collections/test_docs/points")
	require.Len(t, upserts, 2)

	var first, second struct {
		Points []struct {
			ID string `json:"id"`
		} `json:"points"`
	}
	require.NoError(t, json.Unmarshal(upserts[0], &first))
	require.NoError(t, json.Unmarshal(upserts[1], &second))
	require.Len(t, first.Points, 1)
	require.Len(t, second.Points, 1)
	assert.Equal(t, first.Points[0].ID, second.Points[0].ID, "same content and metadata must produce the same point id")
}

func TestAddDocumentsPayloadTags(t *testing.T) {
	fake := newFakeQdrant()
	store := newTestStore(t, fake)

	chunk := testChunk("Deadlock prevention orders lock acquisition.", "os.pdf", "Operating Systems", "Year 2", models.DocTypeQuestionBank)
	_, err := store.AddDocuments(context.Background(), []models.Chunk{chunk})
	require.NoError(t, err)

	upserts := fake.bodies(http.MethodPut, "/collections/test_docs/points")
	require.Len(t, upserts, 1)

	var body struct {
		Points []struct {
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	require.NoError(t, json.Unmarshal(upserts[0], &body))
	require.Len(t, body.Points, 1)

	payload := body.Points[0].Payload
	assert.Equal(t, "os.pdf", payload["source"])
	assert.Equal(t, "question_bank", payload["type"])
	assert.Equal(t, "Operating Systems", payload["subject"])
	assert.Equal(t, "Year 2", payload["year"])
}

func TestAddDocumentsSkipsInvalidChunks(t *testing.T) {
	fake := newFakeQdrant()
	store := newTestStore(t, fake)

	chunks := []models.Chunk{
		testChunk("Valid content about schedulers.", "os.pdf", "Operating Systems", "Year 2", models.DocTypeNotes),
		{Content: "   "},
		{Content: "orphan chunk with no metadata"},
	}

	result, err := store.AddDocuments(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, 1, result.DocumentsAdded)
}

func TestAddDocumentsTotalFailure(t *testing.T) {
	fake := newFakeQdrant()
	store := newTestStore(t, fake)
	fake.failAll = true

	result, err := store.AddDocuments(context.Background(),
		[]models.Chunk{testChunk("content", "a.pdf", "Mathematics", "Year 1", models.DocTypeNotes)})
	require.NoError(t, err)
	assert.Equal(t, "error", result.Status)
	assert.NotEmpty(t, result.Message)
}

func TestSearchAppliesSubjectFilter(t *testing.T) {
	fake := newFakeQdrant()
	fake.searchFn = func(w http.ResponseWriter) {
		w.Write([]byte(`{"result":[{"score":0.9,"payload":{
			"text":"Normalization notes","source":"dbms.pdf","type":"notes",
			"subject":"Database Management Systems","year":"Year 1","page":3}}]}`))
	}
	store := newTestStore(t, fake)

	results := store.Search(context.Background(), "what is normalization",
		5, models.SearchFilters{Subject: "Database Management Systems"})
	require.Len(t, results, 1)
	assert.Equal(t, "Database Management Systems", results[0].Metadata.Subject)
	assert.Equal(t, 3, results[0].Metadata.Page)
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)

	searches := fake.bodies(http.MethodPost, "/collections/test_docs/points/search")
	require.Len(t, searches, 1)

	var req struct {
		Limit          int     `json:"limit"`
		ScoreThreshold float64 `json:"score_threshold"`
		Filter         *struct {
			Must []struct {
				Key   string `json:"key"`
				Match struct {
					Value string `json:"value"`
				} `json:"match"`
			} `json:"must"`
		} `json:"filter"`
	}
	require.NoError(t, json.Unmarshal(searches[0], &req))
	assert.Equal(t, 5, req.Limit)
	assert.InDelta(t, 0.3, req.ScoreThreshold, 1e-9)
	require.NotNil(t, req.Filter)
	require.Len(t, req.Filter.Must, 1)
	assert.Equal(t, "subject", req.Filter.Must[0].Key)
	assert.Equal(t, "Database Management Systems", req.Filter.Must[0].Match.Value)
}

func TestSearchAllValuesApplyNoFilter(t *testing.T) {
	fake := newFakeQdrant()
	store := newTestStore(t, fake)

	store.Search(context.Background(), "anything", 5,
		models.SearchFilters{Subject: "All", Year: "All", Type: ""})

	searches := fake.bodies(http.MethodPost, "/collections/test_docs/points/search")
	require.Len(t, searches, 1)

	var req map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(searches[0], &req))
	_, hasFilter := req["filter"]
	assert.False(t, hasFilter, "empty and All filters must not restrict the search")
}

func TestSearchFailureDegradesToEmpty(t *testing.T) {
	fake := newFakeQdrant()
	store := newTestStore(t, fake)
	fake.failAll = true

	results := store.Search(context.Background(), "query", 5, models.SearchFilters{})
	assert.Empty(t, results)
}

func TestDeleteDocumentByMetadataScoping(t *testing.T) {
	fake := newFakeQdrant()
	store := newTestStore(t, fake)

	ok := store.DeleteDocumentByMetadata(context.Background(), "A.pdf", "Math", "Year 1", "notes")
	assert.True(t, ok)

	deletes := fake.bodies(http.MethodPost, "/collections/test_docs/points/delete")
	require.Len(t, deletes, 1)

	var req struct {
		Filter struct {
			Must []struct {
				Key   string `json:"key"`
				Match struct {
					Value string `json:"value"`
				} `json:"match"`
			} `json:"must"`
		} `json:"filter"`
	}
	require.NoError(t, json.Unmarshal(deletes[0], &req))
	require.Len(t, req.Filter.Must, 4, "delete must match all four identity fields")

	got := make(map[string]string)
	for _, cond := range req.Filter.Must {
		got[cond.Key] = cond.Match.Value
	}
	assert.Equal(t, map[string]string{
		"source":  "A.pdf",
		"subject": "Math",
		"year":    "Year 1",
		"type":    "notes",
	}, got)
}

func TestDeleteFailureReturnsFalse(t *testing.T) {
	fake := newFakeQdrant()
	store := newTestStore(t, fake)
	fake.failAll = true

	assert.False(t, store.DeleteDocumentByMetadata(context.Background(), "A.pdf", "Math", "Year 1", "notes"))
}

func TestGetStats(t *testing.T) {
	fake := newFakeQdrant()
	store := newTestStore(t, fake)

	stats := store.GetStats(context.Background())
	assert.Equal(t, 42, stats.ChunkCount)
	assert.Equal(t, "green", stats.Status)
	assert.Equal(t, "qdrant", stats.Provider)
}

func TestGetStatsFailure(t *testing.T) {
	fake := newFakeQdrant()
	store := newTestStore(t, fake)
	fake.failAll = true

	stats := store.GetStats(context.Background())
	assert.Equal(t, "error", stats.Status)
	assert.Zero(t, stats.ChunkCount)
}

func TestEnsureCollectionCreatesWhenMissing(t *testing.T) {
	created := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/collections/test_docs" && !created {
			http.NotFound(w, r)
			return
		}
		if r.Method == http.MethodPut && r.URL.Path == "/collections/test_docs" {
			created = true
		}
		w.Write([]byte(`{"result":true,"status":"ok"}`))
	}))
	t.Cleanup(server.Close)

	config := common.NewDefaultConfig()
	config.Qdrant.URL = server.URL
	config.Qdrant.Collection = "test_docs"
	config.Qdrant.VectorSize = 64

	_, err := NewQdrantStore(context.Background(), config, embeddings.NewOfflineEmbedder(64), common.GetLogger())
	require.NoError(t, err)
	assert.True(t, created)
}
