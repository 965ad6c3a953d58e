// -----------------------------------------------------------------------
// Qdrant Vector Store - REST client for embedding storage and filtered
// similarity search
// -----------------------------------------------------------------------

package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/interfaces"
	"github.com/ternarybob/scholar/internal/models"
)

// minScoreThreshold filters out weakly related hits at search time.
const minScoreThreshold = 0.3

// filterableFields get payload indexes so exact-match filters stay fast as
// the collection grows.
var filterableFields = []string{"type", "subject", "year", "source"}

// QdrantStore persists embedded chunks in a Qdrant collection over its REST
// API. Point ids are derived from chunk content and metadata, so re-ingesting
// identical material overwrites rather than duplicates.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	vectorSize int
	batchSize  int
	embedder   interfaces.EmbeddingService
	client     *http.Client
	logger     arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.VectorStore = (*QdrantStore)(nil)

// NewQdrantStore creates the store and performs one-time collection setup:
// create the collection if missing and ensure payload indexes exist.
func NewQdrantStore(ctx context.Context, config *common.Config, embedder interfaces.EmbeddingService, logger arbor.ILogger) (*QdrantStore, error) {
	s := &QdrantStore{
		baseURL:    strings.TrimRight(config.Qdrant.URL, "/"),
		apiKey:     config.Qdrant.APIKey,
		collection: config.Qdrant.Collection,
		vectorSize: config.Qdrant.VectorSize,
		batchSize:  config.Search.BatchSize,
		embedder:   embedder,
		client:     &http.Client{Timeout: config.Qdrant.Timeout},
		logger:     logger,
	}
	if s.batchSize <= 0 {
		s.batchSize = 100
	}

	if err := s.ensureCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize collection: %w", err)
	}
	s.createPayloadIndexes(ctx)

	return s, nil
}

// ensureCollection creates the collection with cosine distance when it does
// not already exist. Idempotent.
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	status, _, err := s.do(ctx, http.MethodGet, s.collectionURL(""), nil)
	if err == nil && status == http.StatusOK {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.vectorSize,
			"distance": "Cosine",
		},
	}
	status, respBody, err := s.do(ctx, http.MethodPut, s.collectionURL(""), body)
	if err != nil {
		return err
	}
	if status >= 300 && !alreadyExists(status, respBody) {
		return fmt.Errorf("create collection returned %d: %s", status, respBody)
	}

	s.logger.Info().
		Str("collection", s.collection).
		Int("vector_size", s.vectorSize).
		Msg("Created vector collection")

	return nil
}

// createPayloadIndexes sets up keyword indexes on the filterable metadata
// fields. Already-exists responses are swallowed.
func (s *QdrantStore) createPayloadIndexes(ctx context.Context) {
	for _, field := range filterableFields {
		body := map[string]any{
			"field_name":   field,
			"field_schema": "keyword",
		}
		status, respBody, err := s.do(ctx, http.MethodPut, s.collectionURL("/index"), body)
		if err != nil {
			s.logger.Warn().Str("field", field).Err(err).Msg("Failed to create payload index")
			continue
		}
		if status >= 300 && !alreadyExists(status, respBody) {
			s.logger.Warn().Str("field", field).Int("status", status).Msg("Payload index not created")
		}
	}
}

// AddDocuments embeds and upserts chunks in batches. Chunks missing content
// or metadata are skipped with a warning. Total failure produces an error
// status in the result, never a panic or error return.
func (s *QdrantStore) AddDocuments(ctx context.Context, chunks []models.Chunk) (models.AddResult, error) {
	var points []qdrantPoint
	skipped := 0

	for i, chunk := range chunks {
		if strings.TrimSpace(chunk.Content) == "" || chunk.Metadata.Source == "" {
			s.logger.Warn().Int("index", i).Msg("Skipping chunk with missing content or metadata")
			skipped++
			continue
		}

		vector, err := s.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			s.logger.Warn().Int("index", i).Err(err).Msg("Failed to embed chunk, skipping")
			skipped++
			continue
		}

		points = append(points, qdrantPoint{
			ID:      common.DeterministicPointID(chunk.Content, chunk.Metadata.CanonicalString()),
			Vector:  vector,
			Payload: s.payloadFor(chunk),
		})
	}

	if len(points) == 0 {
		return models.AddResult{
			Status:  "error",
			Message: "no valid chunks to add",
		}, nil
	}

	added := 0
	for start := 0; start < len(points); start += s.batchSize {
		end := start + s.batchSize
		if end > len(points) {
			end = len(points)
		}

		body := map[string]any{"points": points[start:end]}
		status, _, err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body)
		if err != nil || status >= 300 {
			s.logger.Error().
				Int("batch_start", start).
				Int("status", status).
				Err(err).
				Msg("Upsert batch failed")
			continue
		}
		added += end - start
	}

	if added == 0 {
		return models.AddResult{
			Status:  "error",
			Message: "failed to upsert any chunks",
		}, nil
	}

	s.logger.Info().
		Int("added", added).
		Int("skipped", skipped).
		Msg("Added documents to vector store")

	return models.AddResult{
		Status:         "success",
		DocumentsAdded: added,
		Message:        fmt.Sprintf("Added %d chunks (%d skipped)", added, skipped),
	}, nil
}

// Search embeds the query and runs a filtered similarity search. Any failure
// degrades to an empty result set.
func (s *QdrantStore) Search(ctx context.Context, query string, topK int, filters models.SearchFilters) []models.SearchResult {
	if topK <= 0 {
		topK = 5
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to embed query")
		return nil
	}

	body := map[string]any{
		"vector":          vector,
		"limit":           topK,
		"with_payload":    true,
		"score_threshold": minScoreThreshold,
	}
	if filter := buildFilter(filters); filter != nil {
		body["filter"] = filter
	}

	var resp struct {
		Result []struct {
			Score   float64       `json:"score"`
			Payload qdrantPayload `json:"payload"`
		} `json:"result"`
	}
	status, respBody, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), body)
	if err != nil || status >= 300 {
		s.logger.Warn().Int("status", status).Err(err).Msg("Search request failed")
		return nil
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to decode search response")
		return nil
	}

	results := make([]models.SearchResult, 0, len(resp.Result))
	for _, hit := range resp.Result {
		results = append(results, models.SearchResult{
			Text: hit.Payload.Text,
			Metadata: models.ResultMetadata{
				Source:  hit.Payload.Source,
				Type:    models.DocType(hit.Payload.Type),
				Subject: hit.Payload.Subject,
				Year:    hit.Payload.Year,
				Page:    hit.Payload.Page,
			},
			Score: hit.Score,
		})
	}

	return results
}

// DeleteDocumentByMetadata removes every point matching all four identity
// fields. Returns false on failure rather than an error.
func (s *QdrantStore) DeleteDocumentByMetadata(ctx context.Context, source, subject, year, docType string) bool {
	return s.deleteByFilter(ctx, map[string]string{
		"source":  source,
		"subject": subject,
		"year":    year,
		"type":    docType,
	})
}

func (s *QdrantStore) deleteByFilter(ctx context.Context, fields map[string]string) bool {
	var must []map[string]any
	for _, field := range filterableFields {
		value, ok := fields[field]
		if !ok {
			continue
		}
		must = append(must, map[string]any{
			"key":   field,
			"match": map[string]any{"value": value},
		})
	}

	body := map[string]any{
		"filter": map[string]any{"must": must},
	}
	status, _, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/delete?wait=true"), body)
	if err != nil || status >= 300 {
		s.logger.Warn().Int("status", status).Err(err).Msg("Delete by metadata failed")
		return false
	}

	return true
}

// DeleteCollection drops and recreates the collection. Irreversible.
func (s *QdrantStore) DeleteCollection(ctx context.Context) error {
	status, respBody, err := s.do(ctx, http.MethodDelete, s.collectionURL(""), nil)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if status >= 300 {
		return fmt.Errorf("delete collection returned %d: %s", status, respBody)
	}

	if err := s.ensureCollection(ctx); err != nil {
		return err
	}
	s.createPayloadIndexes(ctx)

	s.logger.Info().Str("collection", s.collection).Msg("Collection reset")
	return nil
}

// GetStats reports point counts and collection health. Failures degrade to
// zero counts with an error status.
func (s *QdrantStore) GetStats(ctx context.Context) models.StoreStats {
	var resp struct {
		Result struct {
			PointsCount int    `json:"points_count"`
			Status      string `json:"status"`
		} `json:"result"`
	}

	status, respBody, err := s.do(ctx, http.MethodGet, s.collectionURL(""), nil)
	if err != nil || status >= 300 || json.Unmarshal(respBody, &resp) != nil {
		s.logger.Warn().Int("status", status).Err(err).Msg("Failed to fetch collection stats")
		return models.StoreStats{Status: "error", Provider: "qdrant"}
	}

	return models.StoreStats{
		DocumentCount:  resp.Result.PointsCount,
		ChunkCount:     resp.Result.PointsCount,
		EmbeddingCount: resp.Result.PointsCount,
		Status:         resp.Result.Status,
		Provider:       "qdrant",
	}
}

// GetDocumentStatsByType counts distinct sources per document category.
// A per-type failure yields a zero count for that type only.
func (s *QdrantStore) GetDocumentStatsByType(ctx context.Context) map[string]int {
	stats := make(map[string]int, len(models.DocTypes))

	for _, docType := range models.DocTypes {
		stats[string(docType)] = 0

		filter := map[string]any{
			"must": []map[string]any{
				{"key": "type", "match": map[string]any{"value": string(docType)}},
			},
		}
		points, err := s.scroll(ctx, filter)
		if err != nil {
			s.logger.Warn().Str("type", string(docType)).Err(err).Msg("Scroll failed for type")
			continue
		}

		sources := make(map[string]struct{})
		for _, p := range points {
			if p.Source != "" {
				sources[p.Source] = struct{}{}
			}
		}
		stats[string(docType)] = len(sources)
	}

	return stats
}

// GetUploadedDocuments lists documents deduplicated by (source, subject,
// year, type), sorted for stable display.
func (s *QdrantStore) GetUploadedDocuments(ctx context.Context) []models.DocumentInfo {
	points, err := s.scroll(ctx, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to list uploaded documents")
		return nil
	}

	seen := make(map[string]models.DocumentInfo)
	for _, p := range points {
		if p.Source == "" {
			continue
		}
		key := strings.Join([]string{p.Source, p.Subject, p.Year, p.Type}, "|")
		if _, ok := seen[key]; !ok {
			seen[key] = models.DocumentInfo{
				Source:  p.Source,
				Subject: p.Subject,
				Year:    p.Year,
				Type:    models.DocType(p.Type),
			}
		}
	}

	docs := make([]models.DocumentInfo, 0, len(seen))
	for _, doc := range seen {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
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

	return docs
}

// scroll pages through collection points, returning their payloads.
func (s *QdrantStore) scroll(ctx context.Context, filter map[string]any) ([]qdrantPayload, error) {
	var payloads []qdrantPayload
	var offset any

	for {
		body := map[string]any{
			"limit":        1000,
			"with_payload": true,
		}
		if filter != nil {
			body["filter"] = filter
		}
		if offset != nil {
			body["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points []struct {
					Payload qdrantPayload `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		status, respBody, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/scroll"), body)
		if err != nil {
			return nil, err
		}
		if status >= 300 {
			return nil, fmt.Errorf("scroll returned %d: %s", status, respBody)
		}
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return nil, err
		}

		for _, p := range resp.Result.Points {
			payloads = append(payloads, p.Payload)
		}

		if resp.Result.NextPageOffset == nil || len(resp.Result.Points) == 0 {
			break
		}
		offset = resp.Result.NextPageOffset
	}

	return payloads, nil
}

func (s *QdrantStore) payloadFor(chunk models.Chunk) qdrantPayload {
	m := chunk.Metadata
	return qdrantPayload{
		Text:        chunk.Content,
		Source:      m.Source,
		Type:        string(m.Type),
		Subject:     m.Subject,
		Year:        m.Year,
		Page:        m.Page,
		ChunkID:     m.ChunkID,
		TotalChunks: m.TotalChunks,
		HasMath:     m.HasMath,
	}
}

func (s *QdrantStore) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.baseURL, s.collection, suffix)
}

// do issues one JSON request and returns status, body and transport error.
func (s *QdrantStore) do(ctx context.Context, method, url string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	return resp.StatusCode, respBody, nil
}

// buildFilter converts the non-empty, non-"All" filter fields into a Qdrant
// must clause. Returns nil when no filter applies.
func buildFilter(filters models.SearchFilters) map[string]any {
	fields := map[string]string{
		"subject": filters.Subject,
		"year":    filters.Year,
		"type":    filters.Type,
		"source":  filters.Source,
	}

	var must []map[string]any
	for _, field := range filterableFields {
		value := fields[field]
		if value == "" || value == "All" {
			continue
		}
		must = append(must, map[string]any{
			"key":   field,
			"match": map[string]any{"value": value},
		})
	}

	if len(must) == 0 {
		return nil
	}
	return map[string]any{"must": must}
}

// alreadyExists recognizes the responses Qdrant gives when a collection or
// index is created twice.
func alreadyExists(status int, body []byte) bool {
	return status == http.StatusConflict || bytes.Contains(body, []byte("already exists"))
}

// qdrantPoint is the wire form of one stored vector.
type qdrantPoint struct {
	ID      string        `json:"id"`
	Vector  []float32     `json:"vector"`
	Payload qdrantPayload `json:"payload"`
}

// qdrantPayload carries chunk metadata plus the raw text for display.
type qdrantPayload struct {
	Text        string `json:"text"`
	Source      string `json:"source"`
	Type        string `json:"type"`
	Subject     string `json:"subject"`
	Year        string `json:"year"`
	Page        int    `json:"page"`
	ChunkID     int    `json:"chunk_id"`
	TotalChunks int    `json:"total_chunks"`
	HasMath     bool   `json:"has_math"`
}
