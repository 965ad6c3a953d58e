// -----------------------------------------------------------------------
// Document Handler - Upload, list and delete study documents
// -----------------------------------------------------------------------

package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/interfaces"
	"github.com/ternarybob/scholar/internal/models"
)

// DocumentHandler serves the ingestion and catalog endpoints.
type DocumentHandler struct {
	processor interfaces.DocumentProcessor
	store     interfaces.VectorStore
	catalog   interfaces.CatalogService
	config    *common.Config
	logger    arbor.ILogger
}

func NewDocumentHandler(processor interfaces.DocumentProcessor, store interfaces.VectorStore, catalog interfaces.CatalogService, config *common.Config, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		processor: processor,
		store:     store,
		catalog:   catalog,
		config:    config,
		logger:    logger,
	}
}

// Upload accepts one PDF via multipart form, runs the pipeline and indexes
// the resulting chunks. Form fields: file, doc_type, subject, year.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(h.config.Documents.MaxUploadSize); err != nil {
		WriteError(w, http.StatusBadRequest, "failed to parse upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		WriteError(w, http.StatusBadRequest, "only .pdf files are accepted")
		return
	}

	docType := models.DocType(r.FormValue("doc_type"))
	subject := r.FormValue("subject")
	year := r.FormValue("year")
	if !docType.Valid() {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid doc_type %q", docType))
		return
	}
	if !models.ValidSubject(subject) {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("unknown subject %q", subject))
		return
	}
	if !models.ValidYear(year) {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid year %q", year))
		return
	}

	// Spool the upload to disk for the extractor; the temp copy is removed
	// on every exit path.
	tempPath, cleanup, err := h.spoolUpload(file, header.Filename)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to spool upload")
		WriteError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer cleanup()

	chunks, err := h.processor.Process(r.Context(), tempPath, docType, subject, year)
	if err != nil {
		h.logger.Error().Str("file", header.Filename).Err(err).Msg("Processing failed")
		WriteError(w, http.StatusInternalServerError, "failed to process document")
		return
	}
	if len(chunks) == 0 {
		WriteError(w, http.StatusUnprocessableEntity, "no text could be extracted from the document")
		return
	}

	result, _ := h.store.AddDocuments(r.Context(), chunks)
	if result.Status != "success" {
		WriteError(w, http.StatusBadGateway, result.Message)
		return
	}

	stats := h.processor.Stats(chunks)
	record := models.DocumentRecord{
		Source:     header.Filename,
		Subject:    subject,
		Year:       year,
		Type:       docType,
		Pages:      stats.PagesProcessed,
		Chunks:     stats.TotalChunks,
		MathChunks: stats.MathChunks,
	}
	if err := h.catalog.RecordDocument(record); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to record document in catalog")
	}
	if err := h.catalog.RecordUpload(stats.TotalChunks); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to update usage counters")
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status":          "success",
		"source":          header.Filename,
		"pages":           stats.PagesProcessed,
		"chunks":          stats.TotalChunks,
		"math_chunks":     stats.MathChunks,
		"documents_added": result.DocumentsAdded,
	})
}

// List returns the catalog of uploaded documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if subject := r.URL.Query().Get("subject"); subject != "" {
		records, err := h.catalog.ListDocumentsBySubject(subject)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"documents": records})
		return
	}

	records, err := h.catalog.ListDocuments()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"documents": records})
}

// Delete removes a document from both the vector store and the catalog.
// Query params: source, subject, year, type; all four are required.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	q := r.URL.Query()
	source, subject, year, docType := q.Get("source"), q.Get("subject"), q.Get("year"), q.Get("type")
	if source == "" || subject == "" || year == "" || docType == "" {
		WriteError(w, http.StatusBadRequest, "source, subject, year and type are required")
		return
	}

	if !h.store.DeleteDocumentByMetadata(r.Context(), source, subject, year, docType) {
		WriteError(w, http.StatusBadGateway, "failed to delete document from vector store")
		return
	}
	if err := h.catalog.DeleteDocument(source, subject, year, models.DocType(docType)); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to delete catalog entry")
	}

	WriteSuccess(w, fmt.Sprintf("deleted %s", source))
}

// spoolUpload writes the uploaded file into a scratch directory, keeping
// the original filename since it becomes the source metadata. The returned
// cleanup removes the whole directory.
func (h *DocumentHandler) spoolUpload(file io.Reader, filename string) (string, func(), error) {
	dir := h.config.Documents.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, err
	}

	uploadDir, err := os.MkdirTemp(dir, "upload_")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(uploadDir) }

	path := filepath.Join(uploadDir, filepath.Base(filename))
	out, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, err
	}

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		cleanup()
		return "", nil, err
	}
	if err := out.Close(); err != nil {
		cleanup()
		return "", nil, err
	}

	return path, cleanup, nil
}
