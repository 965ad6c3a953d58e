// -----------------------------------------------------------------------
// Status Handler - Health, version, store statistics and admin reset
// -----------------------------------------------------------------------

package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/interfaces"
	"github.com/ternarybob/scholar/internal/models"
)

// StatusHandler serves the dashboard and admin endpoints.
type StatusHandler struct {
	store   interfaces.VectorStore
	answers interfaces.AnswerService
	catalog interfaces.CatalogService
	logger  arbor.ILogger
}

func NewStatusHandler(store interfaces.VectorStore, answers interfaces.AnswerService, catalog interfaces.CatalogService, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		store:   store,
		answers: answers,
		catalog: catalog,
		logger:  logger,
	}
}

// Health is a liveness probe.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Version reports build information.
func (h *StatusHandler) Version(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetFullVersion(),
	})
}

// Status reports vector store health and answer provider connectivity.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"store":    h.store.GetStats(r.Context()),
		"provider": h.answers.GetStatus(r.Context()),
	})
}

// Stats reports aggregate counts for the dashboard: store totals, per-type
// document counts and local usage counters.
func (h *StatusHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	usage, err := h.catalog.GetUsageStats()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to load usage stats")
		usage = models.UsageStats{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"store":     h.store.GetStats(r.Context()),
		"by_type":   h.store.GetDocumentStatsByType(r.Context()),
		"documents": h.store.GetUploadedDocuments(r.Context()),
		"usage":     usage,
	})
}

// Reset drops and recreates the vector collection. Irreversible.
func (h *StatusHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := h.store.DeleteCollection(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Collection reset failed")
		WriteError(w, http.StatusBadGateway, "failed to reset collection")
		return
	}

	h.logger.Warn().Msg("Vector collection reset")
	WriteSuccess(w, "collection reset")
}
