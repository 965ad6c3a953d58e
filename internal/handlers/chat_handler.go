// -----------------------------------------------------------------------
// Chat Handler - Question answering over retrieved study material
// -----------------------------------------------------------------------

package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/interfaces"
	"github.com/ternarybob/scholar/internal/models"
)

// ChatHandler retrieves relevant chunks for a question and forwards them to
// the answer provider.
type ChatHandler struct {
	store   interfaces.VectorStore
	answers interfaces.AnswerService
	catalog interfaces.CatalogService
	config  *common.Config
	logger  arbor.ILogger
}

func NewChatHandler(store interfaces.VectorStore, answers interfaces.AnswerService, catalog interfaces.CatalogService, config *common.Config, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		store:   store,
		answers: answers,
		catalog: catalog,
		config:  config,
		logger:  logger,
	}
}

type askRequest struct {
	Question string               `json:"question"`
	Filters  models.SearchFilters `json:"filters"`
	History  []models.Exchange    `json:"history"`
}

// Ask answers one question. The response is always well-formed; provider
// failures come back with a non-success status inside the result.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req askRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Question == "" {
		WriteError(w, http.StatusBadRequest, "question is required")
		return
	}

	results := h.store.Search(r.Context(), req.Question, h.config.Search.TopK, req.Filters)
	answer := h.answers.Generate(r.Context(), req.Question, results, req.History)

	if err := h.catalog.RecordQuestion(); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to update question counter")
	}

	h.logger.Info().
		Str("status", answer.Status).
		Int("retrieved", len(results)).
		Int("sources", len(answer.Sources)).
		Msg("Answered question")

	WriteJSON(w, http.StatusOK, answer)
}
