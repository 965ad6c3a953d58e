// -----------------------------------------------------------------------
// Search Handler - Filtered similarity search over indexed chunks
// -----------------------------------------------------------------------

package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/interfaces"
	"github.com/ternarybob/scholar/internal/models"
)

// SearchHandler serves the retrieval endpoint.
type SearchHandler struct {
	store  interfaces.VectorStore
	config *common.Config
	logger arbor.ILogger
}

func NewSearchHandler(store interfaces.VectorStore, config *common.Config, logger arbor.ILogger) *SearchHandler {
	return &SearchHandler{
		store:  store,
		config: config,
		logger: logger,
	}
}

type searchRequest struct {
	Query   string               `json:"query"`
	TopK    int                  `json:"top_k"`
	Filters models.SearchFilters `json:"filters"`
}

// Search runs a similarity query. Backend failures surface as an empty
// result list, never a 5xx.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req searchRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Query == "" {
		WriteError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.TopK <= 0 {
		req.TopK = h.config.Search.TopK
	}

	results := h.store.Search(r.Context(), req.Query, req.TopK, req.Filters)

	WriteJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}
