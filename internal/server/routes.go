package server

import (
	"net/http"

	"github.com/ternarybob/scholar/internal/handlers"
)

// setupRoutes registers all API endpoints.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	documentHandler := handlers.NewDocumentHandler(s.app.Processor, s.app.VectorStore, s.app.Catalog, s.app.Config, s.app.Logger)
	searchHandler := handlers.NewSearchHandler(s.app.VectorStore, s.app.Config, s.app.Logger)
	chatHandler := handlers.NewChatHandler(s.app.VectorStore, s.app.AnswerService, s.app.Catalog, s.app.Config, s.app.Logger)
	statusHandler := handlers.NewStatusHandler(s.app.VectorStore, s.app.AnswerService, s.app.Catalog, s.app.Logger)

	// Documents
	mux.HandleFunc("/api/documents/upload", documentHandler.Upload)
	mux.HandleFunc("/api/documents/delete", documentHandler.Delete)
	mux.HandleFunc("/api/documents", documentHandler.List)

	// Retrieval and chat
	mux.HandleFunc("/api/search", searchHandler.Search)
	mux.HandleFunc("/api/chat", chatHandler.Ask)

	// Status and admin
	mux.HandleFunc("/api/health", statusHandler.Health)
	mux.HandleFunc("/api/version", statusHandler.Version)
	mux.HandleFunc("/api/status", statusHandler.Status)
	mux.HandleFunc("/api/stats", statusHandler.Stats)
	mux.HandleFunc("/api/admin/reset", statusHandler.Reset)

	return mux
}
