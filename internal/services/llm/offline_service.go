// -----------------------------------------------------------------------
// Offline Answer Service - Extractive fallback for operation without any
// hosted model
// -----------------------------------------------------------------------

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/scholar/internal/interfaces"
	"github.com/ternarybob/scholar/internal/models"
)

// OfflineService answers by quoting the retrieved chunks back to the user.
// It never calls a network and always reports the "offline" status so the
// caller can label the answer appropriately.
type OfflineService struct{}

// Compile-time interface assertion
var _ interfaces.AnswerService = (*OfflineService)(nil)

func NewOfflineService() *OfflineService {
	return &OfflineService{}
}

// Generate returns the top retrieved excerpts verbatim with their sources.
func (o *OfflineService) Generate(ctx context.Context, question string, results []models.SearchResult, history []models.Exchange) models.AnswerResult {
	if len(results) == 0 {
		return models.AnswerResult{
			Answer: "No hosted model is configured and no matching material was found in your notes.",
			Model:  "offline",
			Status: models.AnswerStatusOffline,
		}
	}

	docs := results
	if len(docs) > maxContextDocs {
		docs = docs[:maxContextDocs]
	}

	var answer strings.Builder
	answer.WriteString("No hosted model is configured. Here are the most relevant excerpts from your notes:\n")

	var sources []models.Source
	for i, doc := range docs {
		fmt.Fprintf(&answer, "\n%d. %s (%s, page %d):\n%s\n",
			i+1, doc.Metadata.Source, doc.Metadata.Subject, doc.Metadata.Page,
			truncate(doc.Text, maxDocChars))
		sources = append(sources, models.Source{
			Document: doc.Metadata.Source,
			Subject:  doc.Metadata.Subject,
			Page:     doc.Metadata.Page,
		})
	}

	return models.AnswerResult{
		Answer:  answer.String(),
		Sources: sources,
		Model:   "offline",
		Status:  models.AnswerStatusOffline,
	}
}

// GetStatus always reports the fallback as available.
func (o *OfflineService) GetStatus(ctx context.Context) models.ProviderStatus {
	return models.ProviderStatus{
		Connected: true,
		Model:     "offline",
		Provider:  "offline",
		Status:    "connected",
	}
}
