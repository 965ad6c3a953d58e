// -----------------------------------------------------------------------
// Prompt Assembly - Bounded context, history and system instruction for
// answer generation
// -----------------------------------------------------------------------

package llm

import (
	"fmt"
	"strings"

	"github.com/ternarybob/scholar/internal/models"
)

const (
	// maxContextDocs caps how many retrieved chunks go into the prompt.
	maxContextDocs = 3

	// maxDocChars truncates each chunk's text in the context block.
	maxDocChars = 600

	// maxHistoryExchanges caps how many prior turns are replayed.
	maxHistoryExchanges = 2
)

// systemPrompt is the fixed instruction for every answer.
const systemPrompt = `You are a study assistant for university course materials.
- Use the provided context FIRST.
- If the context does not contain the answer, say:
  "Not found in notes, here is general guidance:"
- Keep answers under 250 words.
- Use simple, clear explanations.
- For technical content, use examples.`

// buildMessages assembles the conversation sent to a model: system
// instruction, a context block from at most three retrieved documents, the
// last two prior exchanges, then the question. It also returns the source
// descriptor for each document included in the context.
func buildMessages(question string, results []models.SearchResult, history []models.Exchange) ([]models.Message, []models.Source) {
	var context strings.Builder
	var sources []models.Source

	docs := results
	if len(docs) > maxContextDocs {
		docs = docs[:maxContextDocs]
	}
	for i, doc := range docs {
		text := truncate(doc.Text, maxDocChars)
		fmt.Fprintf(&context, "\n[Document %d]\n%s\n", i+1, text)
		sources = append(sources, models.Source{
			Document: doc.Metadata.Source,
			Subject:  doc.Metadata.Subject,
			Page:     doc.Metadata.Page,
		})
	}

	messages := []models.Message{
		{Role: "system", Content: systemPrompt},
	}

	if context.Len() > 0 {
		messages = append(messages,
			models.Message{Role: "user", Content: "Context:\n" + context.String()},
			models.Message{Role: "assistant", Content: "Context received. I will use it to answer your question."},
		)
	}

	turns := history
	if len(turns) > maxHistoryExchanges {
		turns = turns[len(turns)-maxHistoryExchanges:]
	}
	for _, turn := range turns {
		messages = append(messages,
			models.Message{Role: "user", Content: turn.User},
			models.Message{Role: "assistant", Content: turn.Assistant},
		)
	}

	messages = append(messages, models.Message{Role: "user", Content: question})

	return messages, sources
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
