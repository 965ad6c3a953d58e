package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/scholar/internal/models"
)

func resultWith(source, text string) models.SearchResult {
	return models.SearchResult{
		Text:     text,
		Metadata: models.ResultMetadata{Source: source, Subject: "Mathematics", Year: "Year 1", Page: 2},
		Score:    0.8,
	}
}

func TestBuildMessagesCapsContextDocs(t *testing.T) {
	results := []models.SearchResult{
		resultWith("a.pdf", "first"),
		resultWith("b.pdf", "second"),
		resultWith("c.pdf", "third"),
		resultWith("d.pdf", "fourth"),
	}

	messages, sources := buildMessages("question", results, nil)

	require.Len(t, sources, 3, "at most three documents enter the context")
	assert.Equal(t, "a.pdf", sources[0].Document)
	assert.Equal(t, "c.pdf", sources[2].Document)

	var contextMsg string
	for _, msg := range messages {
		if strings.HasPrefix(msg.Content, "Context:") {
			contextMsg = msg.Content
		}
	}
	require.NotEmpty(t, contextMsg)
	assert.Contains(t, contextMsg, "[Document 3]")
	assert.NotContains(t, contextMsg, "[Document 4]")
	assert.NotContains(t, contextMsg, "fourth")
}

func TestBuildMessagesTruncatesLongDocuments(t *testing.T) {
	long := strings.Repeat("x", 2000)
	messages, _ := buildMessages("question", []models.SearchResult{resultWith("a.pdf", long)}, nil)

	for _, msg := range messages {
		if strings.HasPrefix(msg.Content, "Context:") {
			assert.NotContains(t, msg.Content, strings.Repeat("x", maxDocChars+1))
			assert.Contains(t, msg.Content, strings.Repeat("x", maxDocChars))
		}
	}
}

func TestBuildMessagesLimitsHistory(t *testing.T) {
	history := []models.Exchange{
		{User: "oldest question", Assistant: "oldest answer"},
		{User: "middle question", Assistant: "middle answer"},
		{User: "recent question", Assistant: "recent answer"},
	}

	messages, _ := buildMessages("current question", nil, history)

	var all strings.Builder
	for _, msg := range messages {
		all.WriteString(msg.Content)
		all.WriteString("\n")
	}
	assert.NotContains(t, all.String(), "oldest question")
	assert.Contains(t, all.String(), "middle question")
	assert.Contains(t, all.String(), "recent question")
}

func TestBuildMessagesShape(t *testing.T) {
	messages, sources := buildMessages("What is a limit?", nil, nil)

	require.Len(t, messages, 2, "no context and no history leaves system plus question")
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "user", messages[1].Role)
	assert.Equal(t, "What is a limit?", messages[1].Content)
	assert.Empty(t, sources)
}
