package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/interfaces"
)

// NewAnswerService selects an answer provider by configuration.
func NewAnswerService(ctx context.Context, config *common.Config, logger arbor.ILogger) (interfaces.AnswerService, error) {
	switch config.LLM.DefaultProvider {
	case common.LLMProviderGemini:
		return NewGeminiService(ctx, &config.Gemini, logger)
	case common.LLMProviderClaude:
		return NewClaudeService(ctx, &config.Claude, logger)
	case common.LLMProviderOffline:
		return NewOfflineService(), nil
	default:
		return nil, fmt.Errorf("unknown answer provider: %s", config.LLM.DefaultProvider)
	}
}
