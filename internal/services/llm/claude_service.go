// -----------------------------------------------------------------------
// Claude Completer - Answer generation via the Anthropic API
// -----------------------------------------------------------------------

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/models"
)

// claudeCompleter issues chat completions against a Claude model.
type claudeCompleter struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      arbor.ILogger
}

// NewClaudeService builds an answer service backed by Claude.
func NewClaudeService(ctx context.Context, config *common.ClaudeConfig, logger arbor.ILogger) (*Service, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required (set ANTHROPIC_API_KEY or claude.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid claude timeout '%s': %w", config.Timeout, err)
	}
	minInterval, err := time.ParseDuration(config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid claude rate limit '%s': %w", config.RateLimit, err)
	}

	c := &claudeCompleter{
		client:      anthropic.NewClient(option.WithAPIKey(config.APIKey)),
		model:       config.Model,
		maxTokens:   int64(config.MaxTokens),
		temperature: config.Temperature,
		timeout:     timeout,
		limiter:     rate.NewLimiter(rate.Every(minInterval), 1),
		logger:      logger,
	}

	return NewService(ctx, c, "claude", logger), nil
}

func (c *claudeCompleter) ModelName() string {
	return c.model
}

// Complete converts the conversation to Anthropic message params and
// generates one response.
func (c *claudeCompleter) Complete(ctx context.Context, messages []models.Message) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	claudeMessages, systemText := toClaudeMessages(messages)
	if len(claudeMessages) == 0 {
		return "", fmt.Errorf("messages cannot be empty")
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Messages:    claudeMessages,
		Temperature: anthropic.Float(float64(c.temperature)),
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemText}}
	}

	resp, err := c.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("claude generation failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from model")
	}

	return response.String(), nil
}

// toClaudeMessages maps role-tagged messages to Anthropic params, pulling
// the first system message out for the System parameter.
func toClaudeMessages(messages []models.Message) ([]anthropic.MessageParam, string) {
	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if systemText == "" {
				systemText = msg.Content
			}
		case "assistant":
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	return claudeMessages, systemText
}
