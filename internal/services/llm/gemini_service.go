// -----------------------------------------------------------------------
// Gemini Completer - Answer generation via the Google Gemini API
// -----------------------------------------------------------------------

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/models"
)

// geminiCompleter issues chat completions against a Gemini model. Requests
// are paced by a client-side limiter and bounded by a per-call timeout.
type geminiCompleter struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      arbor.ILogger
}

// NewGeminiService builds an answer service backed by Gemini.
func NewGeminiService(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*Service, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required (set GOOGLE_API_KEY or gemini.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini timeout '%s': %w", config.Timeout, err)
	}
	minInterval, err := time.ParseDuration(config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini rate limit '%s': %w", config.RateLimit, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	c := &geminiCompleter{
		client:      client,
		model:       config.Model,
		maxTokens:   int32(config.MaxTokens),
		temperature: config.Temperature,
		timeout:     timeout,
		limiter:     rate.NewLimiter(rate.Every(minInterval), 1),
		logger:      logger,
	}

	return NewService(ctx, c, "gemini", logger), nil
}

func (g *geminiCompleter) ModelName() string {
	return g.model
}

// Complete converts the conversation to Gemini contents and generates one
// response.
func (g *geminiCompleter) Complete(ctx context.Context, messages []models.Message) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents, systemText := toGeminiContents(messages)
	if len(contents) == 0 {
		return "", fmt.Errorf("messages cannot be empty")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxTokens,
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(timeoutCtx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from model")
	}

	return response.String(), nil
}

// toGeminiContents maps role-tagged messages to Gemini contents, pulling
// the first system message out for the SystemInstruction parameter.
func toGeminiContents(messages []models.Message) ([]*genai.Content, string) {
	contents := make([]*genai.Content, 0, len(messages))
	var systemText string

	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		role := genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, genai.Role(role)))
	}

	return contents, systemText
}
