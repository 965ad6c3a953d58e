// -----------------------------------------------------------------------
// Answer Service - Provider-agnostic generation with bounded retry
// -----------------------------------------------------------------------

package llm

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scholar/internal/interfaces"
	"github.com/ternarybob/scholar/internal/models"
)

// errorPlaceholder is returned as the answer when every attempt fails.
const errorPlaceholder = "The language model is currently unavailable. Please try again in a moment."

// completer is the minimal contract a hosted model must satisfy. The answer
// service owns prompt assembly and retry; completers own transport.
type completer interface {
	Complete(ctx context.Context, messages []models.Message) (string, error)
	ModelName() string
}

// Service generates answers through a completer with a two-attempt retry
// policy. Failures degrade to a well-formed placeholder result.
type Service struct {
	completer  completer
	provider   string
	connected  bool
	retryDelay time.Duration
	logger     arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.AnswerService = (*Service)(nil)

// NewService wraps a completer and verifies connectivity with one minimal
// round trip. The verification result is recorded, not fatal: a provider
// that is down at startup can still recover later.
func NewService(ctx context.Context, c completer, provider string, logger arbor.ILogger) *Service {
	s := &Service{
		completer:  c,
		provider:   provider,
		retryDelay: defaultRetryDelay,
		logger:     logger,
	}
	s.connected = s.verifyConnection(ctx)

	if s.connected {
		logger.Info().Str("provider", provider).Str("model", c.ModelName()).Msg("Answer provider connected")
	} else {
		logger.Warn().Str("provider", provider).Str("model", c.ModelName()).Msg("Answer provider connection failed")
	}

	return s
}

// verifyConnection performs one cheap ping call, bounded by the completer's
// own timeout.
func (s *Service) verifyConnection(ctx context.Context) bool {
	_, err := s.completer.Complete(ctx, []models.Message{{Role: "user", Content: "ping"}})
	if err != nil {
		s.logger.Debug().Str("provider", s.provider).Err(err).Msg("Connection verification failed")
		return false
	}
	return true
}

// Generate builds the bounded prompt and calls the model, retrying once
// after a short delay. Both attempts failing yields a placeholder answer
// with an error status; a detected rate limit is reported distinctly so
// callers can back off longer.
func (s *Service) Generate(ctx context.Context, question string, results []models.SearchResult, history []models.Exchange) models.AnswerResult {
	messages, sources := buildMessages(question, results, history)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		answer, err := s.completer.Complete(ctx, messages)
		if err == nil {
			s.connected = true
			return models.AnswerResult{
				Answer:  answer,
				Sources: sources,
				Model:   s.completer.ModelName(),
				Status:  models.AnswerStatusSuccess,
			}
		}

		lastErr = err
		s.logger.Warn().
			Str("provider", s.provider).
			Int("attempt", attempt).
			Err(err).
			Msg("Generation attempt failed")

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				attempt = maxAttempts
			case <-time.After(s.retryDelay):
			}
		}
	}

	status := models.AnswerStatusError
	if IsRateLimitError(lastErr) {
		status = models.AnswerStatusRateLimited
	}

	return models.AnswerResult{
		Answer:  errorPlaceholder,
		Sources: nil,
		Model:   s.completer.ModelName(),
		Status:  status,
	}
}

// GetStatus reports connectivity for status pages.
func (s *Service) GetStatus(ctx context.Context) models.ProviderStatus {
	status := "disconnected"
	if s.connected {
		status = "connected"
	}
	return models.ProviderStatus{
		Connected: s.connected,
		Model:     s.completer.ModelName(),
		Provider:  s.provider,
		Status:    status,
	}
}
