package llm

import (
	"strings"
	"time"
)

// Generation retry policy: one retry after a fixed short delay. Persistent
// failure surfaces a degraded result, never an error to the caller.
const (
	maxAttempts       = 2
	defaultRetryDelay = 1 * time.Second
)

// IsRateLimitError checks whether an error indicates provider throttling.
// Matches 429 status codes, RESOURCE_EXHAUSTED and quota messages from
// Gemini, and the overloaded/529 responses Anthropic returns under load.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "529") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "overloaded")
}
