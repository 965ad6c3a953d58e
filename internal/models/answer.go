package models

// Answer statuses returned by answer providers. Every Generate call yields a
// well-formed AnswerResult carrying one of these; failures never escape as
// panics or raw errors.
const (
	AnswerStatusSuccess     = "success"
	AnswerStatusError       = "error"
	AnswerStatusRateLimited = "rate_limited"
	AnswerStatusOffline     = "offline"
)

// Message is a single role-tagged entry in a model conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Exchange is one prior user/assistant turn supplied as conversation history.
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Source describes one document excerpt that contributed to an answer.
type Source struct {
	Document string `json:"document"`
	Subject  string `json:"subject"`
	Page     int    `json:"page"`
}

// AnswerResult is the outcome of a generation call. Status is always set;
// on failure Answer holds a user-facing placeholder rather than being empty.
type AnswerResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Model   string   `json:"model"`
	Status  string   `json:"status"`
}

// ProviderStatus reports answer provider connectivity for status pages.
type ProviderStatus struct {
	Connected bool   `json:"connected"`
	Model     string `json:"model"`
	Provider  string `json:"provider"`
	Status    string `json:"status"`
}
