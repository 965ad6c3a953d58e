package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/scholar/internal/common"
	"github.com/ternarybob/scholar/internal/models"
)

type fakeCompleter struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []models.Message) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

func (f *fakeCompleter) ModelName() string { return "fake-model" }

func newTestService(c completer) *Service {
	return &Service{
		completer:  c,
		provider:   "fake",
		connected:  true,
		retryDelay: 0,
		logger:     common.GetLogger(),
	}
}

func sampleResults() []models.SearchResult {
	return []models.SearchResult{
		{
			Text:  "Normalization organizes columns to reduce redundancy.",
			Score: 0.92,
			Metadata: models.ResultMetadata{
				Source: "dbms.pdf", Subject: "Database Management Systems", Year: "Year 1",
				Type: models.DocTypeNotes, Page: 4,
			},
		},
	}
}

func TestGenerateSuccess(t *testing.T) {
	fake := &fakeCompleter{responses: []string{"Normalization reduces redundancy."}}
	svc := newTestService(fake)

	result := svc.Generate(context.Background(), "What is normalization?", sampleResults(), nil)

	assert.Equal(t, models.AnswerStatusSuccess, result.Status)
	assert.Equal(t, "Normalization reduces redundancy.", result.Answer)
	assert.Equal(t, "fake-model", result.Model)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "dbms.pdf", result.Sources[0].Document)
	assert.Equal(t, 4, result.Sources[0].Page)
	assert.Equal(t, 1, fake.calls)
}

func TestGenerateRetriesOnceThenSucceeds(t *testing.T) {
	fake := &fakeCompleter{
		errs:      []error{errors.New("transient failure"), nil},
		responses: []string{"", "Recovered answer."},
	}
	svc := newTestService(fake)

	result := svc.Generate(context.Background(), "question", sampleResults(), nil)

	assert.Equal(t, models.AnswerStatusSuccess, result.Status)
	assert.Equal(t, "Recovered answer.", result.Answer)
	assert.Equal(t, 2, fake.calls)
}

func TestGenerateExactlyTwoAttemptsOnPersistentFailure(t *testing.T) {
	fake := &fakeCompleter{
		errs: []error{errors.New("boom"), errors.New("boom again"), errors.New("never reached")},
	}
	svc := newTestService(fake)

	result := svc.Generate(context.Background(), "question", sampleResults(), nil)

	assert.Equal(t, 2, fake.calls, "must stop after exactly two attempts")
	assert.Equal(t, models.AnswerStatusError, result.Status)
	assert.NotEmpty(t, result.Answer, "degraded result must carry a placeholder answer")
	assert.Empty(t, result.Sources)
}

func TestGenerateRateLimitStatus(t *testing.T) {
	fake := &fakeCompleter{
		errs: []error{errors.New("429 too many requests"), errors.New("RESOURCE_EXHAUSTED: quota")},
	}
	svc := newTestService(fake)

	result := svc.Generate(context.Background(), "question", nil, nil)

	assert.Equal(t, models.AnswerStatusRateLimited, result.Status)
	assert.NotEmpty(t, result.Answer)
}

func TestGetStatus(t *testing.T) {
	svc := newTestService(&fakeCompleter{})
	status := svc.GetStatus(context.Background())

	assert.True(t, status.Connected)
	assert.Equal(t, "fake-model", status.Model)
	assert.Equal(t, "fake", status.Provider)
	assert.Equal(t, "connected", status.Status)
}

func TestIsRateLimitError(t *testing.T) {
	assert.False(t, IsRateLimitError(nil))
	assert.False(t, IsRateLimitError(errors.New("connection refused")))
	assert.True(t, IsRateLimitError(errors.New("HTTP 429")))
	assert.True(t, IsRateLimitError(errors.New("RESOURCE_EXHAUSTED")))
	assert.True(t, IsRateLimitError(errors.New("daily quota exceeded")))
	assert.True(t, IsRateLimitError(errors.New("server overloaded")))
}

func TestOfflineServiceQuotesExcerpts(t *testing.T) {
	svc := NewOfflineService()

	result := svc.Generate(context.Background(), "What is normalization?", sampleResults(), nil)

	assert.Equal(t, models.AnswerStatusOffline, result.Status)
	assert.Contains(t, result.Answer, "Normalization organizes columns")
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "dbms.pdf", result.Sources[0].Document)
}

func TestOfflineServiceNoResults(t *testing.T) {
	svc := NewOfflineService()

	result := svc.Generate(context.Background(), "anything", nil, nil)

	assert.Equal(t, models.AnswerStatusOffline, result.Status)
	assert.NotEmpty(t, result.Answer)
	assert.Empty(t, result.Sources)
}
