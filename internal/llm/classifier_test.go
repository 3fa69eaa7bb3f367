package llm

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgermail/internal/common"
	"ledgermail/internal/model"
)

type stubClient struct {
	resp   ClassificationResponse
	err    error
	prompt string
	calls  int
}

func (s *stubClient) Classify(_ context.Context, prompt string) (ClassificationResponse, error) {
	s.calls++
	s.prompt = prompt
	return s.resp, s.err
}

func newTestClassifier(client Client) *Classifier {
	return &Classifier{
		client:     client,
		categories: []string{"Groceries", "Baby Supplies"},
		logger:     slog.Default(),
		retryOpts: common.RetryOptions{
			MaxAttempts:  2,
			InitialDelay: time.Millisecond,
			MaxDelay:     time.Millisecond,
			Multiplier:   1.0,
		},
	}
}

func TestClassifierSuccess(t *testing.T) {
	client := &stubClient{
		resp: ClassificationResponse{Category: "Groceries", Confidence: 0.85, Reasoning: "food"},
	}
	c := newTestClassifier(client)

	result, err := c.Classify(context.Background(), "organic coffee beans")
	require.NoError(t, err)

	assert.Equal(t, "Groceries", result.Category)
	assert.InDelta(t, 0.85, result.Confidence, 0.001)
	assert.Equal(t, model.OriginLLM, result.Origin)

	// The prompt carries the transaction text and the closed category set.
	assert.Contains(t, client.prompt, "organic coffee beans")
	assert.Contains(t, client.prompt, "- Groceries")
	assert.Contains(t, client.prompt, "- Baby Supplies")
}

func TestClassifierDeclineIsNotAnError(t *testing.T) {
	client := &stubClient{
		resp: ClassificationResponse{Reasoning: "too ambiguous"},
	}
	c := newTestClassifier(client)

	result, err := c.Classify(context.Background(), "thing")
	require.NoError(t, err)
	assert.True(t, result.IsNone())
}

func TestClassifierTransportFailure(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}
	c := newTestClassifier(client)

	result, err := c.Classify(context.Background(), "thing")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrClassificationFailed)
	assert.True(t, result.IsNone())
	// Retried before giving up.
	assert.Equal(t, 2, client.calls)
}

func TestClassifierEmptyCategorySet(t *testing.T) {
	client := &stubClient{}
	c := newTestClassifier(client)
	c.categories = nil

	result, err := c.Classify(context.Background(), "thing")
	require.NoError(t, err)
	assert.True(t, result.IsNone())
	assert.Zero(t, client.calls)
}
