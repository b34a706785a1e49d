package visionmodel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCost_KnownModelUsesTable(t *testing.T) {
	cost := Cost("openai/gpt-4o", 1000, 500)
	assert.InDelta(t, 0.005+0.0075, cost, 1e-9)
}

func TestCost_UnknownModelUsesDefault(t *testing.T) {
	cost := Cost("vendor/mystery-model", 1000, 1000)
	assert.InDelta(t, DefaultCost.InputPer1K+DefaultCost.OutputPer1K, cost, 1e-9)
}

func TestMockClient_ReturnsRepliesInOrder(t *testing.T) {
	client := NewMockClient(
		Reply{Text: "first", PromptTokens: 10, CompletionTokens: 5},
		Reply{Text: "second", PromptTokens: 20, CompletionTokens: 10},
	)

	first, err := client.Generate(context.Background(), "openai/gpt-4o", "p1", "", 100)
	assert.NoError(t, err)
	assert.Equal(t, "first", first.Text)

	second, err := client.Generate(context.Background(), "openai/gpt-4o", "p2", "", 100)
	assert.NoError(t, err)
	assert.Equal(t, "second", second.Text)
}

func TestMockClient_CancelledContextReturnsError(t *testing.T) {
	client := NewMockClient(Reply{Text: "unused"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	cancel()
	time.Sleep(time.Millisecond)

	_, err := client.Generate(ctx, "openai/gpt-4o", "p", "", 100)
	assert.Error(t, err)
}

func TestMockClient_ExhaustedRepliesReturnsUpstreamError(t *testing.T) {
	client := NewMockClient()
	_, err := client.Generate(context.Background(), "openai/gpt-4o", "p", "", 100)
	assert.ErrorIs(t, err, ErrUpstream)
}
