// Package visionmodel is the opaque vision-capable decision model
// collaborator: image+text request in, raw structured-output text out.
// The Decision Step owns prompt assembly and response validation; this
// package only owns the call, its timeout/cancellation, and cost
// accounting.
package visionmodel

import (
	"context"
	"errors"
)

// ErrUpstream wraps any network, HTTP-status, or transport failure
// talking to the model provider.
var ErrUpstream = errors.New("visionmodel: upstream call failed")

// ScreenTypeMaxTokens/DecisionMaxTokens bound each phase's completion
// length per spec.md §4.5.
const (
	ScreenTypeMaxTokens = 100
	DecisionMaxTokens   = 1000
)

// Reply is one model call's raw text output plus token usage, used for
// both the screen-type and decision phases. The Decision Step decodes
// Text into the phase-specific schema.
type Reply struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Client is the opaque model collaborator. Cancellation propagated via
// ctx must abort the in-flight network call so sockets are released
// (spec.md §9).
type Client interface {
	// Generate calls modelID with prompt text and an optional frame data
	// URL (empty for text-only calls), bounded to maxTokens of output.
	Generate(ctx context.Context, modelID, prompt, frameDataURL string, maxTokens int) (Reply, error)
}

// ModelCost is a model's per-1K-token pricing.
type ModelCost struct {
	InputPer1K  float64
	OutputPer1K float64
}

// CostTable maps an opaque "vendor/model-name" id to its pricing.
// Unlisted models fall back to DefaultCost.
var CostTable = map[string]ModelCost{
	"openai/gpt-4o":                    {InputPer1K: 0.005, OutputPer1K: 0.015},
	"openai/gpt-4o-mini":                {InputPer1K: 0.00015, OutputPer1K: 0.0006},
	"anthropic/claude-3-5-sonnet":       {InputPer1K: 0.003, OutputPer1K: 0.015},
	"google/gemini-1.5-pro":             {InputPer1K: 0.00125, OutputPer1K: 0.005},
	"google/gemini-1.5-flash":           {InputPer1K: 0.000075, OutputPer1K: 0.0003},
}

// DefaultCost is used for model ids absent from CostTable, so cost
// accounting never silently charges zero for an unknown model.
var DefaultCost = ModelCost{InputPer1K: 0.003, OutputPer1K: 0.010}

// Cost computes the dollar cost of one call given its token usage.
func Cost(modelID string, promptTokens, completionTokens int) float64 {
	pricing, ok := CostTable[modelID]
	if !ok {
		pricing = DefaultCost
	}
	return float64(promptTokens)/1000*pricing.InputPer1K + float64(completionTokens)/1000*pricing.OutputPer1K
}

// EstimatedFallbackPromptTokens/CompletionTokens are the token counts
// charged for a fallback decision so cost accounting is honest even when
// the call itself never completed (spec.md §4.5).
const (
	EstimatedFallbackPromptTokens     = 1500
	EstimatedFallbackCompletionTokens = 100
)
