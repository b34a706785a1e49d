package decision

import (
	"context"
	"time"

	"github.com/fenwick-labs/pokeloop/pkg/agent"
	"github.com/fenwick-labs/pokeloop/pkg/frame"
	"github.com/fenwick-labs/pokeloop/pkg/kv"
	"github.com/fenwick-labs/pokeloop/pkg/memory"
	"github.com/fenwick-labs/pokeloop/pkg/visionmodel"
)

// Clock abstracts time.Now for deterministic testing, per spec.md §9
// ("inject a clock").
type Clock func() time.Time

// ClassifyScreenType runs the lightweight screen-type phase. A call
// failure or unparseable reply yields agent.ScreenUnknown and no error:
// the decision phase always proceeds.
func ClassifyScreenType(ctx context.Context, client visionmodel.Client, modelID string, in Inputs) ScreenTypeResult {
	if in.PreAnalyzedScreenType != nil {
		return ScreenTypeResult{ScreenType: *in.PreAnalyzedScreenType}
	}

	callCtx, cancel := context.WithTimeout(ctx, visionmodel.ScreenTypeTimeout)
	defer cancel()

	reply, err := client.Generate(callCtx, modelID, buildScreenTypePrompt(in), in.CurrentFrame, visionmodel.ScreenTypeMaxTokens)
	if err != nil {
		return ScreenTypeResult{ScreenType: agent.ScreenUnknown}
	}
	return parseScreenType(reply.Text)
}

// Decide runs the full two-phase decision and response-merger pipeline:
// classify the screen, call the decision phase, derive the execution
// plan, and persist Notes/DecisionLog. Model-side failures never
// propagate as an error; they resolve to a fallback decision so the loop
// always advances. The only error returned is cancellation inherited
// from ctx.
func Decide(ctx context.Context, client visionmodel.Client, store kv.Store, agentID, modelID string, in Inputs, previousState agent.GameState, now Clock) (agent.Decision, agent.GameState, error) {
	if now == nil {
		now = time.Now
	}

	screenType := ClassifyScreenType(ctx, client, modelID, in)

	callCtx, cancel := context.WithTimeout(ctx, visionmodel.DecisionTimeout)
	defer cancel()

	reply, err := client.Generate(callCtx, modelID, buildDecisionPrompt(in, screenType), in.CurrentFrame, visionmodel.DecisionMaxTokens)
	if err != nil {
		if ctx.Err() != nil {
			return agent.Decision{}, previousState, ctx.Err()
		}
		decision := recordFallback(ctx, store, agentID, modelID, now)
		return decision, previousState, nil
	}

	raw, sequence, parseErr := parseDecisionResponse(reply.Text)
	if parseErr != nil {
		decision := recordFallback(ctx, store, agentID, modelID, now)
		return decision, previousState, nil
	}

	button, confidence, plan := deriveExecutionPlan(sequence)

	decision := agent.Decision{
		Button:             button,
		Confidence:         confidence,
		ConfidenceScores:   sequence[0].Confidences,
		ScreenAnalysis:     raw.Decision.ScreenAnalysis,
		Reasoning:          raw.Decision.Reasoning,
		PersonalityComment: raw.Decision.PersonalityComment,
		Sequence:           sequence,
		ExecutionPlan:      plan,
		ProgressConfidence: raw.Decision.ProgressConfidence,
		IsFallback:         false,
		Timestamp:          now(),
		PromptTokens:       reply.PromptTokens,
		CompletionTokens:   reply.CompletionTokens,
		Cost:               visionmodel.Cost(modelID, reply.PromptTokens, reply.CompletionTokens),
	}

	if err := memory.MergeNotes(ctx, store, agentID, notesDeltaFrom(raw.Decision.Notes)); err != nil {
		// Persistence failures log and continue; never block the loop
		// (spec.md §7). The decision itself is still valid.
		_ = err
	}
	if _, err := memory.AppendDecisionLog(ctx, store, agentID, string(decision.Button), decision.Reasoning); err != nil {
		_ = err
	}

	nextState := mergeGameState(raw.GameState, previousState, button)
	return decision, nextState, nil
}

// fallbackConfidenceTable is a low-confidence per-button table favoring
// WAIT, used whenever the model call cannot yield a valid structured
// reply.
func fallbackConfidenceTable() agent.ButtonConfidence {
	table := make(agent.ButtonConfidence, len(frame.AllButtons))
	for _, b := range frame.AllButtons {
		table[b] = 0.05
	}
	table[frame.ButtonWait] = 0.5
	return table
}

// FallbackConfidence is the confidence charged to every fallback decision.
const FallbackConfidence = 0.5

// FallbackDecision builds the canonical WAIT decision emitted when the
// model call cannot yield a valid structured reply.
func FallbackDecision(modelID string, now Clock) agent.Decision {
	table := fallbackConfidenceTable()
	return agent.Decision{
		Button:           frame.ButtonWait,
		Confidence:       FallbackConfidence,
		ConfidenceScores: table,
		Sequence:         []agent.SequenceStep{{Confidences: table}},
		ExecutionPlan:    []frame.Button{frame.ButtonWait},
		IsFallback:       true,
		Timestamp:        now(),
		PromptTokens:     visionmodel.EstimatedFallbackPromptTokens,
		CompletionTokens: visionmodel.EstimatedFallbackCompletionTokens,
		Cost:             visionmodel.Cost(modelID, visionmodel.EstimatedFallbackPromptTokens, visionmodel.EstimatedFallbackCompletionTokens),
	}
}

// recordFallback builds the fallback decision and still appends it to
// the decision log, since every iteration (success or fallback) advances
// totalDecisions exactly once (spec.md §8 invariant 9).
func recordFallback(ctx context.Context, store kv.Store, agentID, modelID string, now Clock) agent.Decision {
	decision := FallbackDecision(modelID, now)
	_, _ = memory.AppendDecisionLog(ctx, store, agentID, string(decision.Button), "fallback: model call did not yield a valid response")
	return decision
}
