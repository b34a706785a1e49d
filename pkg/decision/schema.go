package decision

import (
	"encoding/json"
	"fmt"

	"github.com/fenwick-labs/pokeloop/pkg/agent"
	"github.com/fenwick-labs/pokeloop/pkg/frame"
	"github.com/fenwick-labs/pokeloop/pkg/memory"
)

type rawScreenType struct {
	ScreenType       string `json:"screenType"`
	BriefDescription string `json:"briefDescription"`
}

type rawNotes struct {
	CurrentObjective   *string  `json:"currentObjective"`
	LastKnownLocation  *string  `json:"lastKnownLocation"`
	ExitFound          *bool    `json:"exitFound"`
	StuckMode          *string  `json:"stuckMode"`
	FailedAttempts     []string `json:"failedAttempts"`
	ImportantDiscovery *string  `json:"importantDiscovery"`
	General            *string  `json:"general"`
}

type rawGameState struct {
	Area             string  `json:"area"`
	InBattle         bool    `json:"inBattle"`
	InMenu           bool    `json:"inMenu"`
	InDialogue       bool    `json:"inDialogue"`
	InTextEntry      bool    `json:"inTextEntry"`
	PokemonCount     int     `json:"pokemonCount"`
	Badges           int     `json:"badges"`
	ScreenType       string  `json:"screenType"`
	EstimatedPartyHP float64 `json:"estimatedPartyHP"`
}

type rawDecisionBody struct {
	ScreenAnalysis     string               `json:"screenAnalysis"`
	Reasoning          string               `json:"reasoning"`
	PersonalityComment string               `json:"personality_comment"`
	ButtonSequence     []map[string]float64 `json:"buttonSequence"`
	ProgressConfidence float64              `json:"progressConfidence"`
	Notes              rawNotes             `json:"notes"`
}

type rawDecisionResponse struct {
	GameState rawGameState    `json:"gameState"`
	Decision  rawDecisionBody `json:"decision"`
}

// parseScreenType decodes the screen-type phase reply. An unparseable or
// unrecognized screenType value falls back to agent.ScreenUnknown,
// per spec.md §4.5 ("failure yields unknown and continues").
func parseScreenType(text string) ScreenTypeResult {
	var raw rawScreenType
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return ScreenTypeResult{ScreenType: agent.ScreenUnknown}
	}
	st := agent.ScreenType(raw.ScreenType)
	if !validScreenTypes[st] {
		st = agent.ScreenUnknown
	}
	return ScreenTypeResult{ScreenType: st, BriefDescription: raw.BriefDescription}
}

// toSequence converts the raw per-step confidence maps into typed
// SequenceSteps.
func toSequence(raw []map[string]float64) []agent.SequenceStep {
	steps := make([]agent.SequenceStep, 0, len(raw))
	for _, stepMap := range raw {
		confidences := make(agent.ButtonConfidence, len(stepMap))
		for button, score := range stepMap {
			confidences[frame.Button(button)] = score
		}
		steps = append(steps, agent.SequenceStep{Confidences: confidences})
	}
	return steps
}

// parseDecisionResponse decodes and schema-validates a decision-phase
// reply. A parse failure or an empty buttonSequence is a schema
// violation per spec.md's boundary behavior ("buttonSequence of length 0
// -> fallback decision").
func parseDecisionResponse(text string) (rawDecisionResponse, []agent.SequenceStep, error) {
	var raw rawDecisionResponse
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return rawDecisionResponse{}, nil, fmt.Errorf("decision: invalid JSON reply: %w", err)
	}
	sequence := toSequence(raw.Decision.ButtonSequence)
	if len(sequence) == 0 {
		return rawDecisionResponse{}, nil, fmt.Errorf("decision: buttonSequence must have at least one step")
	}
	return raw, sequence, nil
}

// mergeGameState applies a decision phase's raw gameState fields onto the
// previous GameState, per spec.md §3's invariant that GameState is mutated
// only by the Decision Step's response merger. Progress is preserved
// across calls; only the observable fields the model reports are
// overwritten.
func mergeGameState(raw rawGameState, previous agent.GameState, executed frame.Button) agent.GameState {
	next := previous
	next.Area = raw.Area
	next.InBattle = raw.InBattle
	next.InMenu = raw.InMenu
	next.InDialogue = raw.InDialogue
	next.InTextEntry = raw.InTextEntry
	next.Badges = raw.Badges
	next.Party = agent.PartyHealthSummary{
		EstimatedPartyHP: raw.EstimatedPartyHP,
		PokemonCount:     raw.PokemonCount,
	}
	next.LastInput = executed

	st := agent.ScreenType(raw.ScreenType)
	if validScreenTypes[st] {
		next.ScreenType = st
	} else {
		next.ScreenType = agent.ScreenUnknown
	}
	return next
}

// notesDeltaFrom converts the model's raw notes payload into a
// memory.NotesDelta.
func notesDeltaFrom(raw rawNotes) memory.NotesDelta {
	delta := memory.NotesDelta{
		CurrentObjective:   raw.CurrentObjective,
		LastKnownLocation:  raw.LastKnownLocation,
		ExitFound:          raw.ExitFound,
		ImportantDiscovery: raw.ImportantDiscovery,
		General:            raw.General,
		FailedAttempts:     raw.FailedAttempts,
	}
	if raw.StuckMode != nil {
		mode := memory.StuckMode(*raw.StuckMode)
		delta.StuckMode = &mode
	}
	return delta
}
