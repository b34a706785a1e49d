// Package decision implements the Decision Step: prompt assembly, the
// two-phase model call, structured-response validation, sequence
// derivation, and the response merger that writes Notes/DecisionLog.
package decision

import (
	"github.com/fenwick-labs/pokeloop/pkg/agent"
	"github.com/fenwick-labs/pokeloop/pkg/frame"
)

// Resource bounds on the context given to a single decision, per
// spec.md §5.
const (
	MaxPreviousFrames    = 2
	MaxDialogHistory     = 10
	MaxPreviousDecisions = 5
)

// SequenceContinueThreshold is the minimum argmax confidence a
// buttonSequence step beyond the first needs to stay in the execution
// plan.
const SequenceContinueThreshold = 0.85

// Inputs bundles everything the prompt builder needs: current state, the
// coordinator's heuristic hints, and recent history.
type Inputs struct {
	CurrentFrame             string // data URL
	PreviousFrames           []string
	CommandHistory           []agent.FrameHistoryEntry
	PreviousConfidenceScores agent.ButtonConfidence
	PreviousDialogHistory    []string
	AvoidHints               []frame.Button
	ButtonsToAvoid           []frame.Button
	BannedButtons            []frame.Button
	NotesProjection          string
	PreviousGameState        agent.GameState
	PreviousDecisions        []agent.Decision
	PreAnalyzedScreenType    *agent.ScreenType

	// PriorityHint is the Heuristic Engine's PriorityAction classification
	// of the previous GameState (heal_or_escape/battle/progress/explore),
	// per spec.md §4.4.
	PriorityHint string
}

// ScreenTypeResult is the lightweight screen-type phase's output.
type ScreenTypeResult struct {
	ScreenType       agent.ScreenType
	BriefDescription string
}

var validScreenTypes = map[agent.ScreenType]bool{
	agent.ScreenOverworld:  true,
	agent.ScreenBattle:     true,
	agent.ScreenMenu:       true,
	agent.ScreenDialogue:   true,
	agent.ScreenTextEntry:  true,
	agent.ScreenTransition: true,
	agent.ScreenUnknown:    true,
}
