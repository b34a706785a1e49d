package heuristic

import "github.com/fenwick-labs/pokeloop/pkg/frame"

// StuckClass is the classification DetectStuck assigns once an agent has
// gone several iterations without a visual change.
type StuckClass string

const (
	// StuckNone means the stuck threshold has not been crossed.
	StuckNone          StuckClass = ""
	StuckWallCollision StuckClass = "wall_collision"
	StuckDialogueLoop  StuckClass = "dialogue_loop"
	StuckUnknown       StuckClass = "unknown"
)

// StuckThreshold is the minimum consecutive no-change count before
// DetectStuck considers classifying the cause.
const StuckThreshold = 3

// stuckWindowMin/Max bound how many of the most recent actions DetectStuck
// inspects, per spec.md §4.4 ("the most recent 3-5 actions").
const (
	stuckWindowMin = 3
	stuckWindowMax = 5
)

var directionalButtons = map[frame.Button]bool{
	frame.ButtonUp:    true,
	frame.ButtonDown:  true,
	frame.ButtonLeft:  true,
	frame.ButtonRight: true,
}

// DetectStuck classifies why an agent appears stuck, given its current
// consecutive-no-change streak and its most recent executed actions
// (oldest first). Returns StuckNone below the threshold.
func DetectStuck(consecutiveNoChange int, recentActions []frame.Button) StuckClass {
	if consecutiveNoChange < StuckThreshold {
		return StuckNone
	}

	window := recentActions
	if len(window) > stuckWindowMax {
		window = window[len(window)-stuckWindowMax:]
	}

	counts := make(map[frame.Button]int, len(window))
	for _, b := range window {
		counts[b]++
	}

	for b, n := range counts {
		if directionalButtons[b] && n >= stuckWindowMin {
			return StuckWallCollision
		}
	}
	if counts[frame.ButtonA] >= stuckWindowMin {
		return StuckDialogueLoop
	}
	return StuckUnknown
}

// Priority is the coarse action priority PriorityAction derives from the
// current GameState.
type Priority string

const (
	PriorityHealOrEscape Priority = "heal_or_escape"
	PriorityBattle       Priority = "battle"
	PriorityProgress     Priority = "progress"
	PriorityExplore      Priority = "explore"
)

// CriticalHPFraction is the party HP fraction below which PriorityAction
// returns PriorityHealOrEscape regardless of other flags.
const CriticalHPFraction = 0.2

// PriorityAction derives the priority hint from coarse GameState flags.
func PriorityAction(partyHPFraction float64, inBattle, inDialogue, inMenu bool) Priority {
	switch {
	case partyHPFraction > 0 && partyHPFraction <= CriticalHPFraction:
		return PriorityHealOrEscape
	case inBattle:
		return PriorityBattle
	case inDialogue || inMenu:
		return PriorityProgress
	default:
		return PriorityExplore
	}
}
