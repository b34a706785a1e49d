package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fenwick-labs/pokeloop/pkg/frame"
)

func TestDetectStuck_BelowThresholdIsNone(t *testing.T) {
	actions := []frame.Button{frame.ButtonUp, frame.ButtonUp, frame.ButtonUp}
	assert.Equal(t, StuckNone, DetectStuck(2, actions))
}

func TestDetectStuck_RepeatedDirectionalIsWallCollision(t *testing.T) {
	actions := []frame.Button{frame.ButtonUp, frame.ButtonUp, frame.ButtonUp}
	assert.Equal(t, StuckWallCollision, DetectStuck(3, actions))
}

func TestDetectStuck_RepeatedAIsDialogueLoop(t *testing.T) {
	actions := []frame.Button{frame.ButtonA, frame.ButtonA, frame.ButtonA}
	assert.Equal(t, StuckDialogueLoop, DetectStuck(3, actions))
}

func TestDetectStuck_MixedActionsAreUnknown(t *testing.T) {
	actions := []frame.Button{frame.ButtonUp, frame.ButtonA, frame.ButtonB}
	assert.Equal(t, StuckUnknown, DetectStuck(3, actions))
}

func TestDetectStuck_OnlyInspectsRecentWindow(t *testing.T) {
	actions := []frame.Button{
		frame.ButtonUp, frame.ButtonUp, frame.ButtonUp, frame.ButtonUp, frame.ButtonUp,
		frame.ButtonA, frame.ButtonA, frame.ButtonA,
	}
	assert.Equal(t, StuckDialogueLoop, DetectStuck(3, actions))
}

func TestPriorityAction_CriticalHPWins(t *testing.T) {
	assert.Equal(t, PriorityHealOrEscape, PriorityAction(0.1, true, false, false))
}

func TestPriorityAction_Battle(t *testing.T) {
	assert.Equal(t, PriorityBattle, PriorityAction(0.8, true, false, false))
}

func TestPriorityAction_DialogueOrMenu(t *testing.T) {
	assert.Equal(t, PriorityProgress, PriorityAction(0.8, false, true, false))
	assert.Equal(t, PriorityProgress, PriorityAction(0.8, false, false, true))
}

func TestPriorityAction_DefaultExplore(t *testing.T) {
	assert.Equal(t, PriorityExplore, PriorityAction(0.8, false, false, false))
}
