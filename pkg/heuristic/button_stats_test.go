package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fenwick-labs/pokeloop/pkg/agent"
	"github.com/fenwick-labs/pokeloop/pkg/frame"
)

func TestButtonStats_ConsecutiveCountersTrackLastButtonOnly(t *testing.T) {
	bs := NewButtonStats()

	bs.RecordPress(frame.ButtonWait)
	bs.RecordPress(frame.ButtonWait)
	bs.RecordPress(frame.ButtonWait)
	assert.Equal(t, 3, bs.ConsecutiveWait)

	bs.RecordPress(frame.ButtonA)
	assert.Equal(t, 0, bs.ConsecutiveWait)
}

func TestButtonStats_AvoidHintsCrossThresholds(t *testing.T) {
	bs := NewButtonStats()

	for i := 0; i < 3; i++ {
		bs.RecordPress(frame.ButtonStart)
	}
	hints := bs.AvoidHints()
	assert.Contains(t, hints, frame.ButtonStart)
	assert.Contains(t, hints, frame.ButtonSelect)
}

func TestButtonStats_NoChangePenalty_FiveConsecutiveSetsFloorAndAvoid(t *testing.T) {
	bs := NewButtonStats()

	for i := 0; i < 4; i++ {
		bs.RecordOutcome(frame.ButtonRight, agent.VisualNoChange)
	}
	_, floored := bs.ConfidenceFloor(frame.ButtonRight)
	assert.False(t, floored)

	bs.RecordOutcome(frame.ButtonRight, agent.VisualNoChange)
	floor, floored := bs.ConfidenceFloor(frame.ButtonRight)
	assert.True(t, floored)
	assert.Equal(t, NoChangeConfidenceFloor, floor)
	assert.Contains(t, bs.AvoidHints(), frame.ButtonRight)
}

func TestButtonStats_ChangeDetectedClearsNoChangePenalty(t *testing.T) {
	bs := NewButtonStats()
	for i := 0; i < 5; i++ {
		bs.RecordOutcome(frame.ButtonRight, agent.VisualNoChange)
	}
	bs.RecordOutcome(frame.ButtonRight, agent.VisualChangeDetected)

	_, floored := bs.ConfidenceFloor(frame.ButtonRight)
	assert.False(t, floored)
	assert.NotContains(t, bs.AvoidHints(), frame.ButtonRight)
}

func TestButtonStats_BanTriggersAtExactlyTenNotNine(t *testing.T) {
	bs := NewButtonStats()
	for i := 0; i < 9; i++ {
		bs.RecordPress(frame.ButtonA)
	}
	assert.False(t, bs.IsBanned(frame.ButtonA))

	bs.RecordPress(frame.ButtonA)
	assert.True(t, bs.IsBanned(frame.ButtonA))
}

func TestButtonStats_BanEvictsAfterTwoPrompts(t *testing.T) {
	bs := NewButtonStats()
	for i := 0; i < 10; i++ {
		bs.RecordPress(frame.ButtonA)
	}
	require := assert.New(t)
	require.True(bs.IsBanned(frame.ButtonA)) // prompt 1 (the triggering one)

	bs.TickBans()
	require.True(bs.IsBanned(frame.ButtonA)) // prompt 2

	bs.TickBans()
	require.False(bs.IsBanned(frame.ButtonA)) // prompt 3: evicted
}

func TestButtonStats_Reset(t *testing.T) {
	bs := NewButtonStats()
	bs.RecordPress(frame.ButtonA)
	bs.RecordOutcome(frame.ButtonA, agent.VisualNoChange)

	bs.Reset()

	assert.Empty(t, bs.TotalPresses)
	assert.Empty(t, bs.NoChangeCounts)
	assert.Empty(t, bs.ButtonsToAvoid)
	assert.Empty(t, bs.BannedButtons)
}
