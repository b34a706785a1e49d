package heuristic

import (
	"github.com/fenwick-labs/pokeloop/pkg/agent"
	"github.com/fenwick-labs/pokeloop/pkg/frame"
)

// Consecutive-press hint thresholds, per spec.md §4.4.
const (
	ThresholdStartSelect = 2 // > 2
	ThresholdWait        = 3 // >= 3
	ThresholdB           = 5 // >= 5
)

// NoChangePenaltyThreshold is the number of consecutive no_change
// outcomes for a button before it gets a confidence floor and an avoid
// hint.
const NoChangePenaltyThreshold = 5

// NoChangeConfidenceFloor is the capped confidence the prompt's previous
// scores context reports once a button has crossed NoChangePenaltyThreshold.
const NoChangeConfidenceFloor = 0.20

// BanThreshold is the total press count within a run that triggers a ban.
const BanThreshold = 10

// BanPromptDuration is how many upcoming prompts a banned button is
// excluded from before being auto-evicted.
const BanPromptDuration = 2

// ButtonStats is the ephemeral, per-run counter set the Loop Coordinator
// exclusively owns (spec.md §3 Ownership). It is not safe for concurrent
// use; callers serialize access via the coordinator's own mutex.
type ButtonStats struct {
	ConsecutiveStartSelect int
	ConsecutiveWait        int
	ConsecutiveB           int

	NoChangeCounts map[frame.Button]int
	TotalPresses   map[frame.Button]int
	ButtonsToAvoid map[frame.Button]struct{}
	BannedButtons  map[frame.Button]int // prompts remaining
}

// NewButtonStats returns a zeroed ButtonStats ready for a fresh run.
func NewButtonStats() *ButtonStats {
	return &ButtonStats{
		NoChangeCounts: make(map[frame.Button]int),
		TotalPresses:   make(map[frame.Button]int),
		ButtonsToAvoid: make(map[frame.Button]struct{}),
		BannedButtons:  make(map[frame.Button]int),
	}
}

// Reset clears every counter and set, called on agent reset.
func (bs *ButtonStats) Reset() {
	*bs = *NewButtonStats()
}

func isStartSelect(b frame.Button) bool {
	return b == frame.ButtonStart || b == frame.ButtonSelect
}

// RecordPress updates the consecutive START/SELECT, WAIT, and B counters
// for the most recently pressed button (incrementing the matching one,
// resetting the others), and tracks the button's total press count,
// triggering a ban when it crosses BanThreshold.
func (bs *ButtonStats) RecordPress(b frame.Button) {
	switch {
	case isStartSelect(b):
		bs.ConsecutiveStartSelect++
		bs.ConsecutiveWait = 0
		bs.ConsecutiveB = 0
	case b == frame.ButtonWait:
		bs.ConsecutiveWait++
		bs.ConsecutiveStartSelect = 0
		bs.ConsecutiveB = 0
	case b == frame.ButtonB:
		bs.ConsecutiveB++
		bs.ConsecutiveStartSelect = 0
		bs.ConsecutiveWait = 0
	default:
		bs.ConsecutiveStartSelect = 0
		bs.ConsecutiveWait = 0
		bs.ConsecutiveB = 0
	}

	bs.TotalPresses[b]++
	if bs.TotalPresses[b] >= BanThreshold {
		bs.BannedButtons[b] = BanPromptDuration
		bs.TotalPresses[b] = 0
	}
}

// RecordOutcome updates the per-button no-change streak for b given the
// visual change its last press produced. After NoChangePenaltyThreshold
// consecutive no_change outcomes, b is added to ButtonsToAvoid; any
// change_detected clears both the streak and the avoid flag.
func (bs *ButtonStats) RecordOutcome(b frame.Button, change agent.VisualChange) {
	switch change {
	case agent.VisualNoChange:
		bs.NoChangeCounts[b]++
		if bs.NoChangeCounts[b] >= NoChangePenaltyThreshold {
			bs.ButtonsToAvoid[b] = struct{}{}
		}
	case agent.VisualChangeDetected:
		bs.NoChangeCounts[b] = 0
		delete(bs.ButtonsToAvoid, b)
	}
}

// ConfidenceFloor returns the capped confidence to report for b in the
// prompt's previous-scores context, and whether a floor applies.
func (bs *ButtonStats) ConfidenceFloor(b frame.Button) (float64, bool) {
	if bs.NoChangeCounts[b] >= NoChangePenaltyThreshold {
		return NoChangeConfidenceFloor, true
	}
	return 0, false
}

// AvoidHints returns the set of buttons the next prompt should discourage:
// the union of consecutive-threshold crossings and ButtonsToAvoid.
func (bs *ButtonStats) AvoidHints() []frame.Button {
	seen := make(map[frame.Button]struct{})
	var hints []frame.Button
	add := func(b frame.Button) {
		if _, ok := seen[b]; ok {
			return
		}
		seen[b] = struct{}{}
		hints = append(hints, b)
	}

	if bs.ConsecutiveStartSelect > ThresholdStartSelect {
		add(frame.ButtonStart)
		add(frame.ButtonSelect)
	}
	if bs.ConsecutiveWait >= ThresholdWait {
		add(frame.ButtonWait)
	}
	if bs.ConsecutiveB >= ThresholdB {
		add(frame.ButtonB)
	}
	for b := range bs.ButtonsToAvoid {
		add(b)
	}
	return hints
}

// IsBanned reports whether b is currently excluded from the prompt.
func (bs *ButtonStats) IsBanned(b frame.Button) bool {
	_, ok := bs.BannedButtons[b]
	return ok
}

// BannedList returns the currently banned buttons.
func (bs *ButtonStats) BannedList() []frame.Button {
	out := make([]frame.Button, 0, len(bs.BannedButtons))
	for b := range bs.BannedButtons {
		out = append(out, b)
	}
	return out
}

// TickBans decrements every banned button's remaining-prompt counter and
// evicts any that reach zero. Call once per prompt emitted.
func (bs *ButtonStats) TickBans() {
	for b, remaining := range bs.BannedButtons {
		remaining--
		if remaining <= 0 {
			delete(bs.BannedButtons, b)
		} else {
			bs.BannedButtons[b] = remaining
		}
	}
}
