package heuristic

import (
	"math"
	"strings"
)

// NavigationRewardPerArea is the reward earned for each newly visited
// area label.
const NavigationRewardPerArea = 0.005

// NavigationReward returns the reward for discovering newAreas
// previously-unseen area labels in this iteration.
func NavigationReward(newAreas int) float64 {
	if newAreas <= 0 {
		return 0
	}
	return NavigationRewardPerArea * float64(newAreas)
}

// HealingRewardFactor scales the summed positive HP delta fraction.
const HealingRewardFactor = 2.5

// HealingReward computes 2.5 x sum(max(0, after-before)) / hpMax across a
// party's per-member HP deltas. hpMax <= 0 yields 0 to avoid division by
// zero when no party data is available.
func HealingReward(hpBefore, hpAfter []float64, hpMax float64) float64 {
	if hpMax <= 0 {
		return 0
	}
	var gained float64
	n := len(hpBefore)
	if len(hpAfter) < n {
		n = len(hpAfter)
	}
	for i := 0; i < n; i++ {
		if delta := hpAfter[i] - hpBefore[i]; delta > 0 {
			gained += delta
		}
	}
	return HealingRewardFactor * gained / hpMax
}

// LevelRewardFactor scales the capped level-sum differential.
const LevelRewardFactor = 0.5

// levelRewardRaw computes 0.5 x min(sumLevels, (sumLevels-22)/4 + 22) per
// spec.md §4.4, the asymptotically-damped reward for a party's total
// level.
func levelRewardRaw(sumLevels int) float64 {
	levels := float64(sumLevels)
	damped := (levels-22)/4 + 22
	return LevelRewardFactor * math.Min(levels, damped)
}

// LevelReward returns the new running reward total and the positive
// delta applied this call; only increases in the raw reward are charged,
// matching spec.md's "only the positive differential is applied".
func LevelReward(sumLevels int, previousTotal float64) (newTotal, delta float64) {
	raw := levelRewardRaw(sumLevels)
	if raw <= previousTotal {
		return previousTotal, 0
	}
	return raw, raw - previousTotal
}

// MilestoneRewards maps a milestone name substring to its event reward.
// Matching is substring-based so callers can pass specific milestone ids
// (e.g. "gym_leader_brock") without the table knowing every instance.
var MilestoneRewards = []struct {
	Substring string
	Reward    int
}{
	{"gym_leader", 5},
	{"cave_exit", 3},
	{"elite_four", 10},
	{"champion", 50},
}

// EventReward looks up the integer reward for a milestone name. Unknown
// milestones earn 0.
func EventReward(milestone string) int {
	lower := strings.ToLower(milestone)
	for _, entry := range MilestoneRewards {
		if strings.Contains(lower, entry.Substring) {
			return entry.Reward
		}
	}
	return 0
}
