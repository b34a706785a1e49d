package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNavigationReward(t *testing.T) {
	assert.Equal(t, 0.0, NavigationReward(0))
	assert.InDelta(t, 0.015, NavigationReward(3), 1e-9)
}

func TestHealingReward_OnlyPositiveDeltasCount(t *testing.T) {
	before := []float64{0.5, 0.8}
	after := []float64{0.9, 0.6} // first healed, second took damage
	reward := HealingReward(before, after, 1.0)
	assert.InDelta(t, 2.5*0.4, reward, 1e-9)
}

func TestHealingReward_ZeroHPMaxIsZero(t *testing.T) {
	assert.Equal(t, 0.0, HealingReward([]float64{0}, []float64{1}, 0))
}

func TestLevelReward_OnlyChargesPositiveDifferential(t *testing.T) {
	total1, delta1 := LevelReward(20, 0)
	assert.Greater(t, delta1, 0.0)

	// same level sum again: no further reward
	total2, delta2 := LevelReward(20, total1)
	assert.Equal(t, total1, total2)
	assert.Equal(t, 0.0, delta2)

	// level sum drops: no negative charge, total held
	total3, delta3 := LevelReward(10, total1)
	assert.Equal(t, total1, total3)
	assert.Equal(t, 0.0, delta3)
}

func TestEventReward_KnownMilestones(t *testing.T) {
	assert.Equal(t, 5, EventReward("gym_leader_brock"))
	assert.Equal(t, 3, EventReward("cave_exit_mt_moon"))
	assert.Equal(t, 10, EventReward("elite_four_entry"))
	assert.Equal(t, 50, EventReward("champion_defeated"))
	assert.Equal(t, 0, EventReward("unrelated_flag"))
}
