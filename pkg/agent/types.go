// Package agent holds the shared data model the rest of the system
// operates on: Agent, GameState, ProgressMetrics, Decision and
// FrameHistoryEntry. It has no dependency on the loop, heuristic, memory
// or decision packages so every one of them can import it without a
// cycle.
package agent

import (
	"time"

	"github.com/fenwick-labs/pokeloop/pkg/frame"
)

// Status is the agent lifecycle state.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusThinking Status = "thinking"
	StatusActing   Status = "acting"
	StatusPaused   Status = "paused"
	StatusError    Status = "error"
)

// ScreenType is the inferred kind of screen currently displayed.
type ScreenType string

const (
	ScreenOverworld  ScreenType = "overworld"
	ScreenBattle     ScreenType = "battle"
	ScreenMenu       ScreenType = "menu"
	ScreenDialogue   ScreenType = "dialogue"
	ScreenTextEntry  ScreenType = "textEntry"
	ScreenTransition ScreenType = "transition"
	ScreenUnknown    ScreenType = "unknown"
)

// VisualChange classifies the difference between two consecutive frames.
type VisualChange string

const (
	VisualFirstFrame     VisualChange = "first_frame"
	VisualChangeDetected VisualChange = "change_detected"
	VisualNoChange       VisualChange = "no_change"
)

// Agent is one autonomous loop instance.
type Agent struct {
	ID        string
	ModelID   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	FallbackCount  int
	TotalDecisions int
	TotalCost      float64
	TotalTokensIn  int
	TotalTokensOut int
}

// Touch advances UpdatedAt and, when status is non-empty, sets Status.
func (a *Agent) Touch(now time.Time, status Status) {
	a.UpdatedAt = now
	if status != "" {
		a.Status = status
	}
}

// ProgressMetrics tracks cumulative, monotonically-growing run progress.
// Milestones and visited areas only grow within a run; a reset command is
// the only thing allowed to clear them.
type ProgressMetrics struct {
	Milestones          []string // ordered by first-seen time
	VisitedAreas        []string // ordered by first-seen time
	UniqueAreaCount     int
	HealingRewardTotal  float64
	LevelRewardTotal    float64
	ConsecutiveNoChange int
	LastEffectiveAction frame.Button

	// NavigationRewardTotal/EventRewardTotal are running totals alongside
	// HealingRewardTotal/LevelRewardTotal: spec.md §3 names only the
	// latter two explicitly, but all four reward components are
	// per-decision accruals with the same "running total across a run,
	// reset only on agent reset" shape.
	NavigationRewardTotal float64
	EventRewardTotal      int
}

// HasMilestone reports whether m has already been recorded.
func (p *ProgressMetrics) HasMilestone(m string) bool {
	for _, seen := range p.Milestones {
		if seen == m {
			return true
		}
	}
	return false
}

// HasVisitedArea reports whether area has already been recorded.
func (p *ProgressMetrics) HasVisitedArea(area string) bool {
	for _, seen := range p.VisitedAreas {
		if seen == area {
			return true
		}
	}
	return false
}

// RecordMilestone appends m if it has not been seen before and returns
// whether it was newly recorded.
func (p *ProgressMetrics) RecordMilestone(m string) bool {
	if m == "" || p.HasMilestone(m) {
		return false
	}
	p.Milestones = append(p.Milestones, m)
	return true
}

// RecordArea appends area if it has not been visited before and returns
// whether it was newly recorded.
func (p *ProgressMetrics) RecordArea(area string) bool {
	if area == "" || p.HasVisitedArea(area) {
		return false
	}
	p.VisitedAreas = append(p.VisitedAreas, area)
	p.UniqueAreaCount = len(p.VisitedAreas)
	return true
}

// PartyHealthSummary is a coarse party-HP snapshot derived from the
// model's structured gameState reply.
type PartyHealthSummary struct {
	EstimatedPartyHP float64 // 0..1, fraction of max
	PokemonCount     int
}

// GameState is the agent's current understanding of the game. The
// Decision Step's response merger sets its observed fields; the Loop
// Coordinator accrues Progress after each iteration.
type GameState struct {
	Area          string
	InBattle      bool
	InMenu        bool
	InDialogue    bool
	InTextEntry   bool
	ScreenType    ScreenType
	Badges        int
	Party         PartyHealthSummary
	Progress      ProgressMetrics
	LastInput     frame.Button
}

// NewGameState returns a freshly initialized GameState for agent init or
// reset.
func NewGameState() GameState {
	return GameState{ScreenType: ScreenUnknown}
}

// ButtonConfidence maps buttons of the 11-button vocabulary to a
// confidence each.
type ButtonConfidence map[frame.Button]float64

// SequenceStep is one step of a multi-step buttonSequence reply.
type SequenceStep struct {
	Confidences ButtonConfidence
}

// Argmax returns the highest-confidence button in the step and its score.
// Ties resolve to the first button in frame.AllButtons order so derivation
// is deterministic.
func (s SequenceStep) Argmax() (frame.Button, float64) {
	var best frame.Button
	var bestScore float64 = -1
	for _, b := range frame.AllButtons {
		if score, ok := s.Confidences[b]; ok && score > bestScore {
			best, bestScore = b, score
		}
	}
	return best, bestScore
}

// Decision is the merged outcome of one Decision Step invocation.
type Decision struct {
	Button             frame.Button
	Confidence         float64
	ConfidenceScores   ButtonConfidence
	ScreenAnalysis     string
	Reasoning          string
	PersonalityComment string
	Sequence           []SequenceStep
	ExecutionPlan      []frame.Button
	ProgressConfidence float64
	IsFallback         bool
	Timestamp          time.Time
	PromptTokens       int
	CompletionTokens   int
	Cost               float64
}

// FrameHistoryEntry records one executed step for the rolling command
// history shown back to the model.
type FrameHistoryEntry struct {
	Button       frame.Button
	Reasoning    string // truncated
	Timestamp    time.Time
	Fingerprint  uint32
	VisualChange VisualChange
}

// MaxFrameHistory bounds the recent-command history kept on an agent.
const MaxFrameHistory = 25

// AppendFrameHistory appends entry and trims history to MaxFrameHistory,
// dropping the oldest entries first.
func AppendFrameHistory(history []FrameHistoryEntry, entry FrameHistoryEntry) []FrameHistoryEntry {
	history = append(history, entry)
	if len(history) > MaxFrameHistory {
		history = history[len(history)-MaxFrameHistory:]
	}
	return history
}
