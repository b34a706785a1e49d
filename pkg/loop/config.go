// Package loop implements the Loop Coordinator: the per-agent driver that
// sequences frame capture, the Decision Step, input execution, and state
// publication, while owning the mutex, heartbeat, cancellation token,
// cooldown policy, and checkpoint cadence. It also holds the per-agent
// registry, since the registry owns *Coordinator values directly.
package loop

import "time"

// Heartbeat, per spec.md §4.6 / §6.
const (
	HeartbeatInterval   = 10 * time.Second
	HeartbeatTTL        = 60 * time.Second
	ClientGoneThreshold = 30 * time.Second
)

// Cadence/cooldown, per spec.md §4.6.
const (
	IterationPeriod      = 3 * time.Second
	DialogueCooldown     = 8 * time.Second
	DefaultCooldown      = 500 * time.Millisecond
	BetweenPressDelay    = 500 * time.Millisecond
	IterationDeadline    = 30 * time.Second
)

// CheckpointEvery is the number of decisions between automatic save-state
// checkpoints.
const CheckpointEvery = 100

// MaxDecisionHistory bounds the recent-decisions buffer kept on an agent,
// per spec.md §5.
const MaxDecisionHistory = 25

// TruncatedReasoningLimit bounds the reasoning text stored in each
// FrameHistoryEntry.
const TruncatedReasoningLimit = 200
