package loop

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fenwick-labs/pokeloop/pkg/agent"
	"github.com/fenwick-labs/pokeloop/pkg/blob"
	"github.com/fenwick-labs/pokeloop/pkg/decision"
	"github.com/fenwick-labs/pokeloop/pkg/frame"
	"github.com/fenwick-labs/pokeloop/pkg/heuristic"
	"github.com/fenwick-labs/pokeloop/pkg/kv"
	"github.com/fenwick-labs/pokeloop/pkg/memory"
	"github.com/fenwick-labs/pokeloop/pkg/visionmodel"
)

// Coordinator is the per-agent driver described in spec.md §4.6. It owns
// the iteration mutex, the cancellation token for the in-flight Decision
// Step, the button statistics the heuristic engine consults, and the
// cooldown/checkpoint/heartbeat policy. One Coordinator exists per Agent.
type Coordinator struct {
	agentID string
	modelID string

	store  kv.Store
	blobs  blob.Store
	source frame.Source
	client visionmodel.Client
	now    decision.Clock

	// iterMu serializes iterations: a new one must not start while a
	// previous iteration's Decision Step, input execution, or cooldown is
	// in progress (spec.md §4.6).
	iterMu sync.Mutex

	// stateMu guards every field below, read concurrently by Status,
	// Snapshot and Reset while an iteration may be in flight.
	stateMu sync.RWMutex

	rec                  agent.Agent
	gameState            agent.GameState
	buttonStats          *heuristic.ButtonStats
	frameHistory         []agent.FrameHistoryEntry
	dialogHistory        []string
	decisionHistory      []agent.Decision
	prevFingerprint      *uint32
	prevConfidenceScores agent.ButtonConfidence
	prevButton           frame.Button
	cancelIteration      context.CancelFunc

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a Coordinator for one agent. now defaults to time.Now when
// nil, per spec.md §9's "inject a clock" determinism note.
func New(agentID, modelID string, store kv.Store, blobs blob.Store, source frame.Source, client visionmodel.Client, now decision.Clock) *Coordinator {
	if now == nil {
		now = time.Now
	}
	at := now()
	return &Coordinator{
		agentID: agentID,
		modelID: modelID,
		store:   store,
		blobs:   blobs,
		source:  source,
		client:  client,
		now:     now,
		rec: agent.Agent{
			ID:        agentID,
			ModelID:   modelID,
			Status:    agent.StatusIdle,
			CreatedAt: at,
			UpdatedAt: at,
		},
		gameState:   agent.NewGameState(),
		buttonStats: heuristic.NewButtonStats(),
		stopCh:      make(chan struct{}),
	}
}

// AgentID returns the coordinator's agent id.
func (c *Coordinator) AgentID() string { return c.agentID }

// Status returns the agent's current lifecycle state.
func (c *Coordinator) Status() agent.Status {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.rec.Status
}

// Snapshot returns the current persistable state without reading from the
// KV store, for the /state and /api/agent/decide GET handlers.
func (c *Coordinator) Snapshot() PersistedState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() PersistedState {
	return PersistedState{
		Agent:           c.rec,
		GameState:       c.gameState,
		FrameHistory:    append([]agent.FrameHistoryEntry(nil), c.frameHistory...),
		DialogHistory:   append([]string(nil), c.dialogHistory...),
		DecisionHistory: append([]agent.Decision(nil), c.decisionHistory...),
	}
}

func (c *Coordinator) setStatus(status agent.Status) {
	c.stateMu.Lock()
	c.rec.Touch(c.now(), status)
	c.stateMu.Unlock()
}

func (c *Coordinator) setCancel(cancel context.CancelFunc) {
	c.stateMu.Lock()
	c.cancelIteration = cancel
	c.stateMu.Unlock()
}

// Heartbeat refreshes the agent's liveness record, per spec.md §6's POST
// /heartbeat.
func (c *Coordinator) Heartbeat(ctx context.Context) error {
	return c.store.Set(ctx, kv.AgentKey(c.agentID, "heartbeat"), c.now().Format(time.RFC3339Nano), kv.TTLHeartbeat)
}

// HeartbeatStatus answers spec.md §6's GET /heartbeat: whether a beat has
// ever been recorded, when, and how long ago.
func (c *Coordinator) HeartbeatStatus(ctx context.Context) (alive bool, lastBeat time.Time, elapsed time.Duration, err error) {
	raw, err := c.store.Get(ctx, kv.AgentKey(c.agentID, "heartbeat"))
	if errors.Is(err, kv.ErrNotFound) {
		return false, time.Time{}, 0, nil
	}
	if err != nil {
		return false, time.Time{}, 0, err
	}
	lastBeat, err = time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return false, time.Time{}, 0, err
	}
	elapsed = c.now().Sub(lastBeat)
	return elapsed <= ClientGoneThreshold, lastBeat, elapsed, nil
}

// Start launches the autonomous background loop: capture, decide,
// execute, cooldown, repeat, until Stop is called, ctx is cancelled, or
// the adapter is lost.
func (c *Coordinator) Start(ctx context.Context) {
	c.wg.Add(1)
	go c.run(ctx)
}

// Stop signals the background loop to stop and waits for it to exit. Safe
// to call multiple times, and safe to call when Start was never called.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

func (c *Coordinator) run(ctx context.Context) {
	defer c.wg.Done()
	log := slog.With("agent_id", c.agentID)

	for {
		select {
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		start := c.now()
		_, err := c.RunIteration(ctx)
		switch {
		case err == nil:
		case errors.Is(err, frame.ErrAdapterLost):
			log.Error("adapter lost, stopping loop", "error", err)
			return
		case errors.Is(err, frame.ErrFrameUnavailable):
			sleepCtx(ctx, frame.RetryBackoff)
			continue
		case errors.Is(err, ErrIterationInProgress), errors.Is(err, ErrClientGone):
			sleepCtx(ctx, IterationPeriod)
			continue
		default:
			if ctx.Err() != nil {
				return
			}
			log.Warn("iteration error", "error", err)
		}

		if elapsed := c.now().Sub(start); elapsed < IterationPeriod {
			sleepCtx(ctx, IterationPeriod-elapsed)
		}
	}
}

// RunIteration executes exactly one capture -> decide -> execute ->
// cooldown -> publish cycle. It returns ErrIterationInProgress instead of
// blocking if a previous iteration has not yet released the mutex, per
// spec.md §4.6 ("a new iteration must not start while a previous one is in
// progress").
func (c *Coordinator) RunIteration(ctx context.Context) (agent.Decision, error) {
	if !c.iterMu.TryLock() {
		return agent.Decision{}, ErrIterationInProgress
	}
	defer c.iterMu.Unlock()

	if gone, err := c.checkClientGone(ctx); err != nil {
		return agent.Decision{}, err
	} else if gone {
		c.setStatus(agent.StatusPaused)
		c.publishState(ctx)
		return agent.Decision{}, ErrClientGone
	}

	iterCtx, cancel := context.WithTimeout(ctx, IterationDeadline)
	c.setCancel(cancel)
	defer func() {
		cancel()
		c.setCancel(nil)
	}()

	c.setStatus(agent.StatusThinking)

	frm, err := c.source.Capture(iterCtx)
	if err != nil {
		if errors.Is(err, frame.ErrAdapterLost) {
			c.setStatus(agent.StatusError)
			c.publishState(context.Background())
		} else {
			c.setStatus(agent.StatusIdle)
		}
		return agent.Decision{}, err
	}

	base64Payload := base64.StdEncoding.EncodeToString(frm.ImageBytes)
	fingerprint := heuristic.Fingerprint(base64Payload)

	c.stateMu.Lock()
	visualChange := heuristic.VisualChange(c.prevFingerprint, fingerprint)
	if c.prevButton != "" {
		c.buttonStats.RecordOutcome(c.prevButton, visualChange)
	}
	c.stateMu.Unlock()

	notes, _ := memory.GetNotes(iterCtx, c.store, c.agentID)
	notesProjection := memory.FormatNotesForPrompt(notes, memory.NotesPromptLimit)

	inputs := c.buildInputs(frm, base64Payload, notesProjection)
	c.buttonStats.TickBans()

	c.stateMu.RLock()
	previousState := c.gameState
	c.stateMu.RUnlock()

	dec, nextState, err := decision.Decide(iterCtx, c.client, c.store, c.agentID, c.modelID, inputs, previousState, c.now)
	if err != nil {
		c.setStatus(agent.StatusPaused)
		return agent.Decision{}, err
	}

	c.setStatus(agent.StatusActing)
	c.executeSequence(iterCtx, dec.ExecutionPlan)

	decisionNumber := c.recordOutcome(dec, nextState, fingerprint, visualChange)
	c.updateStuckMode(context.Background())

	cooldown := DefaultCooldown
	if nextState.ScreenType == agent.ScreenDialogue {
		cooldown = DialogueCooldown
	}

	c.setStatus(agent.StatusIdle)
	sleepCtx(ctx, cooldown)

	c.publishState(context.Background())
	if decisionNumber > 0 && decisionNumber%CheckpointEvery == 0 {
		c.checkpoint(context.Background(), decisionNumber)
	}

	return dec, nil
}

func (c *Coordinator) checkClientGone(ctx context.Context) (bool, error) {
	alive, lastBeat, _, err := c.HeartbeatStatus(ctx)
	if err != nil {
		return false, err
	}
	if lastBeat.IsZero() {
		return false, nil
	}
	return !alive, nil
}

func (c *Coordinator) buildInputs(frm frame.Frame, base64Payload, notesProjection string) decision.Inputs {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	var buttonsToAvoid []frame.Button
	for b := range c.buttonStats.ButtonsToAvoid {
		buttonsToAvoid = append(buttonsToAvoid, b)
	}

	// Cap each penalized button's previous score to NoChangeConfidenceFloor
	// rather than reporting the model's raw confidence back to it, per
	// spec.md §4.4's no-change penalty / invariant 5.
	scores := make(agent.ButtonConfidence, len(c.prevConfidenceScores))
	for b, score := range c.prevConfidenceScores {
		if floor, capped := c.buttonStats.ConfidenceFloor(b); capped && score > floor {
			score = floor
		}
		scores[b] = score
	}

	priority := heuristic.PriorityAction(c.gameState.Party.EstimatedPartyHP, c.gameState.InBattle, c.gameState.InDialogue, c.gameState.InMenu)

	return decision.Inputs{
		CurrentFrame:             "data:image/png;base64," + base64Payload,
		CommandHistory:           append([]agent.FrameHistoryEntry(nil), c.frameHistory...),
		PreviousConfidenceScores: scores,
		PreviousDialogHistory:    append([]string(nil), c.dialogHistory...),
		AvoidHints:               c.buttonStats.AvoidHints(),
		ButtonsToAvoid:           buttonsToAvoid,
		BannedButtons:            c.buttonStats.BannedList(),
		NotesProjection:          notesProjection,
		PreviousGameState:        c.gameState,
		PreviousDecisions:        append([]agent.Decision(nil), c.decisionHistory...),
		PriorityHint:             string(priority),
	}
}

// executeSequence issues each non-WAIT button in plan, serialized with
// BetweenPressDelay, stopping at the first press failure so the emulator
// is left in a defined state (spec.md §5's cancellation contract).
func (c *Coordinator) executeSequence(ctx context.Context, plan []frame.Button) {
	for i, b := range plan {
		c.buttonStats.RecordPress(b)
		if b == frame.ButtonWait {
			continue
		}
		if err := c.source.PressAndRelease(ctx, b, frame.InputSettleDelay); err != nil {
			slog.Warn("press failed, aborting remaining sequence", "agent_id", c.agentID, "button", b, "error", err)
			return
		}
		if i < len(plan)-1 {
			sleepCtx(ctx, BetweenPressDelay)
		}
	}
}

// levelSumProxy approximates spec.md's Σlevels for LevelReward: the wire
// format's gameState carries pokemonCount but no per-Pokemon level, so
// party size is the only numeric signal available as a stand-in.
func levelSumProxy(state agent.GameState) int {
	return state.Party.PokemonCount
}

func (c *Coordinator) recordOutcome(dec agent.Decision, nextState agent.GameState, fingerprint uint32, visualChange agent.VisualChange) int {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	previousParty := c.gameState.Party
	previousBadges := c.gameState.Badges
	progress := c.gameState.Progress

	if progress.RecordArea(nextState.Area) {
		progress.NavigationRewardTotal += heuristic.NavigationReward(1)
	}
	if nextState.Badges > previousBadges {
		milestone := fmt.Sprintf("gym_leader_%d", nextState.Badges)
		if progress.RecordMilestone(milestone) {
			progress.EventRewardTotal += heuristic.EventReward(milestone)
		}
	}
	if reward := heuristic.EventReward(nextState.Area); reward > 0 && progress.RecordMilestone(nextState.Area) {
		progress.EventRewardTotal += reward
	}

	progress.HealingRewardTotal += heuristic.HealingReward(
		[]float64{previousParty.EstimatedPartyHP}, []float64{nextState.Party.EstimatedPartyHP}, 1.0)
	progress.LevelRewardTotal, _ = heuristic.LevelReward(levelSumProxy(nextState), progress.LevelRewardTotal)

	if visualChange == agent.VisualNoChange {
		progress.ConsecutiveNoChange++
	} else {
		progress.ConsecutiveNoChange = 0
	}
	if visualChange == agent.VisualChangeDetected {
		progress.LastEffectiveAction = dec.Button
	}

	nextState.Progress = progress
	c.gameState = nextState
	c.prevFingerprint = &fingerprint
	c.prevConfidenceScores = dec.ConfidenceScores
	c.prevButton = dec.Button

	c.frameHistory = agent.AppendFrameHistory(c.frameHistory, agent.FrameHistoryEntry{
		Button:       dec.Button,
		Reasoning:    truncate(dec.Reasoning, TruncatedReasoningLimit),
		Timestamp:    c.now(),
		Fingerprint:  fingerprint,
		VisualChange: visualChange,
	})

	if dec.PersonalityComment != "" {
		c.dialogHistory = append(c.dialogHistory, dec.PersonalityComment)
		if len(c.dialogHistory) > decision.MaxDialogHistory {
			c.dialogHistory = c.dialogHistory[len(c.dialogHistory)-decision.MaxDialogHistory:]
		}
	}

	c.decisionHistory = append(c.decisionHistory, dec)
	if len(c.decisionHistory) > MaxDecisionHistory {
		c.decisionHistory = c.decisionHistory[len(c.decisionHistory)-MaxDecisionHistory:]
	}

	c.rec.TotalDecisions++
	c.rec.TotalCost += dec.Cost
	c.rec.TotalTokensIn += dec.PromptTokens
	c.rec.TotalTokensOut += dec.CompletionTokens
	if dec.IsFallback {
		c.rec.FallbackCount++
	}
	c.rec.Touch(c.now(), "")

	return c.rec.TotalDecisions
}

// recentActionsWindow returns the buttons from the most recent n frame
// history entries, oldest first, for DetectStuck's action window.
func (c *Coordinator) recentActionsWindow(n int) []frame.Button {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	hist := c.frameHistory
	if len(hist) > n {
		hist = hist[len(hist)-n:]
	}
	out := make([]frame.Button, len(hist))
	for i, e := range hist {
		out[i] = e.Button
	}
	return out
}

// stuckModeFor maps a heuristic stuck classification onto the anti-stuck
// strategy Notes.StuckMode advertises to the model on the next prompt.
func stuckModeFor(class heuristic.StuckClass) memory.StuckMode {
	switch class {
	case heuristic.StuckWallCollision:
		return memory.StuckModeWallHug
	case heuristic.StuckDialogueLoop:
		return memory.StuckModeBacktrack
	default:
		return memory.StuckModePerimeterScan
	}
}

// updateStuckMode runs DetectStuck against the just-recorded outcome and,
// if it classifies the agent as stuck, seeds Notes.StuckMode so the next
// prompt carries an anti-stuck strategy hint (spec.md §4.4).
func (c *Coordinator) updateStuckMode(ctx context.Context) {
	c.stateMu.RLock()
	consecutiveNoChange := c.gameState.Progress.ConsecutiveNoChange
	c.stateMu.RUnlock()

	class := heuristic.DetectStuck(consecutiveNoChange, c.recentActionsWindow(5))
	if class == heuristic.StuckNone {
		return
	}

	mode := stuckModeFor(class)
	if err := memory.MergeNotes(ctx, c.store, c.agentID, memory.NotesDelta{StuckMode: &mode}); err != nil {
		slog.Warn("stuck mode note update failed", "agent_id", c.agentID, "error", err)
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// Reset aborts any in-flight iteration, clears ButtonStats, Notes, and
// DecisionLog, deletes every agent:{id}:* key, and reinitializes
// GameState, per spec.md §4.6.
func (c *Coordinator) Reset(ctx context.Context) error {
	c.stateMu.RLock()
	cancel := c.cancelIteration
	c.stateMu.RUnlock()
	if cancel != nil {
		cancel()
	}

	c.iterMu.Lock()
	defer c.iterMu.Unlock()

	c.stateMu.Lock()
	now := c.now()
	c.rec = agent.Agent{ID: c.agentID, ModelID: c.modelID, Status: agent.StatusIdle, CreatedAt: c.rec.CreatedAt, UpdatedAt: now}
	c.gameState = agent.NewGameState()
	c.buttonStats = heuristic.NewButtonStats()
	c.frameHistory = nil
	c.dialogHistory = nil
	c.decisionHistory = nil
	c.prevFingerprint = nil
	c.prevConfidenceScores = nil
	c.prevButton = ""
	c.stateMu.Unlock()

	if err := memory.Reset(ctx, c.store, c.agentID); err != nil {
		return err
	}
	return c.store.DeletePrefix(ctx, "agent:"+c.agentID+":")
}

func (c *Coordinator) publishState(ctx context.Context) {
	snapshot := c.Snapshot()
	if err := PublishState(ctx, c.store, c.agentID, snapshot); err != nil {
		slog.Warn("state publish failed", "agent_id", c.agentID, "error", err)
		return
	}
	_, _ = c.store.IncrBy(ctx, kv.AgentKey(c.agentID, "frames"), 1)
	c.publishLeaderboards(ctx, snapshot)
}

// publishLeaderboards performs the idempotent leaderboard ZAdd calls
// spec.md §6 names but doesn't tie to an operation: member is always the
// agent id, score is always the latest measured value, so a repeated
// call for the same agent simply overwrites its prior entry.
func (c *Coordinator) publishLeaderboards(ctx context.Context, snapshot PersistedState) {
	_ = c.store.ZAdd(ctx, kv.LeaderboardKeyFor("cost"), snapshot.Agent.TotalCost, c.agentID)
	_ = c.store.ZAdd(ctx, kv.LeaderboardKeyFor("badges"), float64(snapshot.GameState.Badges), c.agentID)
	_ = c.store.ZAdd(ctx, kv.LeaderboardKeyFor("milestones"), float64(len(snapshot.GameState.Progress.Milestones)), c.agentID)
}

func (c *Coordinator) checkpoint(ctx context.Context, decisionNumber int) {
	if _, _, _, err := c.Checkpoint(ctx); err != nil {
		slog.Warn("automatic checkpoint failed", "agent_id", c.agentID, "decision", decisionNumber, "error", err)
	}
}

// Checkpoint snapshots the emulator via the frame source and uploads it
// to the blob store under the standard checkpoint path, for the POST
// /save-state handler's on-demand use as well as the automatic
// every-CheckpointEvery-decisions cadence.
func (c *Coordinator) Checkpoint(ctx context.Context) (url, filename string, decisionNumber int, err error) {
	data, err := c.source.SaveState(ctx)
	if err != nil {
		return "", "", 0, err
	}
	if len(data) == 0 {
		return "", "", 0, errors.New("loop: save-state returned no data")
	}

	decisionNumber = c.Snapshot().Agent.TotalDecisions
	at := c.now()
	path := checkpointPath(c.agentID, c.modelID, decisionNumber, at)

	url, err = c.blobs.Put(ctx, path, data)
	if err != nil {
		return "", "", 0, err
	}
	return url, path, decisionNumber, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
