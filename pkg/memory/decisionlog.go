package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fenwick-labs/pokeloop/pkg/kv"
)

// MaxDecisionLogEntries bounds the decision log to the most recent N
// entries.
const MaxDecisionLogEntries = 500

// DecisionLogEntry is one appended record of an executed decision.
type DecisionLogEntry struct {
	Step      int       `json:"step"`
	Button    string    `json:"button"`
	Reasoning string    `json:"reasoning"`
	Timestamp time.Time `json:"timestamp"`
}

// AppendDecisionLog assigns entry the next monotonically increasing step
// number (current log length + 1, or one past the newest entry's step once
// the log has been truncated) and appends it, truncating the log to the
// most recent MaxDecisionLogEntries.
func AppendDecisionLog(ctx context.Context, store kv.Store, agentID, button, reasoning string) (DecisionLogEntry, error) {
	key := kv.AgentKey(agentID, "decisionlog")

	length, err := store.LLen(ctx, key)
	if err != nil {
		return DecisionLogEntry{}, fmt.Errorf("memory: reading decision log length for %s: %w", agentID, err)
	}

	step := int(length) + 1
	if length > 0 {
		newest, err := store.LRange(ctx, key, 0, 0)
		if err != nil {
			return DecisionLogEntry{}, fmt.Errorf("memory: reading newest decision log entry for %s: %w", agentID, err)
		}
		var last DecisionLogEntry
		if len(newest) == 1 && json.Unmarshal([]byte(newest[0]), &last) == nil && last.Step >= step {
			step = last.Step + 1
		}
	}

	entry := DecisionLogEntry{
		Step:      step,
		Button:    button,
		Reasoning: reasoning,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return DecisionLogEntry{}, fmt.Errorf("memory: encoding decision log entry for %s: %w", agentID, err)
	}
	if err := store.LPush(ctx, key, string(data)); err != nil {
		return DecisionLogEntry{}, fmt.Errorf("memory: appending decision log for %s: %w", agentID, err)
	}
	if err := store.LTrim(ctx, key, 0, MaxDecisionLogEntries-1); err != nil {
		return DecisionLogEntry{}, fmt.Errorf("memory: trimming decision log for %s: %w", agentID, err)
	}
	return entry, nil
}

// GetDecisionLog returns the log in chronological (oldest-first) order.
// The backing list is stored newest-first (LPush at the head).
func GetDecisionLog(ctx context.Context, store kv.Store, agentID string) ([]DecisionLogEntry, error) {
	key := kv.AgentKey(agentID, "decisionlog")
	raw, err := store.LRange(ctx, key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("memory: reading decision log for %s: %w", agentID, err)
	}

	entries := make([]DecisionLogEntry, 0, len(raw))
	for _, item := range raw {
		var entry DecisionLogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// ClearDecisionLog deletes the agent's decision log, called on reset.
func ClearDecisionLog(ctx context.Context, store kv.Store, agentID string) error {
	if err := store.Del(ctx, kv.AgentKey(agentID, "decisionlog")); err != nil {
		return fmt.Errorf("memory: clearing decision log for %s: %w", agentID, err)
	}
	return nil
}

// Reset clears Notes and DecisionLog together, best-effort atomically
// from the caller's perspective.
func Reset(ctx context.Context, store kv.Store, agentID string) error {
	if err := ClearNotes(ctx, store, agentID); err != nil {
		return err
	}
	return ClearDecisionLog(ctx, store, agentID)
}
