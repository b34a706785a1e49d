package loop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fenwick-labs/pokeloop/pkg/agent"
	"github.com/fenwick-labs/pokeloop/pkg/kv"
)

// PersistedState is the merged agent record the coordinator publishes to
// the KV store after each iteration, per spec.md §4.6 ("State
// publication").
type PersistedState struct {
	Agent           agent.Agent               `json:"agent"`
	GameState       agent.GameState           `json:"gameState"`
	FrameHistory    []agent.FrameHistoryEntry `json:"frameHistory"`
	DialogHistory   []string                  `json:"dialogHistory"`
	DecisionHistory []agent.Decision          `json:"decisionHistory"`
}

// PublishState marshals snapshot and writes it to agent:{id}:state with
// the full-agent-state TTL.
func PublishState(ctx context.Context, store kv.Store, agentID string, snapshot PersistedState) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("loop: encoding state for %s: %w", agentID, err)
	}
	return store.Set(ctx, kv.AgentKey(agentID, "state"), string(data), kv.TTLAgentState)
}

// GetState reads back the most recently published state, or a zero value
// if none has been published yet.
func GetState(ctx context.Context, store kv.Store, agentID string) (PersistedState, error) {
	raw, err := store.Get(ctx, kv.AgentKey(agentID, "state"))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return PersistedState{}, nil
		}
		return PersistedState{}, fmt.Errorf("loop: reading state for %s: %w", agentID, err)
	}
	var snapshot PersistedState
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return PersistedState{}, fmt.Errorf("loop: decoding state for %s: %w", agentID, err)
	}
	return snapshot, nil
}
