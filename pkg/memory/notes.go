// Package memory implements the Memory Store: structured per-agent notes
// and an append-only decision log, layered on pkg/kv with a bounded size
// policy. It is the only writer of Notes and DecisionLog per spec.md §3.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fenwick-labs/pokeloop/pkg/kv"
)

// StuckMode mirrors the model's own sense of what anti-stuck strategy it
// is currently trying, distinct from the heuristic engine's detection
// classification.
type StuckMode string

const (
	StuckModeNone          StuckMode = "none"
	StuckModePerimeterScan StuckMode = "perimeter_scan"
	StuckModeWallHug       StuckMode = "wall_hug"
	StuckModeBacktrack     StuckMode = "backtrack"
)

// MaxFailedAttempts bounds the append-truncated failedAttempts list.
const MaxFailedAttempts = 5

// NotesPromptLimit is FormatNotesForPrompt's default character budget.
const NotesPromptLimit = 1000

// Notes is the structured per-agent scratchpad the model reads on every
// prompt and updates via its response. All fields are optional and
// overwrite-on-write except FailedAttempts, which is append-truncated.
type Notes struct {
	CurrentObjective   string    `json:"currentObjective,omitempty"`
	LastKnownLocation  string    `json:"lastKnownLocation,omitempty"`
	ExitFound          bool      `json:"exitFound,omitempty"`
	StuckMode          StuckMode `json:"stuckMode,omitempty"`
	FailedAttempts     []string  `json:"failedAttempts,omitempty"`
	ImportantDiscovery string    `json:"importantDiscovery,omitempty"`
	General            string    `json:"general,omitempty"`
	// Legacy carries free-text notes from before the structured format,
	// tolerated for backward compatibility.
	Legacy string `json:"legacy,omitempty"`
}

// NotesDelta is a partial update applied by MergeNotes. A nil pointer
// field leaves the existing value untouched; FailedAttempts entries are
// appended rather than replacing the existing slice.
type NotesDelta struct {
	CurrentObjective   *string
	LastKnownLocation  *string
	ExitFound          *bool
	StuckMode          *StuckMode
	FailedAttempts     []string
	ImportantDiscovery *string
	General            *string
}

// GetNotes reads and parses the agent's notes. A missing key yields a
// zero-value Notes rather than an error. A value that fails to parse as
// structured JSON is tolerated as a legacy free-text note.
func GetNotes(ctx context.Context, store kv.Store, agentID string) (Notes, error) {
	raw, err := store.Get(ctx, kv.AgentKey(agentID, "memstash"))
	if err == kv.ErrNotFound {
		return Notes{}, nil
	}
	if err != nil {
		return Notes{}, fmt.Errorf("memory: get notes for %s: %w", agentID, err)
	}

	var n Notes
	if jsonErr := json.Unmarshal([]byte(raw), &n); jsonErr != nil {
		return Notes{Legacy: raw}, nil
	}
	return n, nil
}

// MergeNotes applies delta to the agent's current notes field-by-field
// and persists the result. FailedAttempts appends then truncates to the
// last MaxFailedAttempts entries.
func MergeNotes(ctx context.Context, store kv.Store, agentID string, delta NotesDelta) error {
	current, err := GetNotes(ctx, store, agentID)
	if err != nil {
		return err
	}

	if delta.CurrentObjective != nil {
		current.CurrentObjective = *delta.CurrentObjective
	}
	if delta.LastKnownLocation != nil {
		current.LastKnownLocation = *delta.LastKnownLocation
	}
	if delta.ExitFound != nil {
		current.ExitFound = *delta.ExitFound
	}
	if delta.StuckMode != nil {
		current.StuckMode = *delta.StuckMode
	}
	if delta.ImportantDiscovery != nil {
		current.ImportantDiscovery = *delta.ImportantDiscovery
	}
	if delta.General != nil {
		current.General = *delta.General
	}
	if len(delta.FailedAttempts) > 0 {
		current.FailedAttempts = append(current.FailedAttempts, delta.FailedAttempts...)
		if len(current.FailedAttempts) > MaxFailedAttempts {
			current.FailedAttempts = current.FailedAttempts[len(current.FailedAttempts)-MaxFailedAttempts:]
		}
	}

	return putNotes(ctx, store, agentID, current)
}

// ClearNotes resets the agent's notes to empty, called on reset.
func ClearNotes(ctx context.Context, store kv.Store, agentID string) error {
	if err := store.Del(ctx, kv.AgentKey(agentID, "memstash")); err != nil {
		return fmt.Errorf("memory: clear notes for %s: %w", agentID, err)
	}
	return nil
}

func putNotes(ctx context.Context, store kv.Store, agentID string, n Notes) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("memory: encoding notes for %s: %w", agentID, err)
	}
	if err := store.Set(ctx, kv.AgentKey(agentID, "memstash"), string(data), kv.TTLAgentState); err != nil {
		return fmt.Errorf("memory: saving notes for %s: %w", agentID, err)
	}
	return nil
}

// FormatNotesForPrompt renders notes as a deterministic, human-readable
// projection truncated to limit characters on a line boundary. limit <= 0
// uses NotesPromptLimit.
func FormatNotesForPrompt(n Notes, limit int) string {
	if limit <= 0 {
		limit = NotesPromptLimit
	}

	var lines []string
	if n.CurrentObjective != "" {
		lines = append(lines, "Objective: "+n.CurrentObjective)
	}
	if n.LastKnownLocation != "" {
		lines = append(lines, "Last known location: "+n.LastKnownLocation)
	}
	if n.ExitFound {
		lines = append(lines, "Exit found: yes")
	}
	if n.StuckMode != "" && n.StuckMode != StuckModeNone {
		lines = append(lines, "Stuck mode: "+string(n.StuckMode))
	}
	for _, attempt := range n.FailedAttempts {
		lines = append(lines, "Failed attempt: "+attempt)
	}
	if n.ImportantDiscovery != "" {
		lines = append(lines, "Discovery: "+n.ImportantDiscovery)
	}
	if n.General != "" {
		lines = append(lines, "Notes: "+n.General)
	}
	if n.Legacy != "" {
		lines = append(lines, n.Legacy)
	}

	var out strings.Builder
	for _, line := range lines {
		candidate := line + "\n"
		if out.Len()+len(candidate) > limit {
			break
		}
		out.WriteString(candidate)
	}
	return strings.TrimRight(out.String(), "\n")
}
