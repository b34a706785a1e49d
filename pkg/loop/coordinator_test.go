package loop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-labs/pokeloop/pkg/agent"
	"github.com/fenwick-labs/pokeloop/pkg/blob"
	"github.com/fenwick-labs/pokeloop/pkg/decision"
	"github.com/fenwick-labs/pokeloop/pkg/frame"
	"github.com/fenwick-labs/pokeloop/pkg/kv"
	"github.com/fenwick-labs/pokeloop/pkg/visionmodel"
)

func fixedClock(t time.Time) decision.Clock {
	return func() time.Time { return t }
}

func samplePNG(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

const overworldReply = `{
  "gameState": {"area": "route-1", "inBattle": false, "inMenu": false, "inDialogue": false, "inTextEntry": false, "pokemonCount": 1, "badges": 0, "screenType": "overworld", "estimatedPartyHP": 1},
  "decision": {
    "screenAnalysis": "standing in tall grass",
    "reasoning": "heading north",
    "personality_comment": "onward!",
    "buttonSequence": [{"UP": 0.9, "A": 0.1}],
    "progressConfidence": 0.4,
    "notes": {"currentObjective": "reach route 2"}
  }
}`

const screenTypeReply = `{"screenType": "overworld", "briefDescription": "tall grass"}`

func newTestCoordinator(t *testing.T, source *frame.MemorySource, client *visionmodel.MockClient, now decision.Clock) *Coordinator {
	t.Helper()
	store := kv.NewMemStore()
	blobs := blob.NewMemStore("")
	return New("agent-1", "openai/gpt-4o", store, blobs, source, client, now)
}

func TestRunIteration_SuccessAdvancesStateAndPublishes(t *testing.T) {
	now := fixedClock(time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC))
	source := frame.NewMemorySource(frame.Frame{ImageBytes: samplePNG(1200)})
	client := visionmodel.NewMockClient(
		visionmodel.Reply{Text: screenTypeReply},
		visionmodel.Reply{Text: overworldReply},
	)
	coord := newTestCoordinator(t, source, client, now)

	dec, err := coord.RunIteration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, frame.ButtonUp, dec.Button)
	assert.Equal(t, agent.StatusIdle, coord.Status())

	snap := coord.Snapshot()
	assert.Equal(t, "route-1", snap.GameState.Area)
	assert.Equal(t, 1, snap.Agent.TotalDecisions)
	assert.Len(t, snap.FrameHistory, 1)
	assert.Equal(t, []frame.Button{frame.ButtonUp}, source.PressLog())

	published, err := GetState(context.Background(), coord.store, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, 1, published.Agent.TotalDecisions)
	assert.Equal(t, "route-1", published.GameState.Area)
}

func TestRunIteration_ConcurrentCallReturnsIterationInProgress(t *testing.T) {
	now := fixedClock(time.Now())
	source := frame.NewMemorySource(frame.Frame{ImageBytes: samplePNG(1200)})
	client := visionmodel.NewMockClient()
	coord := newTestCoordinator(t, source, client, now)

	coord.iterMu.Lock()
	defer coord.iterMu.Unlock()

	_, err := coord.RunIteration(context.Background())
	assert.ErrorIs(t, err, ErrIterationInProgress)
}

func TestRunIteration_AdapterLostSetsErrorStatus(t *testing.T) {
	now := fixedClock(time.Now())
	source := frame.NewMemorySource()
	source.LoseAdapter()
	client := visionmodel.NewMockClient()
	coord := newTestCoordinator(t, source, client, now)

	_, err := coord.RunIteration(context.Background())
	assert.ErrorIs(t, err, frame.ErrAdapterLost)
	assert.Equal(t, agent.StatusError, coord.Status())
}

func TestRunIteration_DialogueScreenCooldownIsInterruptibleByContext(t *testing.T) {
	dialogueReply := `{
  "gameState": {"area": "route-1", "inBattle": false, "inMenu": false, "inDialogue": true, "inTextEntry": false, "pokemonCount": 1, "badges": 0, "screenType": "dialogue", "estimatedPartyHP": 1},
  "decision": {
    "screenAnalysis": "talking to NPC",
    "reasoning": "advance dialogue",
    "personality_comment": "",
    "buttonSequence": [{"A": 0.9}],
    "progressConfidence": 0.1,
    "notes": {}
  }
}`
	now := fixedClock(time.Now())
	source := frame.NewMemorySource(frame.Frame{ImageBytes: samplePNG(1200)})
	client := visionmodel.NewMockClient(
		visionmodel.Reply{Text: screenTypeReply},
		visionmodel.Reply{Text: dialogueReply},
	)
	coord := newTestCoordinator(t, source, client, now)

	// DialogueCooldown is 8s; a 50ms-deadline context must cut the
	// cooldown sleep short rather than blocking the caller for the full
	// duration.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := coord.RunIteration(ctx)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), DialogueCooldown)
}

func TestReset_ClearsStateAndButtonStats(t *testing.T) {
	now := fixedClock(time.Now())
	source := frame.NewMemorySource(frame.Frame{ImageBytes: samplePNG(1200)})
	client := visionmodel.NewMockClient(
		visionmodel.Reply{Text: screenTypeReply},
		visionmodel.Reply{Text: overworldReply},
	)
	coord := newTestCoordinator(t, source, client, now)

	_, err := coord.RunIteration(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, coord.Snapshot().Agent.TotalDecisions)

	require.NoError(t, coord.Reset(context.Background()))

	snap := coord.Snapshot()
	assert.Equal(t, 0, snap.Agent.TotalDecisions)
	assert.Equal(t, agent.NewGameState(), snap.GameState)
	assert.Empty(t, snap.FrameHistory)
}

func TestHeartbeatStatus_GoneAfterThreshold(t *testing.T) {
	base := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	current := base
	now := func() time.Time { return current }

	source := frame.NewMemorySource()
	client := visionmodel.NewMockClient()
	coord := newTestCoordinator(t, source, client, now)

	require.NoError(t, coord.Heartbeat(context.Background()))

	alive, _, _, err := coord.HeartbeatStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, alive)

	current = base.Add(ClientGoneThreshold + time.Second)
	alive, _, elapsed, err := coord.HeartbeatStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, alive)
	assert.Greater(t, elapsed, ClientGoneThreshold)
}

func TestCheckpointPath_SanitizesModelID(t *testing.T) {
	at := time.Date(2026, 7, 30, 9, 5, 0, 0, time.UTC)
	path := checkpointPath("agent-1", "openai/gpt-4o", 100, at)
	assert.Equal(t, "save-states/agent-1/2026-07-30_09-05_D100_openai-gpt-4o.state", path)
}
