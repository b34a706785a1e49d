package loop

import (
	"context"
	"fmt"
	"sync"

	"github.com/fenwick-labs/pokeloop/pkg/blob"
	"github.com/fenwick-labs/pokeloop/pkg/decision"
	"github.com/fenwick-labs/pokeloop/pkg/frame"
	"github.com/fenwick-labs/pokeloop/pkg/kv"
	"github.com/fenwick-labs/pokeloop/pkg/visionmodel"
)

// ErrAgentNotFound is returned by Registry.Get when agentID has no
// Coordinator, either because it was never created or because it was
// removed.
var ErrAgentNotFound = fmt.Errorf("loop: agent not found")

// Registry owns every running Coordinator, keyed by agent id. It is the
// single point the HTTP layer goes through to create, find, and tear
// down agents.
type Registry struct {
	store  kv.Store
	blobs  blob.Store
	source frame.Source
	client visionmodel.Client
	now    decision.Clock

	mu    sync.RWMutex
	loops map[string]*Coordinator
}

// NewRegistry returns an empty Registry sharing one frame source, one
// vision model client, and one KV/blob store across every agent it
// creates.
func NewRegistry(store kv.Store, blobs blob.Store, source frame.Source, client visionmodel.Client, now decision.Clock) *Registry {
	return &Registry{
		store:  store,
		blobs:  blobs,
		source: source,
		client: client,
		now:    now,
		loops:  make(map[string]*Coordinator),
	}
}

// Create registers a new Coordinator for agentID/modelID without
// starting its autonomous background loop: this is the path the HTTP
// layer uses, where each POST /api/agent/decide call drives exactly one
// RunIteration itself and the client supplies the cadence. Calling
// Create again for an id already present stops and replaces the prior
// Coordinator, so retried agent-creation requests are idempotent.
func (r *Registry) Create(agentID, modelID string) *Coordinator {
	r.mu.Lock()
	if existing, ok := r.loops[agentID]; ok {
		existing.Stop()
	}
	coord := New(agentID, modelID, r.store, r.blobs, r.source, r.client, r.now)
	r.loops[agentID] = coord
	r.mu.Unlock()

	return coord
}

// CreateAndStart is Create plus an immediate Start against ctx: it is
// for standalone deployments where a Coordinator owns a locally attached
// frame.Source and should poll it continuously rather than waiting on
// externally driven iterations. ctx's lifetime should span the server's
// lifetime, not a single request.
func (r *Registry) CreateAndStart(ctx context.Context, agentID, modelID string) *Coordinator {
	coord := r.Create(agentID, modelID)
	coord.Start(ctx)
	return coord
}

// Get returns the Coordinator for agentID, or ErrAgentNotFound.
func (r *Registry) Get(agentID string) (*Coordinator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coord, ok := r.loops[agentID]
	if !ok {
		return nil, ErrAgentNotFound
	}
	return coord, nil
}

// List returns every Coordinator currently registered, in no particular
// order.
func (r *Registry) List() []*Coordinator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Coordinator, 0, len(r.loops))
	for _, coord := range r.loops {
		out = append(out, coord)
	}
	return out
}

// Remove stops agentID's Coordinator and drops it from the registry. It
// does not clear the agent's KV/blob state; callers that want that call
// Coordinator.Reset first.
func (r *Registry) Remove(agentID string) {
	r.mu.Lock()
	coord, ok := r.loops[agentID]
	delete(r.loops, agentID)
	r.mu.Unlock()

	if ok {
		coord.Stop()
	}
}

// StopAll stops every running Coordinator, for graceful shutdown.
func (r *Registry) StopAll() {
	r.mu.RLock()
	coords := make([]*Coordinator, 0, len(r.loops))
	for _, coord := range r.loops {
		coords = append(coords, coord)
	}
	r.mu.RUnlock()

	var wg sync.WaitGroup
	for _, coord := range coords {
		wg.Add(1)
		go func(c *Coordinator) {
			defer wg.Done()
			c.Stop()
		}(coord)
	}
	wg.Wait()
}
