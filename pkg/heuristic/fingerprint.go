// Package heuristic implements the pure, stateless-per-call computations
// the Loop Coordinator consults each iteration: frame fingerprinting and
// change detection, reward shaping, stuck detection, and the per-button
// counters/bans the coordinator owns across iterations.
package heuristic

import (
	"hash/fnv"

	"github.com/fenwick-labs/pokeloop/pkg/agent"
)

// FingerprintStride is the fixed sampling interval over the base64 frame
// payload used to build an equality-only, non-cryptographic fingerprint.
const FingerprintStride = 1000

// Fingerprint hashes payload at fixed stride, used only for equality
// comparison between consecutive frames, never as a content digest.
func Fingerprint(payload string) uint32 {
	h := fnv.New32a()
	for i := 0; i < len(payload); i += FingerprintStride {
		h.Write([]byte{payload[i]})
	}
	return h.Sum32()
}

// VisualChange classifies the transition from a previous fingerprint (nil
// for the first frame of a run) to the current one.
func VisualChange(prev *uint32, curr uint32) agent.VisualChange {
	if prev == nil {
		return agent.VisualFirstFrame
	}
	if *prev == curr {
		return agent.VisualNoChange
	}
	return agent.VisualChangeDetected
}
