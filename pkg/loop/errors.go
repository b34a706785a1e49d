package loop

import "errors"

// ErrIterationInProgress is returned by RunIteration when a previous
// iteration's Decision Step, input execution, or cooldown is still in
// flight, per spec.md §4.6's mutex invariant.
var ErrIterationInProgress = errors.New("loop: iteration already in progress")

// ErrClientGone is returned by RunIteration when the agent's heartbeat has
// been missing for longer than ClientGoneThreshold.
var ErrClientGone = errors.New("loop: client heartbeat gone")
