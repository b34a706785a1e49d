package decision

import (
	"github.com/fenwick-labs/pokeloop/pkg/agent"
	"github.com/fenwick-labs/pokeloop/pkg/frame"
)

// deriveExecutionPlan picks the argmax button of step 1 as the primary
// button and includes steps 2..N only while their argmax confidence
// stays at or above SequenceContinueThreshold, stopping at the first
// step that falls below. The plan always has at least one element.
func deriveExecutionPlan(sequence []agent.SequenceStep) (button frame.Button, confidence float64, plan []frame.Button) {
	if len(sequence) == 0 {
		return frame.ButtonWait, 0, []frame.Button{frame.ButtonWait}
	}

	button, confidence = sequence[0].Argmax()
	plan = []frame.Button{button}

	for _, step := range sequence[1:] {
		stepButton, stepConfidence := step.Argmax()
		if stepConfidence < SequenceContinueThreshold {
			break
		}
		plan = append(plan, stepButton)
	}
	return button, confidence, plan
}
