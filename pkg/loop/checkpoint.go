package loop

import (
	"fmt"
	"regexp"
	"time"
)

var unsafeModelChars = regexp.MustCompile(`[^A-Za-z0-9-]`)

// modelSafeName replaces every character outside [A-Za-z0-9-] with '-', per
// spec.md §6's checkpoint filename format (a "vendor/model-name" id is
// never filesystem-safe as-is).
func modelSafeName(modelID string) string {
	return unsafeModelChars.ReplaceAllString(modelID, "-")
}

// checkpointPath builds the blob path save-states/{agentId}/{YYYY-MM-DD}_{HH-MM}_D{decisionNumber}_{modelSafeName}.state.
func checkpointPath(agentID, modelID string, decisionNumber int, at time.Time) string {
	return fmt.Sprintf("save-states/%s/%s_D%d_%s.state",
		agentID, at.Format("2006-01-02_15-04"), decisionNumber, modelSafeName(modelID))
}
