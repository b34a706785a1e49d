package api

// decideRequest is POST /api/agent/decide's body. Only AgentID and
// ModelID drive Coordinator creation/lookup; the remaining fields mirror
// spec.md §6's wire format for API compatibility with a client that
// still sends its own captured context, but the actual iteration is run
// by the agent's own Coordinator against its configured frame.Source
// (spec.md §4.1 treats the Frame Source Adapter as the one collaborator
// responsible for capture).
type decideRequest struct {
	AgentID                   string             `json:"agentId" binding:"required"`
	ModelID                   string             `json:"modelId" binding:"required"`
	Frame                     string             `json:"frame"`
	PreviousFrames            []string           `json:"previousFrames"`
	CommandHistoryWithChanges []string           `json:"commandHistoryWithChanges"`
	PreviousConfidenceScores  map[string]float64 `json:"previousConfidenceScores"`
	PreviousDialogHistory     []string           `json:"previousDialogHistory"`
	AvoidStartSelect          bool               `json:"avoidStartSelect"`
	AvoidWait                 bool               `json:"avoidWait"`
	AvoidB                    bool               `json:"avoidB"`
	ButtonsToAvoid            []string           `json:"buttonsToAvoid"`
	BannedButtons             []string           `json:"bannedButtons"`
}

type saveStateRequest struct {
	Data []byte `json:"data" binding:"required"`
}

type frameUploadRequest struct {
	AgentID string `json:"agentId" binding:"required"`
	Data    []byte `json:"data" binding:"required"`
}
