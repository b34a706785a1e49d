package api

import (
	"time"

	"github.com/fenwick-labs/pokeloop/pkg/agent"
)

// decideResponse is POST /api/agent/decide's success body.
type decideResponse struct {
	Success          bool            `json:"success"`
	Decision         agent.Decision  `json:"decision"`
	GameState        agent.GameState `json:"gameState"`
	Cost             float64         `json:"cost"`
	TotalCost        float64         `json:"totalCost"`
	TotalDecisions   int             `json:"totalDecisions"`
	TotalTokensIn    int             `json:"totalTokensIn"`
	TotalTokensOut   int             `json:"totalTokensOut"`
}

// agentStateResponse is GET /api/agent/decide's body when fetching the
// current record without running an iteration.
type agentStateResponse struct {
	Agent     agent.Agent     `json:"agent"`
	GameState agent.GameState `json:"gameState"`
}

type heartbeatPostResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

type heartbeatGetResponse struct {
	Alive   bool          `json:"alive"`
	Last    time.Time     `json:"lastBeat"`
	Elapsed time.Duration `json:"elapsed"`
	Timeout time.Duration `json:"timeout"`
}

type saveStateResponse struct {
	Success        bool   `json:"success"`
	URL            string `json:"url"`
	Filename       string `json:"filename"`
	DecisionNumber int    `json:"decisionNumber"`
}

type frameUploadResponse struct {
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	AgentID   string    `json:"agentId"`
}

type frameListResponse struct {
	Frames     []frameListEntry `json:"frames"`
	TotalCount int              `json:"totalCount"`
}

type frameListEntry struct {
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
	Size       int64     `json:"size"`
}

type memstashResponse struct {
	Content string `json:"content"`
}

type parseStateResponse struct {
	Success   bool   `json:"success"`
	Parsed    any    `json:"parsed,omitempty"`
	Formatted string `json:"formatted,omitempty"`
}
