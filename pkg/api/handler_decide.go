package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// decideHandler handles POST /api/agent/decide.
func (s *Server) decideHandler(c *gin.Context) {
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	coord := s.agentOrCreate(req.AgentID, req.ModelID)

	dec, err := coord.RunIteration(ctx)
	if err != nil {
		mapError(c, err)
		return
	}

	snap := coord.Snapshot()
	c.JSON(http.StatusOK, decideResponse{
		Success:        true,
		Decision:       dec,
		GameState:      snap.GameState,
		Cost:           dec.Cost,
		TotalCost:      snap.Agent.TotalCost,
		TotalDecisions: snap.Agent.TotalDecisions,
		TotalTokensIn:  snap.Agent.TotalTokensIn,
		TotalTokensOut: snap.Agent.TotalTokensOut,
	})
}

// getAgentHandler handles GET /api/agent/decide?agentId=....
func (s *Server) getAgentHandler(c *gin.Context) {
	agentID := c.Query("agentId")
	coord, err := s.registry.Get(agentID)
	if err != nil {
		mapError(c, err)
		return
	}

	snap := coord.Snapshot()
	c.JSON(http.StatusOK, agentStateResponse{Agent: snap.Agent, GameState: snap.GameState})
}
