package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fenwick-labs/pokeloop/pkg/kv"
	"github.com/fenwick-labs/pokeloop/pkg/loop"
)

// getStateHandler handles GET /state?agentId=.... Reads the coordinator's
// live snapshot when the agent is currently registered, falling back to
// the last published KV record otherwise (e.g. after a process restart).
func (s *Server) getStateHandler(c *gin.Context) {
	agentID := c.Query("agentId")
	if coord, err := s.registry.Get(agentID); err == nil {
		c.JSON(http.StatusOK, coord.Snapshot())
		return
	}

	snapshot, err := loop.GetState(c.Request.Context(), s.store, agentID)
	if err != nil {
		mapError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// postStateHandler handles POST /state?agentId=..., publishing a caller
// supplied snapshot directly to the KV store with the full-state TTL.
func (s *Server) postStateHandler(c *gin.Context) {
	agentID := c.Query("agentId")
	var snapshot loop.PersistedState
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := loop.PublishState(c.Request.Context(), s.store, agentID, snapshot); err != nil {
		mapError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// deleteStateHandler handles DELETE /state?agentId=....
func (s *Server) deleteStateHandler(c *gin.Context) {
	agentID := c.Query("agentId")
	if err := s.store.Del(c.Request.Context(), kv.AgentKey(agentID, "state")); err != nil {
		mapError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
