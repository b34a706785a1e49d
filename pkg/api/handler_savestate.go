package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// saveStateHandler handles POST /save-state?agentId=.... Triggers the
// same checkpoint upload path the Coordinator runs automatically every
// CheckpointEvery decisions, on demand.
func (s *Server) saveStateHandler(c *gin.Context) {
	agentID := c.Query("agentId")
	coord, err := s.registry.Get(agentID)
	if err != nil {
		mapError(c, err)
		return
	}

	url, filename, decisionNumber, err := coord.Checkpoint(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no state available to save"})
		return
	}

	c.JSON(http.StatusOK, saveStateResponse{
		Success:        true,
		URL:            url,
		Filename:       filename,
		DecisionNumber: decisionNumber,
	})
}
