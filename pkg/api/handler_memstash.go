package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fenwick-labs/pokeloop/pkg/memory"
)

// getMemstashHandler handles GET /memstash?agentId=....
func (s *Server) getMemstashHandler(c *gin.Context) {
	agentID := c.Query("agentId")
	notes, err := memory.GetNotes(c.Request.Context(), s.store, agentID)
	if err != nil {
		mapError(c, err)
		return
	}
	c.JSON(http.StatusOK, memstashResponse{Content: memory.FormatNotesForPrompt(notes, memory.NotesPromptLimit)})
}

// deleteMemstashHandler handles DELETE /memstash?agentId=..., clearing
// Notes and the DecisionLog together.
func (s *Server) deleteMemstashHandler(c *gin.Context) {
	agentID := c.Query("agentId")
	if err := memory.Reset(c.Request.Context(), s.store, agentID); err != nil {
		mapError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
