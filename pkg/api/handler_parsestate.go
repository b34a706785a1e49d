package api

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/fenwick-labs/pokeloop/pkg/parsestate"
)

// parseStateHandler handles GET /parse-state?agentId=..., attempting to
// parse the most recently uploaded checkpoint into structured data.
// Parsing is best-effort per spec.md §9: a failure is reported as such,
// never papered over with fabricated fields.
func (s *Server) parseStateHandler(c *gin.Context) {
	agentID := c.Query("agentId")
	objects, err := s.blobs.List(c.Request.Context(), "save-states/"+agentID+"/")
	if err != nil {
		mapError(c, err)
		return
	}
	if len(objects) == 0 {
		c.JSON(http.StatusOK, parseStateResponse{Success: false})
		return
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].UploadedAt.After(objects[j].UploadedAt)
	})

	data, err := s.blobs.Get(c.Request.Context(), objects[0].Path)
	if err != nil {
		mapError(c, err)
		return
	}

	result := parsestate.Parse(data)
	c.JSON(http.StatusOK, parseStateResponse{
		Success:   result.OK,
		Parsed:    result.Parsed,
		Formatted: result.Formatted,
	})
}
