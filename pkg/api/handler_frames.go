package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const framePrefix = "frames/"

// listFramesHandler handles GET /frames?agentId=....
func (s *Server) listFramesHandler(c *gin.Context) {
	agentID := c.Query("agentId")
	objects, err := s.blobs.List(c.Request.Context(), framePrefix+agentID+"/")
	if err != nil {
		mapError(c, err)
		return
	}

	frames := make([]frameListEntry, 0, len(objects))
	for _, obj := range objects {
		frames = append(frames, frameListEntry{URL: obj.URL, UploadedAt: obj.UploadedAt, Size: obj.Size})
	}
	c.JSON(http.StatusOK, frameListResponse{Frames: frames, TotalCount: len(frames)})
}

// uploadFrameHandler handles POST /frames.
func (s *Server) uploadFrameHandler(c *gin.Context) {
	var req frameUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ts := s.now()
	path := framePrefix + req.AgentID + "/" + ts.Format("20060102T150405.000") + ".png"
	url, err := s.blobs.Put(c.Request.Context(), path, req.Data)
	if err != nil {
		mapError(c, err)
		return
	}

	c.JSON(http.StatusOK, frameUploadResponse{URL: url, Timestamp: ts, AgentID: req.AgentID})
}
