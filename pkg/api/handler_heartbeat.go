package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fenwick-labs/pokeloop/pkg/loop"
)

// postHeartbeatHandler handles POST /heartbeat?agentId=....
func (s *Server) postHeartbeatHandler(c *gin.Context) {
	coord, err := s.registry.Get(c.Query("agentId"))
	if err != nil {
		mapError(c, err)
		return
	}
	if err := coord.Heartbeat(c.Request.Context()); err != nil {
		mapError(c, err)
		return
	}
	c.JSON(http.StatusOK, heartbeatPostResponse{Success: true, Timestamp: s.now()})
}

// getHeartbeatHandler handles GET /heartbeat?agentId=....
func (s *Server) getHeartbeatHandler(c *gin.Context) {
	coord, err := s.registry.Get(c.Query("agentId"))
	if err != nil {
		mapError(c, err)
		return
	}
	alive, last, elapsed, err := coord.HeartbeatStatus(c.Request.Context())
	if err != nil {
		mapError(c, err)
		return
	}
	c.JSON(http.StatusOK, heartbeatGetResponse{
		Alive:   alive,
		Last:    last,
		Elapsed: elapsed,
		Timeout: loop.ClientGoneThreshold,
	})
}
