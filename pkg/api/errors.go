package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fenwick-labs/pokeloop/pkg/frame"
	"github.com/fenwick-labs/pokeloop/pkg/loop"
)

// mapError maps a component sentinel error to an HTTP status and writes
// the JSON error body, mirroring tarsy's pkg/api error-mapping idiom.
func mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, loop.ErrAgentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
	case errors.Is(err, loop.ErrIterationInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "iteration already in progress"})
	case errors.Is(err, loop.ErrClientGone):
		c.JSON(http.StatusConflict, gin.H{"error": "client heartbeat gone"})
	case errors.Is(err, frame.ErrAdapterLost):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "adapter lost"})
	case errors.Is(err, frame.ErrFrameUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "frame unavailable"})
	default:
		slog.Error("unexpected handler error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
