// Package api provides the HTTP surface described in spec.md §6: one
// route per external interface, backed by the per-agent Coordinators the
// loop registry owns.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fenwick-labs/pokeloop/pkg/blob"
	"github.com/fenwick-labs/pokeloop/pkg/config"
	"github.com/fenwick-labs/pokeloop/pkg/decision"
	"github.com/fenwick-labs/pokeloop/pkg/kv"
	"github.com/fenwick-labs/pokeloop/pkg/loop"
)

// Server is the HTTP API server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server

	registry *loop.Registry
	store    kv.Store
	blobs    blob.Store
	now      decision.Clock
}

// NewServer wires the route table against registry/store/blobs.
func NewServer(cfg *config.Config, registry *loop.Registry, store kv.Store, blobs blob.Store, now decision.Clock) *Server {
	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), securityHeaders())

	s := &Server{engine: engine, registry: registry, store: store, blobs: blobs, now: now}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.healthHandler)

	s.engine.POST("/api/agent/decide", s.decideHandler)
	s.engine.GET("/api/agent/decide", s.getAgentHandler)

	s.engine.POST("/heartbeat", s.postHeartbeatHandler)
	s.engine.GET("/heartbeat", s.getHeartbeatHandler)

	s.engine.GET("/state", s.getStateHandler)
	s.engine.POST("/state", s.postStateHandler)
	s.engine.DELETE("/state", s.deleteStateHandler)

	s.engine.POST("/save-state", s.saveStateHandler)

	s.engine.GET("/frames", s.listFramesHandler)
	s.engine.POST("/frames", s.uploadFrameHandler)

	s.engine.GET("/memstash", s.getMemstashHandler)
	s.engine.DELETE("/memstash", s.deleteMemstashHandler)

	s.engine.GET("/parse-state", s.parseStateHandler)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "agents": len(s.registry.List())})
}

// Start starts the HTTP server on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// agentOrCreate resolves agentID's Coordinator, creating one against
// modelID if it doesn't already exist. Created Coordinators are not
// started: the caller's own RunIteration call drives them, so the
// request's context never ends up controlling a background loop's
// lifetime.
func (s *Server) agentOrCreate(agentID, modelID string) *loop.Coordinator {
	if coord, err := s.registry.Get(agentID); err == nil {
		return coord
	}
	return s.registry.Create(agentID, modelID)
}

const requestTimeout = 35 * time.Second
