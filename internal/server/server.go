// Package server exposes the analysis operations as a small JSON HTTP
// API, one endpoint per audit tool.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/ppiankov/treelint/internal/analyzer"
	"github.com/ppiankov/treelint/internal/logger"
	"github.com/ppiankov/treelint/internal/model"
	"github.com/ppiankov/treelint/internal/worker"
)

// Server wraps a gin engine around one analyzer.
type Server struct {
	engine   *gin.Engine
	analyzer *analyzer.Analyzer
	log      *logger.Logger
	addr     string
}

// New builds the HTTP server with request ids, request logging and
// per-client rate limiting.
func New(a *analyzer.Analyzer, log *logger.Logger, cfg model.ServerConfig) *Server {
	switch cfg.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:   gin.New(),
		analyzer: a,
		log:      log,
		addr:     cfg.Addr,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestID())
	s.engine.Use(requestLogger(log))
	if cfg.RequestsPerSecond > 0 {
		s.engine.Use(rateLimit(worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst)))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	v1 := s.engine.Group("/v1")
	{
		v1.GET("/health", s.handleHealth)
		v1.GET("/duplicates", s.handleDuplicates)
		v1.GET("/clusters", s.handleClusters)
		v1.GET("/persons/:id", s.handleProfile)
		v1.GET("/persons/:id/relationships", s.handleRelationships)
		v1.GET("/persons/:id/timeline", s.handlePersonTimeline)
		v1.GET("/persons/:id/coverage", s.handleCoverage)
		v1.GET("/timeline", s.handleTimeline)
		v1.GET("/research", s.handleResearch)
		v1.GET("/compare", s.handleCompare)
		v1.POST("/audit", s.handleAudit)
		v1.GET("/tree/:id/validate", s.handleValidateTree)
	}
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	return s.engine.Run(s.addr)
}

// Engine exposes the router, for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
