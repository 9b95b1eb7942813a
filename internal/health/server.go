package health

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chembot/pkg/config"
	"chembot/pkg/logger"
)

// Prober reports store reachability.
type Prober interface {
	Connected(ctx context.Context) bool
}

// Server exposes /health and /metrics beside the bot so deployments can
// probe the process without talking to Telegram.
type Server struct {
	engine *gin.Engine
	addr   string
	logger *zap.Logger
}

// NewServer wires the health endpoint.
func NewServer(cfg *config.Config, logr *zap.Logger, probe Prober, metrics *Metrics) *Server {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(logr))

	r.GET("/health", func(c *gin.Context) {
		if !probe.Connected(c.Request.Context()) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	return &Server{
		engine: r,
		addr:   fmt.Sprintf(":%d", cfg.HealthPort),
		logger: logr,
	}
}

// Run serves until the listener fails. Intended to run in its own
// goroutine beside the bot's update loop.
func (s *Server) Run() error {
	s.logger.Sugar().Infow("health server starting", "addr", s.addr)
	return s.engine.Run(s.addr)
}
