package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recipewise/server/pkg/healthcheck"
)

// OpsServer serves /metrics and health endpoints on a separate port
type OpsServer struct {
	engine *gin.Engine
	server *http.Server
	logger *zap.Logger
}

// NewOpsServer wires the operations routes
func NewOpsServer(port int, metrics *MetricsCollector, health *healthcheck.HealthCheck, logger *zap.Logger) *OpsServer {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), metrics.HTTPMiddleware())

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	engine.GET("/healthz", health.Handler())
	engine.GET("/livez", health.LivenessHandler())
	engine.GET("/readyz", health.ReadinessHandler())

	return &OpsServer{
		engine: engine,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.Named("ops-server"),
	}
}

// Handler exposes the router for tests
func (s *OpsServer) Handler() http.Handler {
	return s.engine
}

// Start listens in the background
func (s *OpsServer) Start() {
	go func() {
		s.logger.Info("Operations server listening", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Operations server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops the listener
func (s *OpsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
