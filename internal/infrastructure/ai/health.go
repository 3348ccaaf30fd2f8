package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// HealthChecker reports the readiness of the configured provider
type HealthChecker struct {
	provider *Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewHealthChecker creates a new provider health checker
func NewHealthChecker(provider *Provider, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		provider: provider,
		timeout:  5 * time.Second,
		logger:   logger.Named("ai-health"),
	}
}

// AIHealthStatus represents the health status of the model provider
type AIHealthStatus struct {
	Overall   string    `json:"overall"`
	Provider  string    `json:"provider"`
	Images    bool      `json:"images"`
	Details   string    `json:"details,omitempty"`
	LastCheck time.Time `json:"last_check"`
}

// CheckHealth pings the provider when it supports it
func (h *HealthChecker) CheckHealth(ctx context.Context) *AIHealthStatus {
	status := &AIHealthStatus{
		Overall:   "healthy",
		Provider:  h.provider.Name,
		Images:    h.provider.Image != nil,
		LastCheck: time.Now(),
	}

	pinger, ok := h.provider.Text.(Pinger)
	if !ok {
		return status
	}

	healthCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := pinger.Ping(healthCtx); err != nil {
		status.Overall = "critical"
		status.Details = fmt.Sprintf("Unhealthy: %v", err)
		h.logger.Warn("Model provider health check failed",
			zap.String("provider", h.provider.Name),
			zap.Error(err))
	}
	return status
}

// IsHealthy returns true when the provider answered its health check
func (h *HealthChecker) IsHealthy(ctx context.Context) bool {
	return h.CheckHealth(ctx).Overall == "healthy"
}
