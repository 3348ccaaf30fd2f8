// Package imaging resolves a picture for a recipe title through an ordered
// chain of image sources.
package imaging

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/recipewise/server/internal/ports/outbound"
)

// Tier outcomes reported to metrics
const (
	OutcomeHit   = "hit"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
	OutcomePanic = "panic"
)

// Resolver walks its tiers in order and returns the first non-empty reference.
// A tier that errors or panics is logged and skipped.
type Resolver struct {
	tiers   []outbound.ImageTier
	metrics outbound.PipelineMetrics
	logger  *zap.Logger
}

// NewResolver creates a resolver over tiers, tried in the given order
func NewResolver(tiers []outbound.ImageTier, metrics outbound.PipelineMetrics, logger *zap.Logger) *Resolver {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Resolver{
		tiers:   tiers,
		metrics: metrics,
		logger:  logger.Named("image-resolver"),
	}
}

// Resolve returns an image reference for title, or false when every tier came up empty.
func (r *Resolver) Resolve(ctx context.Context, title string) (string, bool) {
	for _, tier := range r.tiers {
		if ctx.Err() != nil {
			return "", false
		}

		start := time.Now()
		ref, err := r.try(ctx, tier, title)
		switch {
		case err != nil:
			outcome := OutcomeError
			if _, ok := err.(panicError); ok {
				outcome = OutcomePanic
			}
			r.metrics.ImageTierOutcome(tier.Name(), outcome)
			r.logger.Warn("Image tier failed",
				zap.String("tier", tier.Name()),
				zap.String("title", title),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
		case ref == "":
			r.metrics.ImageTierOutcome(tier.Name(), OutcomeEmpty)
			r.logger.Debug("Image tier returned nothing",
				zap.String("tier", tier.Name()),
				zap.String("title", title),
			)
		default:
			r.metrics.ImageTierOutcome(tier.Name(), OutcomeHit)
			r.logger.Debug("Image resolved",
				zap.String("tier", tier.Name()),
				zap.String("title", title),
				zap.Duration("duration", time.Since(start)),
			)
			return ref, true
		}
	}

	return "", false
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

func (r *Resolver) try(ctx context.Context, tier outbound.ImageTier, title string) (ref string, err error) {
	defer func() {
		if v := recover(); v != nil {
			ref, err = "", panicError{value: v}
		}
	}()
	return tier.Resolve(ctx, title)
}
