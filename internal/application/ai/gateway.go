// Package ai provides the application layer for language model operations:
// the gateway every other component calls through, the query interpreter,
// and the cooking assistant.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/ports/outbound"
	"github.com/recipewise/server/pkg/errors"
)

// Invoker is the structured-output surface of the gateway
type Invoker interface {
	InvokeObject(ctx context.Context, prompt string, dest any) error
	InvokeArray(ctx context.Context, prompt string, dest any) error
}

// ImageGenerator produces inline images from prompts
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*outbound.InlineImage, error)
}

// GatewayConfig configures retries and per-attempt deadlines
type GatewayConfig struct {
	Policy  RetryPolicy
	Timeout time.Duration
}

// Gateway wraps the configured models with retry, per-call timeouts, JSON
// extraction and metrics. It keeps no state between invocations.
type Gateway struct {
	text     outbound.TextModel
	image    outbound.ImageModel
	policy   RetryPolicy
	timeout  time.Duration
	classify Classifier
	metrics  outbound.PipelineMetrics
	logger   *zap.Logger
}

// NewGateway creates a gateway. image may be nil when no image-capable model is configured.
func NewGateway(text outbound.TextModel, image outbound.ImageModel, cfg GatewayConfig, metrics outbound.PipelineMetrics, logger *zap.Logger) *Gateway {
	if cfg.Policy.MaxAttempts < 1 {
		cfg.Policy = DefaultRetryPolicy()
	}
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}

	return &Gateway{
		text:     text,
		image:    image,
		policy:   cfg.Policy,
		timeout:  cfg.Timeout,
		classify: IsTransient,
		metrics:  metrics,
		logger:   logger.Named("llm-gateway"),
	}
}

// WithClassifier replaces the retry classifier
func (g *Gateway) WithClassifier(c Classifier) *Gateway {
	g.classify = c
	return g
}

// Complete returns the raw model text for prompt.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	return g.complete(ctx, "text", prompt)
}

// InvokeObject calls the text model and decodes the first JSON object in its reply into dest.
func (g *Gateway) InvokeObject(ctx context.Context, prompt string, dest any) error {
	return g.invokeJSON(ctx, "object", prompt, '{', dest)
}

// InvokeArray calls the text model and decodes the first JSON array in its reply into dest.
func (g *Gateway) InvokeArray(ctx context.Context, prompt string, dest any) error {
	return g.invokeJSON(ctx, "array", prompt, '[', dest)
}

func (g *Gateway) invokeJSON(ctx context.Context, kind, prompt string, open byte, dest any) error {
	raw, err := g.complete(ctx, kind, prompt)
	if err != nil {
		return err
	}

	candidates := JSONCandidates(raw, open)
	if len(candidates) == 0 {
		g.logger.Warn("No JSON found in model response",
			zap.String("kind", kind),
			zap.Int("response_length", len(raw)),
		)
		return errors.NewMalformedResponseError(kind, fmt.Errorf("no JSON %s in response", kind))
	}

	var decodeErr error
	for _, candidate := range candidates {
		if decodeErr = json.Unmarshal([]byte(candidate), dest); decodeErr == nil {
			return nil
		}
	}

	g.logger.Warn("Failed to decode model response",
		zap.String("kind", kind),
		zap.Error(decodeErr),
	)
	return errors.NewMalformedResponseError(kind, decodeErr)
}

func (g *Gateway) complete(ctx context.Context, kind, prompt string) (string, error) {
	ctx, span := otel.Tracer("recipewise/ai").Start(ctx, "llm.generate_text")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.kind", kind),
		attribute.String("llm.provider", g.text.Name()),
	)

	start := time.Now()
	text, attempts, err := WithRetry(ctx, g.policy, func(ctx context.Context) (string, error) {
		callCtx, cancel := g.withTimeout(ctx)
		defer cancel()
		return g.text.GenerateText(callCtx, prompt)
	}, g.classify)
	duration := time.Since(start)

	span.SetAttributes(attribute.Int("llm.attempts", attempts))
	if err != nil {
		g.metrics.ModelCall(kind, "error", attempts, duration)
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		g.logger.Error("Model call failed",
			zap.String("kind", kind),
			zap.Int("attempts", attempts),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return "", errors.NewGatewayError("generate "+kind, attempts, err)
	}

	g.metrics.ModelCall(kind, "success", attempts, duration)
	if attempts > 1 {
		g.logger.Info("Model call succeeded after retry",
			zap.String("kind", kind),
			zap.Int("attempts", attempts),
		)
	}
	return text, nil
}

// GenerateImage calls the image-capable model. It returns nil when the model
// produced no image part or no image model is configured.
func (g *Gateway) GenerateImage(ctx context.Context, prompt string) (*outbound.InlineImage, error) {
	if g.image == nil {
		return nil, nil
	}

	ctx, span := otel.Tracer("recipewise/ai").Start(ctx, "llm.generate_image")
	defer span.End()

	start := time.Now()
	img, attempts, err := WithRetry(ctx, g.policy, func(ctx context.Context) (*outbound.InlineImage, error) {
		callCtx, cancel := g.withTimeout(ctx)
		defer cancel()
		return g.image.GenerateImage(callCtx, prompt)
	}, g.classify)
	duration := time.Since(start)

	if err != nil {
		g.metrics.ModelCall("image", "error", attempts, duration)
		span.RecordError(err)
		span.SetStatus(codes.Error, "image generation failed")
		return nil, errors.NewGatewayError("generate image", attempts, err)
	}

	status := "success"
	if img == nil || len(img.Data) == 0 {
		status = "empty"
		img = nil
	}
	g.metrics.ModelCall("image", status, attempts, duration)
	return img, nil
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}
