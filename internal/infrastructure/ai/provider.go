// Package ai wires the configured language model provider
package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/recipewise/server/internal/infrastructure/ai/gemini"
	"github.com/recipewise/server/internal/infrastructure/ai/ollama"
	"github.com/recipewise/server/internal/infrastructure/ai/openai"
	"github.com/recipewise/server/internal/infrastructure/config"
	"github.com/recipewise/server/internal/ports/outbound"
)

// Pinger is implemented by provider clients that can report readiness
type Pinger interface {
	Ping(ctx context.Context) error
}

// Provider bundles the models of the configured provider.
// Image is nil when the provider cannot produce images or generation is disabled.
type Provider struct {
	Name  string
	Text  outbound.TextModel
	Image outbound.ImageModel
	close func() error
}

// Close releases provider resources
func (p *Provider) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// NewProvider creates the provider selected by cfg.Provider
func NewProvider(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Provider, error) {
	switch cfg.Provider {
	case "gemini":
		imageModel := cfg.ImageModel
		if !cfg.EnableImageGeneration {
			imageModel = ""
		}
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:          cfg.GeminiKey,
			TextModel:       cfg.TextModel,
			ImageModel:      imageModel,
			Temperature:     float32(cfg.Temperature),
			MaxOutputTokens: int32(cfg.MaxTokens),
		}, logger)
		if err != nil {
			return nil, err
		}
		p := &Provider{Name: client.Name(), Text: client, close: client.Close}
		if imageModel != "" {
			p.Image = client
		}
		return p, nil

	case "ollama":
		client := ollama.NewClient(ollama.Config{
			BaseURL:     cfg.OllamaHost,
			Model:       cfg.OllamaModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout(),
		}, logger)
		return &Provider{Name: client.Name(), Text: client}, nil

	case "openai":
		client, err := openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIKey,
			Model:       cfg.OpenAIModel,
			Endpoint:    cfg.OpenAIEndpoint,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout(),
		}, logger)
		if err != nil {
			return nil, err
		}
		return &Provider{Name: client.Name(), Text: client}, nil

	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}
