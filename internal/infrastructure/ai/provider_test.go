package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/recipewise/server/internal/infrastructure/config"
)

type pingingModel struct{ err error }

func (m pingingModel) GenerateText(context.Context, string) (string, error) { return "", nil }
func (m pingingModel) Name() string                                         { return "fake" }
func (m pingingModel) Ping(context.Context) error                           { return m.err }

func TestNewProvider(t *testing.T) {
	logger := zaptest.NewLogger(t)

	p, err := NewProvider(context.Background(), config.AIConfig{Provider: "ollama", OllamaHost: "http://ollama:11434"}, logger)
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name)
	assert.Nil(t, p.Image)
	assert.NoError(t, p.Close())

	_, err = NewProvider(context.Background(), config.AIConfig{Provider: "openai"}, logger)
	assert.Error(t, err, "openai needs a key")

	_, err = NewProvider(context.Background(), config.AIConfig{Provider: "gemini"}, logger)
	assert.Error(t, err, "gemini needs a key")

	_, err = NewProvider(context.Background(), config.AIConfig{Provider: "bard"}, logger)
	assert.Error(t, err)
}

func TestHealthChecker(t *testing.T) {
	logger := zaptest.NewLogger(t)

	healthy := NewHealthChecker(&Provider{Name: "fake", Text: pingingModel{}}, logger)
	assert.True(t, healthy.IsHealthy(context.Background()))

	down := NewHealthChecker(&Provider{Name: "fake", Text: pingingModel{err: errors.New("connection refused")}}, logger)
	status := down.CheckHealth(context.Background())
	assert.Equal(t, "critical", status.Overall)
	assert.Contains(t, status.Details, "connection refused")
	assert.False(t, status.Images)
}
