package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/recipewise/server/internal/ports/outbound"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{APIKey: "sk-test", Endpoint: server.URL + "/v1/chat/completions", Temperature: 0.7}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return client
}

func TestGenerateText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.InDelta(t, 0.7, req.Temperature, 0.0001)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "suggest a soup", req.Messages[0].Content)

		_ = json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: `{"title":"Minestrone"}`}}},
			Usage:   Usage{PromptTokens: 4, CompletionTokens: 6, TotalTokens: 10},
		})
	})

	text, err := client.GenerateText(context.Background(), "suggest a soup")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Minestrone"}`, text)
}

func TestGenerateTextRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	})

	_, err := client.GenerateText(context.Background(), "hi")
	var modelErr *outbound.ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, http.StatusTooManyRequests, modelErr.StatusCode)
}

func TestGenerateTextNoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.GenerateText(context.Background(), "hi")
	assert.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
