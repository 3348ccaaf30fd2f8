package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/recipewise/server/internal/ports/outbound"
)

func response(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestFirstText(t *testing.T) {
	text, ok := firstText(response(genai.Text(`{"a":`), genai.Text(`1}`)))
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, text)

	_, ok = firstText(&genai.GenerateContentResponse{})
	assert.False(t, ok)

	_, ok = firstText(response(genai.Blob{MIMEType: "image/png", Data: []byte{1}}))
	assert.False(t, ok)
}

func TestFirstImage(t *testing.T) {
	img := firstImage(response(genai.Text("here you go"), genai.Blob{MIMEType: "image/jpeg", Data: []byte("jpeg")}))
	require.NotNil(t, img)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, []byte("jpeg"), img.Data)

	assert.Nil(t, firstImage(response(genai.Text("sorry, text only"))))
	assert.Nil(t, firstImage(response(genai.Blob{MIMEType: "image/png"})))
	assert.Nil(t, firstImage(nil))
}

func TestToModelError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"rest rate limit", &googleapi.Error{Code: http.StatusTooManyRequests}, http.StatusTooManyRequests},
		{"rest unavailable wrapped", fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusServiceUnavailable}), http.StatusServiceUnavailable},
		{"grpc exhausted", status.Error(codes.ResourceExhausted, "quota"), http.StatusTooManyRequests},
		{"grpc unavailable", status.Error(codes.Unavailable, "overloaded"), http.StatusServiceUnavailable},
		{"grpc permission", status.Error(codes.PermissionDenied, "bad key"), http.StatusForbidden},
		{"grpc invalid", status.Error(codes.InvalidArgument, "bad prompt"), http.StatusBadRequest},
		{"plain", errors.New("boom"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var modelErr *outbound.ModelError
			require.ErrorAs(t, toModelError(tt.err), &modelErr)
			assert.Equal(t, providerName, modelErr.Provider)
			assert.Equal(t, tt.wantStatus, modelErr.StatusCode)
		})
	}
}

func TestToModelErrorDeadline(t *testing.T) {
	err := toModelError(status.Error(codes.DeadlineExceeded, "too slow"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = toModelError(fmt.Errorf("post: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, toModelError(nil))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{TextModel: "gemini-2.5-flash-lite"}, nil)
	assert.Error(t, err)
}
