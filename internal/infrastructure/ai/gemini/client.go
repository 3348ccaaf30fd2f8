// Package gemini provides Google Gemini integration for text and image generation
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/recipewise/server/internal/ports/outbound"
)

const providerName = "gemini"

// ErrNoCandidates is returned when the model answers without any content
var ErrNoCandidates = errors.New("no content generated")

// Config holds Gemini client settings
type Config struct {
	APIKey          string
	TextModel       string
	ImageModel      string
	Temperature     float32
	MaxOutputTokens int32
}

// Client implements outbound.TextModel and outbound.ImageModel on the Gemini API
type Client struct {
	client *genai.Client
	text   *genai.GenerativeModel
	image  *genai.GenerativeModel
	logger *zap.Logger
}

// NewClient creates a new Gemini client. Extra options are passed to genai.NewClient.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	text := client.GenerativeModel(cfg.TextModel)
	if cfg.Temperature > 0 {
		text.SetTemperature(cfg.Temperature)
	}
	if cfg.MaxOutputTokens > 0 {
		text.SetMaxOutputTokens(cfg.MaxOutputTokens)
	}

	var image *genai.GenerativeModel
	if cfg.ImageModel != "" {
		image = client.GenerativeModel(cfg.ImageModel)
	}

	logger.Info("Gemini client initialized",
		zap.String("text_model", cfg.TextModel),
		zap.String("image_model", cfg.ImageModel),
	)

	return &Client{
		client: client,
		text:   text,
		image:  image,
		logger: logger.Named("gemini-client"),
	}, nil
}

// Name returns the provider name
func (c *Client) Name() string {
	return providerName
}

// GenerateText sends a prompt to the text model and returns the concatenated text parts
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.text.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", toModelError(err)
	}

	text, ok := firstText(resp)
	if !ok {
		return "", &outbound.ModelError{Provider: providerName, Err: ErrNoCandidates}
	}
	return text, nil
}

// GenerateImage asks the image model for a picture and returns the first inline image part.
// A reply without an image part yields (nil, nil).
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*outbound.InlineImage, error) {
	if c.image == nil {
		return nil, nil
	}

	resp, err := c.image.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, toModelError(err)
	}

	img := firstImage(resp)
	if img == nil {
		c.logger.Debug("Image model returned no inline image")
	}
	return img, nil
}

// Ping reports whether the client is usable
func (c *Client) Ping(context.Context) error {
	if c.client == nil {
		return fmt.Errorf("gemini client not initialized")
	}
	return nil
}

// Close closes the underlying Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

func firstText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

func firstImage(resp *genai.GenerateContentResponse) *outbound.InlineImage {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				return &outbound.InlineImage{MIMEType: blob.MIMEType, Data: blob.Data}
			}
		}
	}
	return nil
}

// toModelError maps REST and gRPC failures onto HTTP-equivalent status codes
func toModelError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &outbound.ModelError{Provider: providerName, Err: err}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &outbound.ModelError{Provider: providerName, StatusCode: apiErr.Code, Err: err}
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		if st.Code() == codes.DeadlineExceeded {
			return &outbound.ModelError{Provider: providerName, Err: fmt.Errorf("%w: %s", context.DeadlineExceeded, st.Message())}
		}
		return &outbound.ModelError{Provider: providerName, StatusCode: httpStatus(st.Code()), Err: err}
	}

	return &outbound.ModelError{Provider: providerName, Err: err}
}

func httpStatus(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
