package outbound

import (
	"context"
	"fmt"
)

// TextModel generates free text from a prompt
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Name() string
}

// InlineImage is raw image data returned by an image-capable model
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// ImageModel generates an image from a prompt. A nil image with a nil error
// means the model answered without an image part.
type ImageModel interface {
	GenerateImage(ctx context.Context, prompt string) (*InlineImage, error)
}

// ModelError is the provider-neutral failure reported by model adapters.
// StatusCode carries the HTTP-equivalent status when the provider reported one.
type ModelError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ModelError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// ImageTier is one source in the image resolution chain.
// Resolve returns ("", nil) when the tier has nothing to offer.
type ImageTier interface {
	Name() string
	Resolve(ctx context.Context, title string) (string, error)
}

// ObjectStorage persists binary objects and returns their public URL
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}
