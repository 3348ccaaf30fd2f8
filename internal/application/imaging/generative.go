package imaging

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/application/ai"
	"github.com/recipewise/server/internal/ports/outbound"
)

// GenerativeTier asks the image-capable model for a photo of the dish.
// Without object storage the bytes are returned inline as a data URI.
type GenerativeTier struct {
	images  ai.ImageGenerator
	storage outbound.ObjectStorage
	logger  *zap.Logger
}

// NewGenerativeTier creates the generative tier. storage may be nil.
func NewGenerativeTier(images ai.ImageGenerator, storage outbound.ObjectStorage, logger *zap.Logger) *GenerativeTier {
	return &GenerativeTier{
		images:  images,
		storage: storage,
		logger:  logger.Named("generative-image"),
	}
}

func (t *GenerativeTier) Name() string { return "generative" }

func (t *GenerativeTier) Resolve(ctx context.Context, title string) (string, error) {
	img, err := t.images.GenerateImage(ctx, ai.BuildImagePrompt(title))
	if err != nil {
		return "", err
	}
	if img == nil || len(img.Data) == 0 {
		return "", nil
	}

	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}

	if t.storage != nil {
		key := objectKey(title, mimeType)
		url, err := t.storage.Upload(ctx, key, mimeType, img.Data)
		if err == nil {
			return url, nil
		}
		t.logger.Warn("Image upload failed, returning inline data",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	return DataURI(mimeType, img.Data), nil
}

// DataURI encodes data as a base64 data URI
func DataURI(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func objectKey(title, mimeType string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(slug) > 60 {
		slug = strings.TrimRight(slug[:60], "-")
	}
	if slug == "" {
		slug = "recipe"
	}
	return fmt.Sprintf("recipes/%s-%s%s", slug, uuid.NewString()[:8], extension(mimeType))
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
