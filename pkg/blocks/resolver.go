package blocks

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mailpilot/mailpilot/pkg/logger"
)

// UploadedImage is the result of persisting one embedded image.
type UploadedImage struct {
	Key string `json:"key"`
	URL string `json:"imageUrl"`
}

// ImageUploader persists the bytes of a locally-embedded image and returns a
// hosted URL plus an opaque asset key. Implementations must tolerate being
// called concurrently.
type ImageUploader interface {
	UploadImage(ctx context.Context, dataURL, filename string) (*UploadedImage, error)
}

// AssetResolver promotes data-URL images in a block tree to hosted URLs.
type AssetResolver struct {
	uploader ImageUploader
	logger   logger.Logger
}

// NewAssetResolver creates a resolver backed by the given uploader.
func NewAssetResolver(uploader ImageUploader, log logger.Logger) *AssetResolver {
	return &AssetResolver{uploader: uploader, logger: log}
}

// Resolve walks the tree and uploads every image block whose content is still
// a data URL, replacing the content with the hosted URL and recording the
// asset key. Uploads run concurrently; each one only touches its own block in
// the copy it owns, so completion order never affects the result.
//
// A failed upload keeps that block's original embedded content and is only
// logged: one bad image must not abort the whole save. The returned tree is
// a fully new copy with no aliasing into the input; the second return value
// counts images that stayed unresolved.
func (r *AssetResolver) Resolve(ctx context.Context, tree []Block, templateID string) ([]Block, int) {
	resolved := CloneTree(tree)

	var targets []*Block
	collectEmbeddedImages(resolved, &targets)
	if len(targets) == 0 {
		return resolved, 0
	}

	var mu sync.Mutex
	failed := 0

	g, ctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			filename := fmt.Sprintf("%s-image-%d%s", templateID, i, extensionForDataURL(target.Content))
			asset, err := r.uploader.UploadImage(ctx, target.Content, filename)
			if err != nil {
				r.logger.WithField("template_id", templateID).
					WithField("block_id", target.ID).
					Warn(fmt.Sprintf("Image upload failed, keeping embedded content: %v", err))
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			target.Content = asset.URL
			target.ImageKey = asset.Key
			return nil
		})
	}
	// Goroutines never return errors; Wait only orders completion.
	_ = g.Wait()

	return resolved, failed
}

func collectEmbeddedImages(tree []Block, out *[]*Block) {
	for i := range tree {
		if tree[i].Type == BlockImage && IsDataURL(tree[i].Content) {
			*out = append(*out, &tree[i])
		}
		collectEmbeddedImages(tree[i].Children, out)
	}
}

// IsDataURL reports whether the image source is locally embedded rather than
// already hosted.
func IsDataURL(src string) bool {
	return strings.HasPrefix(src, "data:")
}

// DecodeDataURL splits a data URL into its media type and decoded payload.
func DecodeDataURL(src string) (mediaType string, payload []byte, err error) {
	if !IsDataURL(src) {
		return "", nil, fmt.Errorf("not a data URL")
	}
	rest := strings.TrimPrefix(src, "data:")
	meta, data, found := strings.Cut(rest, ",")
	if !found {
		return "", nil, fmt.Errorf("malformed data URL: missing payload")
	}

	mediaType = meta
	base64Encoded := false
	if strings.HasSuffix(meta, ";base64") {
		mediaType = strings.TrimSuffix(meta, ";base64")
		base64Encoded = true
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	if base64Encoded {
		payload, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", nil, fmt.Errorf("invalid base64 payload: %w", err)
		}
		return mediaType, payload, nil
	}
	return mediaType, []byte(data), nil
}

func extensionForDataURL(src string) string {
	mediaType, _, err := DecodeDataURL(src)
	if err != nil {
		return ".bin"
	}
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".bin"
	}
}
