package domain

import (
	"context"

	"github.com/mailpilot/mailpilot/pkg/blocks"
)

//go:generate mockgen -destination mocks/mock_asset_storage.go -package mocks github.com/mailpilot/mailpilot/internal/domain AssetStorage

// AssetStorage persists builder assets: images extracted from the block tree
// and the generated HTML document. Implementations must tolerate concurrent
// image uploads; the resolver fires them in parallel.
type AssetStorage interface {
	blocks.ImageUploader

	// UploadHTML stores a generated HTML document and returns its opaque
	// asset key.
	UploadHTML(ctx context.Context, html string, templateID string) (string, error)
}
