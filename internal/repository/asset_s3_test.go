package repository

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 records PutObject calls in memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	payload, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(input.Key)] = payload
	f.types[aws.StringValue(input.Key)] = aws.StringValue(input.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestUploadImage(t *testing.T) {
	t.Run("stores decoded payload under a content-addressed key", func(t *testing.T) {
		client := newFakeS3()
		storage := NewAssetStorageWithClient(client, S3Config{
			Bucket:  "mailpilot-assets",
			Region:  "us-east-1",
			BaseURL: "https://cdn.mailpilot.io",
		})

		asset, err := storage.UploadImage(context.Background(), "data:image/png;base64,aGVsbG8=", "tpl-1-image-0.png")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(asset.Key, "images/"))
		assert.True(t, strings.HasSuffix(asset.Key, "-tpl-1-image-0.png"))
		assert.Equal(t, "https://cdn.mailpilot.io/"+asset.Key, asset.URL)
		assert.Equal(t, []byte("hello"), client.objects[asset.Key])
		assert.Equal(t, "image/png", client.types[asset.Key])
	})

	t.Run("same payload yields the same key", func(t *testing.T) {
		client := newFakeS3()
		storage := NewAssetStorageWithClient(client, S3Config{Bucket: "b", Region: "us-east-1"})

		a, err := storage.UploadImage(context.Background(), "data:image/png;base64,aGVsbG8=", "x.png")
		require.NoError(t, err)
		b, err := storage.UploadImage(context.Background(), "data:image/png;base64,aGVsbG8=", "x.png")
		require.NoError(t, err)
		assert.Equal(t, a.Key, b.Key)
	})

	t.Run("rejects non data URLs", func(t *testing.T) {
		storage := NewAssetStorageWithClient(newFakeS3(), S3Config{Bucket: "b", Region: "us-east-1"})
		_, err := storage.UploadImage(context.Background(), "https://example.com/a.png", "a.png")
		assert.Error(t, err)
	})

	t.Run("propagates put failures", func(t *testing.T) {
		client := newFakeS3()
		client.err = fmt.Errorf("access denied")
		storage := NewAssetStorageWithClient(client, S3Config{Bucket: "b", Region: "us-east-1"})

		_, err := storage.UploadImage(context.Background(), "data:image/png;base64,aGVsbG8=", "a.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upload image")
	})
}

func TestUploadHTML(t *testing.T) {
	client := newFakeS3()
	storage := NewAssetStorageWithClient(client, S3Config{Bucket: "b", Region: "us-east-1"})

	key, err := storage.UploadHTML(context.Background(), "<!DOCTYPE html><html></html>", "tpl-1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "html/tpl-1-"))
	assert.True(t, strings.HasSuffix(key, ".html"))
	assert.Equal(t, "text/html; charset=utf-8", client.types[key])
	assert.Equal(t, []byte("<!DOCTYPE html><html></html>"), client.objects[key])
}

func TestBaseURLDerivation(t *testing.T) {
	t.Run("default AWS URL", func(t *testing.T) {
		client := newFakeS3()
		storage := NewAssetStorageWithClient(client, S3Config{Bucket: "mailpilot-assets", Region: "eu-west-1"})

		asset, err := storage.UploadImage(context.Background(), "data:image/png;base64,aGVsbG8=", "a.png")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(asset.URL, "https://mailpilot-assets.s3.eu-west-1.amazonaws.com/"))
	})

	t.Run("custom endpoint", func(t *testing.T) {
		client := newFakeS3()
		storage := NewAssetStorageWithClient(client, S3Config{
			Bucket:   "assets",
			Region:   "us-east-1",
			Endpoint: "http://localhost:9000/",
		})

		asset, err := storage.UploadImage(context.Background(), "data:image/png;base64,aGVsbG8=", "a.png")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(asset.URL, "http://localhost:9000/assets/"))
	})
}

func TestNewAssetStorageValidation(t *testing.T) {
	_, err := NewAssetStorage(S3Config{})
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "tpl-1-image-0.png", sanitizeFilename("tpl-1-image-0.png"))
	assert.Equal(t, "a-b-c.png", sanitizeFilename("a b/c.png"))
	assert.Equal(t, "asset", sanitizeFilename(""))
}
