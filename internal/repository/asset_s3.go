package repository

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/mailpilot/mailpilot/internal/domain"
	"github.com/mailpilot/mailpilot/pkg/blocks"
)

// S3Client is the narrow slice of the S3 API the asset storage needs, kept
// as an interface so tests can substitute a fake.
type S3Client interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// S3Config configures the asset bucket. Endpoint and ForcePathStyle support
// S3-compatible services like MinIO.
type S3Config struct {
	Bucket         string
	Region         string
	AccessKeyID    string
	SecretKey      string
	Endpoint       string
	BaseURL        string
	ForcePathStyle bool
}

type assetStorage struct {
	client  S3Client
	bucket  string
	baseURL string
}

// NewAssetStorage creates an S3-backed asset storage. Asset keys are
// content-addressed (sha256 of the payload) so re-uploading the same image
// is idempotent.
func NewAssetStorage(cfg S3Config) (domain.AssetStorage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("asset storage: bucket and region are required")
	}

	awsConfig := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		awsConfig = awsConfig.WithCredentials(credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretKey, ""))
	}
	if cfg.Endpoint != "" {
		awsConfig = awsConfig.WithEndpoint(cfg.Endpoint).WithS3ForcePathStyle(cfg.ForcePathStyle)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("asset storage: failed to create AWS session: %w", err)
	}

	return NewAssetStorageWithClient(s3.New(sess), cfg), nil
}

// NewAssetStorageWithClient creates an asset storage with a pre-built client.
func NewAssetStorageWithClient(client S3Client, cfg S3Config) domain.AssetStorage {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &assetStorage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *assetStorage) UploadImage(ctx context.Context, dataURL, filename string) (*blocks.UploadedImage, error) {
	mediaType, payload, err := blocks.DecodeDataURL(dataURL)
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded image: %w", err)
	}

	key := fmt.Sprintf("images/%s-%s", checksum(payload), sanitizeFilename(filename))
	if err := s.put(ctx, key, payload, mediaType); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	return &blocks.UploadedImage{
		Key: key,
		URL: s.baseURL + "/" + key,
	}, nil
}

func (s *assetStorage) UploadHTML(ctx context.Context, html string, templateID string) (string, error) {
	payload := []byte(html)
	key := fmt.Sprintf("html/%s-%s.html", sanitizeFilename(templateID), checksum(payload))
	if err := s.put(ctx, key, payload, "text/html; charset=utf-8"); err != nil {
		return "", fmt.Errorf("failed to upload html: %w", err)
	}
	return key, nil
}

func (s *assetStorage) put(ctx context.Context, key string, payload []byte, contentType string) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
	})
	return err
}

func checksum(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:8])
}

func sanitizeFilename(name string) string {
	if name == "" {
		return "asset"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '-'
		}
	}, name)
}
