package objstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// Client wraps the MinIO client for item photo storage. Photos live in a
// single bucket, keyed by household to keep tenant data physically
// separated under distinct prefixes.
type Client struct {
	client *minio.Client
	config *Config
	logger *logger.Logger
}

// New creates an object storage client and ensures the bucket exists
func New(cfg *Config, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("objstore config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid objstore configuration: %w", err)
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create objstore client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Info("created objstore bucket", zap.String("bucket", cfg.Bucket))
	}

	return &Client{
		client: mc,
		config: cfg,
		logger: log,
	}, nil
}

// PhotoKey builds the object key for an item photo
func PhotoKey(householdID, itemID, filename string) string {
	return fmt.Sprintf("photos/%s/%s/%s", householdID, itemID, filename)
}

// Put uploads an object
func (c *Client) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := c.client.PutObject(ctx, c.config.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	c.logger.WithContext(ctx).Debug("object uploaded",
		zap.String("key", key),
		zap.Int64("size", size),
	)
	return nil
}

// PresignedGetURL returns a time-limited download URL for an object
func (c *Client) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := c.client.PresignedGetObject(ctx, c.config.Bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return u.String(), nil
}

// Remove deletes an object
func (c *Client) Remove(ctx context.Context, key string) error {
	if err := c.client.RemoveObject(ctx, c.config.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}
