// Package objstore archives original upload files in an S3-compatible
// bucket (MinIO, Supabase Storage, AWS). The normalized ledger is the source
// of truth; the archive exists so the original evidence file can be produced
// later.
package objstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	appconfig "github.com/opencoaf/caseledger/internal/config"
)

// Client wraps an S3-compatible bucket for upload archival.
type Client struct {
	s3         *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	log        zerolog.Logger
}

// NewClient builds a client from storage settings. Custom endpoints
// (MinIO, Supabase) use path-style addressing.
func NewClient(ctx context.Context, cfg appconfig.StorageConfig, log zerolog.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		s3:         client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		bucket:     cfg.Bucket,
		log:        log.With().Str("client", "objstore").Logger(),
	}, nil
}

// uploadKey builds the canonical object key for an archived file.
func uploadKey(caseID, uploadID, filename string) string {
	return fmt.Sprintf("cases/%s/uploads/%s/%s", caseID, uploadID, filename)
}

// PutUpload archives one original file and returns its object key.
func (c *Client) PutUpload(ctx context.Context, caseID, uploadID, filename string, data []byte) (string, error) {
	key := uploadKey(caseID, uploadID, filename)

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", key, err)
	}

	c.log.Info().Str("key", key).Int("bytes", len(data)).Msg("Archived upload")
	return key, nil
}

// GetUpload fetches an archived file back by its key.
func (c *Client) GetUpload(ctx context.Context, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := c.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// DeleteUpload removes an archived file.
func (c *Client) DeleteUpload(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	c.log.Info().Str("key", key).Msg("Deleted archived upload")
	return nil
}

// DeleteCase removes every archived file under a case prefix. Used by the
// retention cleanup job.
func (c *Client) DeleteCase(ctx context.Context, caseID string) (int, error) {
	prefix := fmt.Sprintf("cases/%s/", caseID)
	deleted := 0

	paginator := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(c.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				return deleted, fmt.Errorf("failed to delete %s: %w", aws.ToString(obj.Key), err)
			}
			deleted++
		}
	}

	c.log.Info().Str("case_id", caseID).Int("objects", deleted).Msg("Purged archived case files")
	return deleted, nil
}
