package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	appconfig "classroom-api/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cenkalti/backoff/v4"
)

// Store downloads named blobs to local paths. The rest of the system treats
// object storage purely through this boundary.
type Store interface {
	Download(ctx context.Context, objectKey, destPath string) error
}

// S3Store reads objects from one S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, cfg *appconfig.Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.Storage.Bucket}, nil
}

// Download fetches objectKey into destPath, retrying transient failures with
// exponential backoff for a short window.
func (s *S3Store) Download(ctx context.Context, objectKey, destPath string) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(objectKey),
		})
		if err != nil {
			return err
		}
		defer out.Body.Close()

		f, err := os.Create(destPath)
		if err != nil {
			return backoff.Permanent(err)
		}
		defer f.Close()

		if _, err := io.Copy(f, out.Body); err != nil {
			return err
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("download %s: %w", objectKey, err)
	}
	return nil
}
