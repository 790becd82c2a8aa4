// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioHost is a [Host] backed by a MinIO (or any S3-compatible) server.
type MinioHost struct {
	client  *minio.Client
	options Options
	logger  *slog.Logger
}

// MinioConfig holds the connection settings of a [MinioHost].
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// publicReadPolicy lets browsers load avatars straight from the bucket.
const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

// NewMinioHost connects to MinIO and makes sure the bucket exists and is publicly readable.
func NewMinioHost(ctx context.Context, connection MinioConfig, options Options, logger *slog.Logger) (*MinioHost, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(connection.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(connection.AccessKey, connection.SecretKey, ""),
		Secure: connection.UseSSL,
		Region: connection.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("media: minio client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, options.Bucket)
	if err != nil {
		return nil, fmt.Errorf("media: minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, options.Bucket, minio.MakeBucketOptions{Region: connection.Region}); err != nil {
			return nil, fmt.Errorf("media: minio make bucket: %w", err)
		}
		if err := client.SetBucketPolicy(ctx, options.Bucket, fmt.Sprintf(publicReadPolicy, options.Bucket)); err != nil {
			return nil, fmt.Errorf("media: minio bucket policy: %w", err)
		}
		logger.Info("media_bucket_created", slog.String("bucket", options.Bucket))
	}

	return &MinioHost{client: client, options: options, logger: logger}, nil
}

// Upload implements [Host].
func (host *MinioHost) Upload(ctx context.Context, localPath string) (string, error) {
	return host.options.upload(ctx, localPath, func(ctx context.Context, key, contentType string) error {
		_, err := host.client.FPutObject(ctx, host.options.Bucket, key, localPath, minio.PutObjectOptions{
			ContentType: contentType,
		})
		return err
	})
}

// Delete implements [Host].
func (host *MinioHost) Delete(ctx context.Context, url string) error {
	publicID := PublicIDFromURL(url)
	if publicID == "" {
		return nil
	}

	// Cancelling stops the listing goroutine when we return early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := host.client.ListObjects(ctx, host.options.Bucket, minio.ListObjectsOptions{
		Prefix:    publicID,
		Recursive: true,
	})

	for object := range objects {
		if object.Err != nil {
			return fmt.Errorf("media: list %s: %w", publicID, object.Err)
		}
		if err := host.client.RemoveObject(ctx, host.options.Bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("media: remove %s: %w", object.Key, err)
		}
		host.logger.Debug("media_object_removed", slog.String("key", object.Key))
	}

	return nil
}

// Ping implements [Host].
func (host *MinioHost) Ping(ctx context.Context) error {
	if _, err := host.client.BucketExists(ctx, host.options.Bucket); err != nil {
		return fmt.Errorf("media: minio ping: %w", err)
	}
	return nil
}
