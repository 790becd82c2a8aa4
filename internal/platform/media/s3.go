// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Host is a [Host] backed by Amazon S3 or a compatible endpoint.
type S3Host struct {
	client  *s3.Client
	options Options
	logger  *slog.Logger
}

// S3Config holds the connection settings of an [S3Host].
//
// Static keys are optional; without them the default AWS credential chain applies.
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewS3Host builds an S3 client from the default AWS configuration chain.
func NewS3Host(ctx context.Context, connection S3Config, options Options, logger *slog.Logger) (*S3Host, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(connection.Region),
	}
	if connection.AccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(connection.AccessKey, connection.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("media: aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if connection.Endpoint != "" {
			o.BaseEndpoint = aws.String(connection.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Host{client: client, options: options, logger: logger}, nil
}

// Upload implements [Host].
func (host *S3Host) Upload(ctx context.Context, localPath string) (string, error) {
	return host.options.upload(ctx, localPath, func(ctx context.Context, key, contentType string) error {
		file, err := os.Open(localPath)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = host.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(host.options.Bucket),
			Key:         aws.String(key),
			Body:        file,
			ContentType: aws.String(contentType),
		})
		return err
	})
}

// Delete implements [Host].
func (host *S3Host) Delete(ctx context.Context, url string) error {
	publicID := PublicIDFromURL(url)
	if publicID == "" {
		return nil
	}

	paginator := s3.NewListObjectsV2Paginator(host.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(host.options.Bucket),
		Prefix: aws.String(publicID),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("media: list %s: %w", publicID, err)
		}

		for _, object := range page.Contents {
			if _, err := host.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(host.options.Bucket),
				Key:    object.Key,
			}); err != nil {
				return fmt.Errorf("media: remove %s: %w", aws.ToString(object.Key), err)
			}
			host.logger.Debug("media_object_removed", slog.String("key", aws.ToString(object.Key)))
		}
	}

	return nil
}

// Ping implements [Host].
func (host *S3Host) Ping(ctx context.Context) error {
	if _, err := host.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(host.options.Bucket)}); err != nil {
		return fmt.Errorf("media: s3 ping: %w", err)
	}
	return nil
}
