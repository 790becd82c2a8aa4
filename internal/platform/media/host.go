// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package media hosts user-uploaded images (avatars, cover images) in an
// S3-compatible bucket and maps between public URLs and object keys.
//
// # Architecture
//
// Two interchangeable [Host] implementations exist: [MinioHost] (minio-go) and
// [S3Host] (aws-sdk-go-v2). Both share the key and URL rules defined here:
//
//	key:         <folder>/<uuidv7><ext>
//	public URL:  <base>/<bucket>/<key>
//	public ID:   <folder>/<uuidv7>   (derived back from the URL by [PublicIDFromURL])
package media

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/taibuivan/tubely/pkg/uuid"
)

// ErrEmptyPath is returned when Upload is called without a local file.
var ErrEmptyPath = errors.New("media: empty local path")

// ErrInvalidFolder is returned for a folder that is not exactly one path segment.
var ErrInvalidFolder = errors.New("media: folder must be a single non-empty path segment")

// Host uploads local files and deletes hosted objects by their public URL.
type Host interface {
	// Upload stores the file at localPath and returns its public URL.
	// The local file is removed whether or not the upload succeeds.
	Upload(ctx context.Context, localPath string) (string, error)

	// Delete removes every object derived from url. An unknown URL is not an error.
	Delete(ctx context.Context, url string) error

	// Ping verifies that the bucket is reachable.
	Ping(ctx context.Context) error
}

// Options are the settings shared by every [Host] implementation.
type Options struct {
	Bucket        string
	Folder        string
	PublicBaseURL string
	UploadTimeout time.Duration
}

// # Key & URL Rules

// ValidFolder checks that keys under folder map back through [PublicIDFromURL],
// which recovers exactly one folder segment.
func ValidFolder(folder string) error {
	if folder == "" || folder == "." || folder == ".." || strings.ContainsAny(folder, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidFolder, folder)
	}
	return nil
}

func (options Options) validate() error {
	if options.Bucket == "" {
		return errors.New("media: empty bucket")
	}
	return ValidFolder(options.Folder)
}

// objectKey names a fresh object for the file at localPath.
func (options Options) objectKey(localPath string) string {
	return path.Join(options.Folder, uuid.ObjectName(localPath))
}

// publicURL is the externally reachable address of key.
func (options Options) publicURL(key string) string {
	return strings.TrimRight(options.PublicBaseURL, "/") + "/" + options.Bucket + "/" + key
}

// PublicIDFromURL derives the storage identifier of a hosted object from its URL.
//
// It takes the two trailing path segments and strips the extension of the last one:
//
//	http://cdn/tubely/avatars/0199c3e1.png → avatars/0199c3e1
//
// It returns an empty string when the URL has fewer than two segments.
func PublicIDFromURL(raw string) string {
	pathPart := raw
	if parsed, err := url.Parse(raw); err == nil && parsed.Path != "" {
		pathPart = parsed.Path
	}

	segments := make([]string, 0, 4)
	for _, segment := range strings.Split(pathPart, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	if len(segments) < 2 {
		return ""
	}

	folder, last := segments[len(segments)-2], segments[len(segments)-1]
	return folder + "/" + strings.TrimSuffix(last, path.Ext(last))
}

// # Upload Helpers

// contentType guesses the MIME type from the file extension.
func contentType(localPath string) string {
	if byExtension := mime.TypeByExtension(strings.ToLower(filepath.Ext(localPath))); byExtension != "" {
		return byExtension
	}
	return "application/octet-stream"
}

// withUploadTimeout bounds a single upload attempt.
func (options Options) withUploadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if options.UploadTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, options.UploadTimeout)
}

// upload runs put against a new key and always removes the local file.
func (options Options) upload(ctx context.Context, localPath string, put func(ctx context.Context, key, contentType string) error) (string, error) {
	if localPath == "" {
		return "", ErrEmptyPath
	}
	defer func() { _ = os.Remove(localPath) }()

	uploadCtx, cancel := options.withUploadTimeout(ctx)
	defer cancel()

	key := options.objectKey(localPath)
	if err := put(uploadCtx, key, contentType(localPath)); err != nil {
		return "", fmt.Errorf("media: upload %s failed: %w", key, err)
	}

	return options.publicURL(key), nil
}
