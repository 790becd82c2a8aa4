// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNoFile is returned when the multipart field is absent or empty.
	ErrNoFile = errors.New("media: no file in form field")

	// ErrNotImage is returned when an upload does not decode as a supported image.
	ErrNotImage = errors.New("media: file is not a supported image")
)

// SpoolFormFile copies the multipart part named field into dir and returns the
// path of the temporary copy. Non-image content is rejected and removed.
//
// The caller owns the returned file; [Host.Upload] removes it.
func SpoolFormFile(request *http.Request, field, dir string) (string, error) {
	file, header, err := request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", ErrNoFile
		}
		return "", fmt.Errorf("media: read form file %s: %w", field, err)
	}
	defer file.Close()

	if header.Size == 0 {
		return "", ErrNoFile
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("media: temp dir: %w", err)
	}

	extension := strings.ToLower(filepath.Ext(header.Filename))
	spooled, err := os.CreateTemp(dir, "upload-*"+extension)
	if err != nil {
		return "", fmt.Errorf("media: temp file: %w", err)
	}

	spooledPath := spooled.Name()
	if _, err := io.Copy(spooled, file); err != nil {
		_ = spooled.Close()
		_ = os.Remove(spooledPath)
		return "", fmt.Errorf("media: spool %s: %w", field, err)
	}
	if err := spooled.Close(); err != nil {
		_ = os.Remove(spooledPath)
		return "", fmt.Errorf("media: spool %s: %w", field, err)
	}

	if _, err := SniffImage(spooledPath); err != nil {
		_ = os.Remove(spooledPath)
		return "", err
	}

	return spooledPath, nil
}

// SniffImage reports the image format of the file at localPath
// (jpeg, png, gif, webp, bmp or tiff) or [ErrNotImage].
func SniffImage(localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("media: open %s: %w", localPath, err)
	}
	defer file.Close()

	_, format, err := image.DecodeConfig(file)
	if err != nil {
		return "", ErrNotImage
	}

	return format, nil
}

// Discard removes spooled files that never reached [Host.Upload].
func Discard(paths ...string) {
	for _, localPath := range paths {
		if localPath != "" {
			_ = os.Remove(localPath)
		}
	}
}
