// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempUpload(t *testing.T, name string) string {
	t.Helper()
	localPath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(localPath, []byte("x"), 0o600))
	return localPath
}

/*
TestUpload_KeyAndURL verifies the key layout and that the URL maps back to its key.
*/
func TestUpload_KeyAndURL(t *testing.T) {
	options := Options{Bucket: "tubely", Folder: "avatars", PublicBaseURL: "http://localhost:9000/", UploadTimeout: time.Second}
	localPath := tempUpload(t, "me.JPG")

	var storedKey, storedType string
	url, err := options.upload(context.Background(), localPath, func(_ context.Context, key, contentType string) error {
		storedKey, storedType = key, contentType
		return nil
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(storedKey, "avatars/"))
	assert.True(t, strings.HasSuffix(storedKey, ".jpg"))
	assert.Equal(t, "image/jpeg", storedType)
	assert.Equal(t, "http://localhost:9000/tubely/"+storedKey, url)
	assert.Equal(t, strings.TrimSuffix(storedKey, ".jpg"), PublicIDFromURL(url))

	_, err = os.Stat(localPath)
	assert.True(t, os.IsNotExist(err), "local file must be removed after upload")
}

/*
TestUpload_FailureRemovesLocalFile verifies cleanup and the timeout on a failed attempt.
*/
func TestUpload_FailureRemovesLocalFile(t *testing.T) {
	options := Options{Bucket: "tubely", Folder: "avatars", UploadTimeout: 10 * time.Millisecond}
	localPath := tempUpload(t, "me.png")

	_, err := options.upload(context.Background(), localPath, func(ctx context.Context, _, _ string) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	_, statErr := os.Stat(localPath)
	assert.True(t, os.IsNotExist(statErr))
}

/*
TestUpload_EmptyPath verifies the guard for a missing file.
*/
func TestUpload_EmptyPath(t *testing.T) {
	_, err := Options{}.upload(context.Background(), "", func(context.Context, string, string) error { return nil })
	assert.ErrorIs(t, err, ErrEmptyPath)
}

/*
TestUpload_KeyRoundTrip verifies every accepted folder maps a URL back to its key
and every rejected one is refused up front.
*/
func TestUpload_KeyRoundTrip(t *testing.T) {
	for _, folder := range []string{"tubely", "avatars", "cover-images"} {
		t.Run(folder, func(t *testing.T) {
			options := Options{Bucket: "tubely", Folder: folder, PublicBaseURL: "http://cdn.test"}
			require.NoError(t, options.validate())

			var storedKey string
			url, err := options.upload(context.Background(), tempUpload(t, "me.tar.gz"), func(_ context.Context, key, _ string) error {
				storedKey = key
				return nil
			})
			require.NoError(t, err)

			publicID := PublicIDFromURL(url)
			assert.True(t, strings.HasPrefix(publicID, folder+"/"), publicID)
			assert.True(t, strings.HasPrefix(storedKey, publicID), "%s is not a prefix of %s", publicID, storedKey)
		})
	}

	for _, folder := range []string{"", ".", "..", "a/b", `a\b`} {
		err := Options{Bucket: "tubely", Folder: folder}.validate()
		assert.ErrorIs(t, err, ErrInvalidFolder, folder)
	}
}

/*
TestPublicIDFromURL_StripsLastExtension verifies only the final extension is removed.
*/
func TestPublicIDFromURL_StripsLastExtension(t *testing.T) {
	assert.Equal(t, "avatars/clip.v2", PublicIDFromURL("http://cdn.test/tubely/avatars/clip.v2.png"))
	assert.Equal(t, "avatars/plain", PublicIDFromURL("http://cdn.test/tubely/avatars/plain"))
	assert.Empty(t, PublicIDFromURL("http://cdn.test/only"))
}
