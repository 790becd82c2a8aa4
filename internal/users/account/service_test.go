// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/users/account"
	"github.com/taibuivan/tubely/internal/users/auth"
	"github.com/taibuivan/tubely/pkg/pointer"
)

// # Fakes

type memoryAccounts struct {
	users     map[string]*auth.User
	updateErr error

	// onEmailLookup runs inside FindByEmail, between the read and the write of UpdateAccount.
	onEmailLookup func()
}

func (repo *memoryAccounts) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := repo.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound(auth.MsgUserNotFound)
}

func (repo *memoryAccounts) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if repo.onEmailLookup != nil {
		repo.onEmailLookup()
	}
	for _, user := range repo.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound(auth.MsgUserNotFound)
}

func (repo *memoryAccounts) UpdateDetails(_ context.Context, id string, fullname, email *string) error {
	if repo.updateErr != nil {
		return repo.updateErr
	}
	user, ok := repo.users[id]
	if !ok {
		return apperr.NotFound(auth.MsgUserNotFound)
	}
	if fullname != nil {
		user.Fullname = *fullname
	}
	if email != nil {
		user.Email = *email
	}
	return nil
}

func (repo *memoryAccounts) SwapImage(_ context.Context, id string, field auth.ImageField, previous, next string) (bool, error) {
	if repo.updateErr != nil {
		return false, repo.updateErr
	}
	user, ok := repo.users[id]
	if !ok {
		return false, nil
	}
	current := &user.Avatar
	if field == auth.ImageCover {
		current = &user.CoverImage
	}
	if *current != previous {
		return false, nil
	}
	*current = next
	return true, nil
}

type recordingHost struct {
	uploaded []string
	deleted  []string
	fail     bool

	// onUpload runs while the upload is in flight.
	onUpload func()
}

func (host *recordingHost) Upload(_ context.Context, localPath string) (string, error) {
	defer os.Remove(localPath)
	if host.onUpload != nil {
		host.onUpload()
	}
	if host.fail {
		return "", errors.New("bucket unavailable")
	}
	url := "http://cdn.test/tubely/avatars/" + filepath.Base(localPath)
	host.uploaded = append(host.uploaded, url)
	return url, nil
}

func (host *recordingHost) Delete(_ context.Context, url string) error {
	host.deleted = append(host.deleted, url)
	return nil
}

func (host *recordingHost) Ping(context.Context) error { return nil }

const (
	aliceID = "65f1a2b3c4d5e6f7a8b9c0d1"
	bobID   = "65f1a2b3c4d5e6f7a8b9c0d2"
)

func newService(t *testing.T) (*account.Service, *memoryAccounts, *recordingHost) {
	t.Helper()
	repo := &memoryAccounts{users: map[string]*auth.User{
		aliceID: {ID: aliceID, Username: "alice", Email: "alice@example.com", Fullname: "Alice", Avatar: "http://cdn.test/tubely/avatars/old.png"},
		bobID:   {ID: bobID, Username: "bob", Email: "bob@example.com", Fullname: "Bob"},
	}}
	host := &recordingHost{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return account.NewService(repo, host, logger), repo, host
}

func tempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "new.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))
	return path
}

// # Profile

/*
TestUpdateAccount covers partial updates and the email ownership rule.
*/
func TestUpdateAccount(t *testing.T) {
	tests := []struct {
		name  string
		input account.UpdateAccountInput
		code  string
		check func(t *testing.T, user *auth.User)
	}{
		{
			name:  "fullname_only",
			input: account.UpdateAccountInput{Fullname: pointer.To("  Alice   Pleasance ")},
			check: func(t *testing.T, user *auth.User) {
				assert.Equal(t, "Alice Pleasance", user.Fullname)
				assert.Equal(t, "alice@example.com", user.Email)
			},
		},
		{
			name:  "email_normalized",
			input: account.UpdateAccountInput{Email: pointer.To("Alice@Wonderland.ORG")},
			check: func(t *testing.T, user *auth.User) {
				assert.Equal(t, "alice@wonderland.org", user.Email)
			},
		},
		{
			name:  "own_email_kept",
			input: account.UpdateAccountInput{Email: pointer.To("alice@example.com")},
		},
		{
			name:  "email_of_other_account",
			input: account.UpdateAccountInput{Email: pointer.To("bob@example.com")},
			code:  apperr.CodeConflict,
		},
		{
			name:  "nothing_to_update",
			input: account.UpdateAccountInput{},
			code:  apperr.CodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := newService(t)

			user, err := service.UpdateAccount(context.Background(), aliceID, tt.input)
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, apperr.HasCode(err, tt.code))
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, user)
			}
		})
	}
}

// # Images

/*
TestUpdateAvatar verifies the previous asset is deleted after the new one is stored.
*/
func TestUpdateAvatar(t *testing.T) {
	service, repo, host := newService(t)

	user, err := service.UpdateAvatar(context.Background(), aliceID, tempImage(t))
	require.NoError(t, err)

	require.Len(t, host.uploaded, 1)
	assert.Equal(t, host.uploaded[0], user.Avatar)
	assert.Equal(t, host.uploaded[0], repo.users[aliceID].Avatar)
	assert.Equal(t, []string{"http://cdn.test/tubely/avatars/old.png"}, host.deleted)
}

/*
TestUpdateCoverImage_NoPrevious verifies nothing is deleted when there was no cover.
*/
func TestUpdateCoverImage_NoPrevious(t *testing.T) {
	service, _, host := newService(t)

	user, err := service.UpdateCoverImage(context.Background(), bobID, tempImage(t))
	require.NoError(t, err)
	assert.NotEmpty(t, user.CoverImage)
	assert.Empty(t, host.deleted)
}

/*
TestReplaceImage_Failures covers the missing file, failed upload and failed persist paths.
*/
func TestReplaceImage_Failures(t *testing.T) {
	// 1. Missing file
	service, _, _ := newService(t)
	_, err := service.UpdateAvatar(context.Background(), aliceID, "")
	require.Error(t, err)
	assert.Equal(t, account.MsgAvatarMissing, apperr.As(err).Message)

	// 2. Upload failure keeps the old avatar
	service, repo, host := newService(t)
	host.fail = true
	_, err = service.UpdateAvatar(context.Background(), aliceID, tempImage(t))
	require.Error(t, err)
	assert.Equal(t, account.MsgAvatarUploadFailed, apperr.As(err).Message)
	assert.Equal(t, "http://cdn.test/tubely/avatars/old.png", repo.users[aliceID].Avatar)

	// 3. Persist failure rolls back the new upload only
	service, repo, host = newService(t)
	repo.updateErr = errors.New("connection reset")
	_, err = service.UpdateAvatar(context.Background(), aliceID, tempImage(t))
	require.Error(t, err)
	assert.Equal(t, host.uploaded, host.deleted)
}

/*
TestUpdateAvatar_LostRace verifies a replacement that lands during the upload wins.
*/
func TestUpdateAvatar_LostRace(t *testing.T) {
	service, repo, host := newService(t)
	const concurrent = "http://cdn.test/tubely/avatars/concurrent.png"

	// 1. Another request swaps the avatar while ours uploads
	host.onUpload = func() { repo.users[aliceID].Avatar = concurrent }

	_, err := service.UpdateAvatar(context.Background(), aliceID, tempImage(t))
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Equal(t, account.MsgImageChanged, apperr.As(err).Message)

	// 2. Our upload is discarded and neither stored image is touched
	assert.Equal(t, concurrent, repo.users[aliceID].Avatar)
	assert.Equal(t, host.uploaded, host.deleted)
}

/*
TestUpdateAccount_KeepsConcurrentImage verifies a details update never writes images back.
*/
func TestUpdateAccount_KeepsConcurrentImage(t *testing.T) {
	service, repo, _ := newService(t)
	const replaced = "http://cdn.test/tubely/avatars/replaced.png"

	// 1. The avatar changes between the read and the write of UpdateAccount
	repo.onEmailLookup = func() { repo.users[aliceID].Avatar = replaced }

	user, err := service.UpdateAccount(context.Background(), aliceID, account.UpdateAccountInput{
		Email: pointer.To("alice@wonderland.org"),
	})
	require.NoError(t, err)

	// 2. The stored and returned profiles carry both changes
	assert.Equal(t, replaced, repo.users[aliceID].Avatar)
	assert.Equal(t, replaced, user.Avatar)
	assert.Equal(t, "alice@wonderland.org", user.Email)
}
