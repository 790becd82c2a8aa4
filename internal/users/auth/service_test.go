// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/platform/sec"
	"github.com/taibuivan/tubely/internal/users/auth"
)

// # Fakes

// memoryUsers is an in-memory UserRepository guarded by a single mutex.
type memoryUsers struct {
	mu        sync.Mutex
	users     map[string]*auth.User
	createErr error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*auth.User)}
}

func (repo *memoryUsers) find(match func(*auth.User) bool) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound(auth.MsgUserNotFound)
}

func (repo *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	return repo.find(func(u *auth.User) bool { return u.ID == id })
}

func (repo *memoryUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	return repo.find(func(u *auth.User) bool { return u.Username == username })
}

func (repo *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return repo.find(func(u *auth.User) bool { return u.Email == email })
}

func (repo *memoryUsers) FindByUsernameOrEmail(_ context.Context, username, email string) (*auth.User, error) {
	return repo.find(func(u *auth.User) bool {
		return (username != "" && u.Username == username) || (email != "" && u.Email == email)
	})
}

func (repo *memoryUsers) Create(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.createErr != nil {
		return repo.createErr
	}
	for _, existing := range repo.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperr.Conflict("Resource already exists")
		}
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	repo.users[user.ID] = &clone
	return nil
}

func (repo *memoryUsers) UpdateDetails(_ context.Context, id string, fullname, email *string) error {
	return repo.mutate(id, func(stored *auth.User) {
		if fullname != nil {
			stored.Fullname = *fullname
		}
		if email != nil {
			stored.Email = *email
		}
	})
}

func (repo *memoryUsers) SwapImage(_ context.Context, id string, field auth.ImageField, previous, next string) (bool, error) {
	swapped := false
	err := repo.mutate(id, func(stored *auth.User) {
		current := &stored.Avatar
		if field == auth.ImageCover {
			current = &stored.CoverImage
		}
		if *current == previous {
			*current, swapped = next, true
		}
	})
	return swapped, err
}

func (repo *memoryUsers) mutate(id string, apply func(*auth.User)) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	stored, ok := repo.users[id]
	if !ok {
		return apperr.NotFound(auth.MsgUserNotFound)
	}
	apply(stored)
	return nil
}

func (repo *memoryUsers) UpdatePassword(_ context.Context, id, hash string) error {
	return repo.mutate(id, func(u *auth.User) { u.PasswordHash = hash })
}

func (repo *memoryUsers) SetRefreshToken(_ context.Context, id, token string) error {
	return repo.mutate(id, func(u *auth.User) { u.RefreshToken = token })
}

func (repo *memoryUsers) SwapRefreshToken(_ context.Context, id, presented, next string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	stored, ok := repo.users[id]
	if !ok || presented == "" || stored.RefreshToken != presented {
		return false, nil
	}
	stored.RefreshToken = next
	return true, nil
}

func (repo *memoryUsers) ClearRefreshToken(_ context.Context, id string) error {
	return repo.mutate(id, func(u *auth.User) { u.RefreshToken = "" })
}

func (repo *memoryUsers) storedToken(id string) string {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.users[id].RefreshToken
}

// fakeHost records uploads and deletions, removing the local file like a real host.
type fakeHost struct {
	mu        sync.Mutex
	uploads   []string
	deleted   []string
	failLocal map[string]bool
}

func (host *fakeHost) Upload(_ context.Context, localPath string) (string, error) {
	defer os.Remove(localPath)
	host.mu.Lock()
	defer host.mu.Unlock()
	if host.failLocal[localPath] {
		return "", errors.New("bucket unavailable")
	}
	url := "http://cdn.test/tubely/avatars/" + filepath.Base(localPath)
	host.uploads = append(host.uploads, url)
	return url, nil
}

func (host *fakeHost) Delete(_ context.Context, url string) error {
	host.mu.Lock()
	defer host.mu.Unlock()
	host.deleted = append(host.deleted, url)
	return nil
}

func (host *fakeHost) Ping(context.Context) error { return nil }

// # Fixtures

type fixture struct {
	service *auth.Service
	users   *memoryUsers
	host    *fakeHost
	tokens  *sec.TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "access-secret-for-tests",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret-for-tests",
		RefreshTTL:    24 * time.Hour,
		Issuer:        "tubely-test",
	})
	require.NoError(t, err)

	users := newMemoryUsers()
	host := &fakeHost{failLocal: map[string]bool{}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		service: auth.NewService(users, tokens, host, logger),
		users:   users,
		host:    host,
		tokens:  tokens,
	}
}

// spoolFile creates a local file standing in for a spooled upload.
func spoolFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("image-bytes"), 0o600))
	return path
}

func (f *fixture) register(t *testing.T, username string) *auth.User {
	t.Helper()
	user, err := f.service.Register(context.Background(), auth.RegisterInput{
		Fullname:   "Alice Liddell",
		Email:      username + "@example.com",
		Username:   username,
		Password:   "password123",
		AvatarPath: spoolFile(t, username+".png"),
	})
	require.NoError(t, err)
	return user
}

// # Registration

/*
TestRegister_Success verifies normalization, hashing and media hosting.
*/
func TestRegister_Success(t *testing.T) {
	f := newFixture(t)
	avatar := spoolFile(t, "a.png")

	// 1. Register with mixed-case identifiers
	user, err := f.service.Register(context.Background(), auth.RegisterInput{
		Fullname:   "  Alice   Liddell ",
		Email:      "Alice@Example.COM",
		Username:   "Alice",
		Password:   "password123",
		AvatarPath: avatar,
	})
	require.NoError(t, err)

	// 2. Verify the stored shape
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice Liddell", user.Fullname)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.True(t, sec.VerifyPassword(user.PasswordHash, "password123"))
	assert.Len(t, user.ID, 24)
	assert.Equal(t, f.host.uploads[0], user.Avatar)
	assert.Empty(t, user.CoverImage)

	// 3. The spooled file is consumed
	_, statErr := os.Stat(avatar)
	assert.True(t, os.IsNotExist(statErr))
}

/*
TestRegister_Conflict verifies uniqueness is case-insensitive and leaks no uploads.
*/
func TestRegister_Conflict(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	cover := spoolFile(t, "cover.png")
	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		Fullname:       "Other Alice",
		Email:          "other@example.com",
		Username:       "ALICE",
		Password:       "password123",
		AvatarPath:     spoolFile(t, "b.png"),
		CoverImagePath: cover,
	})

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	assert.Equal(t, auth.MsgUserExists, apperr.As(err).Message)
	assert.Len(t, f.host.uploads, 1)

	_, statErr := os.Stat(cover)
	assert.True(t, os.IsNotExist(statErr))
}

/*
TestRegister_AvatarRules verifies the avatar is mandatory and must upload.
*/
func TestRegister_AvatarRules(t *testing.T) {
	f := newFixture(t)

	// 1. Missing avatar
	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		Fullname: "Bob", Email: "bob@example.com", Username: "bob", Password: "password123",
	})
	require.Error(t, err)
	assert.Equal(t, auth.MsgAvatarRequired, apperr.As(err).Message)

	// 2. Failed avatar upload
	avatar := spoolFile(t, "bob.png")
	f.host.failLocal[avatar] = true
	_, err = f.service.Register(context.Background(), auth.RegisterInput{
		Fullname: "Bob", Email: "bob@example.com", Username: "bob", Password: "password123", AvatarPath: avatar,
	})
	require.Error(t, err)
	assert.Equal(t, auth.MsgAvatarUploadFailed, apperr.As(err).Message)

	// 3. Failed cover upload is tolerated
	cover := spoolFile(t, "cover.png")
	f.host.failLocal[cover] = true
	user, err := f.service.Register(context.Background(), auth.RegisterInput{
		Fullname: "Bob", Email: "bob@example.com", Username: "bob", Password: "password123",
		AvatarPath: spoolFile(t, "bob2.png"), CoverImagePath: cover,
	})
	require.NoError(t, err)
	assert.Empty(t, user.CoverImage)
}

/*
TestRegister_RollbackOnCreateFailure verifies uploads are deleted when persisting fails.
*/
func TestRegister_RollbackOnCreateFailure(t *testing.T) {
	f := newFixture(t)
	f.users.createErr = apperr.Conflict("Resource already exists")

	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		Fullname: "Carol", Email: "carol@example.com", Username: "carol", Password: "password123",
		AvatarPath:     spoolFile(t, "c.png"),
		CoverImagePath: spoolFile(t, "c-cover.png"),
	})

	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	assert.ElementsMatch(t, f.host.uploads, f.host.deleted)
	assert.Len(t, f.host.deleted, 2)
}

// # Login & Authenticate

/*
TestLogin verifies identifier handling and credential checks.
*/
func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	tests := []struct {
		name  string
		input auth.LoginInput
		code  string
	}{
		{"by_username", auth.LoginInput{Username: "Alice", Password: "password123"}, ""},
		{"by_email", auth.LoginInput{Email: "alice@example.com", Password: "password123"}, ""},
		{"no_identifier", auth.LoginInput{Password: "password123"}, apperr.CodeBadRequest},
		{"unknown_user", auth.LoginInput{Username: "nobody", Password: "password123"}, apperr.CodeNotFound},
		{"wrong_password", auth.LoginInput{Username: "alice", Password: "nope"}, apperr.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := f.service.Login(context.Background(), tt.input)
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, apperr.HasCode(err, tt.code))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, session.AccessToken)
			assert.Equal(t, session.RefreshToken, f.users.storedToken(session.User.ID))
		})
	}
}

/*
TestAuthenticate verifies access token resolution and its failure modes.
*/
func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice")

	session, err := f.service.Issue(context.Background(), user)
	require.NoError(t, err)

	// 1. Valid token resolves the current profile
	identity, err := f.service.Authenticate(context.Background(), session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.ID)
	assert.Equal(t, "alice", identity.Username)

	// 2. Empty token
	_, err = f.service.Authenticate(context.Background(), "")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	// 3. Refresh token presented as access token
	_, err = f.service.Authenticate(context.Background(), session.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidCredential))

	// 4. Token for a deleted account
	orphan, err := f.tokens.GenerateAccessToken(sec.Identity{ID: "65f1a2b3c4d5e6f7a8b9c0d1"})
	require.NoError(t, err)
	_, err = f.service.Authenticate(context.Background(), orphan)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidCredential))
}

// # Rotation

/*
TestRefresh_RotatesOnce verifies a refresh token can be exchanged exactly once.
*/
func TestRefresh_RotatesOnce(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice")

	issued, err := f.service.Issue(context.Background(), user)
	require.NoError(t, err)

	// 1. First exchange succeeds and replaces the stored token
	rotated, err := f.service.Refresh(context.Background(), issued.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, issued.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, rotated.RefreshToken, f.users.storedToken(user.ID))

	// 2. Replay of the consumed token fails
	_, err = f.service.Refresh(context.Background(), issued.RefreshToken)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeSessionExpiredOrReused))

	// 3. The rotated token is still good
	_, err = f.service.Refresh(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
}

/*
TestRefresh_Concurrent verifies that of N racing refreshes exactly one wins.
*/
func TestRefresh_Concurrent(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice")

	issued, err := f.service.Issue(context.Background(), user)
	require.NoError(t, err)

	const racers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.service.Refresh(context.Background(), issued.RefreshToken); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

/*
TestRefresh_Failures covers missing, malformed and revoked tokens.
*/
func TestRefresh_Failures(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice")

	issued, err := f.service.Issue(context.Background(), user)
	require.NoError(t, err)

	// 1. Missing
	_, err = f.service.Refresh(context.Background(), "")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	// 2. Access token is not a refresh token
	_, err = f.service.Refresh(context.Background(), issued.AccessToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidCredential))

	// 3. Revoked session
	require.NoError(t, f.service.Revoke(context.Background(), user.ID))
	assert.Empty(t, f.users.storedToken(user.ID))

	_, err = f.service.Refresh(context.Background(), issued.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeSessionExpiredOrReused))
}

/*
TestIssue_ReplacesPriorSession verifies a second login invalidates the first refresh token.
*/
func TestIssue_ReplacesPriorSession(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice")

	first, err := f.service.Issue(context.Background(), user)
	require.NoError(t, err)
	_, err = f.service.Issue(context.Background(), user)
	require.NoError(t, err)

	_, err = f.service.Refresh(context.Background(), first.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeSessionExpiredOrReused))
}

// # Credentials

/*
TestChangePassword verifies the old password gate and the new hash.
*/
func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice")

	err := f.service.ChangePassword(context.Background(), user.ID, "wrong", "newpassword1")
	require.Error(t, err)
	assert.Equal(t, auth.MsgInvalidOldPassword, apperr.As(err).Message)

	require.NoError(t, f.service.ChangePassword(context.Background(), user.ID, "password123", "newpassword1"))

	_, err = f.service.Login(context.Background(), auth.LoginInput{Username: "alice", Password: "newpassword1"})
	require.NoError(t, err)
}
