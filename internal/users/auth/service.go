// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/platform/ident"
	"github.com/taibuivan/tubely/internal/platform/media"
	"github.com/taibuivan/tubely/internal/platform/sec"
	"github.com/taibuivan/tubely/pkg/textnorm"
)

// # Contracts & Types

// TokenProvider defines the contract for signing and verifying session tokens.
type TokenProvider interface {
	GenerateAccessToken(identity sec.Identity) (string, error)
	GenerateRefreshToken(userID string) (string, time.Time, error)
	VerifyAccessToken(token string) (*sec.AccessClaims, error)
	VerifyRefreshToken(token string) (*sec.RefreshClaims, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or token rotation must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
	mediaHost      media.Host
	logger         *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, tokenProv TokenProvider, host media.Host, logger *slog.Logger) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
		mediaHost:      host,
		logger:         logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
//
// AvatarPath and CoverImagePath are local spooled files; the service uploads
// and then removes them.
type RegisterInput struct {
	Fullname       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Enforces identity uniqueness, uploads the avatar (required) and
the cover image (optional), and creates the account. Uploaded media are
deleted again if the account cannot be persisted, so a failed registration
leaves nothing behind.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Conflict (if identity exists), BadRequest (avatar) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	username := textnorm.Username(input.Username)
	email := textnorm.Email(input.Email)

	// Local spools are consumed by Upload; anything not uploaded is discarded here.
	pending := []string{input.AvatarPath, input.CoverImagePath}
	defer func() { media.Discard(pending...) }()

	// Verify identity uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByUsernameOrEmail(context, username, email)
	if err == nil {
		return nil, apperr.Conflict(MsgUserExists)
	}
	if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	if input.AvatarPath == "" {
		return nil, apperr.BadRequest(MsgAvatarRequired)
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Upload the avatar. Without it the account cannot be created.
	pending[0] = ""
	avatarURL, err := service.mediaHost.Upload(context, input.AvatarPath)
	if err != nil {
		service.logger.WarnContext(context, "avatar_upload_failed", slog.String("error", err.Error()))
		return nil, apperr.BadRequest(MsgAvatarUploadFailed)
	}
	uploaded := []string{avatarURL}

	// The cover image is optional; a failed upload leaves it empty.
	coverURL := ""
	if input.CoverImagePath != "" {
		pending[1] = ""
		coverURL, err = service.mediaHost.Upload(context, input.CoverImagePath)
		if err != nil {
			service.logger.WarnContext(context, "cover_image_upload_failed", slog.String("error", err.Error()))
			coverURL = ""
		} else {
			uploaded = append(uploaded, coverURL)
		}
	}

	user := &User{
		ID:           ident.New(),
		Username:     username,
		Email:        email,
		Fullname:     textnorm.Display(input.Fullname),
		Avatar:       avatarURL,
		CoverImage:   coverURL,
		PasswordHash: hashedPassword,
	}

	// Persist the user. On failure roll back the uploads.
	if err := service.userRepository.Create(context, user); err != nil {
		service.discardUploads(context, uploaded...)
		if apperr.IsConflict(err) {
			return nil, apperr.Conflict(MsgUserExists)
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_registered", slog.String("user_id", user.ID))
	return user, nil
}

// discardUploads deletes hosted media that no record refers to.
func (service *Service) discardUploads(context context.Context, urls ...string) {
	for _, url := range urls {
		if err := service.mediaHost.Delete(context, url); err != nil {
			service.logger.WarnContext(context, "media_rollback_failed",
				slog.String("url", url),
				slog.String("error", err.Error()),
			)
		}
	}
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
// Either Username or Email identifies the account.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

/*
Login validates user credentials and issues a session.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: The user and a fresh token pair
  - err: BadRequest, NotFound, Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {
	username := textnorm.Username(input.Username)
	email := textnorm.Email(input.Email)

	if username == "" && email == "" {
		return nil, apperr.BadRequest(MsgLoginIdentifier)
	}

	user, err := service.userRepository.FindByUsernameOrEmail(context, username, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound(MsgUserDoesNotExist)
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// bcrypt compares in constant time.
	if !sec.VerifyPassword(user.PasswordHash, input.Password) {
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}
	service.upgradeHash(context, user, input.Password)

	session, err := service.Issue(context, user)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "user_logged_in", slog.String("user_id", user.ID))
	return session, nil
}

// upgradeHash re-hashes a password stored under an older bcrypt cost. Failures are logged only.
func (service *Service) upgradeHash(context context.Context, user *User, password string) {
	if !sec.NeedsRehash(user.PasswordHash) {
		return
	}

	hash, err := sec.HashPassword(password)
	if err == nil {
		err = service.userRepository.UpdatePassword(context, user.ID, hash)
	}
	if err != nil {
		service.logger.WarnContext(context, "password_rehash_failed", slog.String("user_id", user.ID), slog.Any("error", err))
		return
	}
	user.PasswordHash = hash
}

/*
Issue signs a fresh token pair for user and stores the refresh token,
replacing any previous one. A new login therefore invalidates the prior session.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - *Session: Transport-ready session identifiers
  - err: Signing or storage failures
*/
func (service *Service) Issue(context context.Context, user *User) (*Session, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, expiresAt, err := service.tokenProvider.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	if err := service.userRepository.SetRefreshToken(context, user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("auth_service_store_refresh_token_failed: %w", err)
	}

	user.RefreshToken = refreshToken
	return &Session{
		User:                  user,
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
	}, nil
}

/*
Authenticate resolves an access token to the account it was issued for.

Parameters:
  - context: context.Context
  - accessToken: string

Returns:
  - *sec.Identity: Current profile (never the hash or refresh token)
  - err: Unauthorized if empty, InvalidCredential if verification fails
*/
func (service *Service) Authenticate(context context.Context, accessToken string) (*sec.Identity, error) {
	if accessToken == "" {
		return nil, apperr.Unauthorized(MsgUnauthorized)
	}

	claims, err := service.tokenProvider.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, apperr.InvalidCredential(MsgInvalidAccess, err)
	}

	user, err := service.userRepository.FindByID(context, claims.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.InvalidCredential(MsgInvalidAccess, err)
		}
		return nil, fmt.Errorf("auth_service_authenticate_failed: %w", err)
	}

	identity := user.Identity()
	return &identity, nil
}

// # Session Management

/*
Refresh implements the Refresh Token Rotation mechanism.

Description: Verifies the presented refresh token, requires it to equal the
stored value, and swaps in a new one with a compare-and-swap. Of two
concurrent refreshes with the same token exactly one wins; a replay of a
rotated token fails with SessionExpiredOrReused.

Parameters:
  - context: context.Context
  - presented: string

Returns:
  - *Session: New session credentials
  - err: Unauthorized, InvalidCredential, SessionExpiredOrReused or storage failures
*/
func (service *Service) Refresh(context context.Context, presented string) (*Session, error) {
	if presented == "" {
		return nil, apperr.Unauthorized(MsgUnauthorized)
	}

	claims, err := service.tokenProvider.VerifyRefreshToken(presented)
	if err != nil {
		return nil, apperr.InvalidCredential(MsgInvalidRefresh, err)
	}

	user, err := service.userRepository.FindByID(context, claims.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.InvalidCredential(MsgInvalidRefresh, err)
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(presented), []byte(user.RefreshToken)) != 1 {
		service.logger.WarnContext(context, "refresh_token_reuse_detected", slog.String("user_id", user.ID))
		return nil, apperr.SessionExpiredOrReused()
	}

	accessToken, err := service.tokenProvider.GenerateAccessToken(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	nextRefreshToken, expiresAt, err := service.tokenProvider.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_refresh_token_failed: %w", err)
	}

	swapped, err := service.userRepository.SwapRefreshToken(context, user.ID, presented, nextRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_swap_failed: %w", err)
	}
	if !swapped {
		return nil, apperr.SessionExpiredOrReused()
	}

	user.RefreshToken = nextRefreshToken
	service.logger.InfoContext(context, "session_refreshed", slog.String("user_id", user.ID))

	return &Session{
		User:                  user,
		AccessToken:           accessToken,
		RefreshToken:          nextRefreshToken,
		RefreshTokenExpiresAt: expiresAt,
	}, nil
}

/*
Revoke clears the stored refresh token (logout). Subsequent refreshes fail
until the next Issue.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Storage failures
*/
func (service *Service) Revoke(context context.Context, userID string) error {
	if err := service.userRepository.ClearRefreshToken(context, userID); err != nil {
		return fmt.Errorf("auth_service_revoke_failed: %w", err)
	}

	service.logger.InfoContext(context, "session_revoked", slog.String("user_id", userID))
	return nil
}

// # Credentials

/*
ChangePassword allows an authenticated user to update their credentials.

Parameters:
  - context: context.Context
  - userID: string
  - oldPassword: string
  - newPassword: string

Returns:
  - err: BadRequest on a wrong old password, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, oldPassword, newPassword string) error {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if !sec.VerifyPassword(user.PasswordHash, oldPassword) {
		return apperr.BadRequest(MsgInvalidOldPassword)
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	return nil
}
