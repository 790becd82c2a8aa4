// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/platform/media"
	"github.com/taibuivan/tubely/internal/users/auth"
	"github.com/taibuivan/tubely/pkg/pointer"
	"github.com/taibuivan/tubely/pkg/textnorm"
)

// # Service Layer

// Service orchestrates business logic for user accounts.
//
// It ensures that profile updates and image replacements follow established
// business constraints.
type Service struct {
	accountRepository Repository
	mediaHost         media.Host
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(accountRepo Repository, host media.Host, logger *slog.Logger) *Service {
	return &Service{
		accountRepository: accountRepo,
		mediaHost:         host,
		logger:            logger,
	}
}

// # Profile Management

/*
GetCurrentUser retrieves the full private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetCurrentUser(context context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_current_user_failed: %w", err)
	}
	return user, nil
}

// UpdateAccountInput defines the mutable subset of user profile fields.
// Nil fields are left unchanged.
type UpdateAccountInput struct {
	Fullname *string
	Email    *string
}

/*
UpdateAccount applies a partial set of changes to a user's account details.

Description: Only the provided fields are written, so a concurrent image
replacement is never overwritten. An email that belongs to a different
account is rejected.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateAccountInput

Returns:
  - *auth.User: The updated user profile
  - error: BadRequest, Conflict or storage failures
*/
func (service *Service) UpdateAccount(context context.Context, userID string, input UpdateAccountInput) (*auth.User, error) {
	if input.Fullname == nil && input.Email == nil {
		return nil, apperr.BadRequest(MsgNothingToUpdate)
	}

	var fullname, email *string
	if input.Fullname != nil {
		fullname = pointer.To(textnorm.Display(*input.Fullname))
	}

	if input.Email != nil {
		email = pointer.To(textnorm.Email(*input.Email))

		owner, err := service.accountRepository.FindByEmail(context, *email)
		switch {
		case err == nil && owner.ID != userID:
			return nil, apperr.Conflict(MsgEmailTaken)
		case err != nil && !apperr.IsNotFound(err):
			return nil, fmt.Errorf("account_service_email_lookup_failed: %w", err)
		}
	}

	if err := service.accountRepository.UpdateDetails(context, userID, fullname, email); err != nil {
		if apperr.IsConflict(err) {
			return nil, apperr.Conflict(MsgEmailTaken)
		}
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_reload_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_account_updated", slog.String("user_id", userID))
	return user, nil
}

// # Images

// image selects which profile image a replacement targets.
type image struct {
	name         string
	field        auth.ImageField
	missing      string
	uploadFailed string
	current      func(*auth.User) string
	set          func(*auth.User, string)
}

var (
	avatarImage = image{
		name:         "avatar",
		field:        auth.ImageAvatar,
		missing:      MsgAvatarMissing,
		uploadFailed: MsgAvatarUploadFailed,
		current:      func(user *auth.User) string { return user.Avatar },
		set:          func(user *auth.User, url string) { user.Avatar = url },
	}
	coverImage = image{
		name:         "cover_image",
		field:        auth.ImageCover,
		missing:      MsgCoverMissing,
		uploadFailed: MsgCoverUploadFailed,
		current:      func(user *auth.User) string { return user.CoverImage },
		set:          func(user *auth.User, url string) { user.CoverImage = url },
	}
)

// UpdateAvatar replaces the user's avatar with the spooled file at localPath.
func (service *Service) UpdateAvatar(context context.Context, userID, localPath string) (*auth.User, error) {
	return service.replaceImage(context, userID, localPath, avatarImage)
}

// UpdateCoverImage replaces the user's cover image with the spooled file at localPath.
func (service *Service) UpdateCoverImage(context context.Context, userID, localPath string) (*auth.User, error) {
	return service.replaceImage(context, userID, localPath, coverImage)
}

/*
replaceImage uploads a new image, swaps its URL in, then deletes the previous asset.

Description: The swap is conditional on the URL read before the upload. When
another request replaced the image in between, the new upload is discarded and
Conflict is returned; the previous asset is deleted only after a matched swap.

Parameters:
  - context: context.Context
  - userID: string
  - localPath: string (Spooled multipart file, consumed)
  - target: image

Returns:
  - *auth.User: The updated user profile
  - error: BadRequest when the file is missing or the upload fails, Conflict on a lost race
*/
func (service *Service) replaceImage(context context.Context, userID, localPath string, target image) (*auth.User, error) {
	if localPath == "" {
		return nil, apperr.BadRequest(target.missing)
	}

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		media.Discard(localPath)
		return nil, fmt.Errorf("account_service_%s_lookup_failed: %w", target.name, err)
	}

	url, err := service.mediaHost.Upload(context, localPath)
	if err != nil {
		service.logger.WarnContext(context, target.name+"_upload_failed", slog.String("error", err.Error()))
		return nil, apperr.BadRequest(target.uploadFailed)
	}

	previous := target.current(user)

	swapped, err := service.accountRepository.SwapImage(context, userID, target.field, previous, url)
	if err != nil {
		service.deleteAsset(context, url)
		return nil, fmt.Errorf("account_service_%s_update_failed: %w", target.name, err)
	}
	if !swapped {
		service.deleteAsset(context, url)
		return nil, apperr.Conflict(MsgImageChanged)
	}

	if previous != "" {
		service.deleteAsset(context, previous)
	}
	target.set(user, url)

	service.logger.InfoContext(context, "user_"+target.name+"_updated", slog.String("user_id", userID))
	return user, nil
}

func (service *Service) deleteAsset(context context.Context, url string) {
	if err := service.mediaHost.Delete(context, url); err != nil {
		service.logger.WarnContext(context, "media_delete_failed",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}
