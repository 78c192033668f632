// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-account-keeper/models"
)

// TokenService owns the access/refresh token lifecycle. Exactly one refresh
// token per user is valid at a time.
type TokenService interface {
	// Issue creates a new token pair and replaces the stored refresh token
	// of the user, invalidating every previously issued one.
	Issue(ctx context.Context, userID int64) (models.TokenPair, error)

	// Rotate exchanges a valid, current refresh token for a new pair.
	// Presenting an already rotated token fails with [ErrRefreshTokenReused].
	Rotate(ctx context.Context, refreshToken string) (models.TokenPair, error)

	// Revoke clears the stored refresh token. It is idempotent.
	Revoke(ctx context.Context, userID int64) error

	// ParseAccessToken verifies an access token and returns its claims.
	ParseAccessToken(ctx context.Context, accessToken string) (models.Token, error)
}

// UserService covers account registration, credentials and profile fields.
type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)

	// Authenticate verifies credentials without issuing tokens.
	Authenticate(ctx context.Context, req models.LoginRequest) (models.User, error)

	// Login authenticates the user and issues a token pair.
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)

	Logout(ctx context.Context, userID int64) error
	CurrentUser(ctx context.Context, userID int64) (models.User, error)
	UpdateAccount(ctx context.Context, req models.UpdateAccountRequest) (models.User, error)

	// ChangePassword replaces the password and ends the current session.
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error
}

// UserImageService manages uploaded images and keeps at most one active
// image per user and type.
type UserImageService interface {
	// StoreImage uploads file to the image storage provider and records it.
	StoreImage(ctx context.Context, userID int64, imageType models.ImageType, file models.ImageFile) (models.UserImage, error)

	// UploadImage records an already uploaded asset as an inactive image.
	UploadImage(ctx context.Context, userID int64, imageType models.ImageType, asset models.Asset) (models.UserImage, error)

	// ActivateImage makes the image the active one of its type and mirrors
	// its URL onto the profile.
	ActivateImage(ctx context.Context, userID int64, req models.SetActiveImageRequest) (models.ActivationResult, error)

	// DeleteImage removes an inactive image from the provider and the store.
	DeleteImage(ctx context.Context, userID, imageID int64) error

	// ListImages returns the images of the user, newest first.
	ListImages(ctx context.Context, userID int64) ([]models.UserImage, error)
}

// UserServiceWrapper defines middleware composition for UserService.
// Implementations wrap an existing UserService to add behavior such as
// validating.
type UserServiceWrapper interface {
	Wrap(UserService) UserService
}

// UserImageServiceWrapper defines middleware composition for
// UserImageService.
type UserImageServiceWrapper interface {
	Wrap(UserImageService) UserImageService
}

// AssetCleaner takes over deletion of provider assets that could not be
// removed right away. Enqueue reports false when the asset was dropped.
type AssetCleaner interface {
	Enqueue(providerID string) bool
}
