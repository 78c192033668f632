// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/go-account-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository persists user accounts and the single refresh token digest
// attached to each of them.
type UserRepository interface {
	// CreateUser inserts a new account and returns it with server-assigned
	// fields. Returns [ErrUserAlreadyExists] on a username or e-mail clash.
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// FindUserByIdentifier looks a user up by username OR e-mail; empty
	// identifiers are ignored. Returns [ErrUserNotFound] when nothing matches.
	FindUserByIdentifier(ctx context.Context, username, email string) (models.User, error)

	// FindUserByID returns the user with the given ID or [ErrUserNotFound].
	FindUserByID(ctx context.Context, userID int64) (models.User, error)

	// UpdateUser applies a partial update and returns the stored record.
	UpdateUser(ctx context.Context, update models.UserUpdate) (models.User, error)

	// SetRefreshToken unconditionally replaces the stored digest.
	SetRefreshToken(ctx context.Context, userID int64, tokenHash string) error

	// SwapRefreshToken replaces oldHash with newHash only if oldHash is still
	// the stored digest. Returns [ErrRefreshTokenMismatch] otherwise.
	SwapRefreshToken(ctx context.Context, userID int64, oldHash, newHash string) error

	// ClearRefreshToken drops the stored digest.
	ClearRefreshToken(ctx context.Context, userID int64) error
}

// UserImageRepository persists uploaded image records and keeps at most one
// active image per (user, type).
type UserImageRepository interface {
	// CreateImage inserts an inactive image record.
	CreateImage(ctx context.Context, image models.UserImage) (models.UserImage, error)

	// ListImages returns all images of the user, newest first.
	ListImages(ctx context.Context, userID int64) ([]models.UserImage, error)

	// FindImage returns the image if it is owned by userID.
	FindImage(ctx context.Context, userID, imageID int64) (models.UserImage, error)

	// ActivateImage atomically deactivates every image of the user and type,
	// activates imageID and mirrors its URL onto the profile.
	ActivateImage(ctx context.Context, userID, imageID int64, imageType models.ImageType) (models.User, models.UserImage, error)

	// DeleteImage removes an inactive image owned by userID. beforeDelete is
	// invoked with the locked record before the row is removed; if it fails
	// the record is kept.
	DeleteImage(ctx context.Context, userID, imageID int64, beforeDelete func(models.UserImage) error) error
}
