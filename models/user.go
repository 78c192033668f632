// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// User represents an account of the platform: identity, credentials and the
// public profile fields mirrored from the active images.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Username is the unique, lower-cased handle of the user.
	Username string `json:"username"`

	// Email is the unique, lower-cased e-mail address of the user.
	Email string `json:"email"`

	// FullName is the display name of the user.
	FullName string `json:"fullName"`

	// Avatar is the URL of the currently active avatar image, empty when
	// no avatar is active.
	Avatar string `json:"avatar"`

	// CoverImage is the URL of the currently active cover image, empty when
	// no cover is active.
	CoverImage string `json:"coverImage"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// It is never serialized.
	PasswordHash string `json:"-"`

	// RefreshTokenHash is the digest of the single refresh token currently
	// valid for this user. Empty when the user has no active session.
	RefreshTokenHash string `json:"-"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp of the last modification of the record.
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// UserUpdate describes a partial update of a user record.
// Only non-nil fields are written.
type UserUpdate struct {
	UserID   int64
	FullName *string
	Email    *string

	// PasswordHash replaces the stored credential hash when set.
	PasswordHash *string

	// ClearRefreshToken drops the stored refresh token digest, revoking the
	// current session of the user.
	ClearRefreshToken bool
}

// IsEmpty reports whether the update carries no changes.
func (u UserUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Email == nil && u.PasswordHash == nil && !u.ClearRefreshToken
}
