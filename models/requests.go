// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// RegisterRequest carries the fields required to create an account.
type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,max=128"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=3,max=32,alphanumunicode"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest identifies a user by username or email.
// Exactly one identifier has to be supplied.
type LoginRequest struct {
	Username string `json:"username" validate:"required_without=Email,excluded_with=Email"`
	Email    string `json:"email" validate:"required_without=Username,omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token in the request body when it is not
// sent as a cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest carries the current and the desired password.
type ChangePasswordRequest struct {
	UserID      int64  `json:"-"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// UpdateAccountRequest carries the editable profile fields.
type UpdateAccountRequest struct {
	UserID   int64  `json:"-"`
	FullName string `json:"fullName" validate:"required,max=128"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

// SetActiveImageRequest selects the image that becomes active for its type.
type SetActiveImageRequest struct {
	ImageID   int64     `json:"imageId" validate:"required,gt=0"`
	ImageType ImageType `json:"imageType" validate:"required,imagetype"`
}
