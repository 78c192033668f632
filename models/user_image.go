// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ImageType is the kind of a user uploaded image. The set of values is fixed.
type ImageType string

const (
	// ImageTypeAvatar marks images usable as the profile avatar.
	ImageTypeAvatar ImageType = "avatar"

	// ImageTypeCover marks images usable as the profile cover.
	ImageTypeCover ImageType = "cover"
)

// ImageTypes lists every supported image type.
var ImageTypes = []ImageType{ImageTypeAvatar, ImageTypeCover}

// Valid reports whether t is one of the supported image types.
func (t ImageType) Valid() bool {
	switch t {
	case ImageTypeAvatar, ImageTypeCover:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (t ImageType) String() string {
	return string(t)
}

// ProfileField returns the profile column mirrored by images of the given
// type.
func (t ImageType) ProfileField() string {
	switch t {
	case ImageTypeAvatar:
		return "avatar_url"
	case ImageTypeCover:
		return "cover_image_url"
	default:
		return ""
	}
}

// UserImage is one uploaded image asset owned by a user.
//
// For a given (UserID, Type) pair at most one record has Active set.
type UserImage struct {
	// ID is the server-assigned identifier of the image.
	ID int64 `json:"id"`

	// UserID references the owning user.
	UserID int64 `json:"userId"`

	// Type is the image kind (avatar or cover).
	Type ImageType `json:"imageType"`

	// URL is the public URL returned by the storage provider.
	URL string `json:"url"`

	// ProviderID identifies the asset at the storage provider and is used
	// to delete it.
	ProviderID string `json:"publicId"`

	// Active marks the image currently mirrored onto the user profile.
	Active bool `json:"isActive"`

	// CreatedAt is the upload time.
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the name of the database table
// associated with the UserImage model.
func (i UserImage) TableName() string {
	return "user_images"
}

// Asset is the result of a completed storage-provider upload.
type Asset struct {
	URL        string `json:"url"`
	ProviderID string `json:"publicId"`
}

// ImageFile is an image payload received from a client, ready to be handed
// to the storage provider.
type ImageFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}
