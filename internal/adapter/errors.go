// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

var (
	// ErrUploadFailed is returned when the provider rejected or did not
	// complete an upload.
	ErrUploadFailed = errors.New("image upload failed")

	// ErrEmptyAssetURL is returned when the provider answered without a
	// usable URL.
	ErrEmptyAssetURL = errors.New("image provider returned no url")

	// ErrDeleteFailed is returned when the provider could not delete an
	// asset.
	ErrDeleteFailed = errors.New("image delete failed")

	// ErrEmptyFile is returned for zero-length uploads.
	ErrEmptyFile = errors.New("image file is empty")

	// ErrUnknownProvider is returned by NewImageStorage for an unsupported
	// provider name.
	ErrUnknownProvider = errors.New("unknown image storage provider")
)

// Provider HTTP status classes.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("provider unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrRateLimited         = errors.New("rate limited")
	ErrInternalServerError = errors.New("provider internal error")
)
