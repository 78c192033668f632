// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors produced while decoding a request, before the service layer
// is reached. All of them are answered with 400 Bad Request.
var (
	// ErrInvalidJSON is returned when the body is not a single JSON object
	// matching the expected request model.
	ErrInvalidJSON = errors.New("invalid JSON body")

	// ErrMissingAccessToken is returned by the auth middleware when neither the
	// "Authorization" header nor the access token cookie is present.
	ErrMissingAccessToken = errors.New("access token is missing")

	// ErrMissingRefreshToken is returned when neither the refresh token cookie
	// nor the request body carries a refresh token.
	ErrMissingRefreshToken = errors.New("refresh token is missing")

	// ErrInvalidImageID is returned when the image id path parameter is not a
	// positive integer.
	ErrInvalidImageID = errors.New("invalid image id")

	// ErrInvalidMultipartForm is returned when an image upload is not a
	// readable multipart form or exceeds the upload size limit.
	ErrInvalidMultipartForm = errors.New("invalid multipart form")

	// ErrMissingImageFile is returned when the multipart form has no "image" part.
	ErrMissingImageFile = errors.New("image file is required")
)
