// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// APIResponse is the envelope of every successful JSON response.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// APIError is the envelope of every failed JSON response. Kind is one of the
// stable error kinds exposed by the service layer.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	User User `json:"user"`
	TokenPair
}

// ActivationResult is returned after an image has been activated: the updated
// user profile and the activated image.
type ActivationResult struct {
	User  User      `json:"user"`
	Image UserImage `json:"image"`
}

// ImagesResponse lists the images of a user, newest first.
type ImagesResponse struct {
	Images []UserImage `json:"images"`
	Length int         `json:"length"`
}
