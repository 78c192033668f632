// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"

	"github.com/MKhiriev/go-account-keeper/internal/adapter"
	"github.com/MKhiriev/go-account-keeper/internal/store"
)

// errorMapper translates repository and adapter errors into service errors.
type errorMapper struct {
	classifier store.RetryClassifier
}

// mapStoreError converts a repository error. Errors already produced by this
// package pass through unchanged.
func (m errorMapper) mapStoreError(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}

	switch {
	case errors.Is(err, store.ErrUserAlreadyExists):
		return ErrUserAlreadyExists.wrap(err)
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound.wrap(err)
	case errors.Is(err, store.ErrRefreshTokenMismatch):
		return ErrRefreshTokenReused.wrap(err)
	case errors.Is(err, store.ErrImageNotFound):
		return ErrImageNotFound.wrap(err)
	case errors.Is(err, store.ErrImageIsActive):
		return ErrActiveImageDelete.wrap(err)
	}

	if m.classifier != nil && m.classifier.IsRetryable(err) {
		return ErrInternal.retryable(err)
	}
	return ErrInternal.wrap(err)
}

// mapUploadError converts a failed provider upload.
func mapUploadError(err error) error {
	if errors.Is(err, adapter.ErrEmptyFile) {
		return newError(KindBadRequest, "image file is required").wrap(err)
	}
	return ErrUploadFailed.wrap(err)
}

// mapProviderDeleteError converts a failed provider delete. Provider outages
// and throttling are worth retrying.
func mapProviderDeleteError(err error) error {
	switch {
	case errors.Is(err, adapter.ErrBadRequest),
		errors.Is(err, adapter.ErrUnauthorized),
		errors.Is(err, adapter.ErrForbidden):
		return ErrImageStorageFailed.wrap(err)
	default:
		return ErrImageStorageFailed.retryable(err)
	}
}
