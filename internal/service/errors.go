// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable classification of a service failure. The transport
// layer maps kinds onto status codes.
type ErrorKind string

const (
	KindBadRequest   ErrorKind = "bad_request"
	KindUnauthorized ErrorKind = "unauthorized"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindUploadError  ErrorKind = "upload_error"
	KindExternal     ErrorKind = "external_error"
	KindInternal     ErrorKind = "internal_error"
)

// Error is returned by every service operation. Message is safe to show to
// the client; the underlying cause is only reachable through Unwrap.
type Error struct {
	Kind    ErrorKind
	Message string

	// Retryable is set for internal and external failures that may succeed
	// on a later attempt.
	Retryable bool

	cause error
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors of the same kind and message, so wrapped copies of a
// sentinel still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// wrap returns a copy of e carrying cause.
func (e *Error) wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Retryable: e.Retryable, cause: cause}
}

// retryable returns a copy of e flagged as retryable.
func (e *Error) retryable(cause error) *Error {
	wrapped := e.wrap(cause)
	wrapped.Retryable = true
	return wrapped
}

var (
	ErrAllFieldsRequired   = newError(KindBadRequest, "all fields are required")
	ErrIdentifierRequired  = newError(KindBadRequest, "username or email is required")
	ErrIdentifierAmbiguous = newError(KindBadRequest, "either username or email must be given, not both")
	ErrInvalidOldPassword  = newError(KindBadRequest, "invalid old password")
	ErrInvalidImageType    = newError(KindBadRequest, "invalid image type")
	ErrInvalidImageID      = newError(KindBadRequest, "invalid image id")

	ErrInvalidCredentials  = newError(KindUnauthorized, "invalid user credentials")
	ErrUnauthorizedRequest = newError(KindUnauthorized, "unauthorized request")
	ErrInvalidAccessToken  = newError(KindUnauthorized, "invalid access token")
	ErrInvalidRefreshToken = newError(KindUnauthorized, "invalid refresh token")
	ErrRefreshTokenReused  = newError(KindUnauthorized, "refresh token is expired or used")

	ErrUserNotFound  = newError(KindNotFound, "user does not exist")
	ErrImageNotFound = newError(KindNotFound, "image not found")

	ErrUserAlreadyExists = newError(KindConflict, "user with email or username already exists")
	ErrEmailTaken        = newError(KindConflict, "email is already in use")
	ErrActiveImageDelete = newError(KindConflict, "cannot delete active image")

	ErrUploadFailed = newError(KindUploadError, "error while uploading image")

	ErrImageStorageFailed = newError(KindExternal, "image storage provider failed")

	ErrInternal            = newError(KindInternal, "something went wrong")
	ErrTokenCreationFailed = newError(KindInternal, "error while generating tokens")
)

// KindOf returns the kind of err. Errors that did not originate in this
// package are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRetryable reports whether the caller may retry the failed operation.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}

// MessageOf returns the client-safe message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrInternal.Message
}
