// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrInvalidRequest  = errors.New("invalid request")
)

// FieldError describes the first rule a request violated. Message is safe to
// show to the client.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// Unwrap makes every FieldError match [ErrInvalidRequest].
func (e *FieldError) Unwrap() error {
	return ErrInvalidRequest
}
