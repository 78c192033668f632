// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/MKhiriev/go-account-keeper/models"
	"github.com/go-playground/validator/v10"
)

// Struct field names accepted by Validate for partial validation.
const (
	FieldFullName  = "FullName"
	FieldEmail     = "Email"
	FieldUsername  = "Username"
	FieldPassword  = "Password"
	FieldImageID   = "ImageID"
	FieldImageType = "ImageType"
)

const tagImageType = "imagetype"

// RequestValidator checks request models against their `validate` struct
// tags. Field names in messages are taken from the `json` tags so that they
// match what the client sent.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator constructs a RequestValidator with the custom
// "imagetype" rule registered.
func NewRequestValidator() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// RegisterValidation only fails on an empty tag or a nil func.
	_ = v.RegisterValidation(tagImageType, func(fl validator.FieldLevel) bool {
		return models.ImageType(fl.Field().String()).Valid()
	})

	return &RequestValidator{validate: v}
}

// Validate validates obj, or only the named struct fields when fields are
// given. The first violated rule is returned as a *FieldError.
func (v *RequestValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	if obj == nil {
		return ErrUnsupportedType
	}

	var err error
	if len(fields) > 0 {
		err = v.validate.StructPartialCtx(ctx, obj, fields...)
	} else {
		err = v.validate.StructCtx(ctx, obj)
	}
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return ErrUnsupportedType
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return toFieldError(validationErrors[0])
	}

	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}

func toFieldError(fe validator.FieldError) *FieldError {
	field := fe.Field()

	var msg string
	switch fe.Tag() {
	case "required":
		msg = field + " is required"
	case "required_without":
		msg = "username or email is required"
	case "excluded_with":
		msg = "either username or email must be given, not both"
	case "email":
		msg = "invalid email format"
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "alphanumunicode":
		msg = field + " must contain only letters and digits"
	case tagImageType:
		msg = fmt.Sprintf("%s must be one of: %s, %s", field, models.ImageTypeAvatar, models.ImageTypeCover)
	default:
		msg = "invalid " + field
	}

	return &FieldError{Field: field, Tag: fe.Tag(), Message: msg}
}
