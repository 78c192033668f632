// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-account-keeper/internal/validators"
	"github.com/MKhiriev/go-account-keeper/models"
)

// UserValidationService checks request payloads before they reach the
// wrapped UserService.
type UserValidationService struct {
	inner     UserService
	validator validators.Validator
}

func NewUserValidationService() UserServiceWrapper {
	return &UserValidationService{
		validator: validators.NewRequestValidator(),
	}
}

func (v *UserValidationService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	if err := validate(ctx, v.validator, req); err != nil {
		return models.User{}, err
	}
	return v.inner.Register(ctx, req)
}

func (v *UserValidationService) Authenticate(ctx context.Context, req models.LoginRequest) (models.User, error) {
	if err := validate(ctx, v.validator, req); err != nil {
		return models.User{}, err
	}
	return v.inner.Authenticate(ctx, req)
}

func (v *UserValidationService) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	if err := validate(ctx, v.validator, req); err != nil {
		return models.LoginResponse{}, err
	}
	return v.inner.Login(ctx, req)
}

func (v *UserValidationService) Logout(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrUnauthorizedRequest
	}
	return v.inner.Logout(ctx, userID)
}

func (v *UserValidationService) CurrentUser(ctx context.Context, userID int64) (models.User, error) {
	if userID <= 0 {
		return models.User{}, ErrUnauthorizedRequest
	}
	return v.inner.CurrentUser(ctx, userID)
}

func (v *UserValidationService) UpdateAccount(ctx context.Context, req models.UpdateAccountRequest) (models.User, error) {
	if req.UserID <= 0 {
		return models.User{}, ErrUnauthorizedRequest
	}
	if err := validate(ctx, v.validator, req); err != nil {
		return models.User{}, err
	}
	return v.inner.UpdateAccount(ctx, req)
}

func (v *UserValidationService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	if req.UserID <= 0 {
		return ErrUnauthorizedRequest
	}
	if err := validate(ctx, v.validator, req); err != nil {
		return err
	}
	return v.inner.ChangePassword(ctx, req)
}

func (v *UserValidationService) Wrap(wrapped UserService) UserService {
	v.inner = wrapped
	return v
}

// UserImageValidationService checks identifiers and image types before they
// reach the wrapped UserImageService.
type UserImageValidationService struct {
	inner     UserImageService
	validator validators.Validator
}

func NewUserImageValidationService() UserImageServiceWrapper {
	return &UserImageValidationService{
		validator: validators.NewRequestValidator(),
	}
}

func (v *UserImageValidationService) StoreImage(ctx context.Context, userID int64, imageType models.ImageType, file models.ImageFile) (models.UserImage, error) {
	if userID <= 0 {
		return models.UserImage{}, ErrUnauthorizedRequest
	}
	if err := v.validateImageType(ctx, imageType); err != nil {
		return models.UserImage{}, err
	}
	return v.inner.StoreImage(ctx, userID, imageType, file)
}

func (v *UserImageValidationService) UploadImage(ctx context.Context, userID int64, imageType models.ImageType, asset models.Asset) (models.UserImage, error) {
	if userID <= 0 {
		return models.UserImage{}, ErrUnauthorizedRequest
	}
	if err := v.validateImageType(ctx, imageType); err != nil {
		return models.UserImage{}, err
	}
	return v.inner.UploadImage(ctx, userID, imageType, asset)
}

func (v *UserImageValidationService) ActivateImage(ctx context.Context, userID int64, req models.SetActiveImageRequest) (models.ActivationResult, error) {
	if userID <= 0 {
		return models.ActivationResult{}, ErrUnauthorizedRequest
	}
	if err := validate(ctx, v.validator, req); err != nil {
		return models.ActivationResult{}, err
	}
	return v.inner.ActivateImage(ctx, userID, req)
}

func (v *UserImageValidationService) DeleteImage(ctx context.Context, userID, imageID int64) error {
	if userID <= 0 {
		return ErrUnauthorizedRequest
	}
	if imageID <= 0 {
		return ErrInvalidImageID
	}
	return v.inner.DeleteImage(ctx, userID, imageID)
}

func (v *UserImageValidationService) ListImages(ctx context.Context, userID int64) ([]models.UserImage, error) {
	if userID <= 0 {
		return nil, ErrUnauthorizedRequest
	}
	return v.inner.ListImages(ctx, userID)
}

func (v *UserImageValidationService) Wrap(wrapped UserImageService) UserImageService {
	v.inner = wrapped
	return v
}

func (v *UserImageValidationService) validateImageType(ctx context.Context, imageType models.ImageType) error {
	err := v.validator.Validate(ctx, models.SetActiveImageRequest{ImageType: imageType}, validators.FieldImageType)
	if err != nil {
		return ErrInvalidImageType.wrap(err)
	}
	return nil
}

// validate runs the validator and turns a rule violation into a bad request
// carrying the violation message.
func validate(ctx context.Context, validator validators.Validator, req any) error {
	err := validator.Validate(ctx, req)
	if err == nil {
		return nil
	}

	var fieldErr *validators.FieldError
	if errors.As(err, &fieldErr) {
		return newError(KindBadRequest, fieldErr.Message).wrap(err)
	}
	return ErrInternal.wrap(err)
}
