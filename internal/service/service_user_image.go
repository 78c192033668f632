// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-account-keeper/internal/adapter"
	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/store"
	"github.com/MKhiriev/go-account-keeper/models"
)

// userImageService is the concrete implementation of UserImageService.
type userImageService struct {
	imageRepository store.UserImageRepository
	imageStorage    adapter.ImageStorage
	assetCleaner    AssetCleaner
	errorMapper     errorMapper
	logger          *logger.Logger
}

// NewUserImageService constructs a UserImageService. imageStorage is the
// explicitly configured provider client; nothing is read from global state.
// assetCleaner may be nil, in which case orphaned assets are only logged.
func NewUserImageService(storages *store.Storages, imageStorage adapter.ImageStorage, assetCleaner AssetCleaner, logger *logger.Logger) UserImageService {
	return &userImageService{
		imageRepository: storages.UserImageRepository,
		imageStorage:    imageStorage,
		assetCleaner:    assetCleaner,
		errorMapper:     errorMapper{classifier: storages.RetryClassifier},
		logger:          logger,
	}
}

// StoreImage uploads file and records it as an inactive image. When the
// record cannot be saved the uploaded asset is deleted again, or handed to the
// asset cleaner if that delete fails too.
func (s *userImageService) StoreImage(ctx context.Context, userID int64, imageType models.ImageType, file models.ImageFile) (models.UserImage, error) {
	log := logger.FromContext(ctx)

	if !imageType.Valid() {
		return models.UserImage{}, ErrInvalidImageType
	}

	asset, err := s.imageStorage.Upload(ctx, file)
	if err != nil {
		log.Err(err).Str("func", "*userImageService.StoreImage").Int64("user_id", userID).Msg("error uploading image")
		return models.UserImage{}, mapUploadError(err)
	}

	image, err := s.UploadImage(ctx, userID, imageType, asset)
	if err != nil {
		if delErr := s.imageStorage.Delete(context.WithoutCancel(ctx), asset.ProviderID); delErr != nil {
			s.handOverOrphan(ctx, asset.ProviderID, delErr)
		}
		return models.UserImage{}, err
	}

	return image, nil
}

// UploadImage records asset as a new inactive image of the given type.
func (s *userImageService) UploadImage(ctx context.Context, userID int64, imageType models.ImageType, asset models.Asset) (models.UserImage, error) {
	if !imageType.Valid() {
		return models.UserImage{}, ErrInvalidImageType
	}
	if asset.URL == "" || asset.ProviderID == "" {
		return models.UserImage{}, ErrUploadFailed
	}

	image, err := s.imageRepository.CreateImage(ctx, models.UserImage{
		UserID:     userID,
		Type:       imageType,
		URL:        asset.URL,
		ProviderID: asset.ProviderID,
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*userImageService.UploadImage").Int64("user_id", userID).Msg("error saving image")
		return models.UserImage{}, s.errorMapper.mapStoreError(err)
	}

	return image, nil
}

// ActivateImage deactivates every image of the same user and type, activates
// the requested one and mirrors its URL onto the profile, all in one
// transaction.
func (s *userImageService) ActivateImage(ctx context.Context, userID int64, req models.SetActiveImageRequest) (models.ActivationResult, error) {
	if !req.ImageType.Valid() {
		return models.ActivationResult{}, ErrInvalidImageType
	}

	user, image, err := s.imageRepository.ActivateImage(ctx, userID, req.ImageID, req.ImageType)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*userImageService.ActivateImage").
			Int64("user_id", userID).
			Int64("image_id", req.ImageID).
			Msg("error activating image")
		return models.ActivationResult{}, s.errorMapper.mapStoreError(err)
	}

	return models.ActivationResult{User: user, Image: image}, nil
}

// DeleteImage removes an inactive image. The provider asset is deleted while
// the record is locked; if that fails the record stays.
func (s *userImageService) DeleteImage(ctx context.Context, userID, imageID int64) error {
	log := logger.FromContext(ctx)

	err := s.imageRepository.DeleteImage(ctx, userID, imageID, func(image models.UserImage) error {
		if err := s.imageStorage.Delete(ctx, image.ProviderID); err != nil {
			log.Err(err).Str("func", "*userImageService.DeleteImage").Str("provider_id", image.ProviderID).Msg("provider delete failed")
			return mapProviderDeleteError(err)
		}
		return nil
	})
	if err != nil {
		return s.errorMapper.mapStoreError(err)
	}

	return nil
}

func (s *userImageService) ListImages(ctx context.Context, userID int64) ([]models.UserImage, error) {
	images, err := s.imageRepository.ListImages(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*userImageService.ListImages").Int64("user_id", userID).Msg("error listing images")
		return nil, s.errorMapper.mapStoreError(err)
	}
	return images, nil
}

func (s *userImageService) handOverOrphan(ctx context.Context, providerID string, cause error) {
	log := logger.FromContext(ctx)
	if s.assetCleaner != nil && s.assetCleaner.Enqueue(providerID) {
		log.Warn().Err(cause).Str("func", "*userImageService.StoreImage").Str("provider_id", providerID).Msg("asset delete deferred to cleaner")
		return
	}
	log.Err(cause).Str("func", "*userImageService.StoreImage").Str("provider_id", providerID).Msg("orphaned asset left at provider")
}
