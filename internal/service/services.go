// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"fmt"

	"github.com/MKhiriev/go-account-keeper/internal/adapter"
	"github.com/MKhiriev/go-account-keeper/internal/config"
	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/store"
	"github.com/MKhiriev/go-account-keeper/models"
)

type Services struct {
	AppInfoService   AppInfoService
	TokenService     TokenService
	UserService      UserService
	UserImageService UserImageService
}

// NewServices wires the services on top of storages and the image storage
// provider. assetCleaner may be nil. User-facing services are wrapped with
// request validation.
func NewServices(storages *store.Storages, imageStorage adapter.ImageStorage, assetCleaner AssetCleaner, cfg config.StructuredConfig, build models.AppBuildInfo, logger *logger.Logger) (*Services, error) {
	appInfoService, err := NewAppInfoService(cfg.App, build, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating app info service: %w", err)
	}

	tokenService := NewTokenService(storages, cfg.App, logger)

	return &Services{
		AppInfoService:   appInfoService,
		TokenService:     tokenService,
		UserService:      NewUserValidationService().Wrap(NewUserService(storages, tokenService, cfg.App, logger)),
		UserImageService: NewUserImageValidationService().Wrap(NewUserImageService(storages, imageStorage, assetCleaner, logger)),
	}, nil
}
