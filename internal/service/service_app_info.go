// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-account-keeper/internal/config"
	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/models"
)

var ErrVersionIsNotSpecified = errors.New("app version is not specified")

// AppInfoService reports the version of the running server.
type AppInfoService interface {
	GetAppInfo(ctx context.Context) models.AppInfo
}

type appInfoService struct {
	info models.AppInfo

	logger *logger.Logger
}

// NewAppInfoService prefers the configured version over the one baked in at
// build time.
func NewAppInfoService(cfg config.App, build models.AppBuildInfo, logger *logger.Logger) (AppInfoService, error) {
	version := cfg.Version
	if version == "" {
		version = build.BuildVersion()
	}
	if version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{
		info: models.AppInfo{
			Version:     version,
			BuildDate:   build.BuildDate(),
			BuildCommit: build.BuildCommit(),
		},
		logger: logger,
	}, nil
}

func (s *appInfoService) GetAppInfo(ctx context.Context) models.AppInfo {
	return s.info
}
