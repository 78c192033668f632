// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenIssuer          = "go-account-keeper"
	defaultAccessTokenDuration  = 15 * time.Minute
	defaultRefreshTokenDuration = 10 * 24 * time.Hour
	defaultQueryTimeout         = 5 * time.Second
	defaultMaxOpenConns         = 10
	defaultMaxIdleConns         = 4
	defaultRequestTimeout       = 30 * time.Second
	defaultAuthRateLimit        = 20
	defaultMaxUploadSize        = 10 << 20
	defaultProviderTimeout      = 20 * time.Second
	defaultImageStorage         = ProviderCloudinary
)

// Supported image storage providers.
const (
	ProviderCloudinary = "cloudinary"
	ProviderS3         = "s3"
)

// applyDefaults fills every optional zero value with its default.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.App.TokenIssuer == "" {
		cfg.App.TokenIssuer = defaultTokenIssuer
	}
	if cfg.App.AccessTokenDuration == 0 {
		cfg.App.AccessTokenDuration = defaultAccessTokenDuration
	}
	if cfg.App.RefreshTokenDuration == 0 {
		cfg.App.RefreshTokenDuration = defaultRefreshTokenDuration
	}
	if cfg.App.PasswordHashCost == 0 {
		cfg.App.PasswordHashCost = bcrypt.DefaultCost
	}

	if cfg.Storage.DB.QueryTimeout == 0 {
		cfg.Storage.DB.QueryTimeout = defaultQueryTimeout
	}
	if cfg.Storage.DB.MaxOpenConns == 0 {
		cfg.Storage.DB.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.Storage.DB.MaxIdleConns == 0 {
		cfg.Storage.DB.MaxIdleConns = defaultMaxIdleConns
	}

	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Server.AuthRateLimit == 0 {
		cfg.Server.AuthRateLimit = defaultAuthRateLimit
	}
	if cfg.Server.MaxUploadSize == 0 {
		cfg.Server.MaxUploadSize = defaultMaxUploadSize
	}

	if cfg.Adapter.ImageStorage.Provider == "" {
		cfg.Adapter.ImageStorage.Provider = defaultImageStorage
	}
	if cfg.Adapter.ImageStorage.RequestTimeout == 0 {
		cfg.Adapter.ImageStorage.RequestTimeout = defaultProviderTimeout
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.AccessTokenSignKey == "" || cfg.App.RefreshTokenSignKey == "" || cfg.App.HashKey == "" {
		return fmt.Errorf("%w: token sign keys and hash key are required", ErrInvalidAppConfigs)
	}
	if cfg.App.AccessTokenSignKey == cfg.App.RefreshTokenSignKey {
		return fmt.Errorf("%w: access and refresh tokens must use distinct sign keys", ErrInvalidAppConfigs)
	}
	if cfg.App.AccessTokenDuration >= cfg.App.RefreshTokenDuration {
		return fmt.Errorf("%w: access token must expire before refresh token", ErrInvalidAppConfigs)
	}
	if cfg.App.PasswordHashCost < bcrypt.MinCost || cfg.App.PasswordHashCost > bcrypt.MaxCost {
		return fmt.Errorf("%w: password hash cost out of range", ErrInvalidAppConfigs)
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	storage := cfg.Adapter.ImageStorage
	switch storage.Provider {
	case ProviderCloudinary:
		if storage.Cloudinary.CloudName == "" || storage.Cloudinary.APIKey == "" || storage.Cloudinary.APISecret == "" {
			return fmt.Errorf("%w: cloudinary credentials are required", ErrInvalidAdapterConfigs)
		}
	case ProviderS3:
		if storage.S3.Bucket == "" || storage.S3.Region == "" {
			return fmt.Errorf("%w: s3 bucket and region are required", ErrInvalidAdapterConfigs)
		}
	default:
		return fmt.Errorf("%w: unknown image storage provider %q", ErrInvalidAdapterConfigs, storage.Provider)
	}

	return nil
}
