// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-account-keeper/internal/config"
	"github.com/MKhiriev/go-account-keeper/internal/logger"
)

// NewImageStorage constructs the provider selected by cfg.Provider.
func NewImageStorage(ctx context.Context, cfg config.ImageStorage, log *logger.Logger) (ImageStorage, error) {
	switch cfg.Provider {
	case config.ProviderCloudinary:
		return NewCloudinaryStorage(cfg.Cloudinary, cfg.RequestTimeout, log)
	case config.ProviderS3:
		return NewS3Storage(ctx, cfg.S3, cfg.RequestTimeout, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
