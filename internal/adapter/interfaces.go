// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides clients for the external image hosting provider.
//
// The primary abstraction is [ImageStorage], which decouples the service
// layer from the concrete provider. Two implementations ship with the
// package: Cloudinary over its signed REST API ([NewCloudinaryStorage]) and
// any S3-compatible object store ([NewS3Storage]). [NewImageStorage] picks one
// from configuration.
//
// Provider failures are reported with the sentinel values defined in
// errors.go so that callers can use [errors.Is] without knowing which
// provider is configured.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-account-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/image_storage_mock.go -package=mock

// ImageStorage stores image binaries at an external provider. Both calls may
// be slow and fail; implementations do not retry.
type ImageStorage interface {
	// Upload stores file and returns its public URL and the provider
	// identifier needed to delete it later.
	Upload(ctx context.Context, file models.ImageFile) (models.Asset, error)

	// Delete removes the asset identified by providerID. Deleting an asset
	// that no longer exists succeeds.
	Delete(ctx context.Context, providerID string) error
}
