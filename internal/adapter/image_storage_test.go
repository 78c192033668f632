// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-account-keeper/internal/config"
	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageStorage(t *testing.T) {
	ctx := context.Background()

	cloudinary, err := NewImageStorage(ctx, config.ImageStorage{
		Provider:       config.ProviderCloudinary,
		RequestTimeout: time.Second,
		Cloudinary:     config.Cloudinary{CloudName: "demo", APIKey: "k", APISecret: "s"},
	}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &cloudinaryStorage{}, cloudinary)

	s3Storage, err := NewImageStorage(ctx, config.ImageStorage{
		Provider: config.ProviderS3,
		S3:       config.S3{Bucket: "b", Region: "us-east-1", AccessKey: "a", SecretKey: "s"},
	}, logger.Nop())
	require.NoError(t, err)
	assert.NotNil(t, s3Storage)

	_, err = NewImageStorage(ctx, config.ImageStorage{Provider: "ftp"}, logger.Nop())
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
