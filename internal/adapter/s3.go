// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/MKhiriev/go-account-keeper/internal/config"
	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/utils"
	"github.com/MKhiriev/go-account-keeper/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3KeyPrefix = "images/"

// s3API is the subset of *s3.Client used by s3Storage.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// s3Storage keeps images in an S3-compatible bucket (AWS S3, MinIO).
type s3Storage struct {
	client        s3API
	bucket        string
	publicBaseURL string
	newKey        func() string
	logger        *logger.Logger
}

// NewS3Storage builds an explicitly configured S3 client. Static credentials
// are used when both keys are set; otherwise the default AWS credential
// chain applies. A custom endpoint switches to path-style addressing.
func NewS3Storage(ctx context.Context, cfg config.S3, timeout time.Duration, log *logger.Logger) (ImageStorage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, errors.New("s3 bucket and region are required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if timeout > 0 {
			o.HTTPClient = awshttp.NewBuildableClient().WithTimeout(timeout)
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Storage(client, cfg, log), nil
}

func newS3Storage(client s3API, cfg config.S3, log *logger.Logger) *s3Storage {
	generator := utils.NewUUIDGenerator()
	return &s3Storage{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: publicBaseURL(cfg),
		newKey:        generator.Generate,
		logger:        log,
	}
}

// Upload implements [ImageStorage]. The object key doubles as provider ID.
func (s *s3Storage) Upload(ctx context.Context, file models.ImageFile) (models.Asset, error) {
	log := logger.FromContext(ctx)

	if len(file.Content) == 0 {
		return models.Asset{}, ErrEmptyFile
	}

	key := s3KeyPrefix + s.newKey() + strings.ToLower(path.Ext(file.Filename))

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Content),
		ContentLength: aws.Int64(int64(len(file.Content))),
	}
	if file.ContentType != "" {
		input.ContentType = aws.String(file.ContentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		log.Err(err).Str("func", "*s3Storage.Upload").Str("key", key).Msg("put object failed")
		return models.Asset{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	return models.Asset{URL: s.publicBaseURL + "/" + key, ProviderID: key}, nil
}

// Delete implements [ImageStorage]. S3 reports success for missing keys.
func (s *s3Storage) Delete(ctx context.Context, providerID string) error {
	log := logger.FromContext(ctx)

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(providerID),
	})
	if err != nil {
		log.Err(err).Str("func", "*s3Storage.Delete").Str("key", providerID).Msg("delete object failed")
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	return nil
}

// publicBaseURL returns the URL prefix under which uploaded keys are served.
func publicBaseURL(cfg config.S3) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}
