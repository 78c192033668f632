// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-account-keeper/internal/config"
	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/utils"
	"github.com/MKhiriev/go-account-keeper/models"
)

const defaultCloudinaryBaseURL = "https://api.cloudinary.com"

// cloudinaryStorage talks to the Cloudinary upload API with signed requests.
type cloudinaryStorage struct {
	client    *utils.HTTPClient
	cloudName string
	apiKey    string
	apiSecret string
	now       func() time.Time
	logger    *logger.Logger
}

type cloudinaryUploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	PublicID  string `json:"public_id"`
}

type cloudinaryDestroyResponse struct {
	Result string `json:"result"`
}

// NewCloudinaryStorage constructs a Cloudinary-backed [ImageStorage]. The
// credentials are owned by the returned value; nothing is registered
// globally.
func NewCloudinaryStorage(cfg config.Cloudinary, timeout time.Duration, log *logger.Logger) (ImageStorage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary credentials are required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultCloudinaryBaseURL
	}

	return &cloudinaryStorage{
		client:    utils.NewHTTPClient(baseURL, timeout),
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		now:       time.Now,
		logger:    log,
	}, nil
}

// Upload implements [ImageStorage]. It POSTs the file as multipart form data
// to /v1_1/{cloud}/image/upload.
func (c *cloudinaryStorage) Upload(ctx context.Context, file models.ImageFile) (models.Asset, error) {
	log := logger.FromContext(ctx)

	if len(file.Content) == 0 {
		return models.Asset{}, ErrEmptyFile
	}

	params := map[string]string{
		"timestamp": c.timestamp(),
	}
	form := c.signedForm(params)

	var result cloudinaryUploadResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", uploadFilename(file), bytes.NewReader(file.Content)).
		SetFormData(form).
		SetResult(&result).
		Post(c.endpoint("upload"))
	if err != nil {
		log.Err(err).Str("func", "*cloudinaryStorage.Upload").Msg("upload request failed")
		return models.Asset{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if err = mapHTTPError(resp); err != nil {
		log.Err(err).Str("func", "*cloudinaryStorage.Upload").Int("status", resp.StatusCode()).Msg("provider rejected upload")
		return models.Asset{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	url := result.SecureURL
	if url == "" {
		url = result.URL
	}
	if url == "" || result.PublicID == "" {
		return models.Asset{}, ErrEmptyAssetURL
	}

	return models.Asset{URL: url, ProviderID: result.PublicID}, nil
}

// Delete implements [ImageStorage]. A "not found" result is treated as
// already deleted.
func (c *cloudinaryStorage) Delete(ctx context.Context, providerID string) error {
	log := logger.FromContext(ctx)

	params := map[string]string{
		"public_id": providerID,
		"timestamp": c.timestamp(),
	}

	var result cloudinaryDestroyResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(c.signedForm(params)).
		SetResult(&result).
		Post(c.endpoint("destroy"))
	if err != nil {
		log.Err(err).Str("func", "*cloudinaryStorage.Delete").Msg("destroy request failed")
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	if err = mapHTTPError(resp); err != nil {
		log.Err(err).Str("func", "*cloudinaryStorage.Delete").Int("status", resp.StatusCode()).Msg("provider rejected destroy")
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}

	switch result.Result {
	case "ok", "not found":
		return nil
	default:
		return fmt.Errorf("%w: provider result %q", ErrDeleteFailed, result.Result)
	}
}

func (c *cloudinaryStorage) endpoint(action string) string {
	return "/v1_1/" + c.cloudName + "/image/" + action
}

func (c *cloudinaryStorage) timestamp() string {
	return strconv.FormatInt(c.now().Unix(), 10)
}

// signedForm adds api_key and signature to params.
func (c *cloudinaryStorage) signedForm(params map[string]string) map[string]string {
	form := make(map[string]string, len(params)+2)
	for k, v := range params {
		form[k] = v
	}
	form["api_key"] = c.apiKey
	form["signature"] = cloudinarySignature(params, c.apiSecret)
	return form
}

// cloudinarySignature is the hex SHA-1 of the alphabetically sorted
// "key=value" pairs joined by "&", followed by the API secret.
func cloudinarySignature(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

func uploadFilename(file models.ImageFile) string {
	if name := path.Base(file.Filename); name != "" && name != "." && name != "/" {
		return name
	}
	return "image"
}
