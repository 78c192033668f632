// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] in the layout of the JSON
// configuration file. Durations are written as strings ("15m", "30s").
type StructuredJSONConfig struct {
	App struct {
		AccessTokenSignKey   string   `json:"access_token_sign_key"`
		RefreshTokenSignKey  string   `json:"refresh_token_sign_key"`
		TokenIssuer          string   `json:"token_issuer"`
		AccessTokenDuration  Duration `json:"access_token_duration"`
		RefreshTokenDuration Duration `json:"refresh_token_duration"`
		HashKey              string   `json:"hash_key"`
		PasswordHashCost     int      `json:"password_hash_cost"`
		Version              string   `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN          string   `json:"dsn"`
			QueryTimeout Duration `json:"query_timeout"`
			MaxOpenConns int      `json:"max_open_conns"`
			MaxIdleConns int      `json:"max_idle_conns"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress       string   `json:"http_address"`
		RequestTimeout    Duration `json:"request_timeout"`
		AuthRateLimit     int      `json:"auth_rate_limit"`
		TrustProxyHeaders bool     `json:"trust_proxy_headers"`
		SecureCookies     bool     `json:"secure_cookies"`
		MaxUploadSize     int64    `json:"max_upload_size"`
	} `json:"server,omitempty"`

	Adapter struct {
		ImageStorage struct {
			Provider       string   `json:"provider"`
			RequestTimeout Duration `json:"request_timeout"`
			Cloudinary     struct {
				CloudName string `json:"cloud_name"`
				APIKey    string `json:"api_key"`
				APISecret string `json:"api_secret"`
				BaseURL   string `json:"base_url"`
			} `json:"cloudinary,omitempty"`
			S3 struct {
				Region        string `json:"region"`
				Bucket        string `json:"bucket"`
				Endpoint      string `json:"endpoint"`
				AccessKey     string `json:"access_key"`
				SecretKey     string `json:"secret_key"`
				PublicBaseURL string `json:"public_base_url"`
			} `json:"s3,omitempty"`
		} `json:"image_storage,omitempty"`
	} `json:"adapter,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	imageStorage := jsonCfg.Adapter.ImageStorage

	cfg := &StructuredConfig{
		App: App{
			AccessTokenSignKey:   jsonCfg.App.AccessTokenSignKey,
			RefreshTokenSignKey:  jsonCfg.App.RefreshTokenSignKey,
			TokenIssuer:          jsonCfg.App.TokenIssuer,
			AccessTokenDuration:  time.Duration(jsonCfg.App.AccessTokenDuration),
			RefreshTokenDuration: time.Duration(jsonCfg.App.RefreshTokenDuration),
			HashKey:              jsonCfg.App.HashKey,
			PasswordHashCost:     jsonCfg.App.PasswordHashCost,
			Version:              jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				DSN:          jsonCfg.Storage.DB.DSN,
				QueryTimeout: time.Duration(jsonCfg.Storage.DB.QueryTimeout),
				MaxOpenConns: jsonCfg.Storage.DB.MaxOpenConns,
				MaxIdleConns: jsonCfg.Storage.DB.MaxIdleConns,
			},
		},
		Server: Server{
			HTTPAddress:       jsonCfg.Server.HTTPAddress,
			RequestTimeout:    time.Duration(jsonCfg.Server.RequestTimeout),
			AuthRateLimit:     jsonCfg.Server.AuthRateLimit,
			TrustProxyHeaders: jsonCfg.Server.TrustProxyHeaders,
			SecureCookies:     jsonCfg.Server.SecureCookies,
			MaxUploadSize:     jsonCfg.Server.MaxUploadSize,
		},
		Adapter: Adapter{
			ImageStorage: ImageStorage{
				Provider:       imageStorage.Provider,
				RequestTimeout: time.Duration(imageStorage.RequestTimeout),
				Cloudinary: Cloudinary{
					CloudName: imageStorage.Cloudinary.CloudName,
					APIKey:    imageStorage.Cloudinary.APIKey,
					APISecret: imageStorage.Cloudinary.APISecret,
					BaseURL:   imageStorage.Cloudinary.BaseURL,
				},
				S3: S3{
					Region:        imageStorage.S3.Region,
					Bucket:        imageStorage.S3.Bucket,
					Endpoint:      imageStorage.S3.Endpoint,
					AccessKey:     imageStorage.S3.AccessKey,
					SecretKey:     imageStorage.S3.SecretKey,
					PublicBaseURL: imageStorage.S3.PublicBaseURL,
				},
			},
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
