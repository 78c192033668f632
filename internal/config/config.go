// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-account-keeper server. It aggregates all sub-configurations and is
// populated by merging values from environment variables, command-line flags,
// and an optional JSON file.
//
// Struct tags:
//   - envPrefix - prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       - direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds token and credential settings.
	App App `envPrefix:"APP_"`

	// Storage holds configuration of the relational database.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and timeout settings for the HTTP server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds configuration for external integrations, currently the
	// image storage provider.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values that control the token
// lifecycle and password hashing.
type App struct {
	// AccessTokenSignKey is the HMAC secret used to sign and verify access
	// tokens.
	// Env: APP_ACCESS_TOKEN_SIGN_KEY
	AccessTokenSignKey string `env:"ACCESS_TOKEN_SIGN_KEY"`

	// RefreshTokenSignKey is the HMAC secret used to sign and verify refresh
	// tokens. Must differ from AccessTokenSignKey.
	// Env: APP_REFRESH_TOKEN_SIGN_KEY
	RefreshTokenSignKey string `env:"REFRESH_TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued JWT token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// AccessTokenDuration is the lifetime of access tokens (e.g. "15m").
	// Env: APP_ACCESS_TOKEN_DURATION
	AccessTokenDuration time.Duration `env:"ACCESS_TOKEN_DURATION"`

	// RefreshTokenDuration is the lifetime of refresh tokens (e.g. "240h").
	// Env: APP_REFRESH_TOKEN_DURATION
	RefreshTokenDuration time.Duration `env:"REFRESH_TOKEN_DURATION"`

	// HashKey is the HMAC key used to digest refresh tokens before they are
	// stored on the user record.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// PasswordHashCost is the bcrypt cost used when hashing passwords.
	// Env: APP_PASSWORD_HASH_COST
	PasswordHashCost int `env:"PASSWORD_HASH_COST"`

	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the configuration for all storage backends used by the
// application.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// DSN is the PostgreSQL Data Source Name (connection string).
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`

	// QueryTimeout bounds every single repository call.
	// Env: STORAGE_DB_QUERY_TIMEOUT
	QueryTimeout time.Duration `env:"QUERY_TIMEOUT"`

	// MaxOpenConns limits the number of open connections in the pool.
	// Env: STORAGE_DB_MAX_OPEN_CONNS
	MaxOpenConns int `env:"MAX_OPEN_CONNS"`

	// MaxIdleConns limits the number of idle connections in the pool.
	// Env: STORAGE_DB_MAX_IDLE_CONNS
	MaxIdleConns int `env:"MAX_IDLE_CONNS"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens,
	// in "host:port" format (e.g. "0.0.0.0:8080").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it (e.g. "30s", "1m").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// AuthRateLimit is the number of requests per minute a single client IP
	// may send to the public authentication endpoints.
	// Env: SERVER_AUTH_RATE_LIMIT
	AuthRateLimit int `env:"AUTH_RATE_LIMIT"`

	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable it only when the server runs behind a proxy that overwrites
	// these headers; otherwise the connection's remote address is used.
	// Env: SERVER_TRUST_PROXY_HEADERS
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS"`

	// SecureCookies marks token cookies as Secure (HTTPS only).
	// Env: SERVER_SECURE_COOKIES
	SecureCookies bool `env:"SECURE_COOKIES"`

	// MaxUploadSize bounds the size of an uploaded image in bytes.
	// Env: SERVER_MAX_UPLOAD_SIZE
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE"`
}

// Adapter holds configuration for external adapter integrations.
type Adapter struct {
	// ImageStorage configures the provider hosting uploaded images.
	ImageStorage ImageStorage `envPrefix:"IMAGE_STORAGE_"`
}

// ImageStorage selects and configures the image hosting provider.
type ImageStorage struct {
	// Provider is either "cloudinary" or "s3".
	// Env: ADAPTER_IMAGE_STORAGE_PROVIDER
	Provider string `env:"PROVIDER"`

	// RequestTimeout bounds every call to the provider.
	// Env: ADAPTER_IMAGE_STORAGE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Cloudinary holds credentials of the Cloudinary upload API.
	Cloudinary Cloudinary `envPrefix:"CLOUDINARY_"`

	// S3 holds settings of an S3 compatible bucket.
	S3 S3 `envPrefix:"S3_"`
}

// Cloudinary holds credentials of the Cloudinary upload API.
type Cloudinary struct {
	// Env: ADAPTER_IMAGE_STORAGE_CLOUDINARY_CLOUD_NAME
	CloudName string `env:"CLOUD_NAME"`
	// Env: ADAPTER_IMAGE_STORAGE_CLOUDINARY_API_KEY
	APIKey string `env:"API_KEY"`
	// Env: ADAPTER_IMAGE_STORAGE_CLOUDINARY_API_SECRET
	APISecret string `env:"API_SECRET"`
	// BaseURL overrides the API root, mainly for tests.
	// Env: ADAPTER_IMAGE_STORAGE_CLOUDINARY_BASE_URL
	BaseURL string `env:"BASE_URL"`
}

// S3 holds settings of an S3 compatible bucket (AWS S3, MinIO).
type S3 struct {
	// Env: ADAPTER_IMAGE_STORAGE_S3_REGION
	Region string `env:"REGION"`
	// Env: ADAPTER_IMAGE_STORAGE_S3_BUCKET
	Bucket string `env:"BUCKET"`
	// Endpoint overrides the service endpoint (e.g. a MinIO address).
	// Env: ADAPTER_IMAGE_STORAGE_S3_ENDPOINT
	Endpoint string `env:"ENDPOINT"`
	// Env: ADAPTER_IMAGE_STORAGE_S3_ACCESS_KEY
	AccessKey string `env:"ACCESS_KEY"`
	// Env: ADAPTER_IMAGE_STORAGE_S3_SECRET_KEY
	SecretKey string `env:"SECRET_KEY"`
	// PublicBaseURL is prepended to object keys to build public image URLs.
	// Env: ADAPTER_IMAGE_STORAGE_S3_PUBLIC_BASE_URL
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Missing optional values are filled from defaults before validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(os.Args[1:]).
		withJSON().
		build()
}
