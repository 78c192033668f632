// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/go-account-keeper/internal/config"
	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/store"
	"github.com/MKhiriev/go-account-keeper/internal/utils"
	"github.com/MKhiriev/go-account-keeper/models"
)

// tokenService is the concrete implementation of TokenService.
//
// Access tokens are stateless. Refresh tokens are tracked by their HMAC
// digest in the single refresh token slot of the user record, so a leaked
// database never exposes a usable token.
type tokenService struct {
	userRepository store.UserRepository
	errorMapper    errorMapper

	// accessSignKey and refreshSignKey are distinct HMAC secrets; a refresh
	// token never verifies as an access token and vice versa.
	accessSignKey  string
	refreshSignKey string
	tokenIssuer    string

	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration

	// hashKey digests refresh tokens before they reach the store.
	hashKey string

	logger *logger.Logger
}

// NewTokenService constructs a TokenService from the token settings in cfg.
func NewTokenService(storages *store.Storages, cfg config.App, logger *logger.Logger) TokenService {
	return &tokenService{
		userRepository:       storages.UserRepository,
		errorMapper:          errorMapper{classifier: storages.RetryClassifier},
		accessSignKey:        cfg.AccessTokenSignKey,
		refreshSignKey:       cfg.RefreshTokenSignKey,
		tokenIssuer:          cfg.TokenIssuer,
		accessTokenDuration:  cfg.AccessTokenDuration,
		refreshTokenDuration: cfg.RefreshTokenDuration,
		hashKey:              cfg.HashKey,
		logger:               logger,
	}
}

// Issue implements [TokenService].
func (s *tokenService) Issue(ctx context.Context, userID int64) (models.TokenPair, error) {
	log := logger.FromContext(ctx)

	pair, refreshHash, err := s.newTokenPair(userID)
	if err != nil {
		log.Err(err).Str("func", "*tokenService.Issue").Int64("user_id", userID).Msg("error generating tokens")
		return models.TokenPair{}, err
	}

	if err = s.userRepository.SetRefreshToken(ctx, userID, refreshHash); err != nil {
		log.Err(err).Str("func", "*tokenService.Issue").Int64("user_id", userID).Msg("error saving refresh token")
		return models.TokenPair{}, s.errorMapper.mapStoreError(err)
	}

	return pair, nil
}

// Rotate implements [TokenService]. The presented token must verify, belong
// to an existing user and equal the stored one; the replacement is written
// with a compare-and-swap, so of two concurrent rotations of the same token
// only one succeeds.
func (s *tokenService) Rotate(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	log := logger.FromContext(ctx)

	if refreshToken == "" {
		return models.TokenPair{}, ErrUnauthorizedRequest
	}

	token, err := utils.ValidateAndParseJWTToken(refreshToken, s.refreshSignKey, s.tokenIssuer)
	if err != nil {
		log.Debug().Err(err).Str("func", "*tokenService.Rotate").Msg("refresh token verification failed")
		return models.TokenPair{}, ErrInvalidRefreshToken.wrap(err)
	}

	user, err := s.userRepository.FindUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return models.TokenPair{}, ErrInvalidRefreshToken.wrap(err)
		}
		log.Err(err).Str("func", "*tokenService.Rotate").Int64("user_id", token.UserID).Msg("error loading user")
		return models.TokenPair{}, s.errorMapper.mapStoreError(err)
	}

	presentedHash := utils.HashString(refreshToken, s.hashKey)
	if user.RefreshTokenHash == "" || !utils.EqualHashes(presentedHash, user.RefreshTokenHash) {
		log.Warn().Str("func", "*tokenService.Rotate").Int64("user_id", user.UserID).Msg("stale refresh token presented")
		return models.TokenPair{}, ErrRefreshTokenReused
	}

	pair, refreshHash, err := s.newTokenPair(user.UserID)
	if err != nil {
		log.Err(err).Str("func", "*tokenService.Rotate").Int64("user_id", user.UserID).Msg("error generating tokens")
		return models.TokenPair{}, err
	}

	if err = s.userRepository.SwapRefreshToken(ctx, user.UserID, presentedHash, refreshHash); err != nil {
		log.Err(err).Str("func", "*tokenService.Rotate").Int64("user_id", user.UserID).Msg("error rotating refresh token")
		return models.TokenPair{}, s.errorMapper.mapStoreError(err)
	}

	return pair, nil
}

// Revoke implements [TokenService].
func (s *tokenService) Revoke(ctx context.Context, userID int64) error {
	if err := s.userRepository.ClearRefreshToken(ctx, userID); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*tokenService.Revoke").Int64("user_id", userID).Msg("error clearing refresh token")
		return s.errorMapper.mapStoreError(err)
	}
	return nil
}

// ParseAccessToken implements [TokenService]. Any verification failure is
// reported as [ErrInvalidAccessToken].
func (s *tokenService) ParseAccessToken(ctx context.Context, accessToken string) (models.Token, error) {
	if accessToken == "" {
		return models.Token{}, ErrUnauthorizedRequest
	}

	token, err := utils.ValidateAndParseJWTToken(accessToken, s.accessSignKey, s.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrInvalidAccessToken.wrap(err)
	}
	return token, nil
}

// newTokenPair signs a fresh pair and returns it together with the digest of
// its refresh token.
func (s *tokenService) newTokenPair(userID int64) (models.TokenPair, string, error) {
	access, err := utils.GenerateJWTToken(s.tokenIssuer, userID, s.accessTokenDuration, s.accessSignKey)
	if err != nil {
		return models.TokenPair{}, "", ErrTokenCreationFailed.wrap(err)
	}

	refresh, err := utils.GenerateJWTToken(s.tokenIssuer, userID, s.refreshTokenDuration, s.refreshSignKey)
	if err != nil {
		return models.TokenPair{}, "", ErrTokenCreationFailed.wrap(err)
	}

	return models.TokenPair{
		AccessToken:           access.SignedString,
		AccessTokenExpiresAt:  access.ExpiresAt.Time,
		RefreshToken:          refresh.SignedString,
		RefreshTokenExpiresAt: refresh.ExpiresAt.Time,
	}, utils.HashString(refresh.SignedString, s.hashKey), nil
}
