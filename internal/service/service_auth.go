// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"sync"

	"github.com/MKhiriev/go-account-keeper/internal/config"
	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/store"
	"github.com/MKhiriev/go-account-keeper/internal/utils"
	"github.com/MKhiriev/go-account-keeper/models"
	"github.com/microcosm-cc/bluemonday"
)

// userService is the concrete implementation of UserService.
// Passwords are hashed with bcrypt; session tokens are delegated to
// TokenService.
type userService struct {
	userRepository store.UserRepository
	tokenService   TokenService
	errorMapper    errorMapper

	passwordHashCost int

	// sanitizer strips markup from free-text profile fields.
	sanitizer *bluemonday.Policy

	// dummyHash is compared against when the identifier is unknown so that
	// both failure paths cost one bcrypt comparison.
	dummyHash func() string

	logger *logger.Logger
}

// NewUserService constructs a UserService. tokenService issues and revokes
// the session tokens of the accounts managed here.
func NewUserService(storages *store.Storages, tokenService TokenService, cfg config.App, logger *logger.Logger) UserService {
	cost := cfg.PasswordHashCost
	return &userService{
		userRepository:   storages.UserRepository,
		tokenService:     tokenService,
		errorMapper:      errorMapper{classifier: storages.RetryClassifier},
		passwordHashCost: cost,
		sanitizer:        bluemonday.StrictPolicy(),
		dummyHash: sync.OnceValue(func() string {
			hash, _ := utils.HashPassword("not-a-real-password", cost)
			return hash
		}),
		logger: logger,
	}
}

// Register creates a new account.
//
// Username and e-mail are trimmed and lower-cased, the full name is stripped
// of markup. Returns:
//   - ErrAllFieldsRequired if any field is blank after normalisation.
//   - ErrUserAlreadyExists if the username or e-mail is taken.
func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	log := logger.FromContext(ctx)

	user := models.User{
		Username: normalizeIdentifier(req.Username),
		Email:    normalizeIdentifier(req.Email),
		FullName: s.sanitize(req.FullName),
	}
	if user.Username == "" || user.Email == "" || user.FullName == "" || strings.TrimSpace(req.Password) == "" {
		return models.User{}, ErrAllFieldsRequired
	}

	hash, err := utils.HashPassword(req.Password, s.passwordHashCost)
	if err != nil {
		log.Err(err).Str("func", "*userService.Register").Msg("error hashing password")
		return models.User{}, ErrInternal.wrap(err)
	}
	user.PasswordHash = hash

	created, err := s.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("func", "*userService.Register").Str("username", user.Username).Msg("user creation ended with error")
		return models.User{}, s.errorMapper.mapStoreError(err)
	}

	log.Info().Int64("user_id", created.UserID).Msg("user registered")
	return created, nil
}

// Authenticate looks the user up by username or e-mail and verifies the
// password. Exactly one identifier is accepted.
//
// An unknown identifier is reported as ErrInvalidCredentials (Unauthorized),
// not as NotFound, so the response does not tell whether the account exists.
// A wrong password produces the same error after an equally expensive hash
// comparison.
func (s *userService) Authenticate(ctx context.Context, req models.LoginRequest) (models.User, error) {
	log := logger.FromContext(ctx)

	username := normalizeIdentifier(req.Username)
	email := normalizeIdentifier(req.Email)
	if username == "" && email == "" {
		return models.User{}, ErrIdentifierRequired
	}
	if username != "" && email != "" {
		return models.User{}, ErrIdentifierAmbiguous
	}

	user, err := s.userRepository.FindUserByIdentifier(ctx, username, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			_ = utils.ComparePassword(s.dummyHash(), req.Password)
			return models.User{}, ErrInvalidCredentials
		}
		log.Err(err).Str("func", "*userService.Authenticate").Msg("user search by identifier failed")
		return models.User{}, s.errorMapper.mapStoreError(err)
	}

	if err = utils.ComparePassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			log.Info().Int64("user_id", user.UserID).Msg("wrong password")
			return models.User{}, ErrInvalidCredentials
		}
		log.Err(err).Str("func", "*userService.Authenticate").Int64("user_id", user.UserID).Msg("error comparing password")
		return models.User{}, ErrInternal.wrap(err)
	}

	return user, nil
}

// Login authenticates the user and issues a fresh token pair, replacing any
// previous session of the user.
func (s *userService) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	user, err := s.Authenticate(ctx, req)
	if err != nil {
		return models.LoginResponse{}, err
	}

	pair, err := s.tokenService.Issue(ctx, user.UserID)
	if err != nil {
		return models.LoginResponse{}, err
	}

	return models.LoginResponse{User: user, TokenPair: pair}, nil
}

func (s *userService) Logout(ctx context.Context, userID int64) error {
	return s.tokenService.Revoke(ctx, userID)
}

func (s *userService) CurrentUser(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			logger.FromContext(ctx).Err(err).Str("func", "*userService.CurrentUser").Int64("user_id", userID).Msg("error loading user")
		}
		return models.User{}, s.errorMapper.mapStoreError(err)
	}
	return user, nil
}

// UpdateAccount replaces the full name and e-mail of the user in one
// statement. A taken e-mail yields ErrEmailTaken.
func (s *userService) UpdateAccount(ctx context.Context, req models.UpdateAccountRequest) (models.User, error) {
	log := logger.FromContext(ctx)

	fullName := s.sanitize(req.FullName)
	email := normalizeIdentifier(req.Email)
	if fullName == "" || email == "" {
		return models.User{}, ErrAllFieldsRequired
	}

	user, err := s.userRepository.UpdateUser(ctx, models.UserUpdate{
		UserID:   req.UserID,
		FullName: &fullName,
		Email:    &email,
	})
	if err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			return models.User{}, ErrEmailTaken.wrap(err)
		}
		log.Err(err).Str("func", "*userService.UpdateAccount").Int64("user_id", req.UserID).Msg("error updating account")
		return models.User{}, s.errorMapper.mapStoreError(err)
	}

	return user, nil
}

// ChangePassword verifies the old password, stores the new hash and clears
// the refresh token in the same update.
func (s *userService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	log := logger.FromContext(ctx)

	user, err := s.userRepository.FindUserByID(ctx, req.UserID)
	if err != nil {
		return s.errorMapper.mapStoreError(err)
	}

	if err = utils.ComparePassword(user.PasswordHash, req.OldPassword); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			return ErrInvalidOldPassword
		}
		log.Err(err).Str("func", "*userService.ChangePassword").Int64("user_id", req.UserID).Msg("error comparing password")
		return ErrInternal.wrap(err)
	}

	hash, err := utils.HashPassword(req.NewPassword, s.passwordHashCost)
	if err != nil {
		log.Err(err).Str("func", "*userService.ChangePassword").Msg("error hashing password")
		return ErrInternal.wrap(err)
	}

	_, err = s.userRepository.UpdateUser(ctx, models.UserUpdate{
		UserID:            req.UserID,
		PasswordHash:      &hash,
		ClearRefreshToken: true,
	})
	if err != nil {
		log.Err(err).Str("func", "*userService.ChangePassword").Int64("user_id", req.UserID).Msg("error saving password")
		return s.errorMapper.mapStoreError(err)
	}

	log.Info().Int64("user_id", req.UserID).Msg("password changed")
	return nil
}

// sanitize returns plain text. Entities are decoded before the policy runs so
// that encoded markup is stripped as well; angle brackets that survive as text
// are dropped.
func (s *userService) sanitize(value string) string {
	plain := html.UnescapeString(s.sanitizer.Sanitize(html.UnescapeString(value)))
	return strings.TrimSpace(angleBrackets.Replace(plain))
}

var angleBrackets = strings.NewReplacer("<", "", ">", "")

func normalizeIdentifier(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
