// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-account-keeper/internal/config"
	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/store"
	"github.com/MKhiriev/go-account-keeper/models"
	"golang.org/x/crypto/bcrypt"
)

// testAppConfig is shared by every service test.
var testAppConfig = config.App{
	AccessTokenSignKey:   "access-secret",
	RefreshTokenSignKey:  "refresh-secret",
	TokenIssuer:          "account-keeper-test",
	AccessTokenDuration:  15 * time.Minute,
	RefreshTokenDuration: 240 * time.Hour,
	HashKey:              "digest-key",
	PasswordHashCost:     bcrypt.MinCost,
}

// ── memoryStore ─────────────────────────────────────────────────────────────

// memoryStore is an in-memory UserRepository and UserImageRepository with
// the same atomicity guarantees as the PostgreSQL implementation: every call
// runs under one mutex.
type memoryStore struct {
	mu          sync.Mutex
	users       map[int64]models.User
	images      map[int64]models.UserImage
	nextUserID  int64
	nextImageID int64
	clock       time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:  make(map[int64]models.User),
		images: make(map[int64]models.UserImage),
		clock:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryStore) storages() *store.Storages {
	return &store.Storages{UserRepository: m, UserImageRepository: m}
}

func (m *memoryStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memoryStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return models.User{}, store.ErrUserAlreadyExists
		}
	}

	m.nextUserID++
	user.UserID = m.nextUserID
	user.CreatedAt = m.tick()
	user.UpdatedAt = user.CreatedAt
	m.users[user.UserID] = user
	return user, nil
}

func (m *memoryStore) FindUserByIdentifier(_ context.Context, username, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if (username != "" && strings.EqualFold(u.Username, username)) || (email != "" && strings.EqualFold(u.Email, email)) {
			return u, nil
		}
	}
	return models.User{}, store.ErrUserNotFound
}

func (m *memoryStore) FindUserByID(_ context.Context, userID int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return models.User{}, store.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryStore) UpdateUser(_ context.Context, update models.UserUpdate) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[update.UserID]
	if !ok {
		return models.User{}, store.ErrUserNotFound
	}
	if update.Email != nil {
		for id, other := range m.users {
			if id != u.UserID && strings.EqualFold(other.Email, *update.Email) {
				return models.User{}, store.ErrUserAlreadyExists
			}
		}
		u.Email = *update.Email
	}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	if update.ClearRefreshToken {
		u.RefreshTokenHash = ""
	}
	u.UpdatedAt = m.tick()
	m.users[u.UserID] = u
	return u, nil
}

func (m *memoryStore) SetRefreshToken(_ context.Context, userID int64, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	u.RefreshTokenHash = tokenHash
	m.users[userID] = u
	return nil
}

func (m *memoryStore) SwapRefreshToken(_ context.Context, userID int64, oldHash, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok || u.RefreshTokenHash == "" || u.RefreshTokenHash != oldHash {
		return store.ErrRefreshTokenMismatch
	}
	u.RefreshTokenHash = newHash
	m.users[userID] = u
	return nil
}

func (m *memoryStore) ClearRefreshToken(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	u.RefreshTokenHash = ""
	m.users[userID] = u
	return nil
}

func (m *memoryStore) CreateImage(_ context.Context, image models.UserImage) (models.UserImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[image.UserID]; !ok {
		return models.UserImage{}, store.ErrUserNotFound
	}
	m.nextImageID++
	image.ID = m.nextImageID
	image.Active = false
	image.CreatedAt = m.tick()
	m.images[image.ID] = image
	return image, nil
}

func (m *memoryStore) ListImages(_ context.Context, userID int64) ([]models.UserImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	images := make([]models.UserImage, 0)
	for _, img := range m.images {
		if img.UserID == userID {
			images = append(images, img)
		}
	}
	sort.Slice(images, func(i, j int) bool {
		if images[i].CreatedAt.Equal(images[j].CreatedAt) {
			return images[i].ID > images[j].ID
		}
		return images[i].CreatedAt.After(images[j].CreatedAt)
	})
	return images, nil
}

func (m *memoryStore) FindImage(_ context.Context, userID, imageID int64) (models.UserImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	img, ok := m.images[imageID]
	if !ok || img.UserID != userID {
		return models.UserImage{}, store.ErrImageNotFound
	}
	return img, nil
}

func (m *memoryStore) ActivateImage(_ context.Context, userID, imageID int64, imageType models.ImageType) (models.User, models.UserImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return models.User{}, models.UserImage{}, store.ErrUserNotFound
	}
	target, ok := m.images[imageID]
	if !ok || target.UserID != userID || target.Type != imageType {
		return models.User{}, models.UserImage{}, store.ErrImageNotFound
	}

	for id, img := range m.images {
		if img.UserID == userID && img.Type == imageType && img.Active {
			img.Active = false
			m.images[id] = img
		}
	}
	target.Active = true
	m.images[imageID] = target

	switch imageType {
	case models.ImageTypeAvatar:
		user.Avatar = target.URL
	case models.ImageTypeCover:
		user.CoverImage = target.URL
	}
	m.users[userID] = user

	return user, target, nil
}

func (m *memoryStore) DeleteImage(_ context.Context, userID, imageID int64, beforeDelete func(models.UserImage) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	img, ok := m.images[imageID]
	if !ok || img.UserID != userID {
		return store.ErrImageNotFound
	}
	if img.Active {
		return store.ErrImageIsActive
	}
	if beforeDelete != nil {
		if err := beforeDelete(img); err != nil {
			return err
		}
	}
	delete(m.images, imageID)
	return nil
}

// ── memoryImageStorage ──────────────────────────────────────────────────────

// memoryImageStorage is an ImageStorage keeping assets in a map.
type memoryImageStorage struct {
	mu        sync.Mutex
	assets    map[string]models.ImageFile
	next      int
	deleteErr error
}

func newMemoryImageStorage() *memoryImageStorage {
	return &memoryImageStorage{assets: make(map[string]models.ImageFile)}
}

func (s *memoryImageStorage) Upload(_ context.Context, file models.ImageFile) (models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(file.Content) == 0 {
		return models.Asset{}, errors.New("empty file")
	}
	s.next++
	id := fmt.Sprintf("images/%d-%s", s.next, file.Filename)
	s.assets[id] = file
	return models.Asset{URL: "https://cdn.test/" + id, ProviderID: id}, nil
}

func (s *memoryImageStorage) Delete(_ context.Context, providerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.assets, providerID)
	return nil
}

func (s *memoryImageStorage) has(providerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.assets[providerID]
	return ok
}

// ── retry classifier ────────────────────────────────────────────────────────

type staticClassifier bool

func (c staticClassifier) IsRetryable(error) bool {
	return bool(c)
}

// newMemoryServices wires the real services over the in-memory fakes.
func newMemoryServices() (*Services, *memoryStore, *memoryImageStorage) {
	mem := newMemoryStore()
	images := newMemoryImageStorage()
	storages := mem.storages()

	tokenService := NewTokenService(storages, testAppConfig, logger.Nop())
	return &Services{
		TokenService:     tokenService,
		UserService:      NewUserValidationService().Wrap(NewUserService(storages, tokenService, testAppConfig, logger.Nop())),
		UserImageService: NewUserImageValidationService().Wrap(NewUserImageService(storages, images, nil, logger.Nop())),
	}, mem, images
}
