// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "github.com/MKhiriev/go-account-keeper/internal/logger"

// RetryClassifier tells transient storage failures apart from permanent ones.
// [*DB] implements it.
type RetryClassifier interface {
	IsRetryable(err error) bool
}

// Storages groups the repositories handed to the service layer.
type Storages struct {
	UserRepository      UserRepository
	UserImageRepository UserImageRepository
	RetryClassifier     RetryClassifier
}

// NewStorages builds every repository on top of db.
func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		UserRepository:      NewUserRepository(db, log),
		UserImageRepository: NewUserImageRepository(db, log),
		RetryClassifier:     db,
	}
}
