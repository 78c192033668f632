// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package migrations

import (
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.MatchExpectationsInOrder(false)
	mock.ExpectExec(".*").WillReturnError(errors.New("connection refused"))
	mock.ExpectQuery(".*").WillReturnError(errors.New("connection refused"))

	err = Migrate(db, logger.Nop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration error")
}

func TestMigrate_NilDB(t *testing.T) {
	var db *sql.DB

	err := Migrate(db, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db is nil")
}

func TestEmbeddedMigrations_Ordered(t *testing.T) {
	names, err := fs.Glob(embedMigrations, "*.sql")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"00001_create_users.sql",
		"00002_create_user_images.sql",
	}, names)
}

func TestEmbeddedMigrations_HaveUpAndDown(t *testing.T) {
	names, err := fs.Glob(embedMigrations, "*.sql")
	require.NoError(t, err)

	for _, name := range names {
		body, err := fs.ReadFile(embedMigrations, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestEmbeddedMigrations_SingleActiveImageIndex(t *testing.T) {
	body, err := fs.ReadFile(embedMigrations, "00002_create_user_images.sql")
	require.NoError(t, err)

	assert.Contains(t, string(body), "WHERE is_active")
}
