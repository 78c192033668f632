// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package migrations applies the embedded PostgreSQL schema with goose.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var embedMigrations embed.FS

// Migrate brings the schema up to the latest embedded version.
func Migrate(db *sql.DB, log *logger.Logger) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}
	if log == nil {
		log = logger.Nop()
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{log})

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}

// gooseLogger routes goose output through zerolog.
type gooseLogger struct {
	log *logger.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Info().Str("func", "migrations.Migrate").Msgf(strings.TrimSpace(format), v...)
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error().Str("func", "migrations.Migrate").Msgf(strings.TrimSpace(format), v...)
}
