// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/models"
	"github.com/jackc/pgerrcode"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
//
// All methods obtain a context-scoped logger via [logger.FromContext] and run
// under the query timeout of [DB].
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns it with the
// server-assigned ID and timestamps.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrUserAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	created, err := scanUser(r.db.QueryRowContext(ctx, createUser, user.Username, user.Email, user.FullName, user.PasswordHash))
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error inserting user")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.User{}, ErrUserAlreadyExists
		default:
			return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	return created, nil
}

// FindUserByIdentifier retrieves the user whose username or e-mail matches,
// case-insensitively.
func (r *userRepository) FindUserByIdentifier(ctx context.Context, username, email string) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildFindUserByIdentifierQuery(username, email)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.FindUserByIdentifier").Msg("error building query")
		return models.User{}, err
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return models.User{}, r.lookupError(log, "*userRepository.FindUserByIdentifier", err)
	}

	return user, nil
}

// FindUserByID retrieves the user with the given ID.
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	log := logger.FromContext(ctx)
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	user, err := scanUser(r.db.QueryRowContext(ctx, findUserByID, userID))
	if err != nil {
		return models.User{}, r.lookupError(log, "*userRepository.FindUserByID", err)
	}

	return user, nil
}

// UpdateUser writes the non-nil fields of update and returns the new state.
func (r *userRepository) UpdateUser(ctx context.Context, update models.UserUpdate) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdateUserQuery(update)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateUser").Msg("error building query")
		return models.User{}, err
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, ErrUserAlreadyExists
		}
		return models.User{}, r.lookupError(log, "*userRepository.UpdateUser", err)
	}

	return user, nil
}

// SetRefreshToken stores tokenHash as the only valid refresh token digest.
func (r *userRepository) SetRefreshToken(ctx context.Context, userID int64, tokenHash string) error {
	return r.execOnUser(ctx, "*userRepository.SetRefreshToken", ErrUserNotFound, setRefreshToken, userID, tokenHash)
}

// SwapRefreshToken is a compare-and-swap on the stored digest.
func (r *userRepository) SwapRefreshToken(ctx context.Context, userID int64, oldHash, newHash string) error {
	return r.execOnUser(ctx, "*userRepository.SwapRefreshToken", ErrRefreshTokenMismatch, swapRefreshToken, userID, oldHash, newHash)
}

// ClearRefreshToken removes the stored digest. Clearing an already empty
// digest succeeds.
func (r *userRepository) ClearRefreshToken(ctx context.Context, userID int64) error {
	return r.execOnUser(ctx, "*userRepository.ClearRefreshToken", ErrUserNotFound, clearRefreshToken, userID)
}

// execOnUser runs a single-row UPDATE and returns errNoRows when nothing was
// affected.
func (r *userRepository) execOnUser(ctx context.Context, funcName string, errNoRows error, query string, args ...any) error {
	log := logger.FromContext(ctx)
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error executing statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error reading affected rows")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return errNoRows
	}

	return nil
}

func (r *userRepository) lookupError(log *logger.Logger, funcName string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	log.Err(err).Str("func", funcName).Msg("error querying user")
	return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
}
