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

// userImageRepository is the PostgreSQL-backed implementation of
// [UserImageRepository].
type userImageRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserImageRepository constructs a [UserImageRepository].
func NewUserImageRepository(db *DB, logger *logger.Logger) UserImageRepository {
	logger.Debug().Msg("creating user image repository")
	return &userImageRepository{
		db:     db,
		logger: logger,
	}
}

// CreateImage inserts an inactive image record for image.UserID.
func (r *userImageRepository) CreateImage(ctx context.Context, image models.UserImage) (models.UserImage, error) {
	log := logger.FromContext(ctx)
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	created, err := scanUserImage(r.db.QueryRowContext(ctx, createUserImage, image.UserID, image.Type, image.URL, image.ProviderID))
	if err != nil {
		log.Err(err).Str("func", "*userImageRepository.CreateImage").Msg("error inserting image")

		switch postgresError(err) {
		case pgerrcode.ForeignKeyViolation:
			return models.UserImage{}, ErrUserNotFound
		default:
			return models.UserImage{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	return created, nil
}

// ListImages returns every image of userID, newest first. A user without
// images gets an empty, non-nil slice.
func (r *userImageRepository) ListImages(ctx context.Context, userID int64) ([]models.UserImage, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListUserImagesQuery(userID)
	if err != nil {
		log.Err(err).Str("func", "*userImageRepository.ListImages").Msg("error building query")
		return nil, err
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userImageRepository.ListImages").Msg("error querying images")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	images := make([]models.UserImage, 0)
	for rows.Next() {
		image, err := scanUserImage(rows)
		if err != nil {
			log.Err(err).Str("func", "*userImageRepository.ListImages").Msg("error scanning image")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		images = append(images, image)
	}
	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", "*userImageRepository.ListImages").Msg("error iterating images")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return images, nil
}

// FindImage returns the image with imageID if it belongs to userID.
func (r *userImageRepository) FindImage(ctx context.Context, userID, imageID int64) (models.UserImage, error) {
	log := logger.FromContext(ctx)
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	image, err := scanUserImage(r.db.QueryRowContext(ctx, findUserImage, imageID, userID))
	if err != nil {
		return models.UserImage{}, imageLookupError(log, "*userImageRepository.FindImage", err)
	}

	return image, nil
}

// ActivateImage runs the activation in one transaction:
//  1. lock the owning user row, serializing activations per user;
//  2. check the image exists for that user and type;
//  3. deactivate every active sibling of the same type;
//  4. activate the image;
//  5. mirror its URL onto the profile column of the type.
//
// Any failure rolls the whole transaction back, so no partial state is
// visible.
func (r *userImageRepository) ActivateImage(ctx context.Context, userID, imageID int64, imageType models.ImageType) (models.User, models.UserImage, error) {
	log := logger.FromContext(ctx)

	if !imageType.Valid() {
		return models.User{}, models.UserImage{}, fmt.Errorf("%w: unknown image type %q", ErrBuildingSQLQuery, imageType)
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var (
		user  models.User
		image models.UserImage
	)
	err := r.db.withTx(ctx, nil, func(tx *sql.Tx) error {
		var lockedID int64
		if err := tx.QueryRowContext(ctx, lockUser, userID).Scan(&lockedID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrImageNotFound
			}
			return fmt.Errorf("%w: lock user: %w", ErrExecutingQuery, err)
		}

		found, err := scanUserImage(tx.QueryRowContext(ctx, findUserImage, imageID, userID))
		if err != nil {
			return imageLookupError(log, "*userImageRepository.ActivateImage", err)
		}
		if found.Type != imageType {
			return ErrImageNotFound
		}

		if _, err = tx.ExecContext(ctx, deactivateUserImages, userID, imageType); err != nil {
			return fmt.Errorf("%w: deactivate images: %w", ErrExecutingStatement, err)
		}

		image, err = scanUserImage(tx.QueryRowContext(ctx, activateUserImage, imageID, userID))
		if err != nil {
			return fmt.Errorf("%w: activate image: %w", ErrExecutingStatement, err)
		}

		mirrorQuery, args, err := buildMirrorProfileImageQuery(userID, imageType, image.URL)
		if err != nil {
			return err
		}
		user, err = scanUser(tx.QueryRowContext(ctx, mirrorQuery, args...))
		if err != nil {
			return fmt.Errorf("%w: mirror profile image: %w", ErrExecutingStatement, err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrImageNotFound) {
			log.Err(err).Str("func", "*userImageRepository.ActivateImage").Msg("error activating image")
		}
		return models.User{}, models.UserImage{}, err
	}

	return user, image, nil
}

// DeleteImage locks the image row, refuses to delete an active image, calls
// beforeDelete and removes the row. The lock keeps a concurrent activation
// from picking the image up while it is being deleted. The whole transaction,
// beforeDelete and commit included, is bounded by the query timeout.
func (r *userImageRepository) DeleteImage(ctx context.Context, userID, imageID int64, beforeDelete func(models.UserImage) error) error {
	log := logger.FromContext(ctx)

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	return r.db.withTx(ctx, nil, func(tx *sql.Tx) error {
		image, err := scanUserImage(tx.QueryRowContext(ctx, lockUserImage, imageID, userID))
		if err != nil {
			return imageLookupError(log, "*userImageRepository.DeleteImage", err)
		}
		if image.Active {
			return ErrImageIsActive
		}

		if beforeDelete != nil {
			if err = beforeDelete(image); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, deleteUserImage, imageID, userID)
		if err != nil {
			log.Err(err).Str("func", "*userImageRepository.DeleteImage").Msg("error deleting image")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		if affected == 0 {
			return ErrImageNotFound
		}
		return nil
	})
}

func imageLookupError(log *logger.Logger, funcName string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrImageNotFound
	}
	log.Err(err).Str("func", funcName).Msg("error querying image")
	return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
}
