// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-account-keeper/models"
	sq "github.com/Masterminds/squirrel"
)

// psql builds PostgreSQL statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	userColumns = []string{
		"id", "username", "email", "full_name", "avatar_url", "cover_image_url",
		"password_hash", "COALESCE(refresh_token_hash, '')", "created_at", "updated_at",
	}
	userImageColumns = []string{
		"id", "user_id", "image_type", "url", "provider_id", "is_active", "created_at",
	}
)

var (
	userReturning      = "RETURNING " + strings.Join(userColumns, ", ")
	userImageReturning = "RETURNING " + strings.Join(userImageColumns, ", ")
)

var (
	createUser = `INSERT INTO users (username, email, full_name, password_hash)
		VALUES ($1, $2, $3, $4)
		` + userReturning

	findUserByID = `SELECT ` + strings.Join(userColumns, ", ") + `
		FROM users
		WHERE id = $1`

	setRefreshToken = `UPDATE users
		SET refresh_token_hash = $2, updated_at = now()
		WHERE id = $1`

	// swapRefreshToken succeeds only while the presented digest is still the
	// stored one; two concurrent rotations cannot both match.
	swapRefreshToken = `UPDATE users
		SET refresh_token_hash = $3, updated_at = now()
		WHERE id = $1 AND refresh_token_hash = $2`

	clearRefreshToken = `UPDATE users
		SET refresh_token_hash = NULL, updated_at = now()
		WHERE id = $1`

	lockUser = `SELECT id FROM users WHERE id = $1 FOR UPDATE`

	createUserImage = `INSERT INTO user_images (user_id, image_type, url, provider_id, is_active)
		VALUES ($1, $2, $3, $4, FALSE)
		` + userImageReturning

	findUserImage = `SELECT ` + strings.Join(userImageColumns, ", ") + `
		FROM user_images
		WHERE id = $1 AND user_id = $2`

	lockUserImage = findUserImage + ` FOR UPDATE`

	deactivateUserImages = `UPDATE user_images
		SET is_active = FALSE
		WHERE user_id = $1 AND image_type = $2 AND is_active`

	activateUserImage = `UPDATE user_images
		SET is_active = TRUE
		WHERE id = $1 AND user_id = $2
		` + userImageReturning

	deleteUserImage = `DELETE FROM user_images
		WHERE id = $1 AND user_id = $2 AND NOT is_active`
)

// buildFindUserByIdentifierQuery matches a user by username OR e-mail. Empty
// identifiers are left out of the predicate.
func buildFindUserByIdentifierQuery(username, email string) (string, []any, error) {
	or := sq.Or{}
	if username != "" {
		or = append(or, sq.Eq{"lower(username)": strings.ToLower(username)})
	}
	if email != "" {
		or = append(or, sq.Eq{"lower(email)": strings.ToLower(email)})
	}
	if len(or) == 0 {
		return "", nil, fmt.Errorf("%w: no identifier given", ErrBuildingSQLQuery)
	}

	query, args, err := psql.
		Select(userColumns...).
		From(models.User{}.TableName()).
		Where(or).
		Limit(1).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildUpdateUserQuery writes only the fields set in update.
func buildUpdateUserQuery(update models.UserUpdate) (string, []any, error) {
	if update.IsEmpty() {
		return "", nil, fmt.Errorf("%w: empty update", ErrBuildingSQLQuery)
	}

	builder := psql.
		Update(models.User{}.TableName()).
		Set("updated_at", sq.Expr("now()"))

	if update.FullName != nil {
		builder = builder.Set("full_name", *update.FullName)
	}
	if update.Email != nil {
		builder = builder.Set("email", *update.Email)
	}
	if update.PasswordHash != nil {
		builder = builder.Set("password_hash", *update.PasswordHash)
	}
	if update.ClearRefreshToken {
		builder = builder.Set("refresh_token_hash", nil)
	}

	query, args, err := builder.
		Where(sq.Eq{"id": update.UserID}).
		Suffix(userReturning).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildMirrorProfileImageQuery copies url onto the profile column mirrored
// by imageType.
func buildMirrorProfileImageQuery(userID int64, imageType models.ImageType, url string) (string, []any, error) {
	column := imageType.ProfileField()
	if column == "" {
		return "", nil, fmt.Errorf("%w: unknown image type %q", ErrBuildingSQLQuery, imageType)
	}

	query, args, err := psql.
		Update(models.User{}.TableName()).
		Set(column, url).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": userID}).
		Suffix(userReturning).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildListUserImagesQuery lists the images of a user, newest first.
func buildListUserImagesQuery(userID int64) (string, []any, error) {
	query, args, err := psql.
		Select(userImageColumns...).
		From(models.UserImage{}.TableName()).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.Avatar,
		&user.CoverImage,
		&user.PasswordHash,
		&user.RefreshTokenHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func scanUserImage(row rowScanner) (models.UserImage, error) {
	var image models.UserImage
	err := row.Scan(
		&image.ID,
		&image.UserID,
		&image.Type,
		&image.URL,
		&image.ProviderID,
		&image.Active,
		&image.CreatedAt,
	)
	return image, err
}
