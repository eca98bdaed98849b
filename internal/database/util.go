package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

// Postgres error codes the services care about
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// TranslateError maps a gorm/pgx error onto an AppError. notFound is the message used
// when the record does not exist. A nil err stays nil.
func TranslateError(op, notFound string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(op, notFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return apperr.E(apperr.CodeValidation, op, "Referenced record does not exist", err)
		case pgUniqueViolation:
			return apperr.E(apperr.CodeConflict, op, "Record already exists", err)
		}
	}
	return apperr.Persistence(op, "Database error", err)
}

// IsUniqueViolation reports whether err is a postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// AdminAllowed reports whether email has an active admin allow-list entry. A nil
// email is never allowed.
func AdminAllowed(ctx context.Context, db *gorm.DB, email *string) (bool, error) {
	if email == nil || *email == "" {
		return false, nil
	}
	var count int64
	err := db.WithContext(ctx).Model(&model.AdminWhitelist{}).
		Where("email = ? AND active", *email).Count(&count).Error
	return count > 0, err
}
