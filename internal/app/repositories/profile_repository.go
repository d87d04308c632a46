package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/dberrors"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

var profileColumns = []string{
	"id", "email", "first_name", "last_name", "phone", "role", "is_active", "created_at", "updated_at",
}

// ProfileRepo handles profiles queries
type ProfileRepo struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	p := &models.Profile{}
	if err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Phone, &p.Role,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a profile. The caller sets ID to the identity account id.
func (r *ProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("profile id must be the identity account id")
	}
	now := time.Now().UTC()
	p.Email = helpers.NormalizeEmail(p.Email)
	p.CreatedAt, p.UpdatedAt = now, now

	sql, args, err := r.sb.Insert("profiles").
		Columns(profileColumns...).
		Values(p.ID, p.Email, p.FirstName, p.LastName, p.Phone, p.Role, p.IsActive, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create profile query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, ConstraintProfileEmail) ||
			dberrors.IsDuplicateConstraintError(err, "profiles_pkey") {
			return apperrors.ErrDuplicateAccount
		}
		return wrapErr("create profile", err)
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return r.getOne(ctx, "get profile by id", squirrel.Eq{"id": id})
}

// GetByEmail retrieves a profile by email, ignoring case
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.getOne(ctx, "get profile by email", squirrel.Expr("lower(email) = ?", helpers.NormalizeEmail(email)))
}

func (r *ProfileRepo) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*models.Profile, error) {
	sql, args, err := r.sb.Select(profileColumns...).From("profiles").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}
	p, err := scanProfile(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr(op, err, apperrors.ErrProfileNotFound)
	}
	return p, nil
}

// Delete removes a profile
func (r *ProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("profiles").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete profile query: %w", err)
	}
	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return wrapErr("delete profile", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}
