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

var preRegistrationColumns = []string{
	"id", "email", "first_name", "last_name", "phone", "role", "identity_id", "created_at", "registered_at",
}

// PreRegistrationRepo handles pre_registrations queries
type PreRegistrationRepo struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

func scanPreRegistration(row pgx.Row) (*models.PreRegistration, error) {
	p := &models.PreRegistration{}
	err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Phone, &p.Role,
		&p.IdentityID, &p.CreatedAt, &p.RegisteredAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a pre-registration
func (r *PreRegistrationRepo) Create(ctx context.Context, p *models.PreRegistration) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	sql, args, err := r.sb.Insert("pre_registrations").
		Columns(preRegistrationColumns...).
		Values(p.ID, helpers.NormalizeEmail(p.Email), p.FirstName, p.LastName, p.Phone, p.Role,
			p.IdentityID, p.CreatedAt, p.RegisteredAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create pre-registration query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, ConstraintPreRegistrationEmail) {
			return apperrors.ErrPreRegistrationExists
		}
		return wrapErr("create pre-registration", err)
	}
	return nil
}

// GetByID retrieves a pre-registration by ID
func (r *PreRegistrationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PreRegistration, error) {
	return r.getOne(ctx, "get pre-registration by id", squirrel.Eq{"id": id})
}

// GetByEmail retrieves a pre-registration by email, ignoring case
func (r *PreRegistrationRepo) GetByEmail(ctx context.Context, email string) (*models.PreRegistration, error) {
	return r.getOne(ctx, "get pre-registration by email", squirrel.Expr("lower(email) = ?", helpers.NormalizeEmail(email)))
}

func (r *PreRegistrationRepo) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*models.PreRegistration, error) {
	sql, args, err := r.sb.Select(preRegistrationColumns...).
		From("pre_registrations").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	p, err := scanPreRegistration(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFoundOr(op, err, apperrors.ErrPreRegistrationNotFound)
	}
	return p, nil
}

// List returns pre-registrations matching filter, newest first
func (r *PreRegistrationRepo) List(ctx context.Context, filter PreRegistrationFilter) ([]*models.PreRegistration, error) {
	q := r.sb.Select(preRegistrationColumns...).
		From("pre_registrations").
		OrderBy("created_at DESC")
	if filter.Role != nil {
		q = q.Where(squirrel.Eq{"role": *filter.Role})
	}
	if filter.Registered != nil {
		if *filter.Registered {
			q = q.Where(squirrel.NotEq{"registered_at": nil})
		} else {
			q = q.Where(squirrel.Eq{"registered_at": nil})
		}
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list pre-registrations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapErr("list pre-registrations", err)
	}
	defer rows.Close()

	list := []*models.PreRegistration{}
	for rows.Next() {
		p, err := scanPreRegistration(rows)
		if err != nil {
			return nil, wrapErr("scan pre-registration", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate pre-registrations", err)
	}
	return list, nil
}

// MarkRegistered consumes the pre-registration
func (r *PreRegistrationRepo) MarkRegistered(ctx context.Context, id, identityID uuid.UUID, at time.Time) error {
	sql, args, err := r.sb.Update("pre_registrations").
		Set("identity_id", identityID).
		Set("registered_at", at).
		Where(squirrel.Eq{"id": id, "registered_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark registered query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return wrapErr("mark pre-registration registered", err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperrors.ErrAlreadyRegistered
	}
	return nil
}

// Delete removes a pre-registration
func (r *PreRegistrationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("pre_registrations").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete pre-registration query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return wrapErr("delete pre-registration", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPreRegistrationNotFound
	}
	return nil
}
