package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/dberrors"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

const constraintAccountEmail = "identity_accounts_email_key"

// PostgresAccountStore keeps local accounts in the identity_accounts table
type PostgresAccountStore struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewPostgresAccountStore creates an account store on conn
func NewPostgresAccountStore(conn db.DBTX) *PostgresAccountStore {
	return &PostgresAccountStore{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func dbError(op string, err error) error {
	if dberrors.IsUnavailable(err) {
		return unavailable(op, err)
	}
	return fmt.Errorf("identity %s: %w", op, err)
}

// Insert stores a new account
func (s *PostgresAccountStore) Insert(ctx context.Context, a *StoredAccount) error {
	sql, args, err := s.sb.Insert("identity_accounts").
		Columns("id", "email", "password_hash", "email_confirmed", "created_at", "updated_at").
		Values(a.ID, a.Email, a.PasswordHash, a.EmailConfirmed, a.CreatedAt, a.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert account query: %w", err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintAccountEmail) {
			return apperrors.ErrDuplicateAccount
		}
		return dbError("insert account", err)
	}
	return nil
}

func (s *PostgresAccountStore) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*StoredAccount, error) {
	sql, args, err := s.sb.Select("id", "email", "password_hash", "email_confirmed", "created_at").
		From("identity_accounts").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	a := &StoredAccount{}
	err = s.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.EmailConfirmed, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrIdentityNotFound
		}
		return nil, dbError(op, err)
	}
	return a, nil
}

// GetByEmail finds an account by email, ignoring case
func (s *PostgresAccountStore) GetByEmail(ctx context.Context, email string) (*StoredAccount, error) {
	return s.getOne(ctx, "get account by email", squirrel.Expr("lower(email) = ?", helpers.NormalizeEmail(email)))
}

// GetByID finds an account by id
func (s *PostgresAccountStore) GetByID(ctx context.Context, id uuid.UUID) (*StoredAccount, error) {
	return s.getOne(ctx, "get account by id", squirrel.Eq{"id": id})
}

// SetEmailConfirmed updates the confirmation flag
func (s *PostgresAccountStore) SetEmailConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) error {
	sql, args, err := s.sb.Update("identity_accounts").
		Set("email_confirmed", confirmed).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build confirm account query: %w", err)
	}
	cmdTag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return dbError("confirm account", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrIdentityNotFound
	}
	return nil
}

// Delete removes an account
func (s *PostgresAccountStore) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := s.sb.Delete("identity_accounts").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete account query: %w", err)
	}
	cmdTag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return dbError("delete account", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrIdentityNotFound
	}
	return nil
}
