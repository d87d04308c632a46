package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/dberrors"
)

// PostgresStore implements Store on a pgx pool
type PostgresStore struct {
	pool *pgxpool.Pool
	q    db.DBTX
	inTx bool
	sb   squirrel.StatementBuilderType
}

// NewPostgresStore creates a Store on top of pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		q:    pool,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (s *PostgresStore) PreRegistrations() PreRegistrationRepository {
	return &PreRegistrationRepo{db: s.q, sb: s.sb}
}

func (s *PostgresStore) Profiles() ProfileRepository {
	return &ProfileRepo{db: s.q, sb: s.sb}
}

func (s *PostgresStore) Students() StudentRepository {
	return &StudentRepo{db: s.q, sb: s.sb}
}

func (s *PostgresStore) Departments() DepartmentRepository {
	return &DepartmentRepo{db: s.q, sb: s.sb}
}

func (s *PostgresStore) Professors() ProfessorRepository {
	return &ProfessorRepo{db: s.q, sb: s.sb}
}

func (s *PostgresStore) Courses() CourseRepository {
	return &CourseRepo{db: s.q, sb: s.sb}
}

// WithTx runs fn in a transaction
func (s *PostgresStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	err := db.WithTransaction(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(&PostgresStore{pool: s.pool, q: tx, inTx: true, sb: s.sb})
	})
	if err != nil && dberrors.IsUnavailable(err) && !errors.Is(err, apperrors.ErrBackendUnavailable) {
		return wrapErr("transaction", err)
	}
	return err
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
