package repositories

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

type execCall struct {
	sql  string
	args []any
}

// fakeDB records statements and replays canned results
type fakeDB struct {
	execs    []execCall
	execErr  error
	affected int64
	rowErr   error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("UPDATE " + strconv.FormatInt(f.affected, 10)), nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return fakeRow{err: f.rowErr}
}

type fakeRow struct{ err error }

func (r fakeRow) Scan(...any) error { return r.err }

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func TestPreRegistrationCreateNormalizesEmail(t *testing.T) {
	fdb := &fakeDB{affected: 1}
	repo := &PreRegistrationRepo{db: fdb, sb: builder()}

	p := &models.PreRegistration{Email: "  Jane.Doe@Uni.EDU ", FirstName: "Jane", LastName: "Doe", Role: models.RoleStudent}
	require.NoError(t, repo.Create(context.Background(), p))

	require.Len(t, fdb.execs, 1)
	assert.Contains(t, fdb.execs[0].sql, "INSERT INTO pre_registrations")
	assert.Equal(t, "jane.doe@uni.edu", fdb.execs[0].args[1])
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestPreRegistrationCreateDuplicateEmail(t *testing.T) {
	fdb := &fakeDB{execErr: uniqueViolation(ConstraintPreRegistrationEmail)}
	repo := &PreRegistrationRepo{db: fdb, sb: builder()}

	err := repo.Create(context.Background(), &models.PreRegistration{Email: "a@b.edu", Role: models.RoleStudent})
	assert.ErrorIs(t, err, apperrors.ErrPreRegistrationExists)
}

func TestProfileCreateDuplicate(t *testing.T) {
	for _, constraint := range []string{ConstraintProfileEmail, "profiles_pkey"} {
		fdb := &fakeDB{execErr: uniqueViolation(constraint)}
		repo := &ProfileRepo{db: fdb, sb: builder()}

		err := repo.Create(context.Background(), &models.Profile{ID: uuid.New(), Email: "a@b.edu", Role: models.RoleStudent})
		assert.ErrorIs(t, err, apperrors.ErrDuplicateAccount, constraint)
	}

	repo := &ProfileRepo{db: &fakeDB{}, sb: builder()}
	assert.Error(t, repo.Create(context.Background(), &models.Profile{Email: "a@b.edu"}), "profile id is required")
}

func TestPreRegistrationGetByEmailIsCaseInsensitive(t *testing.T) {
	fdb := &fakeDB{rowErr: pgx.ErrNoRows}
	repo := &PreRegistrationRepo{db: fdb, sb: builder()}

	_, err := repo.GetByEmail(context.Background(), "Jane@Uni.edu")
	assert.ErrorIs(t, err, apperrors.ErrPreRegistrationNotFound)
	require.Len(t, fdb.execs, 1)
	assert.Contains(t, fdb.execs[0].sql, "lower(email) = $1")
	assert.Equal(t, []any{"jane@uni.edu"}, fdb.execs[0].args)
}

func TestMarkRegisteredOnConsumedRecord(t *testing.T) {
	// zero rows updated and the record exists: it was consumed before
	fdb := &fakeDB{affected: 0}
	repo := &PreRegistrationRepo{db: fdb, sb: builder()}

	err := repo.MarkRegistered(context.Background(), uuid.New(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRegistered)
	assert.Contains(t, fdb.execs[0].sql, "registered_at IS NULL")
}

func TestStudentCreateMapsConstraints(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"student id taken", uniqueViolation(ConstraintStudentID), apperrors.ErrStudentIDTaken},
		{"department missing", &pgconn.PgError{Code: "23503", ConstraintName: ConstraintStudentDepartment}, apperrors.ErrDepartmentNotFound},
		{"duplicate record", uniqueViolation("students_pkey"), apperrors.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &StudentRepo{db: &fakeDB{execErr: tc.err}, sb: builder()}
			err := repo.Create(context.Background(), &models.Student{ID: uuid.New(), StudentID: "CSE24001"})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCourseWriteErrors(t *testing.T) {
	repo := &CourseRepo{db: &fakeDB{execErr: uniqueViolation(ConstraintCourseCode)}, sb: builder()}
	assert.ErrorIs(t, repo.Create(context.Background(), &models.Course{}), apperrors.ErrDuplicateCourse)

	repo = &CourseRepo{db: &fakeDB{execErr: &pgconn.PgError{Code: "23503", ConstraintName: ConstraintCourseProfessor}}, sb: builder()}
	assert.ErrorIs(t, repo.Update(context.Background(), &models.Course{}), apperrors.ErrProfessorNotFound)
}

func TestDepartmentDeleteWithRelations(t *testing.T) {
	repo := &DepartmentRepo{db: &fakeDB{execErr: &pgconn.PgError{Code: "23503"}}, sb: builder()}
	assert.ErrorIs(t, repo.Delete(context.Background(), uuid.New()), apperrors.ErrDepartmentHasRelations)
}

func TestUnavailableDatabaseIsBackendError(t *testing.T) {
	repo := &ProfileRepo{db: &fakeDB{rowErr: context.DeadlineExceeded}, sb: builder()}
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `CSE24`, escapeLike("CSE24"))
	assert.Equal(t, `A\_B\%`, escapeLike("A_B%"))
}
