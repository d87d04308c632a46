package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	goose.SetBaseFS(migrationFS)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	migrations, err := goose.CollectMigrations(migrationDir, 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, migrations, 3)
	for i, m := range migrations {
		assert.Equal(t, int64(i+1), m.Version)
	}
}

func TestMigrationsDeclareUniquenessConstraints(t *testing.T) {
	var all strings.Builder
	err := fs.WalkDir(migrationFS, migrationDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := migrationFS.ReadFile(path)
		if err != nil {
			return err
		}
		content := string(data)
		assert.Contains(t, content, "-- +goose Up", path)
		assert.Contains(t, content, "-- +goose Down", path)
		all.WriteString(content)
		return nil
	})
	require.NoError(t, err)

	for _, want := range []string{
		"CONSTRAINT departments_code_key UNIQUE (code)",
		"identity_accounts_email_key ON identity_accounts (lower(email))",
		"pre_registrations_email_key ON pre_registrations (lower(email))",
		"CONSTRAINT students_student_id_key UNIQUE (student_id)",
		"CONSTRAINT courses_course_code_key UNIQUE (course_code)",
		"CHECK (credits BETWEEN 1 AND 10)",
		"CHECK (capacity >= 1)",
	} {
		assert.Contains(t, all.String(), want)
	}
}
