package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/repositories/memory"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

func sequence(values ...int) func(int) int {
	i := 0
	return func(int) int {
		v := values[i%len(values)]
		i++
		return v
	}
}

func TestStudentIDPrefix(t *testing.T) {
	assert.Equal(t, "CSE24", StudentIDPrefix(" cse ", " 24"))
}

func TestGenerateSkipsTakenIDs(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	dept := &models.Department{Name: "Computer Science", Code: "CSE"}
	require.NoError(t, store.Departments().Create(ctx, dept))
	require.NoError(t, store.Students().Create(ctx, &models.Student{
		ID: uuid.New(), StudentID: "CSE24007", DepartmentID: dept.ID, Batch: "24",
	}))

	gen := NewStudentIDGenerator(10)
	gen.intn = sequence(7, 7, 42)

	id, attempts, err := gen.Generate(ctx, store.Students(), "CSE", "24")
	require.NoError(t, err)
	assert.Equal(t, "CSE24042", id)
	assert.Equal(t, 3, attempts)
}

func TestGenerateIsBounded(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	dept := &models.Department{Name: "Computer Science", Code: "CSE"}
	require.NoError(t, store.Departments().Create(ctx, dept))
	require.NoError(t, store.Students().Create(ctx, &models.Student{
		ID: uuid.New(), StudentID: "CSE24001", DepartmentID: dept.ID, Batch: "24",
	}))

	calls := 0
	gen := NewStudentIDGenerator(5)
	gen.intn = func(int) int { calls++; return 1 }

	_, attempts, err := gen.Generate(ctx, store.Students(), "CSE", "24")
	require.ErrorIs(t, err, apperrors.ErrIDGenerationExhausted)
	assert.Equal(t, 5, attempts)
	assert.Equal(t, 5, calls)
}

func TestGenerateFailsWhenStoreFails(t *testing.T) {
	store := memory.New()
	store.FailOn(memory.OpStudentIDs, apperrors.ErrBackendUnavailable)

	_, _, err := NewStudentIDGenerator(5).Generate(context.Background(), store.Students(), "CSE", "24")
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
}

func TestConcurrentStudentIDsNeverDuplicate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	dept := &models.Department{Name: "Computer Science", Code: "CSE"}
	require.NoError(t, store.Departments().Create(ctx, dept))

	const workers = 1000
	gen := NewStudentIDGenerator(DefaultMaxStudentIDAttempts)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted []string
		failures []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _, err := gen.Generate(ctx, store.Students(), dept.Code, "24")
			if err == nil {
				err = store.Students().Create(ctx, &models.Student{
					ID: uuid.New(), StudentID: id, DepartmentID: dept.ID, Batch: "24",
				})
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			inserted = append(inserted, id)
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, len(inserted)+len(failures))
	assert.NotEmpty(t, inserted)

	seen := make(map[string]struct{}, len(inserted))
	for _, id := range inserted {
		_, dup := seen[id]
		require.False(t, dup, "student id %s inserted twice", id)
		seen[id] = struct{}{}
	}

	for _, err := range failures {
		assert.True(t,
			errors.Is(err, apperrors.ErrStudentIDTaken) || errors.Is(err, apperrors.ErrIDGenerationExhausted),
			"unexpected failure: %v", err)
	}

	stored, err := store.Students().StudentIDsWithPrefix(ctx, "CSE24")
	require.NoError(t, err)
	assert.Len(t, stored, len(inserted))
}
