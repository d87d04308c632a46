package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/repositories/memory"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

func TestEligibilityGate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.preRegister(t, "jane.doe@uni.edu", "Jane", "Doe", models.RoleStudent)

	t.Run("unknown email is not eligible", func(t *testing.T) {
		res, err := env.eligibility.Check(ctx, "someone@uni.edu", "student")
		require.NoError(t, err)
		assert.False(t, res.Eligible)
		assert.Nil(t, res.RequiredName)
		assert.NotEmpty(t, res.Message)
	})

	t.Run("matching email and role returns the name on file", func(t *testing.T) {
		res, err := env.eligibility.Check(ctx, "  JANE.DOE@uni.edu ", "student")
		require.NoError(t, err)
		assert.True(t, res.Eligible)
		require.NotNil(t, res.RequiredName)
		assert.Equal(t, "Jane", res.RequiredName.FirstName)
		assert.Equal(t, "Doe", res.RequiredName.LastName)
	})

	t.Run("other role is not eligible", func(t *testing.T) {
		res, err := env.eligibility.Check(ctx, "jane.doe@uni.edu", "professor")
		require.NoError(t, err)
		assert.False(t, res.Eligible)
	})

	t.Run("admin role is a validation error", func(t *testing.T) {
		_, err := env.eligibility.Check(ctx, "jane.doe@uni.edu", "admin")
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("self-registration is refused without eligibility", func(t *testing.T) {
		_, err := env.registration.Register(ctx, registerReq("Jane", "Doe", "someone@uni.edu", "student"), "")
		assert.ErrorIs(t, err, apperrors.ErrNotEligible)
		assert.Equal(t, 0, env.accounts.Count("someone@uni.edu"))
	})
}

func TestEligibilityIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.preRegister(t, "prof@uni.edu", "Alan", "Turing", models.RoleProfessor)

	for _, email := range []string{"prof@uni.edu", "nobody@uni.edu"} {
		first, err := env.eligibility.Check(ctx, email, "professor")
		require.NoError(t, err)
		second, err := env.eligibility.Check(ctx, email, "professor")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}

	pre, err := env.store.PreRegistrations().GetByEmail(ctx, "prof@uni.edu")
	require.NoError(t, err)
	assert.False(t, pre.IsRegistered())
}

func TestEligibilityAfterRegistration(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.preRegister(t, "prof@uni.edu", "Alan", "Turing", models.RoleProfessor)

	_, err := env.registration.Register(ctx, registerReq("Alan", "Turing", "prof@uni.edu", "professor"), "")
	require.NoError(t, err)

	res, err := env.eligibility.Check(ctx, "prof@uni.edu", "professor")
	require.NoError(t, err)
	assert.False(t, res.Eligible)
}

func TestEligibilityLookupFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.FailOn(memory.OpPreRegistrationGet, errors.New("connection refused"))

	res, err := env.eligibility.Check(context.Background(), "jane.doe@uni.edu", "student")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperrors.ErrLookupFailed)
}
