package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/repositories/memory"
	"github.com/yigit/uniportal/internal/identity"
	"golang.org/x/crypto/bcrypt"
)

func newFixture() (*memory.Store, *identity.MemoryAccountStore, identity.Provider) {
	accounts := identity.NewMemoryAccountStore()
	return memory.New(), accounts, identity.NewLocalProvider(accounts, bcrypt.MinCost, zerolog.Nop())
}

var testOptions = Options{AdminEmail: "Admin@Uni.edu", AdminPassword: "Admin123!"}

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, accounts, provider := newFixture()

	require.NoError(t, CreateDefaultData(ctx, store, provider, testOptions, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, store, provider, testOptions, zerolog.Nop()))

	departments, err := store.Departments().List(ctx)
	require.NoError(t, err)
	assert.Len(t, departments, len(DefaultDepartments))

	admin, err := store.Profiles().GetByEmail(ctx, "admin@uni.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.Equal(t, 1, accounts.Count("admin@uni.edu"))

	account, err := provider.SignIn(ctx, "admin@uni.edu", "Admin123!")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, account.ID)
	assert.True(t, account.EmailConfirmed)
}

func TestCreateDefaultDataRecoversOrphanedAdminAccount(t *testing.T) {
	ctx := context.Background()
	store, accounts, provider := newFixture()

	account, err := provider.CreateAccount(ctx, "admin@uni.edu", "Admin123!")
	require.NoError(t, err)

	require.NoError(t, CreateDefaultData(ctx, store, provider, testOptions, zerolog.Nop()))

	admin, err := store.Profiles().GetByEmail(ctx, "admin@uni.edu")
	require.NoError(t, err)
	assert.Equal(t, account.ID, admin.ID)
	assert.Equal(t, 1, accounts.Count("admin@uni.edu"))
}

func TestCreateDefaultDataSkipsAdminWithoutPassword(t *testing.T) {
	ctx := context.Background()
	store, accounts, provider := newFixture()

	require.NoError(t, CreateDefaultData(ctx, store, provider, Options{AdminEmail: "admin@uni.edu"}, zerolog.Nop()))
	assert.Equal(t, 0, accounts.Count("admin@uni.edu"))
}

func TestCreateDefaultDataCollectsErrors(t *testing.T) {
	ctx := context.Background()
	store, _, provider := newFixture()
	boom := errors.New("disk full")
	store.FailOn(memory.OpDepartmentWrite, boom)

	err := CreateDefaultData(ctx, store, provider, testOptions, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// the admin is still created
	_, err = store.Profiles().GetByEmail(ctx, "admin@uni.edu")
	assert.NoError(t, err)
}
