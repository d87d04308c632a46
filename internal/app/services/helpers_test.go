package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/repositories/memory"
	"github.com/yigit/uniportal/internal/identity"
	"github.com/yigit/uniportal/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	store        *memory.Store
	accounts     *identity.MemoryAccountStore
	provider     *identity.LocalProvider
	eligibility  *EligibilityService
	registration *RegistrationService
	adminStudent *AdminStudentService
	auth         *AuthService
	jwt          *auth.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	accounts := identity.NewMemoryAccountStore()
	provider := identity.NewLocalProvider(accounts, bcrypt.MinCost, zerolog.Nop())
	ids := NewStudentIDGenerator(DefaultMaxStudentIDAttempts)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "uniportal-test",
	})
	logger := zerolog.Nop()

	return &testEnv{
		store:        store,
		accounts:     accounts,
		provider:     provider,
		eligibility:  NewEligibilityService(store, nil, time.Second, logger),
		registration: NewRegistrationService(store, provider, ids, nil, time.Second, logger),
		adminStudent: NewAdminStudentService(store, ids, nil, time.Second, logger),
		auth:         NewAuthService(store, provider, jwtService, time.Second, logger),
		jwt:          jwtService,
	}
}

func (e *testEnv) preRegister(t *testing.T, email, first, last string, role models.Role) *models.PreRegistration {
	t.Helper()
	pre := &models.PreRegistration{Email: email, FirstName: first, LastName: last, Role: role}
	require.NoError(t, e.store.PreRegistrations().Create(context.Background(), pre))
	return pre
}

func (e *testEnv) department(t *testing.T, code string) *models.Department {
	t.Helper()
	dept := &models.Department{Name: code + " Department", Code: code}
	require.NoError(t, e.store.Departments().Create(context.Background(), dept))
	return dept
}
