package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/uniportal/internal/app/models"
	appRepos "github.com/yigit/uniportal/internal/app/repositories"
	"github.com/yigit/uniportal/internal/identity"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

// Options controls the default administrator account
type Options struct {
	AdminEmail    string
	AdminPassword string
}

// DefaultDepartments are created on first start so that student registration has somewhere to land
var DefaultDepartments = []appModels.Department{
	{Name: "Computer Science and Engineering", Code: "CSE"},
	{Name: "Electrical and Electronics Engineering", Code: "EEE"},
	{Name: "Mathematics", Code: "MATH"},
	{Name: "Physics", Code: "PHYS"},
}

// CreateDefaultData creates the default departments and administrator if they don't exist.
// Every step is skipped when its data is already present, so it is safe to run on every start.
func CreateDefaultData(ctx context.Context, store appRepos.Store, provider identity.Provider, opts Options, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Departments/Admin)...")
	var finalErr error

	for _, dept := range DefaultDepartments {
		dept := dept
		err := store.Departments().Create(ctx, &dept)
		switch {
		case err == nil:
			lgr.Info().Str("code", dept.Code).Msg("Default department created")
		case errors.Is(err, apperrors.ErrDepartmentAlreadyExists):
		default:
			lgr.Error().Err(err).Str("code", dept.Code).Msg("Error creating default department")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if err := createAdmin(ctx, store, provider, opts, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func createAdmin(ctx context.Context, store appRepos.Store, provider identity.Provider, opts Options, lgr zerolog.Logger) error {
	email := helpers.NormalizeEmail(opts.AdminEmail)
	if email == "" || opts.AdminPassword == "" {
		lgr.Warn().Msg("Seed admin email or password not configured, skipping admin creation")
		return nil
	}

	_, err := store.Profiles().GetByEmail(ctx, email)
	if err == nil {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}
	if !errors.Is(err, apperrors.ErrProfileNotFound) {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}

	lgr.Info().Msg("Creating default admin user...")
	account, err := provider.CreateAccount(ctx, email, opts.AdminPassword)
	if errors.Is(err, apperrors.ErrDuplicateAccount) {
		// An earlier start created the account but not the profile
		account, err = provider.SignIn(ctx, email, opts.AdminPassword)
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating admin identity")
		return err
	}

	confirmed := true
	if _, err := provider.UpdateAccount(ctx, account.ID, identity.AccountUpdate{EmailConfirmed: &confirmed}); err != nil {
		lgr.Warn().Err(err).Msg("Could not confirm admin email")
	}

	admin := &appModels.Profile{
		ID:        account.ID,
		Email:     email,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      appModels.RoleAdmin,
		IsActive:  true,
	}
	if err := store.Profiles().Create(ctx, admin); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin profile")
		return err
	}

	lgr.Info().Str("adminID", account.ID.String()).Msg("Default admin user created successfully")
	return nil
}
