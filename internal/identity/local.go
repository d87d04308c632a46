package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/auth"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

// StoredAccount is an account row including its password hash
type StoredAccount struct {
	Account
	PasswordHash string
}

// AccountStore persists local accounts. Insert must reject a second account with the same
// email (ignoring case) with apperrors.ErrDuplicateAccount.
type AccountStore interface {
	Insert(ctx context.Context, a *StoredAccount) error
	GetByEmail(ctx context.Context, email string) (*StoredAccount, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StoredAccount, error)
	SetEmailConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LocalProvider keeps accounts in the portal's own database with bcrypt hashes
type LocalProvider struct {
	accounts AccountStore
	cost     int
	logger   zerolog.Logger
	now      func() time.Time

	// compared against when the email is unknown so that SignIn costs the same either way
	dummyHash string
}

// NewLocalProvider creates a provider on top of accounts
func NewLocalProvider(accounts AccountStore, bcryptCost int, logger zerolog.Logger) *LocalProvider {
	dummy, _ := auth.HashPasswordWithCost("uniportal-dummy-password", bcryptCost)
	return &LocalProvider{
		accounts:  accounts,
		cost:      bcryptCost,
		logger:    logger,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// CreateAccount hashes the password and stores a new unconfirmed account
func (p *LocalProvider) CreateAccount(ctx context.Context, email, password string) (*Account, error) {
	hash, err := auth.HashPasswordWithCost(password, p.cost)
	if err != nil {
		return nil, err
	}

	stored := &StoredAccount{
		Account: Account{
			ID:        uuid.New(),
			Email:     helpers.NormalizeEmail(email),
			CreatedAt: p.now().UTC(),
		},
		PasswordHash: hash,
	}
	if err := p.accounts.Insert(ctx, stored); err != nil {
		return nil, err
	}

	p.logger.Debug().Str("accountID", stored.ID.String()).Msg("Local identity account created")
	account := stored.Account
	return &account, nil
}

// DeleteAccount removes an account
func (p *LocalProvider) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return p.accounts.Delete(ctx, id)
}

// UpdateAccount applies update and returns the resulting account
func (p *LocalProvider) UpdateAccount(ctx context.Context, id uuid.UUID, update AccountUpdate) (*Account, error) {
	if update.EmailConfirmed != nil {
		if err := p.accounts.SetEmailConfirmed(ctx, id, *update.EmailConfirmed); err != nil {
			return nil, err
		}
	}
	stored, err := p.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	account := stored.Account
	return &account, nil
}

// SignIn verifies the password of the account registered under email
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Account, error) {
	stored, err := p.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrIdentityNotFound) {
			auth.CheckPassword(p.dummyHash, password)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(stored.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	account := stored.Account
	return &account, nil
}
