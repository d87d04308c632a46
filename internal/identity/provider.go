// Package identity talks to the system of record for login credentials.
// Accounts are created, confirmed and removed only through a Provider.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

// Account is an identity provider account
type Account struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	EmailConfirmed bool      `json:"emailConfirmed"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AccountUpdate lists the mutable attributes of an account; nil fields are left alone
type AccountUpdate struct {
	EmailConfirmed *bool
}

// Provider is the identity provider contract.
//
// CreateAccount fails with apperrors.ErrDuplicateAccount when the email is taken; that
// check is the only guard against concurrent registrations of the same person.
// DeleteAccount and UpdateAccount fail with apperrors.ErrIdentityNotFound for unknown ids.
// SignIn fails with apperrors.ErrInvalidCredentials.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (*Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	UpdateAccount(ctx context.Context, id uuid.UUID, update AccountUpdate) (*Account, error)
	SignIn(ctx context.Context, email, password string) (*Account, error)
}

// unavailable marks err as a transient provider failure unless it already carries a domain error
func unavailable(op string, err error) error {
	if errors.Is(err, apperrors.ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: identity %s: %v", apperrors.ErrBackendUnavailable, op, err)
}
