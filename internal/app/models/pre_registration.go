package models

import (
	"time"

	"github.com/google/uuid"
)

// PreRegistration is an administrator's permission for a named person to self-register for a role.
// It is consumed once: IdentityID and RegisteredAt are set by the successful registration.
type PreRegistration struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email" example:"jane.doe@uni.edu"`
	FirstName    string     `json:"firstName" db:"first_name" example:"Jane"`
	LastName     string     `json:"lastName" db:"last_name" example:"Doe"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	Role         Role       `json:"role" db:"role" example:"student"`
	IdentityID   *uuid.UUID `json:"identityId,omitempty" db:"identity_id"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	RegisteredAt *time.Time `json:"registeredAt,omitempty" db:"registered_at"`
}

// IsRegistered reports whether the pre-registration was already claimed
func (p *PreRegistration) IsRegistered() bool {
	return p.RegisteredAt != nil
}
