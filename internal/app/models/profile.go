package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the application-level user record. ID is always the id of the identity account that owns it.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email" example:"jane.doe@uni.edu"`
	FirstName string    `json:"firstName" db:"first_name" example:"Jane"`
	LastName  string    `json:"lastName" db:"last_name" example:"Doe"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Role      Role      `json:"role" db:"role" example:"student"`
	IsActive  bool      `json:"isActive" db:"is_active" example:"true"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
