package models

import (
	"time"

	"github.com/google/uuid"
)

// Professor defines the professor model based on the 'professors' table
type Professor struct {
	ID           uuid.UUID  `json:"id" db:"id"` // Same as the profile id
	DepartmentID *uuid.UUID `json:"departmentId,omitempty" db:"department_id"`
	Designation  *string    `json:"designation,omitempty" db:"designation" example:"Associate Professor"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}
