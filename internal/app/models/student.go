package models

import (
	"time"

	"github.com/google/uuid"
)

// Student defines the student model based on the 'students' table.
// ID is the profile id, or the pre-registration id while the record is an admin-created placeholder.
type Student struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	StudentID    string        `json:"studentId" db:"student_id" example:"CSE24007"`
	DepartmentID uuid.UUID     `json:"departmentId" db:"department_id"`
	Batch        string        `json:"batch" db:"batch" example:"24"`
	Semester     int           `json:"semester" db:"semester" example:"1"`
	AcademicYear *string       `json:"academicYear,omitempty" db:"academic_year" example:"2024-2025"`
	Status       StudentStatus `json:"status" db:"status" example:"active"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Department *Department `json:"department,omitempty"`
}
