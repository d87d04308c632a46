package models

import (
	"time"

	"github.com/google/uuid"
)

// Course represents a course offered by a department.
type Course struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	CourseCode   string     `json:"courseCode" db:"course_code" example:"CSE101"`
	CourseName   string     `json:"courseName" db:"course_name" example:"Structured Programming"`
	DepartmentID uuid.UUID  `json:"departmentId" db:"department_id"`
	ProfessorID  *uuid.UUID `json:"professorId,omitempty" db:"professor_id"` // Nullable
	Credits      int        `json:"credits" db:"credits" example:"3"`
	Semester     int        `json:"semester" db:"semester" example:"1"`
	Capacity     int        `json:"capacity" db:"capacity" example:"60"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Department *Department `json:"department,omitempty"`
}
