package models

import "strings"

// Role defines the portal role of a profile
type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
	RoleAdmin     Role = "admin"
)

// ParseRole normalizes r and reports whether it names a known role
func ParseRole(r string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(r)))
	switch role {
	case RoleStudent, RoleProfessor, RoleAdmin:
		return role, true
	}
	return "", false
}

// RequiresPreRegistration reports whether people of this role must be pre-approved by an administrator
func (r Role) RequiresPreRegistration() bool {
	return r == RoleStudent || r == RoleProfessor
}

func (r Role) String() string {
	return string(r)
}

// StudentStatus is the enrolment state of a student record
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusInactive  StudentStatus = "inactive"
	StudentStatusGraduated StudentStatus = "graduated"
)
