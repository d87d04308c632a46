package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation rule patterns
var (
	// EmailPattern is applied to normalized (lower-case) addresses
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// DepartmentCodePattern: upper-case alphanumeric, 2 to 10 characters
	DepartmentCodePattern = `^[A-Z0-9]{2,10}$`

	// BatchPattern: admission year or intake label, digits only
	BatchPattern = `^[0-9]{2,4}$`

	// CourseCodePattern: e.g. CSE101, MATH-201
	CourseCodePattern = `^[A-Z]{2,6}-?[0-9]{3,4}[A-Z]?$`
)

// Limits for registrant fields
const (
	PasswordMinLength = 6
	NameMaxLength     = 100
	MinSemester       = 1
	MaxSemester       = 12
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email          *regexp.Regexp
	DepartmentCode *regexp.Regexp
	Batch          *regexp.Regexp
	CourseCode     *regexp.Regexp
}{
	Email:          regexp.MustCompile(EmailPattern),
	DepartmentCode: regexp.MustCompile(DepartmentCodePattern),
	Batch:          regexp.MustCompile(BatchPattern),
	CourseCode:     regexp.MustCompile(CourseCodePattern),
}

// IsEmail reports whether a normalized email has a valid shape
func IsEmail(email string) bool {
	return CompiledPatterns.Email.MatchString(email)
}

// IsPersonName accepts a non-blank name of at most NameMaxLength characters
func IsPersonName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && utf8.RuneCountInString(name) <= NameMaxLength
}

// IsSemester reports whether s is inside the academic semester range
func IsSemester(s int) bool {
	return s >= MinSemester && s <= MaxSemester
}

// Fields collects per-field messages for a validation error's details
type Fields map[string]interface{}

// Check records msg under field unless ok holds
func (f Fields) Check(ok bool, field, msg string) {
	if ok {
		return
	}
	if _, seen := f[field]; !seen {
		f[field] = msg
	}
}

// Empty reports whether every check passed
func (f Fields) Empty() bool {
	return len(f) == 0
}
