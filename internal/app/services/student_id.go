package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/yigit/uniportal/internal/app/repositories"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

// DefaultMaxStudentIDAttempts caps the suffix search of a single generation
const DefaultMaxStudentIDAttempts = 100

const studentIDSuffixSpace = 1000

// StudentIDGenerator picks student ids of the form {DEPT}{batch}{NNN}.
// It only lowers the chance of a collision; the students.student_id
// unique constraint is what keeps ids unique.
type StudentIDGenerator struct {
	maxAttempts int
	intn        func(n int) int
}

// NewStudentIDGenerator creates a generator that gives up after maxAttempts random suffixes
func NewStudentIDGenerator(maxAttempts int) *StudentIDGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxStudentIDAttempts
	}
	return &StudentIDGenerator{maxAttempts: maxAttempts, intn: rand.Intn}
}

// StudentIDPrefix returns the department+batch part shared by a cohort
func StudentIDPrefix(departmentCode, batch string) string {
	return strings.ToUpper(strings.TrimSpace(departmentCode)) + strings.TrimSpace(batch)
}

// Generate returns an id that no stored student uses yet, along with the number of attempts it took
func (g *StudentIDGenerator) Generate(ctx context.Context, students repositories.StudentRepository, departmentCode, batch string) (string, int, error) {
	prefix := StudentIDPrefix(departmentCode, batch)
	existing, err := students.StudentIDsWithPrefix(ctx, prefix)
	if err != nil {
		return "", 0, fmt.Errorf("error loading existing student ids: %w", err)
	}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		candidate := fmt.Sprintf("%s%03d", prefix, g.intn(studentIDSuffixSpace))
		if _, taken := existing[candidate]; !taken {
			return candidate, attempt, nil
		}
	}
	return "", g.maxAttempts, apperrors.NewCustomError(apperrors.ErrIDGenerationExhausted,
		fmt.Sprintf("could not generate a unique student ID for %s after %d attempts", prefix, g.maxAttempts))
}
