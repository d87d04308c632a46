package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatterns(t *testing.T) {
	assert.True(t, IsEmail("ali.veli@uni.edu"))
	assert.False(t, IsEmail("Ali@Uni.edu"), "expects normalized input")
	assert.False(t, IsEmail("no-at-sign"))

	assert.True(t, CompiledPatterns.DepartmentCode.MatchString("CSE"))
	assert.False(t, CompiledPatterns.DepartmentCode.MatchString("cse"))
	assert.True(t, CompiledPatterns.Batch.MatchString("2024"))
	assert.False(t, CompiledPatterns.Batch.MatchString("20245"))
	assert.True(t, CompiledPatterns.CourseCode.MatchString("MATH-201"))
	assert.False(t, CompiledPatterns.CourseCode.MatchString("101"))
}

func TestIsPersonName(t *testing.T) {
	assert.True(t, IsPersonName("Ayşe"))
	assert.False(t, IsPersonName("   "))
	assert.True(t, IsPersonName(strings.Repeat("ş", NameMaxLength)))
	assert.False(t, IsPersonName(strings.Repeat("a", NameMaxLength+1)))
}

func TestFieldsKeepFirstMessage(t *testing.T) {
	f := Fields{}
	f.Check(true, "email", "unused")
	assert.True(t, f.Empty())

	f.Check(false, "semester", "out of range")
	f.Check(false, "semester", "second message")
	assert.False(t, f.Empty())
	assert.Equal(t, "out of range", f["semester"])
	assert.True(t, IsSemester(MaxSemester))
	assert.False(t, IsSemester(MinSemester-1))
}
