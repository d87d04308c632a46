package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationOr(t *testing.T) {
	assert.Equal(t, 3*time.Second, DurationOr("3s", time.Minute))
	assert.Equal(t, time.Minute, DurationOr("  ", time.Minute))
	assert.Equal(t, time.Minute, DurationOr("soon", time.Minute))
	assert.Equal(t, time.Minute, DurationOr("-5s", time.Minute))
}

func TestEmailAndNames(t *testing.T) {
	assert.Equal(t, "ali@uni.edu", NormalizeEmail("  Ali@Uni.EDU "))
	assert.True(t, NamesMatch(" ayse ", "AYSE"))
	assert.False(t, NamesMatch("Ali", "Veli"))
}

func TestNullableString(t *testing.T) {
	assert.Nil(t, NullableString("   "))
	v := NullableString(" 555-0100 ")
	if assert.NotNil(t, v) {
		assert.Equal(t, "555-0100", *v)
	}
}
