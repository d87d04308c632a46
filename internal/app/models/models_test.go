package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	cases := map[string]struct {
		want Role
		ok   bool
	}{
		"student":     {RoleStudent, true},
		" Professor ": {RoleProfessor, true},
		"ADMIN":       {RoleAdmin, true},
		"dean":        {"", false},
		"":            {"", false},
	}
	for in, tc := range cases {
		got, ok := ParseRole(in)
		assert.Equal(t, tc.ok, ok, in)
		assert.Equal(t, tc.want, got, in)
	}
}

func TestRequiresPreRegistration(t *testing.T) {
	assert.True(t, RoleStudent.RequiresPreRegistration())
	assert.True(t, RoleProfessor.RequiresPreRegistration())
	assert.False(t, RoleAdmin.RequiresPreRegistration())
}

func TestPreRegistrationIsRegistered(t *testing.T) {
	p := &PreRegistration{}
	assert.False(t, p.IsRegistered())
	now := time.Now()
	p.RegisteredAt = &now
	assert.True(t, p.IsRegistered())
}
