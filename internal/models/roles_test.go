package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRole_IsHigherOrEqual(t *testing.T) {
	tests := []struct {
		role     UserRole
		target   UserRole
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleVolunteer, true},
		{RoleAdmin, RoleUser, true},
		{RoleVolunteer, RoleAdmin, false},
		{RoleVolunteer, RoleVolunteer, true},
		{RoleVolunteer, RoleUser, true},
		{RoleUser, RoleVolunteer, false},
		{RoleUser, RoleUser, true},
		{UserRole("UNKNOWN"), RoleUser, false},
		{RoleAdmin, UserRole("UNKNOWN"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.role.IsHigherOrEqual(tt.target),
			"%s >= %s", tt.role, tt.target)
	}
}

func TestUserRole_CanModerate(t *testing.T) {
	assert.True(t, RoleAdmin.CanModerate())
	assert.True(t, RoleVolunteer.CanModerate())
	assert.False(t, RoleUser.CanModerate())
	assert.False(t, UserRole("").CanModerate())
}

func TestUserRole_CanManageUser(t *testing.T) {
	assert.True(t, RoleAdmin.CanManageUser(RoleUser))
	assert.True(t, RoleAdmin.CanManageUser(RoleVolunteer))
	// Admins do not manage other admins.
	assert.False(t, RoleAdmin.CanManageUser(RoleAdmin))
	assert.False(t, RoleVolunteer.CanManageUser(RoleUser))
	assert.False(t, RoleUser.CanManageUser(RoleUser))
}

func TestRoleFromString(t *testing.T) {
	role, ok := RoleFromString("VOLUNTEER")
	assert.True(t, ok)
	assert.Equal(t, RoleVolunteer, role)

	_, ok = RoleFromString("volunteer")
	assert.False(t, ok)

	_, ok = RoleFromString("")
	assert.False(t, ok)
}
