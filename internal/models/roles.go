// internal/models/roles.go

package models

// UserRole is the access level of an account.
type UserRole string

const (
	RoleUser      UserRole = "USER"
	RoleVolunteer UserRole = "VOLUNTEER"
	RoleAdmin     UserRole = "ADMIN"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

// IsHigherOrEqual reports whether the role ranks at or above target.
func (r UserRole) IsHigherOrEqual(target UserRole) bool {
	roleHierarchy := map[UserRole]int{
		RoleUser:      0,
		RoleVolunteer: 1,
		RoleAdmin:     2,
	}

	currentLevel, ok1 := roleHierarchy[r]
	targetLevel, ok2 := roleHierarchy[target]
	if !ok1 || !ok2 {
		return false
	}

	return currentLevel >= targetLevel
}

// CanModerate reports whether the role may approve or reject submissions
// and verify resources.
func (r UserRole) CanModerate() bool {
	return r == RoleVolunteer || r == RoleAdmin
}

// CanManageUser reports whether the role may change another account.
// Only admins manage accounts, and they cannot manage other admins.
func (r UserRole) CanManageUser(targetRole UserRole) bool {
	if r != RoleAdmin {
		return false
	}
	return targetRole == RoleUser || targetRole == RoleVolunteer
}

func (r UserRole) String() string {
	return string(r)
}

func AllRoles() []UserRole {
	return []UserRole{RoleUser, RoleVolunteer, RoleAdmin}
}

// RoleFromString converts a raw string into a UserRole.
func RoleFromString(role string) (UserRole, bool) {
	r := UserRole(role)
	if r.IsValid() {
		return r, true
	}
	return "", false
}
