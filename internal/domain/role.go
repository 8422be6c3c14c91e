package domain

import "slices"

// Roles a user can hold.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

var validRoles = []string{RoleUser, RoleAdmin}

// ValidRoles returns a copy of the known roles.
func ValidRoles() []string {
	return slices.Clone(validRoles)
}

func IsValidRole(role string) bool {
	return slices.Contains(validRoles, role)
}
