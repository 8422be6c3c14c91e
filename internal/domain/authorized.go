package domain

// AuthorizedContext is the identity attached to a request that passed the
// auth gate. It is built from the stored user, not from token claims, so a
// role change takes effect on the next request.
type AuthorizedContext struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	IsPasswordSet bool   `json:"is_password_set"`
}

// NewAuthorizedContext captures the identity fields of u.
func NewAuthorizedContext(u *User) *AuthorizedContext {
	return &AuthorizedContext{
		ID:            u.ID,
		Email:         u.Email,
		Role:          u.Role,
		IsPasswordSet: u.IsPasswordSet,
	}
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (a *AuthorizedContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}
