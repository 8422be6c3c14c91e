// Package authz holds the role check applied after authentication.
package authz

import "github.com/nimson07/postFlow/internal/domain"

// Allow reports whether the authorized identity holds one of roles. A nil
// identity is never allowed.
func Allow(ac *domain.AuthorizedContext, roles ...string) bool {
	if ac == nil {
		return false
	}
	for _, r := range roles {
		if ac.Role == r {
			return true
		}
	}
	return false
}
