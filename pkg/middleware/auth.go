package middleware

import (
	"net/http"
	"strings"
)

// NewTokenHeader carries the renewed session token on every authenticated
// response.
const NewTokenHeader = "X-New-Token"

// BearerToken returns the credential from an "Authorization: Bearer <token>"
// header. A missing header, another scheme or an empty credential all yield "".
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
