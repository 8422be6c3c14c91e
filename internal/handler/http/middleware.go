package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nimson07/postFlow/internal/authz"
	"github.com/nimson07/postFlow/internal/domain"
	"github.com/nimson07/postFlow/internal/gate"
	apperrors "github.com/nimson07/postFlow/pkg/errors"
	"github.com/nimson07/postFlow/pkg/httputil"
	"github.com/nimson07/postFlow/pkg/logger"
	"github.com/nimson07/postFlow/pkg/middleware"
)

// Authorizer authenticates a raw bearer token. *gate.Gate satisfies it.
type Authorizer interface {
	Authorize(ctx context.Context, raw string) (*domain.AuthorizedContext, string, error)
}

type renewedTokenKey struct{}

// RenewedToken returns the replacement token issued for this request, or "".
func RenewedToken(ctx context.Context) string {
	token, _ := ctx.Value(renewedTokenKey{}).(string)
	return token
}

// Authenticate runs the bearer token through the auth gate. On success the
// caller's identity is stored in the request context and the renewed token
// is returned in the X-New-Token header.
func Authenticate(authorizer Authorizer, fallback *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, renewed, err := authorizer.Authorize(r.Context(), middleware.BearerToken(r))
			if err != nil {
				httputil.WriteError(w, r, err, fallback)
				return
			}

			w.Header().Set(middleware.NewTokenHeader, renewed)

			ctx := gate.WithAuthorized(r.Context(), ac)
			ctx = context.WithValue(ctx, renewedTokenKey{}, renewed)
			ctx = logger.WithUserID(ctx, ac.ID)

			l := logger.FromContext(ctx)
			if l == slog.Default() && fallback != nil {
				l = fallback
			}
			ctx = logger.NewContext(ctx, l.With(slog.String("user_id", ac.ID)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose role is not in roles. It must be mounted
// after Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := gate.FromContext(r.Context())
			if ac == nil {
				httputil.WriteError(w, r, apperrors.Unauthorized("not authenticated"), nil)
				return
			}
			if !authz.Allow(ac, roles...) {
				httputil.WriteError(w, r, apperrors.Forbidden("insufficient permissions"), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
