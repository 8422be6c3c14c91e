package middleware

import (
	"log/slog"
	"net/http"

	"github.com/nimson07/postFlow/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, enriched with
// the correlation id, user id and trace/span ids known so far. Handlers read
// it with logger.FromContext.
//
// Mount it after RequestLogging and Tracing. Authentication, which runs
// later, re-enriches the logger with the caller's user id.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
