package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/nimson07/postFlow/pkg/middleware"

// Tracing starts a server span per request, continuing any W3C trace
// context sent by the caller. Probe and metrics paths are not traced.
// Spans are renamed to "METHOD /route/{pattern}" once chi has matched.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbe(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			prop := otel.GetTextMapPropagator()
			ctx, span := startServerSpan(prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header)), tracer, r, serviceName)
			defer span.End()

			prop.Inject(ctx, propagation.HeaderCarrier(w.Header()))
			rec := wrap(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			finishServerSpan(span, r, rec.statusCode)
		})
	}
}

func startServerSpan(ctx context.Context, tracer trace.Tracer, r *http.Request, serviceName string) (context.Context, trace.Span) {
	return tracer.Start(ctx, r.Method+" "+r.URL.Path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			semconv.HTTPMethod(r.Method),
			semconv.HTTPTarget(r.URL.RequestURI()),
			semconv.HTTPScheme(requestScheme(r)),
			semconv.UserAgentOriginal(r.UserAgent()),
			attribute.String("http.client_ip", r.RemoteAddr),
			attribute.String("service.name", serviceName),
		),
	)
}

func finishServerSpan(span trace.Span, r *http.Request, status int) {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			span.SetName(r.Method + " " + pattern)
			span.SetAttributes(attribute.String("http.route", pattern))
		}
	}
	span.SetAttributes(semconv.HTTPStatusCode(status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

func requestScheme(r *http.Request) string {
	switch {
	case r.TLS != nil:
		return "https"
	case r.Header.Get("X-Forwarded-Proto") != "":
		return r.Header.Get("X-Forwarded-Proto")
	default:
		return "http"
	}
}
