package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestWithContext(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	withSpan := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	tests := []struct {
		name    string
		ctx     context.Context
		want    map[string]string
		missing []string
	}{
		{
			name:    "empty context",
			ctx:     context.Background(),
			missing: []string{"correlation_id", "user_id", "trace_id", "span_id"},
		},
		{
			name:    "correlation only",
			ctx:     WithCorrelationID(context.Background(), "req-1"),
			want:    map[string]string{"correlation_id": "req-1"},
			missing: []string{"user_id"},
		},
		{
			name: "user only",
			ctx:  WithUserID(context.Background(), "user-1"),
			want: map[string]string{"user_id": "user-1"},
		},
		{
			name: "everything",
			ctx:  WithUserID(WithCorrelationID(withSpan, "req-2"), "user-2"),
			want: map[string]string{
				"correlation_id": "req-2",
				"user_id":        "user-2",
				"trace_id":       "4bf92f3577b34da6a3ce929d0e0e4736",
				"span_id":        "00f067aa0ba902b7",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			WithContext(tt.ctx, NewWithWriter("postflow-api", "info", &buf)).Info("hello")

			line := decodeLine(t, &buf)
			assert.Equal(t, "postflow-api", line["service"])
			for k, v := range tt.want {
				assert.Equal(t, v, line[k], k)
			}
			for _, k := range tt.missing {
				assert.NotContains(t, line, k)
			}
		})
	}
}

func TestWithContext_NothingToAddReturnsSameLogger(t *testing.T) {
	l := NewWithWriter("postflow-api", "info", &bytes.Buffer{})
	assert.Same(t, l, WithContext(context.Background(), l))
}

func TestContextValuesRoundTrip(t *testing.T) {
	ctx := WithUserID(WithCorrelationID(context.Background(), "c-1"), "u-1")

	assert.Equal(t, "c-1", CorrelationIDFromContext(ctx))
	assert.Equal(t, "u-1", UserIDFromContext(ctx))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
	assert.Empty(t, UserIDFromContext(context.Background()))
}

func TestFromContext(t *testing.T) {
	l := NewWithWriter("postflow-api", "info", &bytes.Buffer{})

	assert.Same(t, l, FromContext(NewContext(context.Background(), l)))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestRedactsSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("postflow-api", "info", &buf).With(slog.String("Authorization", "Bearer abc"))

	l.Info("login attempt",
		slog.String("email", "user@postflow.com"),
		slog.String("password", "hunter22"),
		slog.String("token", "eyJhbGciOi"),
	)

	line := decodeLine(t, &buf)
	assert.Equal(t, "user@postflow.com", line["email"])
	assert.Equal(t, Redacted, line["password"])
	assert.Equal(t, Redacted, line["token"])
	assert.Equal(t, Redacted, line["Authorization"])
	assert.NotContains(t, buf.String(), "hunter22")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"Warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("postflow-api", "warn", &buf)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
}

func TestNewForEnvironment(t *testing.T) {
	assert.IsType(t, &slog.TextHandler{}, NewForEnvironment("postflow-api", "local", "info").Handler())
	assert.IsType(t, &slog.JSONHandler{}, NewForEnvironment("postflow-api", "production", "info").Handler())
}
