package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParsePrefixes(t *testing.T) {
	got := ParsePrefixes([]string{"10.1.2.3/8", "bogus", "192.168.0.7", "::1/128"}, quietLogger())

	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.0.7/32"),
		netip.MustParsePrefix("::1/128"),
	}, got)
}

func TestIPAllowlist(t *testing.T) {
	tests := []struct {
		name       string
		cidrs      []string
		remoteAddr string
		wantStatus int
	}{
		{"loopback allowed", []string{"127.0.0.0/8"}, "127.0.0.1:5100", http.StatusOK},
		{"outside range", []string{"10.0.0.0/8"}, "192.168.1.1:5100", http.StatusForbidden},
		{"second range matches", []string{"10.0.0.0/8", "172.16.0.0/12"}, "172.20.4.4:80", http.StatusOK},
		{"invalid entry skipped", []string{"nope", "127.0.0.0/8"}, "127.0.0.1:80", http.StatusOK},
		{"ipv6 loopback", []string{"::1/128"}, "[::1]:5100", http.StatusOK},
		{"ipv4-mapped ipv6", []string{"127.0.0.0/8"}, "[::ffff:127.0.0.1]:5100", http.StatusOK},
		{"address without port", []string{"127.0.0.0/8"}, "127.0.0.1", http.StatusOK},
		{"unparseable address", []string{"0.0.0.0/0"}, "not-an-ip", http.StatusForbidden},
		{"empty allowlist", nil, "127.0.0.1:5100", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := IPAllowlist(tt.cidrs, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
			req.RemoteAddr = tt.remoteAddr
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestIPAllowlist_DeniedBodyUsesErrorEnvelope(t *testing.T) {
	h := IPAllowlist([]string{"10.0.0.0/8"}, quietLogger())(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "203.0.113.9:443"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
}

func TestRegisterPprof(t *testing.T) {
	r := chi.NewRouter()
	RegisterPprof(r, []string{"127.0.0.0/8"}, quietLogger())

	for _, path := range []string{"/debug/pprof/", "/debug/pprof/cmdline", "/debug/pprof/heap"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.RemoteAddr = "127.0.0.1:5100"
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	t.Run("remote caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
		req.RemoteAddr = "198.51.100.2:5100"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
