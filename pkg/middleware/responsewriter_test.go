package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type flushHijackWriter struct {
	http.ResponseWriter
	flushed, hijacked bool
}

func (f *flushHijackWriter) Flush() { f.flushed = true }

func (f *flushHijackWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	f.hijacked = true
	return nil, nil, nil
}

// bareWriter implements only http.ResponseWriter.
type bareWriter struct{ h http.Header }

func (b *bareWriter) Header() http.Header { return b.h }
func (b *bareWriter) Write(p []byte) (int, error) { return len(p), nil }
func (b *bareWriter) WriteHeader(int) {}

func TestStatusRecorder_FirstStatusWins(t *testing.T) {
	rec := wrap(httptest.NewRecorder())

	rec.WriteHeader(http.StatusTeapot)
	rec.WriteHeader(http.StatusOK)
	n, err := rec.Write([]byte("hello"))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, rec.statusCode)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, rec.bytes)
}

func TestWrap_ReusesRecorder(t *testing.T) {
	rec := wrap(httptest.NewRecorder())
	assert.Same(t, rec, wrap(rec))
}

func TestStatusRecorder_Delegation(t *testing.T) {
	inner := &flushHijackWriter{ResponseWriter: httptest.NewRecorder()}
	rec := wrap(inner)

	rec.Flush()
	_, _, err := rec.Hijack()

	assert.NoError(t, err)
	assert.True(t, inner.flushed)
	assert.True(t, inner.hijacked)
	assert.Same(t, http.ResponseWriter(inner), rec.Unwrap())
}

func TestStatusRecorder_UnsupportedHijack(t *testing.T) {
	rec := wrap(&bareWriter{h: http.Header{}})

	rec.Flush()
	_, _, err := rec.Hijack()

	assert.ErrorIs(t, err, http.ErrNotSupported)
}
