package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimson07/postFlow/pkg/httputil"
	"github.com/nimson07/postFlow/pkg/logger"
)

func TestRecovery_PanicBecomes500(t *testing.T) {
	var logs bytes.Buffer
	h := Recovery(logger.NewWithWriter("postflow-api", "info", &logs))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil author")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req = req.WithContext(logger.WithCorrelationID(req.Context(), "corr-9"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Equal(t, "corr-9", body.Error.RequestID)

	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), "nil author")
}

func TestRecovery_PassThrough(t *testing.T) {
	h := Recovery(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRecovery_RepanicsAbortHandler(t *testing.T) {
	h := Recovery(quietLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
