package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"carenest/middleware"

	"github.com/stretchr/testify/assert"
)

func TestCallerEmailPrefersQueryParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/stats?email=query@example.com", nil)
	req.Header.Set("X-User-Email", "header@example.com")

	assert.Equal(t, "query@example.com", middleware.CallerEmail(req))
}

func TestCallerEmailFallsBackToHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("X-User-Email", "header@example.com")

	assert.Equal(t, "header@example.com", middleware.CallerEmail(req))
}

func TestCallerEmailEmptyWhenAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)

	assert.Equal(t, "", middleware.CallerEmail(req))
}

func TestRequestIDEchoedInHeader(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDPreservesClientID(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-id-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "client-id-1", rec.Header().Get("X-Request-ID"))
}
