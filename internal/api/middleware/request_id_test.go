package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ArielSanroj/mommyshops-sub003/internal/api/middleware"
)

func TestRequestID_GeneratesAndEchoesID(t *testing.T) {
	var ctxID string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = middleware.RequestIDFrom(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	headerID := w.Header().Get(middleware.HeaderRequestID)
	assert.Equal(t, ctxID, headerID)

	// Generated IDs are plain UUIDs.
	_, err := uuid.Parse(headerID)
	assert.NoError(t, err)
}

func TestRequestID_HonoursCallerSuppliedID(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "caller-chosen-id", middleware.RequestIDFrom(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(middleware.HeaderRequestID, "caller-chosen-id")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, "caller-chosen-id", w.Header().Get(middleware.HeaderRequestID))
}

func TestRequestIDFrom_EmptyWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	assert.Empty(t, middleware.RequestIDFrom(req.Context()))
}
