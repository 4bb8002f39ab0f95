package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArielSanroj/mommyshops-sub003/internal/api/models"
)

func TestProblem_Write(t *testing.T) {
	p := models.NewBadRequest("req-1", "invalid input", []models.FieldError{
		{Field: "name", Message: "must not be empty", Code: "REQUIRED"},
	})
	p.Instance = "/v1/ingredients/"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req-1", w.Header().Get("X-Request-Id"))

	var got models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.ProblemTypeValidation, got.Type)
	assert.Equal(t, "Validation error", got.Title)
	assert.Equal(t, "invalid input", got.Detail)
	assert.Equal(t, "/v1/ingredients/", got.Instance)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, "REQUIRED", got.Errors[0].Code)
}

func TestProblemConstructors(t *testing.T) {
	cases := []struct {
		problem *models.Problem
		typeURI string
		title   string
		status  int
	}{
		{models.NewNotFound("id", "d"), models.ProblemTypeNotFound, "Not found", http.StatusNotFound},
		{models.NewTooManyRequests("id", "d"), models.ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests},
		{models.NewInternalError("id", "d"), models.ProblemTypeInternal, "Internal server error", http.StatusInternalServerError},
		{models.NewServiceUnavailable("id", "d"), models.ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.typeURI, tc.problem.Type)
		assert.Equal(t, tc.title, tc.problem.Title)
		assert.Equal(t, tc.status, tc.problem.Status)
		assert.Equal(t, "id", tc.problem.TraceID)
		assert.Equal(t, "d", tc.problem.Detail)
	}
}
