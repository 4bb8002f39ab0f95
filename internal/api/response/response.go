// Package response writes the API's JSON and problem+json replies.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/ArielSanroj/mommyshops-sub003/internal/api/middleware"
	"github.com/ArielSanroj/mommyshops-sub003/internal/api/models"
)

// JSON writes data with the given status. The request ID, when present, is
// echoed in the X-Request-Id header for correlation.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if id := middleware.RequestIDFrom(r.Context()); id != "" {
		w.Header().Set(middleware.HeaderRequestID, id)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Problem writes an RFC 7807 error, stamping the request path as the
// problem instance.
func Problem(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// BadRequest writes a 400 with per-field validation errors.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errs []models.FieldError) {
	Problem(w, r, models.NewBadRequest(middleware.RequestIDFrom(r.Context()), detail, errs))
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Problem(w, r, models.NewNotFound(middleware.RequestIDFrom(r.Context()), detail))
}

// InternalError writes a 500.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	Problem(w, r, models.NewInternalError(middleware.RequestIDFrom(r.Context()), detail))
}

// ServiceUnavailable writes a 503.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	Problem(w, r, models.NewServiceUnavailable(middleware.RequestIDFrom(r.Context()), detail))
}
