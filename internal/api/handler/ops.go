// Package handler provides HTTP handlers for the MommyShops API.
package handler

import (
	"net/http"
	"time"

	"github.com/ArielSanroj/mommyshops-sub003/internal/api/models"
	"github.com/ArielSanroj/mommyshops-sub003/internal/api/response"
	"github.com/ArielSanroj/mommyshops-sub003/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	resilient *resilience.Client
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, resilient *resilience.Client) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		resilient: resilient,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
// The service has no hard backing dependencies to probe at startup;
// provider reachability is reported through the resilience endpoint.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ResilienceStatus handles GET /v1/ops/resilience - circuit breaker state
// per external operation. Only operations that have been called appear.
func (h *OpsHandler) ResilienceStatus(w http.ResponseWriter, r *http.Request) {
	stats := h.resilient.Statistics()

	overall := models.HealthStatusOK
	operations := make([]models.OperationStatus, 0, len(stats))
	for name, snap := range stats {
		status := statusForState(snap.State)
		if status == models.HealthStatusFail {
			overall = models.HealthStatusFail
		} else if status == models.HealthStatusDegraded && overall == models.HealthStatusOK {
			overall = models.HealthStatusDegraded
		}
		operations = append(operations, models.OperationStatus{
			Operation:    name,
			Status:       status,
			CircuitState: snap.State.String(),
			FailureCount: snap.FailureCount,
			SuccessCount: snap.SuccessCount,
		})
	}

	response.JSON(w, r, http.StatusOK, models.ResilienceStatus{
		Status:     overall,
		Time:       models.Timestamp(time.Now()),
		Operations: operations,
	})
}

func statusForState(s resilience.State) models.HealthStatus {
	switch s {
	case resilience.StateOpen:
		return models.HealthStatusFail
	case resilience.StateHalfOpen:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}
