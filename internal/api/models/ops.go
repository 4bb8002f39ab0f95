package models

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ResilienceStatus represents the state of every circuit breaker in use.
type ResilienceStatus struct {
	Status     HealthStatus      `json:"status"`
	Time       Timestamp         `json:"time"`
	Operations []OperationStatus `json:"operations"`
}

// OperationStatus reports the circuit breaker for a single external operation.
type OperationStatus struct {
	Operation    string       `json:"operation"`
	Status       HealthStatus `json:"status"`
	CircuitState string       `json:"circuitState"`
	FailureCount int          `json:"failureCount"`
	SuccessCount int          `json:"successCount"`
}
