package models

import "time"

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// HealthResponse is returned by the storefront health endpoint
type HealthResponse struct {
	Status    string    `json:"status"`
	Backend   string    `json:"backend"`
	Storage   string    `json:"storage"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageResponse is the generic acknowledgement body used by the backend
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
