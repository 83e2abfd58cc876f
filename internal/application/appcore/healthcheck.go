// Package appcore holds the contracts shared by the review use cases and the HTTP shell.
package appcore

import (
	"context"
	"fmt"
	"time"
)

// HealthChecker reports on one dependency of the review service.
type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
	Name() string
}

// HealthStatus is the outcome of a single check as served on /health/details.
type HealthStatus struct {
	Healthy   bool           `json:"healthy"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CheckedAt time.Time      `json:"checked_at"`
}

// NewHealthStatus stamps a status with the current time.
func NewHealthStatus(healthy bool, message string, details map[string]any) HealthStatus {
	return HealthStatus{
		Healthy:   healthy,
		Message:   message,
		Details:   details,
		CheckedAt: time.Now(),
	}
}

// FailedHealthStatus reports a check that could not reach its dependency.
func FailedHealthStatus(what string, err error) HealthStatus {
	if err == nil {
		return NewHealthStatus(false, what, nil)
	}
	return NewHealthStatus(false, fmt.Sprintf("%s: %v", what, err), nil)
}
