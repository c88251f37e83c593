package api

import "github.com/open-teleop/quadcontrol/pkg/control"

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status       string  `json:"status"`
	Controller   string  `json:"controller"`
	RunID        string  `json:"run_id"`
	Ticks        uint64  `json:"ticks"`
	StateAgeMs   int64   `json:"state_age_ms"`
	StateHealthy bool    `json:"state_healthy"`
	RateHz       float64 `json:"rate_hz,omitempty"`
}

// TelemetryFrame is one message of the telemetry WebSocket.
type TelemetryFrame struct {
	RunID string               `json:"run_id"`
	Tick  control.TickSnapshot `json:"tick"`
}
