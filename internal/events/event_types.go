package events

import (
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestTriaged    EventType = "request_triaged"
	EventEmergencyDetected EventType = "emergency_detected"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestTriagedPayload payload.
type RequestTriagedPayload struct {
	Severity           domain.Severity `json:"severity"`
	Trade              string          `json:"trade"`
	PriorityScore      float64         `json:"priority_score"`
	Tier               domain.SlaTier  `json:"tier"`
	ResponseDeadline   time.Time       `json:"response_deadline"`
	ResolutionDeadline time.Time       `json:"resolution_deadline"`
	VendorTier         string          `json:"vendor_tier"`
}

// EmergencyDetectedPayload payload.
type EmergencyDetectedPayload struct {
	PriorityScore    float64   `json:"priority_score"`
	ResponseDeadline time.Time `json:"response_deadline"`
}
