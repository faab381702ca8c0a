package events

import (
	"time"

	"github.com/facilityops/maintenance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventRequestUpdated       EventType = "request_updated"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestAssigned      EventType = "request_assigned"
)

// Event represents a domain event emitted by the lifecycle engine.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	RequestID string    `json:"request_id"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	Number   string          `json:"number"`
	Priority domain.Priority `json:"priority"`
	Title    string          `json:"title"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	Action    domain.Action `json:"action"`
	OldStatus domain.Status `json:"old_status"`
	NewStatus domain.Status `json:"new_status"`
}

// RequestAssignedPayload payload.
type RequestAssignedPayload struct {
	TradeID      *string `json:"trade_id,omitempty"`
	TechnicianID *string `json:"technician_id,omitempty"`
}
