package domain

import "time"

// Status enumerates lifecycle states for service requests. DRAFT is the
// sole initial state; CLOSED and CANCELLED are terminal.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusSubmitted  Status = "SUBMITTED"
	StatusTriaged    Status = "TRIAGED"
	StatusAssigned   Status = "ASSIGNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusClosed     Status = "CLOSED"
	StatusCancelled  Status = "CANCELLED"
)

// Statuses lists every defined lifecycle state.
var Statuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusTriaged,
	StatusAssigned,
	StatusInProgress,
	StatusCompleted,
	StatusClosed,
	StatusCancelled,
}

// Terminal reports whether the status has no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// Priority enumerates SLA urgency.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Action names a lifecycle operation on a service request.
type Action string

const (
	ActionUpdate   Action = "update"
	ActionSubmit   Action = "submit"
	ActionTriage   Action = "triage"
	ActionAssign   Action = "assign"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionClose    Action = "close"
	ActionCancel   Action = "cancel"
)

// ServiceRequest is the aggregate for facility maintenance requests.
type ServiceRequest struct {
	ID                   string
	Number               string
	Title                string
	Description          string
	SiteID               string
	BuildingID           string
	FloorID              string
	RoomID               string
	ProblemTypeID        string
	Priority             Priority
	Status               Status
	RequestedByID        string
	RequestedForID       *string
	AssignedTradeID      *string
	AssignedTechnicianID *string
	ResponseDueAt        *time.Time
	ResolveDueAt         *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Clone returns a deep copy so stores can hand out values callers may mutate.
func (r *ServiceRequest) Clone() *ServiceRequest {
	if r == nil {
		return nil
	}
	out := *r
	out.RequestedForID = clonePtr(r.RequestedForID)
	out.AssignedTradeID = clonePtr(r.AssignedTradeID)
	out.AssignedTechnicianID = clonePtr(r.AssignedTechnicianID)
	out.ResponseDueAt = clonePtr(r.ResponseDueAt)
	out.ResolveDueAt = clonePtr(r.ResolveDueAt)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
