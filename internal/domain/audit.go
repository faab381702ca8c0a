package domain

import "time"

// AuditAction labels what an audit entry records.
type AuditAction string

const (
	AuditCreated       AuditAction = "CREATED"
	AuditUpdated       AuditAction = "UPDATED"
	AuditStatusChanged AuditAction = "STATUS_CHANGED"
	AuditAssigned      AuditAction = "ASSIGNED"
	AuditCancelled     AuditAction = "CANCELLED"
)

// AuditEntry is an immutable trail record tied to exactly one service
// request. Entries are appended once per state-changing operation and are
// never updated or deleted.
type AuditEntry struct {
	ID         string
	RequestID  string
	ActorID    string
	Action     AuditAction
	FromStatus *Status
	ToStatus   *Status
	// Metadata is an opaque snapshot of the operation payload (for example
	// the field patch of an update). No schema is imposed on it.
	Metadata  map[string]any
	CreatedAt time.Time
}
