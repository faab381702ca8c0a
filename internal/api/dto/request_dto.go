package dto

import (
	"time"

	"github.com/facilityops/maintenance-service/internal/domain"
)

// CreateRequestRequest payload.
type CreateRequestRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	SiteID         string          `json:"site_id"`
	BuildingID     string          `json:"building_id"`
	FloorID        string          `json:"floor_id"`
	RoomID         string          `json:"room_id"`
	ProblemTypeID  string          `json:"problem_type_id"`
	Priority       domain.Priority `json:"priority"`
	RequestedForID *string         `json:"requested_for_user_id"`
}

// UpdateRequestRequest is a partial patch; absent fields stay untouched.
type UpdateRequestRequest struct {
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	SiteID         *string          `json:"site_id"`
	BuildingID     *string          `json:"building_id"`
	FloorID        *string          `json:"floor_id"`
	RoomID         *string          `json:"room_id"`
	ProblemTypeID  *string          `json:"problem_type_id"`
	Priority       *domain.Priority `json:"priority"`
	RequestedForID *string          `json:"requested_for_user_id"`
}

// AssignRequestRequest carries the assignment target.
type AssignRequestRequest struct {
	TradeID      *string `json:"assigned_trade_id"`
	TechnicianID *string `json:"assigned_technician_id"`
}

// RequestResponse is the full service request representation.
type RequestResponse struct {
	ID                   string          `json:"id"`
	Number               string          `json:"number"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	SiteID               string          `json:"site_id"`
	BuildingID           string          `json:"building_id"`
	FloorID              string          `json:"floor_id"`
	RoomID               string          `json:"room_id"`
	ProblemTypeID        string          `json:"problem_type_id"`
	Priority             domain.Priority `json:"priority"`
	Status               domain.Status   `json:"status"`
	RequestedByID        string          `json:"requested_by_user_id"`
	RequestedForID       *string         `json:"requested_for_user_id"`
	AssignedTradeID      *string         `json:"assigned_trade_id"`
	AssignedTechnicianID *string         `json:"assigned_technician_id"`
	ResponseDueAt        *time.Time      `json:"response_due_at"`
	ResolveDueAt         *time.Time      `json:"resolve_due_at"`
	IsResponseOverdue    bool            `json:"is_response_overdue"`
	IsResolveOverdue     bool            `json:"is_resolve_overdue"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// RequestListResponse is a filtered page plus paging metadata.
type RequestListResponse struct {
	Items    []RequestResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// AuditEntryResponse is one audit trail record.
type AuditEntryResponse struct {
	ID         string             `json:"id"`
	RequestID  string             `json:"request_id"`
	ActorID    string             `json:"actor_id"`
	Action     domain.AuditAction `json:"action"`
	FromStatus *domain.Status     `json:"from_status"`
	ToStatus   *domain.Status     `json:"to_status"`
	Metadata   map[string]any     `json:"metadata,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body string `json:"body"`
}

// CommentResponse is one comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateAttachmentRequest records file metadata; the bytes live elsewhere.
type CreateAttachmentRequest struct {
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
}

// AttachmentResponse is one attachment record.
type AttachmentResponse struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	UploadedByID string    `json:"uploaded_by_id"`
	FileName     string    `json:"file_name"`
	FileURL      string    `json:"file_url"`
	CreatedAt    time.Time `json:"created_at"`
}
