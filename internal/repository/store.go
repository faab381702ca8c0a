package repository

import (
	"context"
	"errors"
	"time"

	"github.com/facilityops/maintenance-service/internal/domain"
)

// Sentinel errors shared by every store implementation. The engine maps
// them onto the API error taxonomy.
var (
	ErrNotFound = errors.New("not found")
	// ErrConflict reports an optimistic concurrency loss: the request's
	// status no longer matched the expected value at write time.
	ErrConflict = errors.New("concurrent update conflict")
)

// Filter captures service request search parameters.
type Filter struct {
	Status         *domain.Status
	Priority       *domain.Priority
	SiteID         *string
	BuildingID     *string
	NumberContains *string
	Keyword        *string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	Page           int
	PageSize       int
}

// Normalize clamps paging values to usable defaults.
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}

// TicketStore persists service requests.
//
// Create assigns the id and the period-scoped request number; issuance is
// linearized so concurrent creates can never collide. Create and
// CompareAndUpdate each write the supplied audit entry in the same atomic
// scope as the request row: either both land or neither does.
//
// CompareAndUpdate writes only if the stored status still equals expected,
// returning ErrConflict otherwise.
type TicketStore interface {
	GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	Create(ctx context.Context, r *domain.ServiceRequest, entry *domain.AuditEntry) error
	CompareAndUpdate(ctx context.Context, expected domain.Status, r *domain.ServiceRequest, entry *domain.AuditEntry) (*domain.ServiceRequest, error)
	ListWithFilter(ctx context.Context, filter Filter) ([]domain.ServiceRequest, int, error)
}

// AuditStore reads the append-only trail. Appends happen through
// TicketStore so they share the request write's atomic scope; Append exists
// for entries that accompany no request mutation.
type AuditStore interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.AuditEntry, error)
}

// CommentStore persists request comments.
type CommentStore interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.Comment, error)
}

// AttachmentStore persists attachment metadata.
type AttachmentStore interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.Attachment, error)
}

// UserStore loads users for the auth collaborator.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
