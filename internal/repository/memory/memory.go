// Package memory provides in-process store implementations. They back the
// engine tests and serve as a fallback when no database is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/facilityops/maintenance-service/internal/domain"
	"github.com/facilityops/maintenance-service/internal/repository"
	"github.com/facilityops/maintenance-service/internal/sequence"
)

// Store holds service requests, their audit trail, comments and attachment
// metadata behind a single mutex. Holding the lock across number issuance
// and insert, and across the status check and write, gives the same
// atomicity the postgres store gets from transactions.
type Store struct {
	mu       sync.Mutex
	requests map[string]*domain.ServiceRequest
	audits   map[string][]domain.AuditEntry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		requests: make(map[string]*domain.ServiceRequest),
		audits:   make(map[string][]domain.AuditEntry),
	}
}

var (
	_ repository.TicketStore = (*Store)(nil)
	_ repository.AuditStore  = (*Store)(nil)
)

// GetByID returns a copy of the stored request.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return request.Clone(), nil
}

// Create assigns id and request number and stores request plus audit entry
// in one lock scope.
func (s *Store) Create(ctx context.Context, r *domain.ServiceRequest, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = uuid.NewString()
	period := sequence.PeriodOf(r.CreatedAt)
	existing := make([]string, 0, len(s.requests))
	for _, stored := range s.requests {
		existing = append(existing, stored.Number)
	}
	r.Number = sequence.Format(period, sequence.NextFrom(period, existing))

	s.requests[r.ID] = r.Clone()
	s.appendAuditLocked(r.ID, entry)
	return nil
}

// CompareAndUpdate writes only if the stored status matches expected, and
// appends the audit entry within the same lock scope.
func (s *Store) CompareAndUpdate(ctx context.Context, expected domain.Status, r *domain.ServiceRequest, entry *domain.AuditEntry) (*domain.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.requests[r.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if stored.Status != expected {
		return nil, repository.ErrConflict
	}
	// Number and creation metadata are immutable once assigned.
	updated := r.Clone()
	updated.Number = stored.Number
	updated.CreatedAt = stored.CreatedAt
	s.requests[r.ID] = updated
	s.appendAuditLocked(r.ID, entry)
	return updated.Clone(), nil
}

// ListWithFilter applies the filters and returns a page plus total count.
func (s *Store) ListWithFilter(ctx context.Context, filter repository.Filter) ([]domain.ServiceRequest, int, error) {
	filter.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]domain.ServiceRequest, 0, len(s.requests))
	for _, r := range s.requests {
		if matches(r, filter) {
			matched = append(matched, *r.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return []domain.ServiceRequest{}, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func matches(r *domain.ServiceRequest, f repository.Filter) bool {
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.Priority != nil && r.Priority != *f.Priority {
		return false
	}
	if f.SiteID != nil && r.SiteID != *f.SiteID {
		return false
	}
	if f.BuildingID != nil && r.BuildingID != *f.BuildingID {
		return false
	}
	if f.NumberContains != nil && !strings.Contains(strings.ToLower(r.Number), strings.ToLower(*f.NumberContains)) {
		return false
	}
	if f.Keyword != nil {
		keyword := strings.ToLower(*f.Keyword)
		if !strings.Contains(strings.ToLower(r.Title), keyword) &&
			!strings.Contains(strings.ToLower(r.Description), keyword) {
			return false
		}
	}
	if f.CreatedFrom != nil && r.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && r.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

// Append records an audit entry outside of a request mutation.
func (s *Store) Append(ctx context.Context, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendAuditLocked(entry.RequestID, entry)
	return nil
}

// ListByRequest returns audit entries in creation order.
func (s *Store) ListByRequest(ctx context.Context, requestID string) ([]domain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.audits[requestID]
	out := make([]domain.AuditEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (s *Store) appendAuditLocked(requestID string, entry *domain.AuditEntry) {
	if entry == nil {
		return
	}
	entry.ID = uuid.NewString()
	entry.RequestID = requestID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.audits[requestID] = append(s.audits[requestID], *entry)
}

// CommentStore keeps comments per request.
type CommentStore struct {
	mu       sync.Mutex
	comments map[string][]domain.Comment
}

// NewCommentStore creates an empty comment store.
func NewCommentStore() *CommentStore {
	return &CommentStore{comments: make(map[string][]domain.Comment)}
}

var _ repository.CommentStore = (*CommentStore)(nil)

func (s *CommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.ID = uuid.NewString()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	s.comments[comment.RequestID] = append(s.comments[comment.RequestID], *comment)
	return nil
}

// ListByRequest returns comments in creation order.
func (s *CommentStore) ListByRequest(ctx context.Context, requestID string) ([]domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.comments[requestID]
	out := make([]domain.Comment, len(entries))
	copy(out, entries)
	return out, nil
}

// AttachmentStore keeps attachment metadata per request.
type AttachmentStore struct {
	mu          sync.Mutex
	attachments map[string][]domain.Attachment
}

// NewAttachmentStore creates an empty attachment store.
func NewAttachmentStore() *AttachmentStore {
	return &AttachmentStore{attachments: make(map[string][]domain.Attachment)}
}

var _ repository.AttachmentStore = (*AttachmentStore)(nil)

func (s *AttachmentStore) Create(ctx context.Context, attachment *domain.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attachment.ID = uuid.NewString()
	if attachment.CreatedAt.IsZero() {
		attachment.CreatedAt = time.Now()
	}
	s.attachments[attachment.RequestID] = append(s.attachments[attachment.RequestID], *attachment)
	return nil
}

// ListByRequest returns attachment metadata, newest first.
func (s *AttachmentStore) ListByRequest(ctx context.Context, requestID string) ([]domain.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.attachments[requestID]
	out := make([]domain.Attachment, len(entries))
	for i, a := range entries {
		out[len(entries)-1-i] = a
	}
	return out, nil
}

// UserStore keeps seeded users for development use.
type UserStore struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

// NewUserStore creates an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

var _ repository.UserStore = (*UserStore)(nil)

// Seed registers a user, assigning an id when absent.
func (s *UserStore) Seed(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	copied := *user
	s.byID[copied.ID] = &copied
	s.byEmail[copied.Email] = &copied
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}
