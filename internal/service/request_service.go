package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/facilityops/maintenance-service/internal/domain"
	"github.com/facilityops/maintenance-service/internal/repository"
	"github.com/facilityops/maintenance-service/internal/workflow"
	apperrors "github.com/facilityops/maintenance-service/pkg/util"
)

// RequestView is a service request together with its read-time overdue
// flags. The flags are computed against "now" on every read and never
// persisted.
type RequestView struct {
	domain.ServiceRequest
	IsResponseOverdue bool
	IsResolveOverdue  bool
}

// RequestService serves the read side of service requests plus their
// comment and attachment sub-resources. All lifecycle mutations go through
// the workflow engine instead.
type RequestService struct {
	tickets     repository.TicketStore
	comments    repository.CommentStore
	attachments repository.AttachmentStore
	now         func() time.Time
}

// RequestDependencies bundles stores for the request service.
type RequestDependencies struct {
	TicketStore     repository.TicketStore
	CommentStore    repository.CommentStore
	AttachmentStore repository.AttachmentStore
	Now             func() time.Time
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	s := &RequestService{
		tickets:     deps.TicketStore,
		comments:    deps.CommentStore,
		attachments: deps.AttachmentStore,
		now:         deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Get returns one request with overdue flags.
func (s *RequestService) Get(ctx context.Context, id string) (*RequestView, error) {
	request, err := s.tickets.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("service request", map[string]any{"request_id": id})
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.view(request), nil
}

// List returns a filtered page of requests with overdue flags and the
// total match count.
func (s *RequestService) List(ctx context.Context, filter repository.Filter) ([]RequestView, int, error) {
	items, total, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	views := make([]RequestView, 0, len(items))
	for i := range items {
		views = append(views, *s.view(&items[i]))
	}
	return views, total, nil
}

func (s *RequestService) view(request *domain.ServiceRequest) *RequestView {
	responseOverdue, resolveOverdue := workflow.OverdueFlags(request, s.now())
	return &RequestView{
		ServiceRequest:    *request,
		IsResponseOverdue: responseOverdue,
		IsResolveOverdue:  resolveOverdue,
	}
}

// AddComment appends a comment to an existing request.
func (s *RequestService) AddComment(ctx context.Context, caller domain.Caller, requestID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body required", map[string]any{"fields": []string{"body"}})
	}
	if err := s.ensureExists(ctx, requestID); err != nil {
		return nil, err
	}
	comment := &domain.Comment{
		RequestID: requestID,
		AuthorID:  caller.ID,
		Body:      body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// ListComments returns comments in creation order.
func (s *RequestService) ListComments(ctx context.Context, requestID string) ([]domain.Comment, error) {
	if err := s.ensureExists(ctx, requestID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// AddAttachment records attachment metadata on an existing request.
func (s *RequestService) AddAttachment(ctx context.Context, caller domain.Caller, requestID, fileName, fileURL string) (*domain.Attachment, error) {
	missing := []string{}
	if strings.TrimSpace(fileName) == "" {
		missing = append(missing, "file_name")
	}
	if strings.TrimSpace(fileURL) == "" {
		missing = append(missing, "file_url")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if err := s.ensureExists(ctx, requestID); err != nil {
		return nil, err
	}
	attachment := &domain.Attachment{
		RequestID:    requestID,
		UploadedByID: caller.ID,
		FileName:     fileName,
		FileURL:      fileURL,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachment, nil
}

// ListAttachments returns attachment metadata, newest first.
func (s *RequestService) ListAttachments(ctx context.Context, requestID string) ([]domain.Attachment, error) {
	if err := s.ensureExists(ctx, requestID); err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachments, nil
}

func (s *RequestService) ensureExists(ctx context.Context, requestID string) error {
	_, err := s.tickets.GetByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("service request", map[string]any{"request_id": requestID})
	}
	if err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
