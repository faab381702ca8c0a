package service

import (
	"context"
	"testing"
	"time"

	"github.com/facilityops/maintenance-service/internal/domain"
	"github.com/facilityops/maintenance-service/internal/repository"
	"github.com/facilityops/maintenance-service/internal/repository/memory"
	apperrors "github.com/facilityops/maintenance-service/pkg/util"
)

func newService(t *testing.T, now time.Time) (*RequestService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewRequestService(RequestDependencies{
		TicketStore:     store,
		CommentStore:    memory.NewCommentStore(),
		AttachmentStore: memory.NewAttachmentStore(),
		Now:             func() time.Time { return now },
	})
	return svc, store
}

func seedRequest(t *testing.T, store *memory.Store, status domain.Status, responseDue, resolveDue *time.Time) *domain.ServiceRequest {
	t.Helper()
	now := time.Date(2026, time.August, 30, 8, 0, 0, 0, time.UTC)
	request := &domain.ServiceRequest{
		Title:         "Leaking pipe",
		Description:   "Pipe under sink leaks",
		SiteID:        "site-1",
		BuildingID:    "building-1",
		FloorID:       "floor-1",
		RoomID:        "room-1",
		ProblemTypeID: "ptype-1",
		Priority:      domain.PriorityMedium,
		Status:        status,
		RequestedByID: "user-1",
		ResponseDueAt: responseDue,
		ResolveDueAt:  resolveDue,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	to := status
	entry := &domain.AuditEntry{ActorID: "user-1", Action: domain.AuditCreated, ToStatus: &to}
	if err := store.Create(context.Background(), request, entry); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return request
}

func TestGetComputesOverdueFlags(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	svc, store := newService(t, now)
	request := seedRequest(t, store, domain.StatusSubmitted, &past, &future)

	view, err := svc.Get(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !view.IsResponseOverdue || view.IsResolveOverdue {
		t.Fatalf("flags = (%v, %v), want (true, false)", view.IsResponseOverdue, view.IsResolveOverdue)
	}
}

func TestGetTerminalRequestNotOverdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	longPast := now.Add(-48 * time.Hour)

	svc, store := newService(t, now)
	request := seedRequest(t, store, domain.StatusCancelled, &longPast, &longPast)

	view, err := svc.Get(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.IsResponseOverdue || view.IsResolveOverdue {
		t.Fatal("cancelled request reported overdue")
	}
}

func TestGetUnknownRequest(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, time.Now())
	_, err := svc.Get(context.Background(), "missing")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("Get(missing) code = %q, want NOT_FOUND", apperrors.CodeOf(err))
	}
}

func TestListPassesFilterAndTotal(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store := newService(t, now)
	seedRequest(t, store, domain.StatusDraft, nil, nil)
	seedRequest(t, store, domain.StatusSubmitted, nil, nil)

	status := domain.StatusSubmitted
	views, total, err := svc.List(context.Background(), repository.Filter{Status: &status})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(views) != 1 || views[0].Status != domain.StatusSubmitted {
		t.Fatalf("List = %d views/%d total, want the single SUBMITTED request", len(views), total)
	}
}

func TestComments(t *testing.T) {
	t.Parallel()

	svc, store := newService(t, time.Now())
	request := seedRequest(t, store, domain.StatusDraft, nil, nil)
	author := domain.Caller{ID: "user-2", Roles: []domain.Role{domain.RoleTechnician}}

	if _, err := svc.AddComment(context.Background(), author, request.ID, "  "); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("blank comment code = %q, want VALIDATION_FAILED", apperrors.CodeOf(err))
	}
	if _, err := svc.AddComment(context.Background(), author, "missing", "hello"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("comment on missing request code = %q, want NOT_FOUND", apperrors.CodeOf(err))
	}

	comment, err := svc.AddComment(context.Background(), author, request.ID, "  checked the valve  ")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.Body != "checked the valve" {
		t.Fatalf("body = %q, want trimmed text", comment.Body)
	}

	comments, err := svc.ListComments(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 1 || comments[0].AuthorID != author.ID {
		t.Fatalf("comments = %+v", comments)
	}
}

func TestAttachments(t *testing.T) {
	t.Parallel()

	svc, store := newService(t, time.Now())
	request := seedRequest(t, store, domain.StatusDraft, nil, nil)
	uploader := domain.Caller{ID: "user-2"}

	if _, err := svc.AddAttachment(context.Background(), uploader, request.ID, "", ""); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("empty attachment code = %q, want VALIDATION_FAILED", apperrors.CodeOf(err))
	}

	attachment, err := svc.AddAttachment(context.Background(), uploader, request.ID, "photo.jpg", "https://files/photo.jpg")
	if err != nil {
		t.Fatalf("AddAttachment: %v", err)
	}
	if attachment.ID == "" || attachment.UploadedByID != uploader.ID {
		t.Fatalf("attachment = %+v", attachment)
	}

	attachments, err := svc.ListAttachments(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("ListAttachments: %v", err)
	}
	if len(attachments) != 1 {
		t.Fatalf("attachments = %+v", attachments)
	}
}
