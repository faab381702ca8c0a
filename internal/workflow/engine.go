package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facilityops/maintenance-service/internal/domain"
	"github.com/facilityops/maintenance-service/internal/events"
	"github.com/facilityops/maintenance-service/internal/repository"
	apperrors "github.com/facilityops/maintenance-service/pkg/util"
)

// conflictRetries bounds automatic reload-and-retry after an optimistic
// concurrency loss. Every other failure surfaces immediately.
const conflictRetries = 1

// Engine drives service requests through the lifecycle: it validates the
// requested transition against the state machine, authorizes the caller,
// computes side effects (SLA deadlines, assignment), and persists the new
// state together with exactly one audit entry.
type Engine struct {
	tickets    repository.TicketStore
	audits     repository.AuditStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// Dependencies bundles collaborators for the engine.
type Dependencies struct {
	TicketStore repository.TicketStore
	AuditStore  repository.AuditStore
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewEngine constructs the engine.
func NewEngine(deps Dependencies) *Engine {
	e := &Engine{
		tickets:    deps.TicketStore,
		audits:     deps.AuditStore,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// CreateInput describes a new draft request.
type CreateInput struct {
	Title          string
	Description    string
	SiteID         string
	BuildingID     string
	FloorID        string
	RoomID         string
	ProblemTypeID  string
	Priority       domain.Priority
	RequestedForID *string
}

// UpdatePatch names the mutable descriptive fields of a draft. Nil fields
// are left untouched.
type UpdatePatch struct {
	Title          *string
	Description    *string
	SiteID         *string
	BuildingID     *string
	FloorID        *string
	RoomID         *string
	ProblemTypeID  *string
	Priority       *domain.Priority
	RequestedForID *string
}

// AssignPayload carries the assign action's target. At least one of the
// two must be present.
type AssignPayload struct {
	TradeID      *string
	TechnicianID *string
}

var knownPriorities = map[domain.Priority]struct{}{
	domain.PriorityLow:    {},
	domain.PriorityMedium: {},
	domain.PriorityHigh:   {},
	domain.PriorityUrgent: {},
}

// CreateDraft creates a request in DRAFT for the caller, issuing its
// period-scoped number and writing the CREATED audit entry atomically with
// the insert.
func (e *Engine) CreateDraft(ctx context.Context, caller domain.Caller, input CreateInput) (*domain.ServiceRequest, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	now := e.now()
	request := &domain.ServiceRequest{
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		SiteID:         input.SiteID,
		BuildingID:     input.BuildingID,
		FloorID:        input.FloorID,
		RoomID:         input.RoomID,
		ProblemTypeID:  input.ProblemTypeID,
		Priority:       priority,
		Status:         domain.StatusDraft,
		RequestedByID:  caller.ID,
		RequestedForID: input.RequestedForID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	toStatus := domain.StatusDraft
	entry := &domain.AuditEntry{
		ActorID:   caller.ID,
		Action:    domain.AuditCreated,
		ToStatus:  &toStatus,
		CreatedAt: now,
	}
	if err := e.tickets.Create(ctx, request, entry); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	e.publish(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: request.ID,
		ActorID:   caller.ID,
		Payload: events.RequestCreatedPayload{
			Number:   request.Number,
			Priority: request.Priority,
			Title:    request.Title,
		},
	})
	e.logger.Info("service request created",
		zap.String("request_id", request.ID),
		zap.String("number", request.Number))
	return request, nil
}

// UpdateDraft applies a field patch to a DRAFT request. Only the requester
// or an ADMIN may update; when the caller is also not permitted, the
// authorization failure takes precedence over the status failure.
func (e *Engine) UpdateDraft(ctx context.Context, caller domain.Caller, id string, patch UpdatePatch) (*domain.ServiceRequest, error) {
	for attempt := 0; ; attempt++ {
		request, err := e.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if decision := Authorize(domain.ActionUpdate, caller, request.RequestedByID); !decision.Allowed {
			return nil, forbidden(domain.ActionUpdate, decision)
		}
		if request.Status != domain.StatusDraft {
			return nil, apperrors.NewInvalidTransition(string(request.Status), string(domain.ActionUpdate))
		}
		if err := validatePatch(patch); err != nil {
			return nil, err
		}

		updated := request.Clone()
		applyPatch(updated, patch)
		updated.UpdatedAt = e.now()

		entry := &domain.AuditEntry{
			ActorID:   caller.ID,
			Action:    domain.AuditUpdated,
			Metadata:  patch.snapshot(),
			CreatedAt: updated.UpdatedAt,
		}

		result, err := e.tickets.CompareAndUpdate(ctx, domain.StatusDraft, updated, entry)
		if errors.Is(err, repository.ErrConflict) && attempt < conflictRetries {
			continue
		}
		if err != nil {
			return nil, e.mapStoreError(err, id)
		}

		e.publish(ctx, events.Event{
			Type:      events.EventRequestUpdated,
			RequestID: result.ID,
			ActorID:   caller.ID,
			Payload:   entry.Metadata,
		})
		return result, nil
	}
}

// Transition fires a lifecycle action against a request. Checks run in a
// fixed order: existence, state precondition, authorization, payload. The
// status write is a compare-and-swap on the observed status; a concurrent
// loser reloads and re-validates once before giving up with a conflict.
func (e *Engine) Transition(ctx context.Context, caller domain.Caller, id string, action domain.Action, payload *AssignPayload) (*domain.ServiceRequest, error) {
	rule, ok := RuleFor(action)
	if !ok || action == domain.ActionUpdate {
		return nil, apperrors.NewValidationError("unknown action", map[string]any{"action": action})
	}

	for attempt := 0; ; attempt++ {
		request, err := e.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if !CanTransition(action, request.Status) {
			return nil, apperrors.NewInvalidTransition(string(request.Status), string(action))
		}
		if decision := Authorize(action, caller, request.RequestedByID); !decision.Allowed {
			return nil, forbidden(action, decision)
		}
		if action == domain.ActionAssign {
			if payload == nil || (payload.TradeID == nil && payload.TechnicianID == nil) {
				return nil, apperrors.NewValidationError(
					"either trade or technician must be provided",
					map[string]any{"fields": []string{"assigned_trade_id", "assigned_technician_id"}})
			}
		}

		now := e.now()
		fromStatus := request.Status
		updated := request.Clone()
		updated.Status = rule.To
		updated.UpdatedAt = now

		switch action {
		case domain.ActionSubmit:
			responseDue, resolveDue := DueTimes(updated.Priority, now)
			updated.ResponseDueAt = &responseDue
			updated.ResolveDueAt = &resolveDue
		case domain.ActionAssign:
			if payload.TradeID != nil {
				updated.AssignedTradeID = payload.TradeID
			}
			if payload.TechnicianID != nil {
				updated.AssignedTechnicianID = payload.TechnicianID
			}
		}

		entry := auditFor(action, caller.ID, fromStatus, rule.To, payload, now)
		result, err := e.tickets.CompareAndUpdate(ctx, fromStatus, updated, entry)
		if errors.Is(err, repository.ErrConflict) && attempt < conflictRetries {
			continue
		}
		if err != nil {
			return nil, e.mapStoreError(err, id)
		}

		e.publishTransition(ctx, caller.ID, action, result, fromStatus, payload)
		e.logger.Info("service request transitioned",
			zap.String("request_id", result.ID),
			zap.String("action", string(action)),
			zap.String("from", string(fromStatus)),
			zap.String("to", string(result.Status)))
		return result, nil
	}
}

// ListAudit returns the request's audit trail in creation order.
func (e *Engine) ListAudit(ctx context.Context, id string) ([]domain.AuditEntry, error) {
	if _, err := e.load(ctx, id); err != nil {
		return nil, err
	}
	entries, err := e.audits.ListByRequest(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

func (e *Engine) load(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	request, err := e.tickets.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("service request", map[string]any{"request_id": id})
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return request, nil
}

func (e *Engine) mapStoreError(err error, id string) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		return apperrors.NewConflict("service request was modified concurrently", map[string]any{"request_id": id})
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("service request", map[string]any{"request_id": id})
	default:
		return apperrors.NewInternalError(err)
	}
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if e.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	_ = e.dispatcher.Publish(ctx, event)
}

func (e *Engine) publishTransition(ctx context.Context, actorID string, action domain.Action, r *domain.ServiceRequest, from domain.Status, payload *AssignPayload) {
	eventType := events.EventRequestStatusChanged
	var body any = events.RequestStatusChangedPayload{
		Action:    action,
		OldStatus: from,
		NewStatus: r.Status,
	}
	if action == domain.ActionAssign && payload != nil {
		eventType = events.EventRequestAssigned
		body = events.RequestAssignedPayload{
			TradeID:      payload.TradeID,
			TechnicianID: payload.TechnicianID,
		}
	}
	e.publish(ctx, events.Event{
		Type:      eventType,
		RequestID: r.ID,
		ActorID:   actorID,
		Payload:   body,
	})
}

func validateCreate(input CreateInput) error {
	missing := []string{}
	if strings.TrimSpace(input.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(input.Description) == "" {
		missing = append(missing, "description")
	}
	if input.SiteID == "" {
		missing = append(missing, "site_id")
	}
	if input.BuildingID == "" {
		missing = append(missing, "building_id")
	}
	if input.FloorID == "" {
		missing = append(missing, "floor_id")
	}
	if input.RoomID == "" {
		missing = append(missing, "room_id")
	}
	if input.ProblemTypeID == "" {
		missing = append(missing, "problem_type_id")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if input.Priority != "" {
		if _, ok := knownPriorities[input.Priority]; !ok {
			return apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
		}
	}
	return nil
}

// validatePatch rejects patches that would blank a field create requires,
// and unknown priorities. Nil fields are not validated; they stay untouched.
func validatePatch(patch UpdatePatch) error {
	blank := []string{}
	requireNonEmpty := func(field string, val *string) {
		if val != nil && strings.TrimSpace(*val) == "" {
			blank = append(blank, field)
		}
	}
	requireNonEmpty("title", patch.Title)
	requireNonEmpty("description", patch.Description)
	requireNonEmpty("site_id", patch.SiteID)
	requireNonEmpty("building_id", patch.BuildingID)
	requireNonEmpty("floor_id", patch.FloorID)
	requireNonEmpty("room_id", patch.RoomID)
	requireNonEmpty("problem_type_id", patch.ProblemTypeID)
	if len(blank) > 0 {
		return apperrors.NewValidationError("fields must be non-empty", map[string]any{"fields": blank})
	}
	if patch.Priority != nil {
		if _, ok := knownPriorities[*patch.Priority]; !ok {
			return apperrors.NewValidationError("unknown priority", map[string]any{"priority": *patch.Priority})
		}
	}
	return nil
}

func applyPatch(r *domain.ServiceRequest, patch UpdatePatch) {
	if patch.Title != nil {
		r.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		r.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.SiteID != nil {
		r.SiteID = *patch.SiteID
	}
	if patch.BuildingID != nil {
		r.BuildingID = *patch.BuildingID
	}
	if patch.FloorID != nil {
		r.FloorID = *patch.FloorID
	}
	if patch.RoomID != nil {
		r.RoomID = *patch.RoomID
	}
	if patch.ProblemTypeID != nil {
		r.ProblemTypeID = *patch.ProblemTypeID
	}
	if patch.Priority != nil {
		r.Priority = *patch.Priority
	}
	if patch.RequestedForID != nil {
		r.RequestedForID = patch.RequestedForID
	}
}

// snapshot renders the patch as the opaque metadata blob stored on the
// audit entry.
func (p UpdatePatch) snapshot() map[string]any {
	meta := map[string]any{}
	if p.Title != nil {
		meta["title"] = *p.Title
	}
	if p.Description != nil {
		meta["description"] = *p.Description
	}
	if p.SiteID != nil {
		meta["site_id"] = *p.SiteID
	}
	if p.BuildingID != nil {
		meta["building_id"] = *p.BuildingID
	}
	if p.FloorID != nil {
		meta["floor_id"] = *p.FloorID
	}
	if p.RoomID != nil {
		meta["room_id"] = *p.RoomID
	}
	if p.ProblemTypeID != nil {
		meta["problem_type_id"] = *p.ProblemTypeID
	}
	if p.Priority != nil {
		meta["priority"] = string(*p.Priority)
	}
	if p.RequestedForID != nil {
		meta["requested_for_user_id"] = *p.RequestedForID
	}
	return meta
}

func auditFor(action domain.Action, actorID string, from, to domain.Status, payload *AssignPayload, at time.Time) *domain.AuditEntry {
	entry := &domain.AuditEntry{
		ActorID:    actorID,
		FromStatus: &from,
		ToStatus:   &to,
		CreatedAt:  at,
	}
	switch action {
	case domain.ActionAssign:
		entry.Action = domain.AuditAssigned
		meta := map[string]any{}
		if payload != nil {
			if payload.TradeID != nil {
				meta["assigned_trade_id"] = *payload.TradeID
			}
			if payload.TechnicianID != nil {
				meta["assigned_technician_id"] = *payload.TechnicianID
			}
		}
		entry.Metadata = meta
	case domain.ActionCancel:
		entry.Action = domain.AuditCancelled
	default:
		entry.Action = domain.AuditStatusChanged
	}
	return entry
}

func forbidden(action domain.Action, decision Decision) error {
	required := make([]string, 0, len(decision.Required))
	for _, role := range decision.Required {
		required = append(required, string(role))
	}
	actual := make([]string, 0, len(decision.Actual))
	for _, role := range decision.Actual {
		actual = append(actual, string(role))
	}
	return apperrors.NewForbidden("insufficient permissions to "+string(action)+" this request", map[string]any{
		"required": required,
		"actual":   actual,
	})
}
