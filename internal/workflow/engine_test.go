package workflow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/facilityops/maintenance-service/internal/domain"
	"github.com/facilityops/maintenance-service/internal/repository/memory"
	apperrors "github.com/facilityops/maintenance-service/pkg/util"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T) (*Engine, *memory.Store, *testClock) {
	t.Helper()
	store := memory.NewStore()
	clock := &testClock{now: time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)}
	engine := NewEngine(Dependencies{
		TicketStore: store,
		AuditStore:  store,
		Now:         clock.Now,
	})
	return engine, store, clock
}

func validInput() CreateInput {
	return CreateInput{
		Title:         "Broken outlet",
		Description:   "Outlet by the window sparks when used",
		SiteID:        "site-1",
		BuildingID:    "building-1",
		FloorID:       "floor-1",
		RoomID:        "room-101",
		ProblemTypeID: "ptype-electrical",
	}
}

var (
	requester  = caller("user-requester", domain.RoleRequestor)
	supervisor = caller("user-supervisor", domain.RoleSupervisor)
	technician = caller("user-technician", domain.RoleTechnician)
)

func mustCreate(t *testing.T, engine *Engine, input CreateInput) *domain.ServiceRequest {
	t.Helper()
	request, err := engine.CreateDraft(context.Background(), requester, input)
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	return request
}

func mustTransition(t *testing.T, engine *Engine, c domain.Caller, id string, action domain.Action, payload *AssignPayload) *domain.ServiceRequest {
	t.Helper()
	request, err := engine.Transition(context.Background(), c, id, action, payload)
	if err != nil {
		t.Fatalf("Transition(%s): %v", action, err)
	}
	return request
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := apperrors.CodeOf(err); got != code {
		t.Fatalf("error code = %q, want %q (err: %v)", got, code, err)
	}
}

func TestCreateDraftDefaults(t *testing.T) {
	t.Parallel()
	engine, _, clock := newTestEngine(t)

	request := mustCreate(t, engine, validInput())
	if request.Status != domain.StatusDraft {
		t.Errorf("status = %s, want DRAFT", request.Status)
	}
	if request.Priority != domain.PriorityMedium {
		t.Errorf("priority = %s, want MEDIUM default", request.Priority)
	}
	if request.Number != "SR-202608-00001" {
		t.Errorf("number = %q, want SR-202608-00001", request.Number)
	}
	if request.ResponseDueAt != nil || request.ResolveDueAt != nil {
		t.Error("draft must not carry SLA deadlines before submission")
	}
	if !request.CreatedAt.Equal(clock.Now()) {
		t.Errorf("created at = %v, want %v", request.CreatedAt, clock.Now())
	}

	entries, err := engine.ListAudit(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("ListAudit: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != domain.AuditCreated {
		t.Fatalf("audit trail after create = %+v, want single CREATED entry", entries)
	}
}

func TestCreateDraftValidation(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t)

	input := validInput()
	input.Title = "  "
	_, err := engine.CreateDraft(context.Background(), requester, input)
	wantCode(t, err, apperrors.CodeValidation)

	input = validInput()
	input.Priority = domain.Priority("CRITICAL")
	_, err = engine.CreateDraft(context.Background(), requester, input)
	wantCode(t, err, apperrors.CodeValidation)
}

func TestUrgentLifecycleEndToEnd(t *testing.T) {
	t.Parallel()
	engine, _, clock := newTestEngine(t)

	input := validInput()
	input.Priority = domain.PriorityUrgent
	request := mustCreate(t, engine, input)

	clock.Advance(30 * time.Minute)
	submittedAt := clock.Now()
	request = mustTransition(t, engine, requester, request.ID, domain.ActionSubmit, nil)
	if request.Status != domain.StatusSubmitted {
		t.Fatalf("status = %s, want SUBMITTED", request.Status)
	}
	if request.ResponseDueAt == nil || !request.ResponseDueAt.Equal(submittedAt.Add(2*time.Hour)) {
		t.Errorf("response due = %v, want %v", request.ResponseDueAt, submittedAt.Add(2*time.Hour))
	}
	if request.ResolveDueAt == nil || !request.ResolveDueAt.Equal(submittedAt.Add(24*time.Hour)) {
		t.Errorf("resolve due = %v, want %v", request.ResolveDueAt, submittedAt.Add(24*time.Hour))
	}

	request = mustTransition(t, engine, supervisor, request.ID, domain.ActionTriage, nil)
	tradeID := "trade-electrical"
	techID := "tech-7"
	request = mustTransition(t, engine, supervisor, request.ID, domain.ActionAssign, &AssignPayload{TradeID: &tradeID, TechnicianID: &techID})
	if request.AssignedTradeID == nil || *request.AssignedTradeID != tradeID {
		t.Errorf("assigned trade = %v, want %s", request.AssignedTradeID, tradeID)
	}
	if request.AssignedTechnicianID == nil || *request.AssignedTechnicianID != techID {
		t.Errorf("assigned technician = %v, want %s", request.AssignedTechnicianID, techID)
	}

	request = mustTransition(t, engine, technician, request.ID, domain.ActionStart, nil)
	request = mustTransition(t, engine, technician, request.ID, domain.ActionComplete, nil)
	request = mustTransition(t, engine, supervisor, request.ID, domain.ActionClose, nil)
	if request.Status != domain.StatusClosed {
		t.Fatalf("status = %s, want CLOSED", request.Status)
	}

	// deadlines were fixed at submission and never recomputed
	if !request.ResponseDueAt.Equal(submittedAt.Add(2 * time.Hour)) {
		t.Error("response deadline changed after submission")
	}

	entries, err := engine.ListAudit(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("ListAudit: %v", err)
	}
	wantActions := []domain.AuditAction{
		domain.AuditCreated,
		domain.AuditStatusChanged, // submit
		domain.AuditStatusChanged, // triage
		domain.AuditAssigned,
		domain.AuditStatusChanged, // start
		domain.AuditStatusChanged, // complete
		domain.AuditStatusChanged, // close
	}
	if len(entries) != len(wantActions) {
		t.Fatalf("audit trail has %d entries, want %d", len(entries), len(wantActions))
	}
	for i, want := range wantActions {
		if entries[i].Action != want {
			t.Errorf("audit[%d].Action = %s, want %s", i, entries[i].Action, want)
		}
	}
	assignEntry := entries[3]
	if assignEntry.Metadata["assigned_trade_id"] != tradeID {
		t.Errorf("assign audit metadata = %v, want trade %s", assignEntry.Metadata, tradeID)
	}
}

func TestUpdateDraft(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t)

	request := mustCreate(t, engine, validInput())
	title := "Sparking outlet"
	priority := domain.PriorityHigh
	updated, err := engine.UpdateDraft(context.Background(), requester, request.ID, UpdatePatch{
		Title:    &title,
		Priority: &priority,
	})
	if err != nil {
		t.Fatalf("UpdateDraft: %v", err)
	}
	if updated.Title != title || updated.Priority != priority {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Description != request.Description {
		t.Error("unpatched field changed")
	}
	if updated.Number != request.Number {
		t.Error("request number changed on update")
	}

	entries, _ := engine.ListAudit(context.Background(), request.ID)
	if len(entries) != 2 || entries[1].Action != domain.AuditUpdated {
		t.Fatalf("audit trail after update = %+v, want CREATED then UPDATED", entries)
	}
	if entries[1].Metadata["title"] != title {
		t.Errorf("update audit metadata = %v, want title snapshot", entries[1].Metadata)
	}
}

// A patch may not blank out fields that creation requires non-empty.
func TestUpdateDraftRejectsBlankRequiredFields(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t)

	request := mustCreate(t, engine, validInput())

	blank := "   "
	_, err := engine.UpdateDraft(context.Background(), requester, request.ID, UpdatePatch{
		Title:       &blank,
		Description: &blank,
	})
	wantCode(t, err, apperrors.CodeValidation)

	empty := ""
	_, err = engine.UpdateDraft(context.Background(), requester, request.ID, UpdatePatch{SiteID: &empty})
	wantCode(t, err, apperrors.CodeValidation)

	// nothing was written: the draft keeps its original fields untouched
	entries, _ := engine.ListAudit(context.Background(), request.ID)
	if len(entries) != 1 {
		t.Fatalf("audit trail has %d entries after rejected updates, want 1", len(entries))
	}
	unchanged := mustTransition(t, engine, requester, request.ID, domain.ActionSubmit, nil)
	if unchanged.Title != request.Title || unchanged.Description != request.Description {
		t.Fatalf("rejected update mutated the draft: %+v", unchanged)
	}
}

// An update by a caller who is neither the requester nor an admin reports
// the permission failure even when the request has also left DRAFT.
func TestUpdatePermissionCheckedBeforeStatus(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t)

	request := mustCreate(t, engine, validInput())
	mustTransition(t, engine, requester, request.ID, domain.ActionSubmit, nil)

	title := "hijacked"
	_, err := engine.UpdateDraft(context.Background(), technician, request.ID, UpdatePatch{Title: &title})
	wantCode(t, err, apperrors.CodeForbidden)

	// the requester is permitted, so for them the status failure surfaces
	_, err = engine.UpdateDraft(context.Background(), requester, request.ID, UpdatePatch{Title: &title})
	wantCode(t, err, apperrors.CodeInvalidTransition)
}

// Transitions check the state precondition before the caller's permission.
func TestTransitionStateCheckedBeforePermission(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t)

	request := mustCreate(t, engine, validInput())

	// triage from DRAFT is invalid for everyone, including callers who
	// would also fail the permission check
	_, err := engine.Transition(context.Background(), technician, request.ID, domain.ActionTriage, nil)
	wantCode(t, err, apperrors.CodeInvalidTransition)

	mustTransition(t, engine, requester, request.ID, domain.ActionSubmit, nil)
	_, err = engine.Transition(context.Background(), technician, request.ID, domain.ActionTriage, nil)
	wantCode(t, err, apperrors.CodeForbidden)
}

func TestCancelWindow(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t)

	request := mustCreate(t, engine, validInput())
	_, err := engine.Transition(context.Background(), requester, request.ID, domain.ActionCancel, nil)
	wantCode(t, err, apperrors.CodeInvalidTransition)

	mustTransition(t, engine, requester, request.ID, domain.ActionSubmit, nil)
	cancelled := mustTransition(t, engine, requester, request.ID, domain.ActionCancel, nil)
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}

	entries, _ := engine.ListAudit(context.Background(), request.ID)
	last := entries[len(entries)-1]
	if last.Action != domain.AuditCancelled {
		t.Fatalf("last audit action = %s, want CANCELLED", last.Action)
	}

	// terminal: nothing moves a cancelled request
	_, err = engine.Transition(context.Background(), supervisor, request.ID, domain.ActionTriage, nil)
	wantCode(t, err, apperrors.CodeInvalidTransition)
}

func TestCancelAfterStartIsRejected(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t)

	request := mustCreate(t, engine, validInput())
	mustTransition(t, engine, requester, request.ID, domain.ActionSubmit, nil)
	mustTransition(t, engine, supervisor, request.ID, domain.ActionTriage, nil)
	tradeID := "trade-plumbing"
	mustTransition(t, engine, supervisor, request.ID, domain.ActionAssign, &AssignPayload{TradeID: &tradeID})
	mustTransition(t, engine, technician, request.ID, domain.ActionStart, nil)

	_, err := engine.Transition(context.Background(), requester, request.ID, domain.ActionCancel, nil)
	wantCode(t, err, apperrors.CodeInvalidTransition)
}

func TestAssignRequiresTarget(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t)

	request := mustCreate(t, engine, validInput())
	mustTransition(t, engine, requester, request.ID, domain.ActionSubmit, nil)
	mustTransition(t, engine, supervisor, request.ID, domain.ActionTriage, nil)

	_, err := engine.Transition(context.Background(), supervisor, request.ID, domain.ActionAssign, nil)
	wantCode(t, err, apperrors.CodeValidation)

	_, err = engine.Transition(context.Background(), supervisor, request.ID, domain.ActionAssign, &AssignPayload{})
	wantCode(t, err, apperrors.CodeValidation)
}

func TestTransitionUnknownRequest(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t)

	_, err := engine.Transition(context.Background(), requester, "no-such-id", domain.ActionSubmit, nil)
	wantCode(t, err, apperrors.CodeNotFound)
}

func TestConcurrentSubmitExactlyOneWins(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t)

	request := mustCreate(t, engine, validInput())

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Transition(context.Background(), requester, request.ID, domain.ActionSubmit, nil)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		code := apperrors.CodeOf(err)
		if code != apperrors.CodeInvalidTransition && code != apperrors.CodeConflict {
			t.Errorf("loser error code = %q, want invalid transition or conflict", code)
		}
	}
	if successes != 1 {
		t.Fatalf("submit succeeded %d times, want exactly 1", successes)
	}

	entries, _ := engine.ListAudit(context.Background(), request.ID)
	if len(entries) != 2 {
		t.Fatalf("audit trail has %d entries after concurrent submit, want 2", len(entries))
	}
}

func TestConcurrentCreateNumbersAreDense(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t)

	const n = 20
	var wg sync.WaitGroup
	numbers := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			request, err := engine.CreateDraft(context.Background(), requester, validInput())
			if err != nil {
				t.Errorf("CreateDraft: %v", err)
				return
			}
			numbers[i] = request.Number
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, number := range numbers {
		if seen[number] {
			t.Fatalf("duplicate request number %s", number)
		}
		seen[number] = true
	}
	for i := 1; i <= n; i++ {
		want := fmt.Sprintf("SR-202608-%05d", i)
		if !seen[want] {
			t.Errorf("missing number %s; sequence must be dense", want)
		}
	}
}
