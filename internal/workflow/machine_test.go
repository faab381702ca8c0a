package workflow

import (
	"testing"

	"github.com/facilityops/maintenance-service/internal/domain"
)

func TestCanTransitionHappyPath(t *testing.T) {
	t.Parallel()

	steps := []struct {
		action domain.Action
		from   domain.Status
	}{
		{domain.ActionSubmit, domain.StatusDraft},
		{domain.ActionTriage, domain.StatusSubmitted},
		{domain.ActionAssign, domain.StatusTriaged},
		{domain.ActionStart, domain.StatusAssigned},
		{domain.ActionComplete, domain.StatusInProgress},
		{domain.ActionClose, domain.StatusCompleted},
	}
	for _, step := range steps {
		if !CanTransition(step.action, step.from) {
			t.Errorf("CanTransition(%s, %s) = false, want true", step.action, step.from)
		}
	}
}

func TestCanTransitionRejectsSkips(t *testing.T) {
	t.Parallel()

	denied := []struct {
		action domain.Action
		from   domain.Status
	}{
		{domain.ActionSubmit, domain.StatusSubmitted},
		{domain.ActionTriage, domain.StatusDraft},
		{domain.ActionAssign, domain.StatusSubmitted},
		{domain.ActionStart, domain.StatusTriaged},
		{domain.ActionComplete, domain.StatusAssigned},
		{domain.ActionClose, domain.StatusInProgress},
		{domain.ActionClose, domain.StatusCancelled},
	}
	for _, step := range denied {
		if CanTransition(step.action, step.from) {
			t.Errorf("CanTransition(%s, %s) = true, want false", step.action, step.from)
		}
	}
}

func TestCancelWindowIsSubmittedThroughAssigned(t *testing.T) {
	t.Parallel()

	for _, status := range domain.Statuses {
		want := status == domain.StatusSubmitted ||
			status == domain.StatusTriaged ||
			status == domain.StatusAssigned
		if got := CanTransition(domain.ActionCancel, status); got != want {
			t.Errorf("CanTransition(cancel, %s) = %v, want %v", status, got, want)
		}
	}
}

func TestTerminalStatusesHaveNoOutgoingTransitions(t *testing.T) {
	t.Parallel()

	actions := []domain.Action{
		domain.ActionUpdate,
		domain.ActionSubmit,
		domain.ActionTriage,
		domain.ActionAssign,
		domain.ActionStart,
		domain.ActionComplete,
		domain.ActionClose,
		domain.ActionCancel,
	}
	for _, status := range []domain.Status{domain.StatusClosed, domain.StatusCancelled} {
		for _, action := range actions {
			if CanTransition(action, status) {
				t.Errorf("CanTransition(%s, %s) = true, want false", action, status)
			}
		}
	}
}

func TestRuleForUnknownAction(t *testing.T) {
	t.Parallel()

	if _, ok := RuleFor(domain.Action("reopen")); ok {
		t.Fatal("RuleFor accepted an unknown action")
	}
	if CanTransition(domain.Action("reopen"), domain.StatusClosed) {
		t.Fatal("CanTransition accepted an unknown action")
	}
}
