package workflow

import "github.com/facilityops/maintenance-service/internal/domain"

// Rule is one row of the lifecycle table: the states an action may fire
// from, the state it lands in, and who may trigger it.
type Rule struct {
	From []domain.Status
	To   domain.Status
	// Roles that may trigger the action regardless of relation to the
	// request. ADMIN is implied everywhere and not listed.
	Roles []domain.Role
	// RequesterAllowed additionally admits the request's own requester.
	RequesterAllowed bool
}

var rules = map[domain.Action]Rule{
	domain.ActionUpdate: {
		From:             []domain.Status{domain.StatusDraft},
		To:               domain.StatusDraft,
		RequesterAllowed: true,
	},
	domain.ActionSubmit: {
		From:             []domain.Status{domain.StatusDraft},
		To:               domain.StatusSubmitted,
		RequesterAllowed: true,
	},
	domain.ActionTriage: {
		From:  []domain.Status{domain.StatusSubmitted},
		To:    domain.StatusTriaged,
		Roles: []domain.Role{domain.RoleSupervisor},
	},
	domain.ActionAssign: {
		From:  []domain.Status{domain.StatusTriaged},
		To:    domain.StatusAssigned,
		Roles: []domain.Role{domain.RoleSupervisor},
	},
	domain.ActionStart: {
		From:  []domain.Status{domain.StatusAssigned},
		To:    domain.StatusInProgress,
		Roles: []domain.Role{domain.RoleTechnician},
	},
	domain.ActionComplete: {
		From:  []domain.Status{domain.StatusInProgress},
		To:    domain.StatusCompleted,
		Roles: []domain.Role{domain.RoleTechnician},
	},
	domain.ActionClose: {
		From:  []domain.Status{domain.StatusCompleted},
		To:    domain.StatusClosed,
		Roles: []domain.Role{domain.RoleSupervisor},
	},
	domain.ActionCancel: {
		From:             []domain.Status{domain.StatusSubmitted, domain.StatusTriaged, domain.StatusAssigned},
		To:               domain.StatusCancelled,
		Roles:            []domain.Role{domain.RoleSupervisor},
		RequesterAllowed: true,
	},
}

// RuleFor looks up the lifecycle rule for an action.
func RuleFor(action domain.Action) (Rule, bool) {
	rule, ok := rules[action]
	return rule, ok
}

// CanTransition reports whether the action may fire from the given status.
func CanTransition(action domain.Action, from domain.Status) bool {
	rule, ok := rules[action]
	if !ok {
		return false
	}
	for _, s := range rule.From {
		if s == from {
			return true
		}
	}
	return false
}
