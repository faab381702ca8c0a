package workflow

import "github.com/facilityops/maintenance-service/internal/domain"

// Decision reports whether a caller may trigger an action and, on denial,
// the roles that would have been accepted against the roles actually held.
type Decision struct {
	Allowed  bool
	Required []domain.Role
	Actual   []domain.Role
}

// Authorize decides whether the caller may trigger the action against a
// request owned by requesterID. ADMIN is accepted for every action; actions
// whose rule admits the requester also accept the owning caller regardless
// of role. The predicate is pure: it reads nothing beyond its arguments.
func Authorize(action domain.Action, caller domain.Caller, requesterID string) Decision {
	denied := Decision{Actual: caller.Roles}

	rule, ok := RuleFor(action)
	if !ok {
		return denied
	}
	denied.Required = append([]domain.Role{domain.RoleAdmin}, rule.Roles...)

	if caller.HasRole(domain.RoleAdmin) {
		return Decision{Allowed: true}
	}
	if rule.RequesterAllowed && caller.ID == requesterID {
		return Decision{Allowed: true}
	}
	if caller.HasAnyRole(rule.Roles...) {
		return Decision{Allowed: true}
	}
	return denied
}
