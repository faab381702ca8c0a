package workflow

import (
	"testing"

	"github.com/facilityops/maintenance-service/internal/domain"
)

const requesterID = "user-requester"

func caller(id string, roles ...domain.Role) domain.Caller {
	return domain.Caller{ID: id, Roles: roles}
}

func TestAdminMayTriggerEveryAction(t *testing.T) {
	t.Parallel()

	admin := caller("user-admin", domain.RoleAdmin)
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
	for _, action := range actions {
		if !Authorize(action, admin, requesterID).Allowed {
			t.Errorf("admin denied %s", action)
		}
	}
}

func TestRequesterActions(t *testing.T) {
	t.Parallel()

	requester := caller(requesterID, domain.RoleRequestor)

	for _, action := range []domain.Action{domain.ActionUpdate, domain.ActionSubmit, domain.ActionCancel} {
		if !Authorize(action, requester, requesterID).Allowed {
			t.Errorf("requester denied own %s", action)
		}
	}
	for _, action := range []domain.Action{domain.ActionTriage, domain.ActionAssign, domain.ActionStart, domain.ActionComplete, domain.ActionClose} {
		if Authorize(action, requester, requesterID).Allowed {
			t.Errorf("requester allowed %s", action)
		}
	}

	// owning the request is what grants update/submit/cancel, not the role
	other := caller("user-other", domain.RoleRequestor)
	for _, action := range []domain.Action{domain.ActionUpdate, domain.ActionSubmit, domain.ActionCancel} {
		if Authorize(action, other, requesterID).Allowed {
			t.Errorf("non-owning requestor allowed %s", action)
		}
	}
}

func TestSupervisorAndTechnicianSplit(t *testing.T) {
	t.Parallel()

	supervisor := caller("user-supervisor", domain.RoleSupervisor)
	technician := caller("user-technician", domain.RoleTechnician)

	supervisorActions := []domain.Action{domain.ActionTriage, domain.ActionAssign, domain.ActionClose, domain.ActionCancel}
	technicianActions := []domain.Action{domain.ActionStart, domain.ActionComplete}

	for _, action := range supervisorActions {
		if !Authorize(action, supervisor, requesterID).Allowed {
			t.Errorf("supervisor denied %s", action)
		}
		if Authorize(action, technician, requesterID).Allowed {
			t.Errorf("technician allowed %s", action)
		}
	}
	for _, action := range technicianActions {
		if !Authorize(action, technician, requesterID).Allowed {
			t.Errorf("technician denied %s", action)
		}
		if Authorize(action, supervisor, requesterID).Allowed {
			t.Errorf("supervisor allowed %s", action)
		}
	}
}

func TestDeniedDecisionCarriesRoleSets(t *testing.T) {
	t.Parallel()

	technician := caller("user-technician", domain.RoleTechnician)
	decision := Authorize(domain.ActionTriage, technician, requesterID)
	if decision.Allowed {
		t.Fatal("expected denial")
	}
	wantRequired := []domain.Role{domain.RoleAdmin, domain.RoleSupervisor}
	if len(decision.Required) != len(wantRequired) {
		t.Fatalf("Required = %v, want %v", decision.Required, wantRequired)
	}
	for i, role := range wantRequired {
		if decision.Required[i] != role {
			t.Fatalf("Required = %v, want %v", decision.Required, wantRequired)
		}
	}
	if len(decision.Actual) != 1 || decision.Actual[0] != domain.RoleTechnician {
		t.Fatalf("Actual = %v, want [TECHNICIAN]", decision.Actual)
	}
}

func TestMultiRoleCallerUsesAnyMatchingRole(t *testing.T) {
	t.Parallel()

	both := caller("user-both", domain.RoleTechnician, domain.RoleSupervisor)
	for _, action := range []domain.Action{domain.ActionTriage, domain.ActionStart} {
		if !Authorize(action, both, requesterID).Allowed {
			t.Errorf("multi-role caller denied %s", action)
		}
	}
}
