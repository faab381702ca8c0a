package workflow

import (
	"time"

	"github.com/facilityops/maintenance-service/internal/domain"
)

// SLA pairs the response and resolve offsets owed for a priority tier.
type SLA struct {
	Response time.Duration
	Resolve  time.Duration
}

var slaByPriority = map[domain.Priority]SLA{
	domain.PriorityUrgent: {Response: 2 * time.Hour, Resolve: 24 * time.Hour},
	domain.PriorityHigh:   {Response: 4 * time.Hour, Resolve: 3 * 24 * time.Hour},
	domain.PriorityMedium: {Response: 8 * time.Hour, Resolve: 7 * 24 * time.Hour},
	domain.PriorityLow:    {Response: 24 * time.Hour, Resolve: 14 * 24 * time.Hour},
}

// SLAFor maps a priority to its deadline offsets. Unknown or absent
// priorities fall back to the LOW tier.
func SLAFor(priority domain.Priority) SLA {
	if sla, ok := slaByPriority[priority]; ok {
		return sla
	}
	return slaByPriority[domain.PriorityLow]
}

// DueTimes computes the response and resolve deadlines from the submission
// timestamp. Deadlines are fixed at submission and never recomputed.
func DueTimes(priority domain.Priority, submittedAt time.Time) (responseDue, resolveDue time.Time) {
	sla := SLAFor(priority)
	return submittedAt.Add(sla.Response), submittedAt.Add(sla.Resolve)
}

// OverdueFlags reports whether the request has blown its response or
// resolve deadline as of now. Computed at read time, never stored; a
// request in a terminal state is never overdue.
func OverdueFlags(r *domain.ServiceRequest, now time.Time) (responseOverdue, resolveOverdue bool) {
	if r == nil || r.Status.Terminal() {
		return false, false
	}
	if r.ResponseDueAt != nil && now.After(*r.ResponseDueAt) {
		responseOverdue = true
	}
	if r.ResolveDueAt != nil && now.After(*r.ResolveDueAt) {
		resolveOverdue = true
	}
	return responseOverdue, resolveOverdue
}
