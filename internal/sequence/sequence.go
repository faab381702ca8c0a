// Package sequence produces human-readable service request numbers of the
// form SR-YYYYMM-NNNNN. The numeric component restarts at 1 each calendar
// month and is always derived from the numbers already issued for that
// month, so it can never drift from the request table.
//
// The pure helpers here carry no locking. Stores that issue numbers must
// linearize the derive-and-insert step themselves: the postgres store takes
// a per-period advisory lock inside the insert transaction, the in-memory
// store holds its mutex across the scan and the insert.
package sequence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	prefix = "SR"
	digits = 5
)

// Period is the calendar-month scope a counter lives in.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf derives the period a timestamp falls in.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Prefix returns the identifier prefix shared by every number issued in the
// period, e.g. "SR-202608".
func (p Period) Prefix() string {
	return fmt.Sprintf("%s-%04d%02d", prefix, p.Year, int(p.Month))
}

// Format renders the full identifier for the nth number of the period,
// e.g. Format(p, 7) -> "SR-202608-00007".
func Format(p Period, n int) string {
	return fmt.Sprintf("%s-%0*d", p.Prefix(), digits, n)
}

// NumberOf parses the numeric component of an identifier. It returns false
// for identifiers that do not carry a parseable trailing sequence.
func NumberOf(identifier string) (int, bool) {
	idx := strings.LastIndex(identifier, "-")
	if idx < 0 || idx == len(identifier)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(identifier[idx+1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// NextFrom computes the next sequence number given every identifier already
// issued, counting only those that belong to the period. With no prior
// identifiers in the period the sequence starts at 1.
func NextFrom(p Period, existing []string) int {
	max := 0
	pre := p.Prefix() + "-"
	for _, id := range existing {
		if !strings.HasPrefix(id, pre) {
			continue
		}
		if n, ok := NumberOf(id); ok && n > max {
			max = n
		}
	}
	return max + 1
}
