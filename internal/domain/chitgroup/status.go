package chitgroup

import "time"

type Phase string

const (
	PhasePending Phase = "pending"
	PhaseActive  Phase = "active"
	PhaseClosed  Phase = "closed"
)

// ProjectStatus derives the lifecycle phase at now. It is never stored.
// A missing start date falls back to CreatedAt; a missing end date is start plus the duration.
func ProjectStatus(g Group, now time.Time) Phase {
	start := g.StartDate
	if start.IsZero() {
		start = g.CreatedAt
	}
	end := g.EndDate
	if end.IsZero() {
		end = start.AddDate(0, g.DurationMonths, 0)
	}

	switch {
	case now.Before(start):
		return PhasePending
	case now.After(end):
		return PhaseClosed
	default:
		return PhaseActive
	}
}

// DueDate is the contribution deadline for the calendar month containing now, in now's location.
func DueDate(now time.Time, paymentDay int) time.Time {
	return time.Date(now.Year(), now.Month(), paymentDay, 0, 0, 0, 0, now.Location())
}
