package chitgroup

import (
	"math"
	"time"
)

// Status is the current standing of a group. Balance is total amount minus every contribution received.
type Status struct {
	Participants   []string
	Warnings       []Warning
	Penalties      []Penalty
	LateralMembers []LateralMember
	Balance        float64
}

func (g Group) Status() Status {
	paid := 0.0
	for _, c := range g.Ledger.Contributions {
		paid += c.Amount
	}
	return Status{
		Participants:   nonNil(g.Ledger.Participants),
		Warnings:       nonNil(g.Ledger.Warnings),
		Penalties:      nonNil(g.Ledger.Penalties),
		LateralMembers: nonNil(g.Ledger.LateralMembers),
		Balance:        g.TotalAmount - paid,
	}
}

// Slot is a per-participant distribution placeholder. Amount is nil until settled.
type Slot struct {
	MemberID string
	Amount   *float64
}

type MonthHistory struct {
	Month          int
	WinnerID       string
	Distribution   []Slot
	MissedPayments []string
	Penalties      []Penalty
	Warnings       []Warning
}

// History walks months 1..len(MonthlyDraw). Undrawn months in that range have an empty winner.
func (g Group) History() []MonthHistory {
	out := make([]MonthHistory, 0, len(g.Ledger.MonthlyDraw))
	for i, winner := range g.Ledger.MonthlyDraw {
		month := i + 1
		entry := MonthHistory{
			Month:          month,
			WinnerID:       winner,
			Distribution:   make([]Slot, 0, len(g.Ledger.Participants)),
			MissedPayments: []string{},
			Penalties:      []Penalty{},
			Warnings:       []Warning{},
		}
		for _, memberID := range g.Ledger.Participants {
			entry.Distribution = append(entry.Distribution, Slot{MemberID: memberID})
			if !g.HasContribution(memberID, month, 0) {
				entry.MissedPayments = append(entry.MissedPayments, memberID)
			}
		}
		for _, p := range g.Ledger.Penalties {
			if p.Month == month {
				entry.Penalties = append(entry.Penalties, p)
			}
		}
		for _, w := range g.Ledger.Warnings {
			if w.Month == month {
				entry.Warnings = append(entry.Warnings, w)
			}
		}
		out = append(out, entry)
	}
	return out
}

type ParticipantMonth struct {
	MemberID         string
	HasPaid          bool
	PaidAt           *time.Time
	WarningCount     int
	Installment      float64
	RemainingBalance float64
}

// Installment is the per-month share of the pot over the group's duration.
func (g Group) Installment() float64 {
	if g.DurationMonths < 1 {
		return 0
	}
	return g.TotalAmount / float64(g.DurationMonths)
}

// MonthlySummary reports each participant's payment standing for month.
// Remaining balance is what is expected up to month minus everything paid, floored at zero.
func (g Group) MonthlySummary(month int) ([]ParticipantMonth, error) {
	if err := g.validateMonth(month); err != nil {
		return nil, err
	}

	installment := g.Installment()
	expected := installment * float64(month)
	out := make([]ParticipantMonth, 0, len(g.Ledger.Participants))
	for _, memberID := range g.Ledger.Participants {
		row := ParticipantMonth{MemberID: memberID, Installment: installment}
		if c, ok := g.findContribution(memberID, month, 0); ok {
			paidAt := c.PaidAt
			row.HasPaid = true
			row.PaidAt = &paidAt
		}
		if w, ok := g.WarningFor(memberID); ok {
			row.WarningCount = w.Count
		}

		paid := 0.0
		for _, c := range g.Ledger.Contributions {
			if c.MemberID == memberID {
				paid += c.Amount
			}
		}
		row.RemainingBalance = math.Max(expected-paid, 0)
		out = append(out, row)
	}
	return out, nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
