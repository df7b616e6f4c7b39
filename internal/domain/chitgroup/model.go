package chitgroup

import (
	"strconv"
	"strings"
	"time"
)

// Group is the aggregate root of one chit fund. Capacity, DurationMonths and TotalAmount are fixed at creation.
type Group struct {
	ID                 string
	Name               string
	OrganizerID        string
	Capacity           int
	DurationMonths     int
	TotalAmount        float64
	TicketValue        float64
	CommissionRate     float64
	ContributionAmount float64
	PaymentDay         int
	StartDate          time.Time
	EndDate            time.Time
	Description        string
	Ledger             Ledger
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// Ledger holds every sub-collection mutated by the settlement engines.
type Ledger struct {
	Participants           []string             `json:"participants"`
	JoinRequests           []string             `json:"joinRequests"`
	Bids                   []Bid                `json:"bids"`
	MonthlyDraw            []string             `json:"monthlyDraw"`
	Contributions          []Contribution       `json:"contributions"`
	Warnings               []Warning            `json:"warnings"`
	Penalties              []Penalty            `json:"penalties"`
	LateralMembers         []LateralMember      `json:"lateralMembers"`
	LateralRequests        []string             `json:"lateralRequests"`
	OrganizerCompensations []CompensationRecord `json:"organizerCompensations"`
	BidAdjustments         []AdjustmentRecord   `json:"bidAdjustments"`
}

type Bid struct {
	MemberID string    `json:"memberId"`
	Amount   float64   `json:"amount"`
	Month    int       `json:"month"`
	PlacedAt time.Time `json:"placedAt"`
}

// Contribution is one payment. Year is zero when the payer did not state it.
type Contribution struct {
	MemberID string    `json:"memberId"`
	Month    MonthRef  `json:"month"`
	Year     int       `json:"year,omitempty"`
	Amount   float64   `json:"amount"`
	PaidAt   time.Time `json:"paidAt"`
}

// CalendarYear is the stated year, falling back to the year the payment was recorded.
func (c Contribution) CalendarYear() int {
	if c.Year > 0 {
		return c.Year
	}
	return c.PaidAt.Year()
}

// Warning accrues missed-payment strikes for one member. Month is zero when untagged.
type Warning struct {
	MemberID string `json:"memberId"`
	Count    int    `json:"count"`
	Month    int    `json:"month,omitempty"`
}

type Penalty struct {
	MemberID  string    `json:"memberId"`
	Amount    float64   `json:"amount"`
	Month     int       `json:"month,omitempty"`
	Year      int       `json:"year,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type LateralMember struct {
	MemberID      string     `json:"memberId"`
	PaidBackdated bool       `json:"paidBackdated"`
	ApprovedAt    time.Time  `json:"approvedAt"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

type CompensationRecord struct {
	Month      int       `json:"month"`
	Amount     float64   `json:"amount"`
	RecordedAt time.Time `json:"recordedAt"`
}

type AdjustmentRecord struct {
	Month      int       `json:"month"`
	MemberID   string    `json:"memberId"`
	OldAmount  float64   `json:"oldAmount"`
	NewAmount  float64   `json:"newAmount"`
	AdjustedAt time.Time `json:"adjustedAt"`
}

const backdatedLabel = "backdated"

// MonthRef is either a month number or the backdated sentinel used by lateral catch-up payments.
type MonthRef struct {
	Number    int
	Backdated bool
}

func Month(n int) MonthRef {
	return MonthRef{Number: n}
}

func Backdated() MonthRef {
	return MonthRef{Backdated: true}
}

// Is reports whether the reference names month n. A backdated reference never matches a month.
func (m MonthRef) Is(n int) bool {
	return !m.Backdated && m.Number == n
}

func (m MonthRef) String() string {
	if m.Backdated {
		return backdatedLabel
	}
	return strconv.Itoa(m.Number)
}

func (m MonthRef) MarshalJSON() ([]byte, error) {
	if m.Backdated {
		return []byte(strconv.Quote(backdatedLabel)), nil
	}
	return []byte(strconv.Itoa(m.Number)), nil
}

func (m *MonthRef) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	parsed, err := ParseMonthRef(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMonthRef accepts a positive month number or "backdated".
func ParseMonthRef(raw string) (MonthRef, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, backdatedLabel) {
		return Backdated(), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return MonthRef{}, ErrInvalidMonth
	}
	return Month(n), nil
}

// Clone returns a deep copy so mutations can be applied and discarded without touching the original.
func (g Group) Clone() Group {
	out := g
	if g.DeletedAt != nil {
		deletedAt := *g.DeletedAt
		out.DeletedAt = &deletedAt
	}
	out.Ledger = g.Ledger.clone()
	return out
}

func (l Ledger) clone() Ledger {
	out := Ledger{
		Participants:           append([]string(nil), l.Participants...),
		JoinRequests:           append([]string(nil), l.JoinRequests...),
		Bids:                   append([]Bid(nil), l.Bids...),
		MonthlyDraw:            append([]string(nil), l.MonthlyDraw...),
		Contributions:          append([]Contribution(nil), l.Contributions...),
		Warnings:               append([]Warning(nil), l.Warnings...),
		Penalties:              append([]Penalty(nil), l.Penalties...),
		LateralMembers:         append([]LateralMember(nil), l.LateralMembers...),
		LateralRequests:        append([]string(nil), l.LateralRequests...),
		OrganizerCompensations: append([]CompensationRecord(nil), l.OrganizerCompensations...),
		BidAdjustments:         append([]AdjustmentRecord(nil), l.BidAdjustments...),
	}
	for i := range out.LateralMembers {
		if paidAt := out.LateralMembers[i].PaidAt; paidAt != nil {
			copied := *paidAt
			out.LateralMembers[i].PaidAt = &copied
		}
	}
	return out
}

func (g Group) IsDeleted() bool {
	return g.DeletedAt != nil
}

// MonthlyContribution is the installment a participant owes each month.
func (g Group) MonthlyContribution() float64 {
	if g.ContributionAmount > 0 {
		return g.ContributionAmount
	}
	if g.TicketValue > 0 {
		return g.TicketValue
	}
	if g.Capacity < 1 {
		return 0
	}
	return g.TotalAmount / float64(g.Capacity)
}

// EffectivePaymentDay is the configured due day of month, then fallback, then DefaultPaymentDay.
func (g Group) EffectivePaymentDay(fallback int) int {
	if g.PaymentDay >= 1 && g.PaymentDay <= MaxPaymentDay {
		return g.PaymentDay
	}
	if fallback >= 1 && fallback <= MaxPaymentDay {
		return fallback
	}
	return DefaultPaymentDay
}
