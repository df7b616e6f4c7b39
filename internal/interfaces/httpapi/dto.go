package httpapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	"github.com/riskibarqy/chit-fund/internal/domain/member"
	"github.com/riskibarqy/chit-fund/internal/usecase"
)

const dateLayout = "2006-01-02"

type createGroupRequest struct {
	Name               string  `json:"name" validate:"required,max=120"`
	OrganizerID        string  `json:"organizer_id" validate:"required"`
	Capacity           int     `json:"capacity" validate:"required,gt=0"`
	DurationMonths     int     `json:"duration_months" validate:"required,gt=0"`
	TotalAmount        float64 `json:"total_amount" validate:"required,gt=0"`
	TicketValue        float64 `json:"ticket_value" validate:"gte=0"`
	CommissionRate     float64 `json:"commission_rate" validate:"gte=0,lte=100"`
	ContributionAmount float64 `json:"contribution_amount" validate:"gte=0"`
	PaymentDay         int     `json:"payment_day" validate:"omitempty,gte=1,lte=28"`
	StartDate          string  `json:"start_date" validate:"omitempty"`
	EndDate            string  `json:"end_date" validate:"omitempty"`
	Description        string  `json:"description" validate:"omitempty,max=1000"`
}

type updateGroupRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=120"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	PaymentDay  *int    `json:"payment_day" validate:"omitempty,gte=1,lte=28"`
}

type memberRequest struct {
	MemberID string `json:"member_id" validate:"required"`
}

type placeBidRequest struct {
	MemberID string  `json:"member_id" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Month    int     `json:"month" validate:"required,gte=1"`
}

type runDrawRequest struct {
	Month int `json:"month" validate:"required,gte=1"`
}

type contributionRequest struct {
	MemberID string  `json:"member_id" validate:"required"`
	Month    int     `json:"month" validate:"required,gte=1"`
	Year     int     `json:"year" validate:"omitempty,gte=1970"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

type missedPaymentRequest struct {
	MemberID     string  `json:"member_id" validate:"required"`
	MissedAmount float64 `json:"missed_amount" validate:"required,gt=0"`
	Month        int     `json:"month" validate:"omitempty,gte=1"`
	Year         int     `json:"year" validate:"omitempty,gte=1970"`
	Reason       string  `json:"reason" validate:"omitempty,max=255"`
}

type lateralPaymentRequest struct {
	MemberID string  `json:"member_id" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

type compensateRequest struct {
	Month  int     `json:"month" validate:"required,gte=1"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type adjustBidRequest struct {
	Month     int     `json:"month" validate:"required,gte=1"`
	MemberID  string  `json:"member_id" validate:"required"`
	NewAmount float64 `json:"new_amount" validate:"required,gt=0"`
}

type distributionRequest struct {
	FundValue         float64 `json:"fund_value" validate:"required,gt=0"`
	BidAmount         float64 `json:"bid_amount" validate:"required,gt=0"`
	CommissionPercent float64 `json:"commission_percent" validate:"gte=0,lte=100"`
	Members           int     `json:"members" validate:"required,gte=1"`
}

type reconcileRequest struct {
	At string `json:"at" validate:"omitempty"`
}

type groupDTO struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	OrganizerID        string     `json:"organizer_id"`
	Capacity           int        `json:"capacity"`
	DurationMonths     int        `json:"duration_months"`
	TotalAmount        float64    `json:"total_amount"`
	TicketValue        float64    `json:"ticket_value"`
	CommissionRate     float64    `json:"commission_rate"`
	ContributionAmount float64    `json:"contribution_amount"`
	PaymentDay         int        `json:"payment_day,omitempty"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Description        string     `json:"description,omitempty"`
	Status             string     `json:"status"`
	Participants       []string   `json:"participants"`
	JoinRequests       []string   `json:"join_requests"`
	MonthlyDraw        []string   `json:"monthly_draw"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type bidDTO struct {
	MemberID string    `json:"member_id"`
	Amount   float64   `json:"amount"`
	Month    int       `json:"month"`
	PlacedAt time.Time `json:"placed_at"`
}

type shareDTO struct {
	MemberID string  `json:"member_id"`
	Amount   float64 `json:"amount"`
}

type drawResultDTO struct {
	Month        int        `json:"month"`
	WinnerID     string     `json:"winner_id"`
	WinningBid   float64    `json:"winning_bid"`
	Commission   float64    `json:"commission"`
	Pool         float64    `json:"pool"`
	PerMember    float64    `json:"per_member"`
	Distribution []shareDTO `json:"distribution"`
}

type contributionDTO struct {
	MemberID string             `json:"member_id"`
	Month    chitgroup.MonthRef `json:"month"`
	Year     int                `json:"year,omitempty"`
	Amount   float64            `json:"amount"`
	PaidAt   time.Time          `json:"paid_at"`
}

type warningDTO struct {
	MemberID string `json:"member_id"`
	Count    int    `json:"count"`
	Month    int    `json:"month,omitempty"`
}

type penaltyDTO struct {
	MemberID  string    `json:"member_id"`
	Amount    float64   `json:"amount"`
	Month     int       `json:"month,omitempty"`
	Year      int       `json:"year,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type penaltyResultDTO struct {
	Penalty penaltyDTO `json:"penalty"`
	Warning warningDTO `json:"warning"`
}

type lateralMemberDTO struct {
	MemberID      string     `json:"member_id"`
	PaidBackdated bool       `json:"paid_backdated"`
	ApprovedAt    time.Time  `json:"approved_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

type lateralApprovalDTO struct {
	MemberID     string  `json:"member_id"`
	BackdatedDue float64 `json:"backdated_due"`
}

type statusDTO struct {
	Participants   []string           `json:"participants"`
	Warnings       []warningDTO       `json:"warnings"`
	Penalties      []penaltyDTO       `json:"penalties"`
	LateralMembers []lateralMemberDTO `json:"lateral_members"`
	Balance        float64            `json:"balance"`
}

type slotDTO struct {
	MemberID string   `json:"member_id"`
	Amount   *float64 `json:"amount"`
}

type monthHistoryDTO struct {
	Month          int          `json:"month"`
	WinnerID       string       `json:"winner_id"`
	Distribution   []slotDTO    `json:"distribution"`
	MissedPayments []string     `json:"missed_payments"`
	Penalties      []penaltyDTO `json:"penalties"`
	Warnings       []warningDTO `json:"warnings"`
}

type compensationDTO struct {
	Month      int       `json:"month"`
	Amount     float64   `json:"amount"`
	RecordedAt time.Time `json:"recorded_at"`
}

type adjustmentDTO struct {
	Month      int       `json:"month"`
	MemberID   string    `json:"member_id"`
	OldAmount  float64   `json:"old_amount"`
	NewAmount  float64   `json:"new_amount"`
	AdjustedAt time.Time `json:"adjusted_at"`
	Applied    bool      `json:"applied"`
}

type participantDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type planMonthDTO struct {
	Month       int     `json:"month"`
	Amount      float64 `json:"amount"`
	Commission  float64 `json:"commission"`
	AmountGiven float64 `json:"amount_given"`
}

type planDTO struct {
	Months      []planMonthDTO `json:"months"`
	TotalProfit float64        `json:"total_profit"`
}

type participantMonthDTO struct {
	MemberID         string     `json:"member_id"`
	Name             string     `json:"name"`
	HasPaid          bool       `json:"has_paid"`
	DatePaid         *time.Time `json:"date_paid"`
	WarningCount     int        `json:"warning_count"`
	Installment      float64    `json:"installment"`
	RemainingBalance float64    `json:"remaining_balance"`
}

type distributionDTO struct {
	FundValue         float64 `json:"fund_value"`
	BidAmount         float64 `json:"bid_amount"`
	Difference        float64 `json:"difference"`
	CommissionPercent float64 `json:"commission_percent"`
	Commission        float64 `json:"commission"`
	NetAmount         float64 `json:"net_amount"`
	Members           int     `json:"members"`
	IndividualShare   float64 `json:"individual_share"`
}

type activityDTO struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Details    string    `json:"details"`
	ActorID    string    `json:"actor_id"`
	GroupID    string    `json:"group_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD or RFC 3339", usecase.ErrInvalidInput, field)
	}
	return t.UTC(), nil
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func groupToDTO(ctx context.Context, view usecase.GroupView) groupDTO {
	_, span := startSpan(ctx, "httpapi.groupToDTO")
	defer span.End()

	g := view.Group
	return groupDTO{
		ID:                 g.ID,
		Name:               g.Name,
		OrganizerID:        g.OrganizerID,
		Capacity:           g.Capacity,
		DurationMonths:     g.DurationMonths,
		TotalAmount:        g.TotalAmount,
		TicketValue:        g.TicketValue,
		CommissionRate:     g.CommissionRate,
		ContributionAmount: g.ContributionAmount,
		PaymentDay:         g.PaymentDay,
		StartDate:          optionalTime(g.StartDate),
		EndDate:            optionalTime(g.EndDate),
		Description:        g.Description,
		Status:             string(view.Status),
		Participants:       nonNilStrings(g.Ledger.Participants),
		JoinRequests:       nonNilStrings(g.Ledger.JoinRequests),
		MonthlyDraw:        nonNilStrings(g.Ledger.MonthlyDraw),
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
}

func bidToDTO(b chitgroup.Bid) bidDTO {
	return bidDTO{MemberID: b.MemberID, Amount: b.Amount, Month: b.Month, PlacedAt: b.PlacedAt}
}

func drawResultToDTO(r chitgroup.DrawResult) drawResultDTO {
	shares := make([]shareDTO, 0, len(r.Distribution))
	for _, s := range r.Distribution {
		shares = append(shares, shareDTO{MemberID: s.MemberID, Amount: s.Amount})
	}
	return drawResultDTO{
		Month:        r.Month,
		WinnerID:     r.WinnerID,
		WinningBid:   r.WinningBid,
		Commission:   r.Commission,
		Pool:         r.Pool,
		PerMember:    r.PerMember,
		Distribution: shares,
	}
}

func contributionToDTO(c chitgroup.Contribution) contributionDTO {
	return contributionDTO{MemberID: c.MemberID, Month: c.Month, Year: c.Year, Amount: c.Amount, PaidAt: c.PaidAt}
}

func warningToDTO(w chitgroup.Warning) warningDTO {
	return warningDTO{MemberID: w.MemberID, Count: w.Count, Month: w.Month}
}

func warningsToDTO(in []chitgroup.Warning) []warningDTO {
	out := make([]warningDTO, 0, len(in))
	for _, w := range in {
		out = append(out, warningToDTO(w))
	}
	return out
}

func penaltyToDTO(p chitgroup.Penalty) penaltyDTO {
	return penaltyDTO{
		MemberID:  p.MemberID,
		Amount:    p.Amount,
		Month:     p.Month,
		Year:      p.Year,
		Reason:    p.Reason,
		CreatedAt: p.CreatedAt,
	}
}

func penaltiesToDTO(in []chitgroup.Penalty) []penaltyDTO {
	out := make([]penaltyDTO, 0, len(in))
	for _, p := range in {
		out = append(out, penaltyToDTO(p))
	}
	return out
}

func statusToDTO(ctx context.Context, s chitgroup.Status) statusDTO {
	_, span := startSpan(ctx, "httpapi.statusToDTO")
	defer span.End()

	lateral := make([]lateralMemberDTO, 0, len(s.LateralMembers))
	for _, m := range s.LateralMembers {
		lateral = append(lateral, lateralMemberDTO{
			MemberID:      m.MemberID,
			PaidBackdated: m.PaidBackdated,
			ApprovedAt:    m.ApprovedAt,
			PaidAt:        m.PaidAt,
		})
	}
	return statusDTO{
		Participants:   nonNilStrings(s.Participants),
		Warnings:       warningsToDTO(s.Warnings),
		Penalties:      penaltiesToDTO(s.Penalties),
		LateralMembers: lateral,
		Balance:        s.Balance,
	}
}

func historyToDTO(ctx context.Context, months []chitgroup.MonthHistory) []monthHistoryDTO {
	_, span := startSpan(ctx, "httpapi.historyToDTO")
	defer span.End()

	out := make([]monthHistoryDTO, 0, len(months))
	for _, m := range months {
		slots := make([]slotDTO, 0, len(m.Distribution))
		for _, s := range m.Distribution {
			slots = append(slots, slotDTO{MemberID: s.MemberID, Amount: s.Amount})
		}
		out = append(out, monthHistoryDTO{
			Month:          m.Month,
			WinnerID:       m.WinnerID,
			Distribution:   slots,
			MissedPayments: nonNilStrings(m.MissedPayments),
			Penalties:      penaltiesToDTO(m.Penalties),
			Warnings:       warningsToDTO(m.Warnings),
		})
	}
	return out
}

func participantToDTO(p member.Profile) participantDTO {
	return participantDTO{ID: p.ID, Name: p.Name, Email: p.Email}
}

func planToDTO(p chitgroup.Plan) planDTO {
	months := make([]planMonthDTO, 0, len(p.Months))
	for _, m := range p.Months {
		months = append(months, planMonthDTO{
			Month:       m.Month,
			Amount:      m.Amount,
			Commission:  m.Commission,
			AmountGiven: m.AmountGiven,
		})
	}
	return planDTO{Months: months, TotalProfit: p.TotalProfit}
}

func participantMonthToDTO(row usecase.ParticipantSummary) participantMonthDTO {
	return participantMonthDTO{
		MemberID:         row.MemberID,
		Name:             row.Name,
		HasPaid:          row.HasPaid,
		DatePaid:         row.PaidAt,
		WarningCount:     row.WarningCount,
		Installment:      row.Installment,
		RemainingBalance: row.RemainingBalance,
	}
}

func distributionToDTO(d chitgroup.Distribution) distributionDTO {
	return distributionDTO{
		FundValue:         d.FundValue,
		BidAmount:         d.BidAmount,
		Difference:        d.Difference,
		CommissionPercent: d.CommissionPercent,
		Commission:        d.Commission,
		NetAmount:         d.NetAmount,
		Members:           d.Members,
		IndividualShare:   d.IndividualShare,
	}
}

func activityToDTO(e activity.Entry) activityDTO {
	return activityDTO{
		ID:         e.ID,
		Type:       string(e.Type),
		Details:    e.Details,
		ActorID:    e.ActorID,
		GroupID:    e.GroupID,
		OccurredAt: e.OccurredAt,
	}
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
