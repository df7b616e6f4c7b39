package chitgroup

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Validate checks the fixed terms of a group before it is created.
func (g Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidGroup)
	}
	if strings.TrimSpace(g.OrganizerID) == "" {
		return fmt.Errorf("%w: organizer id is required", ErrInvalidGroup)
	}
	if g.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrInvalidGroup)
	}
	if g.DurationMonths < 1 {
		return fmt.Errorf("%w: duration must be at least 1 month", ErrInvalidGroup)
	}
	if g.TotalAmount <= 0 {
		return fmt.Errorf("%w: total amount must be greater than zero", ErrInvalidGroup)
	}
	if g.TicketValue < 0 || g.ContributionAmount < 0 {
		return fmt.Errorf("%w: ticket value and contribution must not be negative", ErrInvalidGroup)
	}
	if g.CommissionRate < 0 || g.CommissionRate > 100 {
		return fmt.Errorf("%w: commission rate must be within 0..100", ErrInvalidGroup)
	}
	if g.PaymentDay != 0 && (g.PaymentDay < 1 || g.PaymentDay > MaxPaymentDay) {
		return fmt.Errorf("%w: payment day must be within 1..%d", ErrInvalidGroup, MaxPaymentDay)
	}
	if !g.StartDate.IsZero() && !g.EndDate.IsZero() && g.EndDate.Before(g.StartDate) {
		return fmt.Errorf("%w: end date is before start date", ErrInvalidGroup)
	}
	if len(g.Ledger.Participants) > g.Capacity {
		return fmt.Errorf("%w: %d participants exceed capacity %d", ErrCapacityReached, len(g.Ledger.Participants), g.Capacity)
	}
	return nil
}

// Normalize fills derived defaults. The end date is derived from the start date and duration when absent.
func (g *Group) Normalize() {
	g.Name = strings.TrimSpace(g.Name)
	g.Description = strings.TrimSpace(g.Description)
	if g.ContributionAmount == 0 && g.Capacity > 0 {
		g.ContributionAmount = g.TotalAmount / float64(g.Capacity)
	}
	if g.EndDate.IsZero() && !g.StartDate.IsZero() {
		g.EndDate = g.StartDate.AddDate(0, g.DurationMonths, 0)
	}
}

func (g Group) IsParticipant(memberID string) bool {
	return slices.Contains(g.Ledger.Participants, memberID)
}

func (g Group) validateMonth(month int) error {
	if month < 1 || month > g.DurationMonths {
		return fmt.Errorf("%w: month %d outside 1..%d", ErrInvalidMonth, month, g.DurationMonths)
	}
	return nil
}

// PlaceBid appends a bid. A member may bid several times for the same month.
func (g *Group) PlaceBid(memberID string, amount float64, month int, now time.Time) (Bid, error) {
	if err := g.validateMonth(month); err != nil {
		return Bid{}, err
	}
	if amount <= 0 {
		return Bid{}, ErrInvalidAmount
	}
	if amount > g.TotalAmount {
		return Bid{}, fmt.Errorf("%w: bid %.2f, pot %.2f", ErrBidExceedsPot, amount, g.TotalAmount)
	}

	bid := Bid{MemberID: memberID, Amount: amount, Month: month, PlacedAt: now}
	g.Ledger.Bids = append(g.Ledger.Bids, bid)
	return bid, nil
}

// RunDraw picks the lowest bid for month, earliest bid winning ties, and records the winner.
// Drawing a month again overwrites the earlier winner.
func (g *Group) RunDraw(month int) (DrawResult, error) {
	if err := g.validateMonth(month); err != nil {
		return DrawResult{}, err
	}

	var winner *Bid
	for i := range g.Ledger.Bids {
		bid := &g.Ledger.Bids[i]
		if bid.Month != month {
			continue
		}
		if winner == nil || bid.Amount < winner.Amount {
			winner = bid
		}
	}
	if winner == nil {
		return DrawResult{}, fmt.Errorf("%w: month %d", ErrNoBids, month)
	}

	for len(g.Ledger.MonthlyDraw) < month {
		g.Ledger.MonthlyDraw = append(g.Ledger.MonthlyDraw, "")
	}
	g.Ledger.MonthlyDraw[month-1] = winner.MemberID

	commission, pool, perMember := SettleDraw(g.TotalAmount, g.CommissionRate, winner.Amount, g.Capacity)
	distribution := make([]Share, 0, len(g.Ledger.Participants))
	for _, memberID := range g.Ledger.Participants {
		distribution = append(distribution, Share{MemberID: memberID, Amount: perMember})
	}

	return DrawResult{
		Month:        month,
		WinnerID:     winner.MemberID,
		WinningBid:   winner.Amount,
		Commission:   commission,
		Pool:         pool,
		PerMember:    perMember,
		Distribution: distribution,
	}, nil
}

// WinnerOf returns the recorded winner for month, if drawn.
func (g Group) WinnerOf(month int) (string, bool) {
	if month < 1 || month > len(g.Ledger.MonthlyDraw) {
		return "", false
	}
	winner := g.Ledger.MonthlyDraw[month-1]
	return winner, winner != ""
}

// AdjustBid overwrites the first bid by memberID for month. The boolean is false when no bid matched,
// in which case the group is left unchanged.
func (g *Group) AdjustBid(month int, memberID string, newAmount float64, now time.Time) (AdjustmentRecord, bool, error) {
	if err := g.validateMonth(month); err != nil {
		return AdjustmentRecord{}, false, err
	}
	if newAmount <= 0 {
		return AdjustmentRecord{}, false, ErrInvalidAmount
	}

	for i := range g.Ledger.Bids {
		bid := &g.Ledger.Bids[i]
		if bid.Month != month || bid.MemberID != memberID {
			continue
		}
		record := AdjustmentRecord{
			Month:      month,
			MemberID:   memberID,
			OldAmount:  bid.Amount,
			NewAmount:  newAmount,
			AdjustedAt: now,
		}
		bid.Amount = newAmount
		g.Ledger.BidAdjustments = append(g.Ledger.BidAdjustments, record)
		return record, true, nil
	}
	return AdjustmentRecord{}, false, nil
}

// RecordContribution appends a payment as given. It is not reconciled against the installment.
func (g *Group) RecordContribution(memberID string, month MonthRef, year int, amount float64, now time.Time) (Contribution, error) {
	if month.Backdated || month.Number < 1 {
		return Contribution{}, fmt.Errorf("%w: %s", ErrInvalidMonth, month)
	}
	if amount <= 0 {
		return Contribution{}, ErrInvalidAmount
	}

	contribution := Contribution{MemberID: memberID, Month: month, Year: year, Amount: amount, PaidAt: now}
	g.Ledger.Contributions = append(g.Ledger.Contributions, contribution)
	return contribution, nil
}

// HasContribution reports whether memberID paid for the given month. A zero year matches any year.
func (g Group) HasContribution(memberID string, month, year int) bool {
	_, ok := g.findContribution(memberID, month, year)
	return ok
}

func (g Group) findContribution(memberID string, month, year int) (Contribution, bool) {
	for _, c := range g.Ledger.Contributions {
		if c.MemberID != memberID || !c.Month.Is(month) {
			continue
		}
		if year != 0 && c.CalendarYear() != year {
			continue
		}
		return c, true
	}
	return Contribution{}, false
}

// ApplyMissedPaymentPenalty appends a capped penalty and bumps the member's warning.
// It does not check whether the member was already penalized for the same month.
func (g *Group) ApplyMissedPaymentPenalty(memberID string, missedAmount float64, month, year int, reason string, now time.Time) (Penalty, Warning, error) {
	if missedAmount <= 0 {
		return Penalty{}, Warning{}, ErrInvalidAmount
	}
	if month < 0 {
		return Penalty{}, Warning{}, ErrInvalidMonth
	}

	penalty := Penalty{
		MemberID:  memberID,
		Amount:    PenaltyFor(missedAmount),
		Month:     month,
		Year:      year,
		Reason:    reason,
		CreatedAt: now,
	}
	g.Ledger.Penalties = append(g.Ledger.Penalties, penalty)

	for i := range g.Ledger.Warnings {
		if g.Ledger.Warnings[i].MemberID == memberID {
			g.Ledger.Warnings[i].Count++
			return penalty, g.Ledger.Warnings[i], nil
		}
	}
	warning := Warning{MemberID: memberID, Count: 1, Month: month}
	g.Ledger.Warnings = append(g.Ledger.Warnings, warning)
	return penalty, warning, nil
}

func (g Group) WarningFor(memberID string) (Warning, bool) {
	for _, w := range g.Ledger.Warnings {
		if w.MemberID == memberID {
			return w, true
		}
	}
	return Warning{}, false
}

// RemoveMember drops a participant that has reached the warning threshold.
// Past distributions and pending bids are left as they are.
func (g *Group) RemoveMember(memberID string) error {
	warning, _ := g.WarningFor(memberID)
	if warning.Count < RemovalWarningThreshold {
		return fmt.Errorf("%w: member %s has %d", ErrInsufficientWarnings, memberID, warning.Count)
	}

	idx := slices.Index(g.Ledger.Participants, memberID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrMemberNotFound, memberID)
	}
	g.Ledger.Participants = slices.Delete(g.Ledger.Participants, idx, idx+1)
	return nil
}

func (g *Group) RequestToJoin(memberID string) error {
	if g.IsParticipant(memberID) || slices.Contains(g.Ledger.JoinRequests, memberID) {
		return fmt.Errorf("%w: join %s", ErrDuplicateRequest, memberID)
	}
	g.Ledger.JoinRequests = append(g.Ledger.JoinRequests, memberID)
	return nil
}

// ApproveJoinRequest moves a pending requester into participants.
func (g *Group) ApproveJoinRequest(memberID string) error {
	idx := slices.Index(g.Ledger.JoinRequests, memberID)
	if idx < 0 {
		return fmt.Errorf("%w: no join request from %s", ErrMemberNotFound, memberID)
	}
	if g.IsParticipant(memberID) {
		g.Ledger.JoinRequests = slices.Delete(g.Ledger.JoinRequests, idx, idx+1)
		return nil
	}
	if len(g.Ledger.Participants) >= g.Capacity {
		return fmt.Errorf("%w: %d/%d", ErrCapacityReached, len(g.Ledger.Participants), g.Capacity)
	}

	g.Ledger.JoinRequests = slices.Delete(g.Ledger.JoinRequests, idx, idx+1)
	g.Ledger.Participants = append(g.Ledger.Participants, memberID)
	return nil
}

func (g Group) lateralIndex(memberID string) int {
	return slices.IndexFunc(g.Ledger.LateralMembers, func(m LateralMember) bool {
		return m.MemberID == memberID
	})
}

func (g *Group) RequestLateralJoin(memberID string) error {
	if slices.Contains(g.Ledger.LateralRequests, memberID) || g.lateralIndex(memberID) >= 0 {
		return fmt.Errorf("%w: lateral %s", ErrDuplicateRequest, memberID)
	}
	g.Ledger.LateralRequests = append(g.Ledger.LateralRequests, memberID)
	return nil
}

// ApproveLateralJoin moves a request into the lateral member list and returns the backdated amount owed
// for months already drawn. Participants are untouched, so capacity does not apply. The due is
// informational and is not stored.
func (g *Group) ApproveLateralJoin(memberID string, now time.Time) (float64, error) {
	idx := slices.Index(g.Ledger.LateralRequests, memberID)
	if idx < 0 {
		return 0, fmt.Errorf("%w: no lateral request from %s", ErrMemberNotFound, memberID)
	}
	if g.lateralIndex(memberID) >= 0 {
		return 0, fmt.Errorf("%w: %s is already a lateral member", ErrDuplicateRequest, memberID)
	}

	g.Ledger.LateralRequests = slices.Delete(g.Ledger.LateralRequests, idx, idx+1)
	g.Ledger.LateralMembers = append(g.Ledger.LateralMembers, LateralMember{MemberID: memberID, ApprovedAt: now})
	return BackdatedDue(len(g.Ledger.MonthlyDraw), g.Capacity, g.TotalAmount), nil
}

// RecordLateralPayment settles a lateral member's backdated dues once. The amount is not checked against the due.
func (g *Group) RecordLateralPayment(memberID string, amount float64, now time.Time) (Contribution, error) {
	if amount <= 0 {
		return Contribution{}, ErrInvalidAmount
	}
	idx := g.lateralIndex(memberID)
	if idx < 0 {
		return Contribution{}, fmt.Errorf("%w: %s is not a lateral member", ErrMemberNotFound, memberID)
	}
	lateral := &g.Ledger.LateralMembers[idx]
	if lateral.PaidBackdated {
		return Contribution{}, fmt.Errorf("%w: %s", ErrBackdatedAlreadyPaid, memberID)
	}

	paidAt := now
	lateral.PaidBackdated = true
	lateral.PaidAt = &paidAt

	contribution := Contribution{MemberID: memberID, Month: Backdated(), Amount: amount, PaidAt: now}
	g.Ledger.Contributions = append(g.Ledger.Contributions, contribution)
	return contribution, nil
}

// CompensateOrganizer appends a compensation entry without any cap.
func (g *Group) CompensateOrganizer(month int, amount float64, now time.Time) (CompensationRecord, error) {
	if err := g.validateMonth(month); err != nil {
		return CompensationRecord{}, err
	}
	if amount <= 0 {
		return CompensationRecord{}, ErrInvalidAmount
	}

	record := CompensationRecord{Month: month, Amount: amount, RecordedAt: now}
	g.Ledger.OrganizerCompensations = append(g.Ledger.OrganizerCompensations, record)
	return record, nil
}
