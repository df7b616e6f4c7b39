package chitgroup

import (
	"fmt"
	"math"
)

const (
	PenaltyRate             = 0.10
	PenaltyCap              = 2000.0
	RemovalWarningThreshold = 3
	DefaultPaymentDay       = 5
	MaxPaymentDay           = 28
)

// PenaltyFor returns the missed-payment penalty: ten percent of the missed amount, capped.
func PenaltyFor(missedAmount float64) float64 {
	return math.Min(missedAmount*PenaltyRate, PenaltyCap)
}

// DrawResult is the outcome of one monthly draw. The distribution is informational only.
type DrawResult struct {
	Month        int
	WinnerID     string
	WinningBid   float64
	Commission   float64
	Pool         float64
	PerMember    float64
	Distribution []Share
}

type Share struct {
	MemberID string
	Amount   float64
}

// SettleDraw computes commission and per-member share for a winning bid.
func SettleDraw(totalAmount, commissionRate, winningBid float64, capacity int) (commission, pool, perMember float64) {
	commission = totalAmount * commissionRate / 100
	pool = totalAmount - winningBid - commission
	if capacity > 0 {
		perMember = pool / float64(capacity)
	}
	return commission, pool, perMember
}

// BackdatedDue is what a lateral member owes for the months already drawn.
func BackdatedDue(elapsedMonths, capacity int, totalAmount float64) float64 {
	if capacity < 1 || elapsedMonths < 1 {
		return 0
	}
	return float64(elapsedMonths) * (totalAmount / float64(capacity))
}

// Distribution is a standalone what-if split of a pot after a bid, with commission charged on the difference.
type Distribution struct {
	FundValue         float64
	BidAmount         float64
	Difference        float64
	CommissionPercent float64
	Commission        float64
	NetAmount         float64
	Members           int
	IndividualShare   float64
}

func CalculateDistribution(fundValue, bidAmount, commissionPercent float64, members int) (Distribution, error) {
	if fundValue <= 0 || bidAmount <= 0 {
		return Distribution{}, ErrInvalidAmount
	}
	if members < 1 {
		return Distribution{}, fmt.Errorf("%w: members must be at least 1", ErrInvalidGroup)
	}
	if commissionPercent < 0 || commissionPercent > 100 {
		return Distribution{}, fmt.Errorf("%w: commission percent must be within 0..100", ErrInvalidGroup)
	}
	if bidAmount >= fundValue {
		return Distribution{}, fmt.Errorf("%w: bid %.2f, fund %.2f", ErrBidExceedsPot, bidAmount, fundValue)
	}

	diff := fundValue - bidAmount
	commission := commissionPercent * diff / 100
	net := diff - commission
	return Distribution{
		FundValue:         fundValue,
		BidAmount:         bidAmount,
		Difference:        diff,
		CommissionPercent: commissionPercent,
		Commission:        commission,
		NetAmount:         net,
		Members:           members,
		IndividualShare:   net / float64(members),
	}, nil
}

type PlanMonth struct {
	Month       int
	Amount      float64
	Commission  float64
	AmountGiven float64
}

type Plan struct {
	Months      []PlanMonth
	TotalProfit float64
}

// MonthlyPlan projects the pot per month: it opens at total*(1-months/200) and grows by one percent of total each month.
func MonthlyPlan(totalAmount, commissionRate float64, months int) (Plan, error) {
	if totalAmount <= 0 {
		return Plan{}, ErrInvalidAmount
	}
	if months < 1 {
		return Plan{}, ErrInvalidMonth
	}

	pot := totalAmount * (1 - float64(months)/200)
	paidOut := 0.0
	plan := Plan{Months: make([]PlanMonth, 0, months)}
	for month := 1; month <= months; month++ {
		paidOut += pot
		commission := pot * commissionRate / 100
		plan.Months = append(plan.Months, PlanMonth{
			Month:       month,
			Amount:      pot,
			Commission:  commission,
			AmountGiven: pot - commission,
		})
		pot += 0.01 * totalAmount
	}
	plan.TotalProfit = totalAmount*float64(months) - paidOut
	return plan, nil
}
