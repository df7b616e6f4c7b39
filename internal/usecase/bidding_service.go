package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
)

type PlaceBidInput struct {
	GroupID  string
	MemberID string
	Amount   float64
	Month    int
}

type RunDrawInput struct {
	GroupID string
	Month   int
	ActorID string
}

type BiddingService struct {
	groups  chitgroup.Repository
	effects *SideEffects
	now     func() time.Time
}

func NewBiddingService(groups chitgroup.Repository, effects *SideEffects) *BiddingService {
	return &BiddingService{
		groups:  groups,
		effects: effects,
		now:     time.Now,
	}
}

func (s *BiddingService) PlaceBid(ctx context.Context, input PlaceBidInput) (chitgroup.Bid, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BiddingService.PlaceBid")
	defer span.End()

	memberID, err := requireMember(input.MemberID)
	if err != nil {
		return chitgroup.Bid{}, err
	}

	var placed chitgroup.Bid
	updated, err := mutateGroup(ctx, s.groups, input.GroupID, func(g *chitgroup.Group) error {
		bid, err := g.PlaceBid(memberID, input.Amount, input.Month, s.now().UTC())
		placed = bid
		return err
	})
	if err != nil {
		return chitgroup.Bid{}, err
	}

	s.effects.run(ctx, s.effects.record(activity.TypePlaceBid, updated.ID, memberID,
		fmt.Sprintf("User %s bid ₹%s for month %d", memberID, formatAmount(placed.Amount), placed.Month)))
	return placed, nil
}

// RunDraw settles month and notifies the winner. Running it again for the same month replaces the winner.
func (s *BiddingService) RunDraw(ctx context.Context, input RunDrawInput) (chitgroup.DrawResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BiddingService.RunDraw")
	defer span.End()

	var result chitgroup.DrawResult
	updated, err := mutateGroup(ctx, s.groups, input.GroupID, func(g *chitgroup.Group) error {
		drawn, err := g.RunDraw(input.Month)
		result = drawn
		return err
	})
	if err != nil {
		return chitgroup.DrawResult{}, err
	}

	s.effects.run(ctx,
		s.effects.record(activity.TypeRunDraw, updated.ID, input.ActorID,
			fmt.Sprintf("Month %d winner %s", result.Month, result.WinnerID)),
		s.effects.notifyDrawWinner(result.WinnerID, result.WinningBid),
	)
	return result, nil
}
