package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
)

type CompensateInput struct {
	GroupID string
	Month   int
	Amount  float64
	ActorID string
}

type AdjustBidInput struct {
	GroupID   string
	Month     int
	MemberID  string
	NewAmount float64
	ActorID   string
}

// AdjustBidResult reports the recorded adjustment. Applied is false when no bid matched; the group is
// still written in that case.
type AdjustBidResult struct {
	Adjustment chitgroup.AdjustmentRecord
	Applied    bool
}

type OrganizerService struct {
	groups  chitgroup.Repository
	effects *SideEffects
	now     func() time.Time
}

func NewOrganizerService(groups chitgroup.Repository, effects *SideEffects) *OrganizerService {
	return &OrganizerService{
		groups:  groups,
		effects: effects,
		now:     time.Now,
	}
}

func (s *OrganizerService) CompensateOrganizer(ctx context.Context, input CompensateInput) (chitgroup.CompensationRecord, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OrganizerService.CompensateOrganizer")
	defer span.End()

	var record chitgroup.CompensationRecord
	updated, err := mutateGroup(ctx, s.groups, input.GroupID, func(g *chitgroup.Group) error {
		r, err := g.CompensateOrganizer(input.Month, input.Amount, s.now().UTC())
		record = r
		return err
	})
	if err != nil {
		return chitgroup.CompensationRecord{}, err
	}

	s.effects.run(ctx, s.effects.record(activity.TypeCompensate, updated.ID, input.ActorID,
		fmt.Sprintf("Organizer compensated ₹%s for month %d", formatAmount(record.Amount), record.Month)))
	return record, nil
}

func (s *OrganizerService) AdjustBid(ctx context.Context, input AdjustBidInput) (AdjustBidResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OrganizerService.AdjustBid")
	defer span.End()

	memberID, err := requireMember(input.MemberID)
	if err != nil {
		return AdjustBidResult{}, err
	}

	var result AdjustBidResult
	updated, err := mutateGroup(ctx, s.groups, input.GroupID, func(g *chitgroup.Group) error {
		record, applied, err := g.AdjustBid(input.Month, memberID, input.NewAmount, s.now().UTC())
		result = AdjustBidResult{Adjustment: record, Applied: applied}
		return err
	})
	if err != nil {
		return AdjustBidResult{}, err
	}

	s.effects.run(ctx, s.effects.record(activity.TypeAdjustBid, updated.ID, input.ActorID,
		fmt.Sprintf("Bid adjusted to ₹%s for month %d", formatAmount(input.NewAmount), input.Month)))
	return result, nil
}
