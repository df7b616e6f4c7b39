package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
)

type LateralInput struct {
	GroupID  string
	MemberID string
	ActorID  string
}

type LateralPaymentInput struct {
	GroupID  string
	MemberID string
	Amount   float64
	ActorID  string
}

// LateralService admits members after the cycle has started and collects what they owe for past months.
type LateralService struct {
	groups  chitgroup.Repository
	effects *SideEffects
	now     func() time.Time
}

func NewLateralService(groups chitgroup.Repository, effects *SideEffects) *LateralService {
	return &LateralService{
		groups:  groups,
		effects: effects,
		now:     time.Now,
	}
}

func (s *LateralService) RequestLateralJoin(ctx context.Context, input LateralInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LateralService.RequestLateralJoin")
	defer span.End()

	memberID, err := requireMember(input.MemberID)
	if err != nil {
		return err
	}

	updated, err := mutateGroup(ctx, s.groups, input.GroupID, func(g *chitgroup.Group) error {
		return g.RequestLateralJoin(memberID)
	})
	if err != nil {
		return err
	}

	s.effects.run(ctx, s.effects.record(activity.TypeLateralRequest, updated.ID, actorOr(input.ActorID, memberID),
		fmt.Sprintf("User %s requested lateral join", memberID)))
	return nil
}

// ApproveLateralJoin returns the backdated amount the member owes. The amount is computed from the
// months drawn so far and is not stored.
func (s *LateralService) ApproveLateralJoin(ctx context.Context, input LateralInput) (float64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LateralService.ApproveLateralJoin")
	defer span.End()

	memberID, err := requireMember(input.MemberID)
	if err != nil {
		return 0, err
	}

	var due float64
	updated, err := mutateGroup(ctx, s.groups, input.GroupID, func(g *chitgroup.Group) error {
		amount, err := g.ApproveLateralJoin(memberID, s.now().UTC())
		due = amount
		return err
	})
	if err != nil {
		return 0, err
	}

	s.effects.run(ctx, s.effects.record(activity.TypeLateralApprove, updated.ID, input.ActorID,
		fmt.Sprintf("User %s approved with due ₹%s", memberID, formatAmount(due))))
	return due, nil
}

func (s *LateralService) RecordLateralPayment(ctx context.Context, input LateralPaymentInput) (chitgroup.Contribution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LateralService.RecordLateralPayment")
	defer span.End()

	memberID, err := requireMember(input.MemberID)
	if err != nil {
		return chitgroup.Contribution{}, err
	}

	var recorded chitgroup.Contribution
	updated, err := mutateGroup(ctx, s.groups, input.GroupID, func(g *chitgroup.Group) error {
		c, err := g.RecordLateralPayment(memberID, input.Amount, s.now().UTC())
		recorded = c
		return err
	})
	if err != nil {
		return chitgroup.Contribution{}, err
	}

	s.effects.run(ctx, s.effects.record(activity.TypeLateralPayment, updated.ID, actorOr(input.ActorID, memberID),
		fmt.Sprintf("User %s paid backdated ₹%s", memberID, formatAmount(recorded.Amount))))
	return recorded, nil
}

func actorOr(actorID, fallback string) string {
	if strings.TrimSpace(actorID) != "" {
		return actorID
	}
	return fallback
}
