package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
)

const defaultPenaltyReason = "Missed payment"

// errNothingToPenalize aborts an automatic penalty whose member paid or left after the group was read.
var errNothingToPenalize = errors.New("nothing to penalize")

type RecordContributionInput struct {
	GroupID  string
	MemberID string
	Month    int
	Year     int
	Amount   float64
	ActorID  string
}

type PenalizeInput struct {
	GroupID      string
	MemberID     string
	MissedAmount float64
	Month        int
	Year         int
	Reason       string
	ActorID      string
}

type PenaltyResult struct {
	Penalty chitgroup.Penalty
	Warning chitgroup.Warning
}

type RemoveMemberInput struct {
	GroupID  string
	MemberID string
	ActorID  string
}

type ContributionService struct {
	groups  chitgroup.Repository
	effects *SideEffects
	now     func() time.Time
}

func NewContributionService(groups chitgroup.Repository, effects *SideEffects) *ContributionService {
	return &ContributionService{
		groups:  groups,
		effects: effects,
		now:     time.Now,
	}
}

// RecordContribution stores a payment as reported. A zero year is taken from the current date.
func (s *ContributionService) RecordContribution(ctx context.Context, input RecordContributionInput) (chitgroup.Contribution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContributionService.RecordContribution")
	defer span.End()

	memberID, err := requireMember(input.MemberID)
	if err != nil {
		return chitgroup.Contribution{}, err
	}
	now := s.now().UTC()
	year := input.Year
	if year == 0 {
		year = now.Year()
	}

	var recorded chitgroup.Contribution
	updated, err := mutateGroup(ctx, s.groups, input.GroupID, func(g *chitgroup.Group) error {
		c, err := g.RecordContribution(memberID, chitgroup.Month(input.Month), year, input.Amount, now)
		recorded = c
		return err
	})
	if err != nil {
		return chitgroup.Contribution{}, err
	}

	actorID := input.ActorID
	if strings.TrimSpace(actorID) == "" {
		actorID = memberID
	}
	s.effects.run(ctx, s.effects.record(activity.TypeRepay, updated.ID, actorID,
		fmt.Sprintf("User %s repaid ₹%s for month %s", memberID, formatAmount(recorded.Amount), recorded.Month)))
	return recorded, nil
}

// DetectAndPenalizeMissedPayment applies a penalty on the organizer's word. Calling it twice for the
// same month penalizes twice.
func (s *ContributionService) DetectAndPenalizeMissedPayment(ctx context.Context, input PenalizeInput) (PenaltyResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContributionService.DetectAndPenalizeMissedPayment")
	defer span.End()

	memberID, err := requireMember(input.MemberID)
	if err != nil {
		return PenaltyResult{}, err
	}
	if input.MissedAmount <= 0 {
		return PenaltyResult{}, fmt.Errorf("%w: missed amount must be greater than zero", ErrInvalidInput)
	}

	now := s.now().UTC()
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		reason = defaultPenaltyReason
	}

	var result PenaltyResult
	updated, err := mutateGroup(ctx, s.groups, input.GroupID, func(g *chitgroup.Group) error {
		penalty, warning, err := g.ApplyMissedPaymentPenalty(memberID, input.MissedAmount, input.Month, input.Year, reason, now)
		result = PenaltyResult{Penalty: penalty, Warning: warning}
		return err
	})
	if err != nil {
		return PenaltyResult{}, err
	}

	s.effects.run(ctx,
		s.effects.record(activity.TypePenaltyApplied, updated.ID, input.ActorID,
			fmt.Sprintf("Applied penalty of ₹%s to member %s for missing ₹%s",
				formatAmount(result.Penalty.Amount), memberID, formatAmount(input.MissedAmount))),
		s.effects.notifyPenalty(updated, memberID, input.MissedAmount, result.Penalty.Amount, false),
	)
	return result, nil
}

// penalizeUnpaid is the reconciliation path. It re-checks membership and payment under the group lock
// and reports false when there was nothing to do.
func (s *ContributionService) penalizeUnpaid(ctx context.Context, groupID, memberID string, month, year int, now time.Time) (bool, error) {
	var (
		result PenaltyResult
		missed float64
	)
	updated, err := s.groups.Update(ctx, groupID, func(g *chitgroup.Group) error {
		if !g.IsParticipant(memberID) || g.HasContribution(memberID, month, year) {
			return errNothingToPenalize
		}
		missed = g.MonthlyContribution()
		penalty, warning, err := g.ApplyMissedPaymentPenalty(memberID, missed, month, year, defaultPenaltyReason, now)
		result = PenaltyResult{Penalty: penalty, Warning: warning}
		return err
	})
	if errors.Is(err, errNothingToPenalize) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("penalize %s in group %s: %w", memberID, groupID, classify(err))
	}

	s.effects.run(ctx,
		s.effects.record(activity.TypePenaltyAppliedAuto, updated.ID, activity.SystemActor,
			fmt.Sprintf("Automatically applied penalty of ₹%s to member %s for missing ₹%s",
				formatAmount(result.Penalty.Amount), memberID, formatAmount(missed))),
		s.effects.notifyPenalty(updated, memberID, missed, result.Penalty.Amount, true),
	)
	return true, nil
}

// RemoveMember drops a participant once they have collected enough warnings.
func (s *ContributionService) RemoveMember(ctx context.Context, input RemoveMemberInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContributionService.RemoveMember")
	defer span.End()

	memberID, err := requireMember(input.MemberID)
	if err != nil {
		return err
	}

	updated, err := mutateGroup(ctx, s.groups, input.GroupID, func(g *chitgroup.Group) error {
		return g.RemoveMember(memberID)
	})
	if err != nil {
		return err
	}

	s.effects.run(ctx, s.effects.record(activity.TypeRemoveMember, updated.ID, input.ActorID,
		fmt.Sprintf("User %s removed", memberID)))
	return nil
}

func (s *ContributionService) GetStatus(ctx context.Context, groupID string) (chitgroup.Status, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContributionService.GetStatus")
	defer span.End()

	group, err := loadGroup(ctx, s.groups, groupID)
	if err != nil {
		return chitgroup.Status{}, err
	}
	return group.Status(), nil
}

func (s *ContributionService) GetHistory(ctx context.Context, groupID string) ([]chitgroup.MonthHistory, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContributionService.GetHistory")
	defer span.End()

	group, err := loadGroup(ctx, s.groups, groupID)
	if err != nil {
		return nil, err
	}
	return group.History(), nil
}

func (s *ContributionService) GetWarnings(ctx context.Context, groupID string) ([]chitgroup.Warning, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContributionService.GetWarnings")
	defer span.End()

	group, err := loadGroup(ctx, s.groups, groupID)
	if err != nil {
		return nil, err
	}
	return append([]chitgroup.Warning{}, group.Ledger.Warnings...), nil
}
