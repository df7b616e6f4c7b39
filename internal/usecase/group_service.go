package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	"github.com/riskibarqy/chit-fund/internal/domain/member"
	"github.com/riskibarqy/chit-fund/internal/platform/id"
	"github.com/sourcegraph/conc/iter"
)

const defaultActivityLimit = 50

type CreateGroupInput struct {
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
}

// UpdateGroupInput carries metadata changes. Nil fields are left untouched.
type UpdateGroupInput struct {
	GroupID     string
	ActorID     string
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	PaymentDay  *int
}

// GroupView is a group with its lifecycle phase projected at read time.
type GroupView struct {
	Group  chitgroup.Group
	Status chitgroup.Phase
}

type ListGroupsInput struct {
	OrganizerID string
	Limit       int
	Offset      int
}

type ParticipantSummary struct {
	chitgroup.ParticipantMonth
	Name string
}

type DistributionInput struct {
	FundValue         float64
	BidAmount         float64
	CommissionPercent float64
	Members           int
}

type GroupService struct {
	groups     chitgroup.Repository
	activities activity.Repository
	effects    *SideEffects
	ids        id.Generator
	now        func() time.Time
}

func NewGroupService(
	groups chitgroup.Repository,
	activities activity.Repository,
	effects *SideEffects,
	ids id.Generator,
) *GroupService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &GroupService{
		groups:     groups,
		activities: activities,
		effects:    effects,
		ids:        ids,
		now:        time.Now,
	}
}

func (s *GroupService) Create(ctx context.Context, input CreateGroupInput) (GroupView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.Create")
	defer span.End()

	groupID, err := s.ids.NewID()
	if err != nil {
		return GroupView{}, fmt.Errorf("generate group id: %w", err)
	}

	now := s.now().UTC()
	group := chitgroup.Group{
		ID:                 groupID,
		Name:               input.Name,
		OrganizerID:        strings.TrimSpace(input.OrganizerID),
		Capacity:           input.Capacity,
		DurationMonths:     input.DurationMonths,
		TotalAmount:        input.TotalAmount,
		TicketValue:        input.TicketValue,
		CommissionRate:     input.CommissionRate,
		ContributionAmount: input.ContributionAmount,
		PaymentDay:         input.PaymentDay,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		Description:        input.Description,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	group.Normalize()
	if err := group.Validate(); err != nil {
		return GroupView{}, classify(err)
	}

	if err := s.groups.Create(ctx, group); err != nil {
		return GroupView{}, fmt.Errorf("create group: %w", classify(err))
	}

	s.effects.run(ctx, s.effects.record(activity.TypeCreateGroup, group.ID, group.OrganizerID,
		"Created group with ID: "+group.ID))

	stored, err := loadGroup(ctx, s.groups, group.ID)
	if err != nil {
		return GroupView{}, err
	}
	return s.view(stored), nil
}

func (s *GroupService) Get(ctx context.Context, groupID string) (GroupView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.Get")
	defer span.End()

	group, err := loadGroup(ctx, s.groups, groupID)
	if err != nil {
		return GroupView{}, err
	}
	return s.view(group), nil
}

func (s *GroupService) List(ctx context.Context, input ListGroupsInput) ([]GroupView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.List")
	defer span.End()

	if input.Limit < 0 || input.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", ErrInvalidInput)
	}

	groups, err := s.groups.List(ctx, chitgroup.ListFilter{
		OrganizerID: strings.TrimSpace(input.OrganizerID),
		Limit:       input.Limit,
		Offset:      input.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	out := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, s.view(g))
	}
	return out, nil
}

// UpdateMetadata changes descriptive fields and schedule dates. Fixed terms cannot be changed here.
func (s *GroupService) UpdateMetadata(ctx context.Context, input UpdateGroupInput) (GroupView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.UpdateMetadata")
	defer span.End()

	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return GroupView{}, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}

	updated, err := mutateGroup(ctx, s.groups, input.GroupID, func(g *chitgroup.Group) error {
		if input.Name != nil {
			g.Name = *input.Name
		}
		if input.Description != nil {
			g.Description = *input.Description
		}
		if input.PaymentDay != nil {
			g.PaymentDay = *input.PaymentDay
		}
		if input.StartDate != nil {
			g.StartDate = *input.StartDate
			if input.EndDate == nil {
				g.EndDate = time.Time{}
			}
		}
		if input.EndDate != nil {
			g.EndDate = *input.EndDate
		}
		g.Normalize()
		return g.Validate()
	})
	if err != nil {
		return GroupView{}, err
	}

	s.effects.run(ctx, s.effects.record(activity.TypeUpdateGroup, updated.ID, input.ActorID,
		"Updated group with ID: "+updated.ID))
	return s.view(updated), nil
}

// Delete hides the group from every read and mutation. Its ledger is kept.
func (s *GroupService) Delete(ctx context.Context, groupID, actorID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.Delete")
	defer span.End()

	deletedAt := s.now().UTC()
	deleted, err := mutateGroup(ctx, s.groups, groupID, func(g *chitgroup.Group) error {
		g.DeletedAt = &deletedAt
		return nil
	})
	if err != nil {
		return err
	}

	s.effects.run(ctx, s.effects.record(activity.TypeDeleteGroup, deleted.ID, actorID,
		"Deleted group with ID: "+deleted.ID))
	return nil
}

func (s *GroupService) RequestToJoin(ctx context.Context, groupID, memberID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.RequestToJoin")
	defer span.End()

	memberID, err := requireMember(memberID)
	if err != nil {
		return err
	}

	updated, err := mutateGroup(ctx, s.groups, groupID, func(g *chitgroup.Group) error {
		return g.RequestToJoin(memberID)
	})
	if err != nil {
		return err
	}

	s.effects.run(ctx, s.effects.record(activity.TypeJoinRequest, updated.ID, memberID,
		fmt.Sprintf("User %s requested to join", memberID)))
	return nil
}

func (s *GroupService) ListJoinRequests(ctx context.Context, groupID string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.ListJoinRequests")
	defer span.End()

	group, err := loadGroup(ctx, s.groups, groupID)
	if err != nil {
		return nil, err
	}
	return append([]string{}, group.Ledger.JoinRequests...), nil
}

func (s *GroupService) ApproveJoinRequest(ctx context.Context, groupID, memberID, actorID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.ApproveJoinRequest")
	defer span.End()

	memberID, err := requireMember(memberID)
	if err != nil {
		return err
	}

	updated, err := mutateGroup(ctx, s.groups, groupID, func(g *chitgroup.Group) error {
		return g.ApproveJoinRequest(memberID)
	})
	if err != nil {
		return err
	}

	s.effects.run(ctx, s.effects.record(activity.TypeApproveJoin, updated.ID, actorID,
		fmt.Sprintf("User %s approved to join", memberID)))
	return nil
}

// ListParticipants resolves each participant through the member directory. Lookups that fail
// yield a profile carrying only the id and the name "Unknown".
func (s *GroupService) ListParticipants(ctx context.Context, groupID string) ([]member.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.ListParticipants")
	defer span.End()

	group, err := loadGroup(ctx, s.groups, groupID)
	if err != nil {
		return nil, err
	}

	return iter.Map(group.Ledger.Participants, func(memberID *string) member.Profile {
		return s.displayProfile(ctx, *memberID)
	}), nil
}

func (s *GroupService) Plan(ctx context.Context, groupID string) (chitgroup.Plan, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.Plan")
	defer span.End()

	group, err := loadGroup(ctx, s.groups, groupID)
	if err != nil {
		return chitgroup.Plan{}, err
	}

	plan, err := chitgroup.MonthlyPlan(group.TotalAmount, group.CommissionRate, group.DurationMonths)
	if err != nil {
		return chitgroup.Plan{}, classify(err)
	}
	return plan, nil
}

func (s *GroupService) MonthlySummary(ctx context.Context, groupID string, month int) ([]ParticipantSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.MonthlySummary")
	defer span.End()

	group, err := loadGroup(ctx, s.groups, groupID)
	if err != nil {
		return nil, err
	}

	rows, err := group.MonthlySummary(month)
	if err != nil {
		return nil, classify(err)
	}

	return iter.Map(rows, func(row *chitgroup.ParticipantMonth) ParticipantSummary {
		return ParticipantSummary{
			ParticipantMonth: *row,
			Name:             s.displayProfile(ctx, row.MemberID).Name,
		}
	}), nil
}

func (s *GroupService) CalculateDistribution(ctx context.Context, input DistributionInput) (chitgroup.Distribution, error) {
	_, span := startUsecaseSpan(ctx, "usecase.GroupService.CalculateDistribution")
	defer span.End()

	out, err := chitgroup.CalculateDistribution(input.FundValue, input.BidAmount, input.CommissionPercent, input.Members)
	if err != nil {
		return chitgroup.Distribution{}, classify(err)
	}
	return out, nil
}

func (s *GroupService) ListActivities(ctx context.Context, groupID string, limit int) ([]activity.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.ListActivities")
	defer span.End()

	group, err := loadGroup(ctx, s.groups, groupID)
	if err != nil {
		return nil, err
	}
	if s.activities == nil {
		return []activity.Entry{}, nil
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	entries, err := s.activities.ListByGroup(ctx, group.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return entries, nil
}

func (s *GroupService) view(g chitgroup.Group) GroupView {
	return GroupView{Group: g, Status: chitgroup.ProjectStatus(g, s.now())}
}

func (s *GroupService) displayProfile(ctx context.Context, memberID string) member.Profile {
	profile, ok := s.effects.profile(ctx, memberID)
	if !ok || strings.TrimSpace(profile.Name) == "" {
		profile.Name = unknownMemberName
	}
	if profile.ID == "" {
		profile.ID = memberID
	}
	return profile
}
