package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	"github.com/riskibarqy/chit-fund/internal/domain/member"
	membermock "github.com/riskibarqy/chit-fund/internal/mocks/domain/member"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validCreateInput() CreateGroupInput {
	return CreateGroupInput{
		Name:           "  Office Chit ",
		OrganizerID:    "org-1",
		Capacity:       4,
		DurationMonths: 4,
		TotalAmount:    40000,
		CommissionRate: 5,
		StartDate:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestGroupService_Create(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	view, err := env.groupSvc.Create(t.Context(), validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, "g-new-1", view.Group.ID)
	assert.Equal(t, "Office Chit", view.Group.Name)
	assert.Equal(t, chitgroup.PhasePending, view.Status)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), view.Group.EndDate)
	assert.Equal(t, 10000.0, view.Group.ContributionAmount)
	assert.Equal(t, []activity.Type{activity.TypeCreateGroup}, env.activityTypes(t, "g-new-1"))

	_, err = env.groupSvc.Create(t.Context(), validCreateInput())
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, chitgroup.ErrDuplicateGroup)
}

func TestGroupService_Create_InvalidTerms(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	input := validCreateInput()
	input.Capacity = 0
	_, err := env.groupSvc.Create(t.Context(), input)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGroupService_GetAndListProjectStatus(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-active", "A")
	closed := chitgroup.Group{
		ID: "g-closed", Name: "Old Chit", OrganizerID: "org-2", Capacity: 2, DurationMonths: 2, TotalAmount: 2000,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	closed.Normalize()
	require.NoError(t, env.groups.Create(t.Context(), closed))

	view, err := env.groupSvc.Get(t.Context(), "g-active")
	require.NoError(t, err)
	assert.Equal(t, chitgroup.PhaseActive, view.Status)

	views, err := env.groupSvc.List(t.Context(), ListGroupsInput{OrganizerID: "org-2"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, chitgroup.PhaseClosed, views[0].Status)

	_, err = env.groupSvc.List(t.Context(), ListGroupsInput{Limit: -1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGroupService_UpdateMetadataKeepsFixedTerms(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	seeded := env.seedGroup(t, "g-1", "A")

	name := "Renamed Chit"
	day := 12
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	view, err := env.groupSvc.UpdateMetadata(t.Context(), UpdateGroupInput{
		GroupID:    "g-1",
		Name:       &name,
		PaymentDay: &day,
		StartDate:  &start,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed Chit", view.Group.Name)
	assert.Equal(t, 12, view.Group.PaymentDay)
	assert.Equal(t, start.AddDate(0, 10, 0), view.Group.EndDate)
	assert.Equal(t, seeded.Capacity, view.Group.Capacity)
	assert.Equal(t, seeded.TotalAmount, view.Group.TotalAmount)

	badDay := 31
	_, err = env.groupSvc.UpdateMetadata(t.Context(), UpdateGroupInput{GroupID: "g-1", PaymentDay: &badDay})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 12, env.mustGroup(t, "g-1").PaymentDay)
}

func TestGroupService_DeleteHidesGroup(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-1", "A")

	require.NoError(t, env.groupSvc.Delete(t.Context(), "g-1", "org-1"))

	_, err := env.groupSvc.Get(t.Context(), "g-1")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = env.bidding.PlaceBid(t.Context(), PlaceBidInput{GroupID: "g-1", MemberID: "A", Amount: 10, Month: 1})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGroupService_JoinWorkflow(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-1", "A", "B", "C", "D")

	require.NoError(t, env.groupSvc.RequestToJoin(t.Context(), "g-1", "E"))
	require.NoError(t, env.groupSvc.RequestToJoin(t.Context(), "g-1", "F"))
	require.ErrorIs(t, env.groupSvc.RequestToJoin(t.Context(), "g-1", "A"), chitgroup.ErrDuplicateRequest)

	requests, err := env.groupSvc.ListJoinRequests(t.Context(), "g-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"E", "F"}, requests)

	require.NoError(t, env.groupSvc.ApproveJoinRequest(t.Context(), "g-1", "E", "org-1"))
	err = env.groupSvc.ApproveJoinRequest(t.Context(), "g-1", "F", "org-1")
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, chitgroup.ErrCapacityReached)
	require.ErrorIs(t, env.groupSvc.ApproveJoinRequest(t.Context(), "g-1", "Z", "org-1"), ErrNotFound)

	stored := env.mustGroup(t, "g-1")
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, stored.Ledger.Participants)
	assert.Equal(t, []string{"F"}, stored.Ledger.JoinRequests)
}

func TestGroupService_ListParticipantsFallsBackToUnknown(t *testing.T) {
	directory := membermock.NewDirectory(t)
	env := newTestEnv(t, directory, nil)
	env.seedGroup(t, "g-1", "A", "B")

	directory.On("GetMember", mock.Anything, "A").Return(member.Profile{ID: "A", Name: "Asha", Email: "asha@example.com"}, nil).Once()
	directory.On("GetMember", mock.Anything, "B").Return(member.Profile{}, member.ErrNotFound).Once()

	profiles, err := env.groupSvc.ListParticipants(t.Context(), "g-1")
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Asha", profiles[0].Name)
	assert.Equal(t, member.Profile{ID: "B", Name: "Unknown"}, profiles[1])
}

func TestGroupService_MonthlySummary(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-1", "A", "B")
	_, err := env.contributions.RecordContribution(t.Context(), RecordContributionInput{GroupID: "g-1", MemberID: "A", Month: 1, Amount: 5000})
	require.NoError(t, err)

	rows, err := env.groupSvc.MonthlySummary(t.Context(), "g-1", 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Unknown", rows[0].Name)
	assert.False(t, rows[0].HasPaid)
	assert.Equal(t, 5000.0, rows[0].Installment)
	assert.Equal(t, 5000.0, rows[0].RemainingBalance)
	assert.Equal(t, 10000.0, rows[1].RemainingBalance)

	_, err = env.groupSvc.MonthlySummary(t.Context(), "g-1", 11)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGroupService_PlanAndDistribution(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-1")

	plan, err := env.groupSvc.Plan(t.Context(), "g-1")
	require.NoError(t, err)
	assert.Len(t, plan.Months, 10)

	dist, err := env.groupSvc.CalculateDistribution(t.Context(), DistributionInput{
		FundValue: 100000, BidAmount: 80000, CommissionPercent: 5, Members: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 20000.0, dist.Difference)
	assert.Equal(t, 1000.0, dist.Commission)
	assert.Equal(t, 1900.0, dist.IndividualShare)

	_, err = env.groupSvc.CalculateDistribution(t.Context(), DistributionInput{
		FundValue: 100000, BidAmount: 100000, CommissionPercent: 5, Members: 10,
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGroupService_ListActivities(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-1", "A")
	require.NoError(t, env.groupSvc.RequestToJoin(t.Context(), "g-1", "B"))
	require.NoError(t, env.groupSvc.ApproveJoinRequest(t.Context(), "g-1", "B", "org-1"))

	entries, err := env.groupSvc.ListActivities(t.Context(), "g-1", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, activity.TypeApproveJoin, entries[0].Type)
	assert.Equal(t, "org-1", entries[0].ActorID)
	assert.Equal(t, fixedNow, entries[0].OccurredAt)
}
