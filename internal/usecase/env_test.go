package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	"github.com/riskibarqy/chit-fund/internal/domain/member"
	"github.com/riskibarqy/chit-fund/internal/domain/notification"
	"github.com/riskibarqy/chit-fund/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/chit-fund/internal/platform/id"
	"github.com/riskibarqy/chit-fund/internal/platform/logging"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	groups        *memory.GroupRepository
	activities    *memory.ActivityLogRepository
	effects       *SideEffects
	groupSvc      *GroupService
	bidding       *BiddingService
	contributions *ContributionService
	lateral       *LateralService
	organizer     *OrganizerService
}

func newTestEnv(t *testing.T, directory member.Directory, notifier notification.Notifier) *testEnv {
	t.Helper()

	clock := func() time.Time { return fixedNow }
	groups := memory.NewGroupRepository()
	activities := memory.NewActivityLogRepository()
	effects := NewSideEffects(activities, directory, notifier, nil, time.Second, logging.NewNop())
	effects.now = clock

	env := &testEnv{
		groups:        groups,
		activities:    activities,
		effects:       effects,
		groupSvc:      NewGroupService(groups, activities, effects, id.NewSequenceGenerator("g-new-1", "g-new-2")),
		bidding:       NewBiddingService(groups, effects),
		contributions: NewContributionService(groups, effects),
		lateral:       NewLateralService(groups, effects),
		organizer:     NewOrganizerService(groups, effects),
	}
	env.groupSvc.now = clock
	env.bidding.now = clock
	env.contributions.now = clock
	env.lateral.now = clock
	env.organizer.now = clock
	return env
}

// seedGroup stores a five-seat, ten-month group worth 50000 at 5% commission.
func (e *testEnv) seedGroup(t *testing.T, groupID string, participants ...string) chitgroup.Group {
	t.Helper()

	g := chitgroup.Group{
		ID:             groupID,
		Name:           "Chit " + groupID,
		OrganizerID:    "org-1",
		Capacity:       5,
		DurationMonths: 10,
		TotalAmount:    50000,
		CommissionRate: 5,
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:      fixedNow.AddDate(0, -3, 0),
	}
	g.Ledger.Participants = append([]string(nil), participants...)
	g.Normalize()
	if err := e.groups.Create(context.Background(), g); err != nil {
		t.Fatalf("seed group %s: %v", groupID, err)
	}
	return g
}

func (e *testEnv) mustGroup(t *testing.T, groupID string) chitgroup.Group {
	t.Helper()

	g, ok, err := e.groups.GetByID(context.Background(), groupID)
	if err != nil || !ok {
		t.Fatalf("load group %s: ok=%v err=%v", groupID, ok, err)
	}
	return g
}

func (e *testEnv) activityTypes(t *testing.T, groupID string) []activity.Type {
	t.Helper()

	entries, err := e.activities.ListByGroup(context.Background(), groupID, 0)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	out := make([]activity.Type, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i].Type)
	}
	return out
}
