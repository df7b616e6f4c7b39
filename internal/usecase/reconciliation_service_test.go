package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	"github.com/riskibarqy/chit-fund/internal/domain/member"
	chitgroupmock "github.com/riskibarqy/chit-fund/internal/mocks/domain/chitgroup"
	membermock "github.com/riskibarqy/chit-fund/internal/mocks/domain/member"
	notificationmock "github.com/riskibarqy/chit-fund/internal/mocks/domain/notification"
	"github.com/riskibarqy/chit-fund/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReconciler(env *testEnv, groups chitgroup.Repository) *ReconciliationService {
	return NewReconciliationService(groups, env.contributions, ReconciliationConfig{Workers: 2, DefaultPaymentDay: 5}, logging.NewNop())
}

func TestReconciliationService_Run_PenalizesUnpaidParticipants(t *testing.T) {
	directory := membermock.NewDirectory(t)
	notifier := notificationmock.NewNotifier(t)
	env := newTestEnv(t, directory, notifier)

	env.seedGroup(t, "g-1", "A", "B")
	later := env.seedGroup(t, "g-2", "C")
	_, err := env.groups.Update(t.Context(), later.ID, func(g *chitgroup.Group) error {
		g.PaymentDay = 15
		return nil
	})
	require.NoError(t, err)
	old := chitgroup.Group{
		ID: "g-3", Name: "Closed Chit", OrganizerID: "org-1", Capacity: 1, DurationMonths: 1, TotalAmount: 1000,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	old.Ledger.Participants = []string{"Z"}
	old.Normalize()
	require.NoError(t, env.groups.Create(t.Context(), old))

	_, err = env.contributions.RecordContribution(t.Context(), RecordContributionInput{GroupID: "g-1", MemberID: "A", Month: 3, Amount: 10000})
	require.NoError(t, err)

	directory.On("GetMember", mock.Anything, "B").Return(member.Profile{ID: "B", Email: "bala@example.com", Name: "Bala"}, nil).Once()
	directory.On("GetMember", mock.Anything, "org-1").Return(member.Profile{ID: "org-1", Email: "org@example.com", Name: "Ravi"}, nil).Once()
	notifier.On("Notify", mock.Anything, "bala@example.com", "Chit Fund: Missed Payment Penalty",
		"Hello Bala,\n\nYou missed your contribution of ₹10000 for Chit g-1. A penalty of ₹1000 has been automatically applied to your account.\n\nPlease pay at the earliest to avoid further action.").
		Return(nil).
		Once()
	notifier.On("Notify", mock.Anything, "org@example.com", "Chit Fund Alert: Member Missed Payment",
		"Hello Ravi,\n\nMember Bala (ID: B) missed their contribution of ₹10000 for Chit g-1 and was automatically penalized ₹1000.").
		Return(nil).
		Once()

	result, err := newReconciler(env, env.groups).Run(t.Context(), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 2, result.GroupsScanned)
	assert.Equal(t, 1, result.GroupsSkipped)
	assert.Equal(t, 0, result.GroupsFailed)
	assert.Equal(t, 1, result.PenaltiesApplied)

	stored := env.mustGroup(t, "g-1")
	require.Len(t, stored.Ledger.Penalties, 1)
	penalty := stored.Ledger.Penalties[0]
	assert.Equal(t, "B", penalty.MemberID)
	assert.Equal(t, 1000.0, penalty.Amount)
	assert.Equal(t, 3, penalty.Month)
	assert.Equal(t, 2026, penalty.Year)

	types := env.activityTypes(t, "g-1")
	assert.Equal(t, activity.TypePenaltyAppliedAuto, types[len(types)-1])
	assert.Empty(t, env.mustGroup(t, "g-2").Ledger.Penalties)
	assert.Empty(t, env.mustGroup(t, "g-3").Ledger.Penalties)
}

func TestReconciliationService_Run_SkipsBeforeDueDate(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-1", "A", "B")

	result, err := newReconciler(env, env.groups).Run(t.Context(), time.Date(2026, 3, 4, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 1, result.GroupsSkipped)
	assert.Equal(t, 0, result.PenaltiesApplied)
	assert.Empty(t, env.mustGroup(t, "g-1").Ledger.Penalties)
}

func TestReconciliationService_Run_ManyGroups(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	for i := 0; i < 25; i++ {
		env.seedGroup(t, fmt.Sprintf("g-%02d", i), "A", "B", "C")
	}

	result, err := newReconciler(env, env.groups).Run(t.Context(), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 25, result.GroupsScanned)
	assert.Equal(t, 75, result.PenaltiesApplied)
	for i := 0; i < 25; i++ {
		stored := env.mustGroup(t, fmt.Sprintf("g-%02d", i))
		assert.Len(t, stored.Ledger.Warnings, 3)
	}
}

func TestReconciliationService_Run_IsolatesGroupFailuresUsingMockery(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	repo := chitgroupmock.NewRepository(t)

	groups := []chitgroup.Group{
		env.seedGroup(t, "g-1", "A"),
		env.seedGroup(t, "g-2", "B"),
	}
	contributions := NewContributionService(repo, env.effects)
	svc := NewReconciliationService(repo, contributions, ReconciliationConfig{Workers: 2}, logging.NewNop())

	repo.
		On("List", mock.Anything, chitgroup.ListFilter{Limit: reconcilePageSize}).
		Return(groups, nil).
		Once()
	repo.
		On("Update", mock.Anything, "g-1", mock.Anything).
		Return(chitgroup.Group{}, errors.New("connection reset")).
		Once()
	repo.
		On("Update", mock.Anything, "g-2", mock.Anything).
		Return(func(_ context.Context, _ string, fn chitgroup.MutateFunc) (chitgroup.Group, error) {
			working := groups[1].Clone()
			if err := fn(&working); err != nil {
				return chitgroup.Group{}, err
			}
			return working, nil
		}, nil).
		Once()

	result, err := svc.Run(t.Context(), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 2, result.GroupsScanned)
	assert.Equal(t, 1, result.GroupsFailed)
	assert.Equal(t, 1, result.PenaltiesApplied)
}

func TestReconciliationService_Run_ListFailure(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	repo := chitgroupmock.NewRepository(t)
	svc := NewReconciliationService(repo, NewContributionService(repo, env.effects), ReconciliationConfig{}, nil)

	repo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	_, err := svc.Run(t.Context(), fixedNow)
	require.Error(t, err)
}

func TestReconciliationService_StartStopsWithContext(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	svc := NewReconciliationService(env.groups, env.contributions, ReconciliationConfig{Interval: time.Hour}, logging.NewNop())

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestReconciliationService_StartRunsAtNextMidnight(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-1", "A", "B")

	svc := NewReconciliationService(env.groups, env.contributions, ReconciliationConfig{DefaultPaymentDay: 5}, logging.NewNop())
	beforeMidnight := time.Date(2026, 3, 10, 23, 59, 59, 950_000_000, time.UTC)
	svc.now = func() time.Time { return beforeMidnight }

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go svc.Start(ctx)

	assert.Eventually(t, func() bool {
		g, ok, err := env.groups.GetByID(context.Background(), "g-1")
		return err == nil && ok && len(g.Ledger.Penalties) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNextRunAt(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	tests := []struct {
		name     string
		now      time.Time
		interval time.Duration
		want     time.Time
	}{
		{
			name:     "daily fires at next midnight",
			now:      time.Date(2026, 3, 10, 9, 30, 0, 0, loc),
			interval: 24 * time.Hour,
			want:     time.Date(2026, 3, 11, 0, 0, 0, 0, loc),
		},
		{
			name:     "exactly midnight waits a full day",
			now:      time.Date(2026, 3, 10, 0, 0, 0, 0, loc),
			interval: 24 * time.Hour,
			want:     time.Date(2026, 3, 11, 0, 0, 0, 0, loc),
		},
		{
			name:     "hourly fires at next hour",
			now:      time.Date(2026, 3, 10, 9, 30, 0, 0, loc),
			interval: time.Hour,
			want:     time.Date(2026, 3, 10, 10, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(nextRunAt(tt.now, tt.interval)))
		})
	}
}

func TestReconciliationService_Run_SkipsGroupsRepeatedAcrossPages(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	repo := chitgroupmock.NewRepository(t)
	svc := NewReconciliationService(repo, NewContributionService(repo, env.effects), ReconciliationConfig{DefaultPaymentDay: 5}, logging.NewNop())

	newGroup := func(id string) chitgroup.Group {
		g := chitgroup.Group{
			ID: id, Name: "Chit " + id, OrganizerID: "org-1", Capacity: 5, DurationMonths: 10, TotalAmount: 50000,
			StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		g.Ledger.Participants = []string{"A"}
		g.Normalize()
		return g
	}
	first := make([]chitgroup.Group, 0, reconcilePageSize)
	for i := 0; i < reconcilePageSize; i++ {
		first = append(first, newGroup(fmt.Sprintf("g-%03d", i)))
	}
	second := []chitgroup.Group{first[reconcilePageSize-1], newGroup("g-last")}

	repo.On("List", mock.Anything, chitgroup.ListFilter{Limit: reconcilePageSize}).Return(first, nil).Once()
	repo.On("List", mock.Anything, chitgroup.ListFilter{Limit: reconcilePageSize, Offset: reconcilePageSize}).Return(second, nil).Once()

	result, err := svc.Run(t.Context(), time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, reconcilePageSize+1, result.GroupsScanned)
	assert.Equal(t, reconcilePageSize+1, result.GroupsSkipped)
}
