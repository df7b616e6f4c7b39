package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedGroup(t *testing.T, repo *GroupRepository, id, name string) {
	t.Helper()
	g := chitgroup.Group{
		ID:             id,
		Name:           name,
		OrganizerID:    "org-1",
		Capacity:       100,
		DurationMonths: 12,
		TotalAmount:    120000,
		CommissionRate: 5,
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	g.Normalize()
	require.NoError(t, repo.Create(context.Background(), g))
}

func TestGroupRepository_ConcurrentUpdatesAreSerialized(t *testing.T) {
	repo := NewGroupRepository()
	seedGroup(t, repo, "g-1", "Office Chit")

	const bidders = 50
	var wg sync.WaitGroup
	wg.Add(bidders)
	for i := 0; i < bidders; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := repo.Update(context.Background(), "g-1", func(g *chitgroup.Group) error {
				_, err := g.PlaceBid(fmt.Sprintf("m-%d", i), float64(1000+i), 1, time.Now())
				return err
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, ok, err := repo.GetByID(context.Background(), "g-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Ledger.Bids, bidders)
	assert.Equal(t, int64(bidders+1), got.Version)
}

func TestGroupRepository_FailedMutationLeavesStateUnchanged(t *testing.T) {
	repo := NewGroupRepository()
	seedGroup(t, repo, "g-1", "Office Chit")

	errBoom := errors.New("boom")
	_, err := repo.Update(context.Background(), "g-1", func(g *chitgroup.Group) error {
		g.Ledger.Participants = append(g.Ledger.Participants, "ghost")
		_, _ = g.PlaceBid("ghost", 500, 1, time.Now())
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	got, _, err := repo.GetByID(context.Background(), "g-1")
	require.NoError(t, err)
	assert.Empty(t, got.Ledger.Participants)
	assert.Empty(t, got.Ledger.Bids)
	assert.Equal(t, int64(1), got.Version)
}

func TestGroupRepository_ReturnedGroupIsACopy(t *testing.T) {
	repo := NewGroupRepository()
	seedGroup(t, repo, "g-1", "Office Chit")

	got, _, err := repo.GetByID(context.Background(), "g-1")
	require.NoError(t, err)
	got.Ledger.Participants = append(got.Ledger.Participants, "leak")

	again, _, err := repo.GetByID(context.Background(), "g-1")
	require.NoError(t, err)
	assert.Empty(t, again.Ledger.Participants)
}

func TestGroupRepository_DuplicateNames(t *testing.T) {
	repo := NewGroupRepository()
	seedGroup(t, repo, "g-1", "Office Chit")
	seedGroup(t, repo, "g-2", "Family Chit")

	err := repo.Create(context.Background(), chitgroup.Group{ID: "g-3", Name: " office chit "})
	require.ErrorIs(t, err, chitgroup.ErrDuplicateGroup)

	_, err = repo.Update(context.Background(), "g-2", func(g *chitgroup.Group) error {
		g.Name = "Office Chit"
		return nil
	})
	require.ErrorIs(t, err, chitgroup.ErrDuplicateGroup)

	_, err = repo.Update(context.Background(), "g-2", func(g *chitgroup.Group) error {
		g.Name = "Neighbours Chit"
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), chitgroup.Group{ID: "g-4", Name: "Family Chit"}))
}

func TestGroupRepository_SoftDeleteHidesGroup(t *testing.T) {
	repo := NewGroupRepository()
	seedGroup(t, repo, "g-1", "Office Chit")
	seedGroup(t, repo, "g-2", "Family Chit")

	_, err := repo.Update(context.Background(), "g-1", func(g *chitgroup.Group) error {
		now := time.Now()
		g.DeletedAt = &now
		return nil
	})
	require.NoError(t, err)

	_, ok, err := repo.GetByID(context.Background(), "g-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Update(context.Background(), "g-1", func(*chitgroup.Group) error { return nil })
	require.ErrorIs(t, err, chitgroup.ErrGroupNotFound)

	items, err := repo.List(context.Background(), chitgroup.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "g-2", items[0].ID)

	items, err = repo.List(context.Background(), chitgroup.ListFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	require.NoError(t, repo.Create(context.Background(), chitgroup.Group{ID: "g-3", Name: "office chit"}))
}

func TestActivityLogRepository_ListByGroupNewestFirst(t *testing.T) {
	repo := NewActivityLogRepository()
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, activityEntry("a1", "g-1")))
	require.NoError(t, repo.Append(ctx, activityEntry("a2", "g-2")))
	require.NoError(t, repo.Append(ctx, activityEntry("a3", "g-1")))

	items, err := repo.ListByGroup(ctx, "g-1", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a3", items[0].ID)

	items, err = repo.ListByGroup(ctx, "g-1", 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func activityEntry(id, groupID string) activity.Entry {
	return activity.Entry{ID: id, GroupID: groupID, Type: activity.TypeRunDraw, ActorID: "system", OccurredAt: time.Now()}
}

func TestGroupRepository_SeedIsIdempotent(t *testing.T) {
	repo := NewGroupRepository()
	groups := SeedGroups(time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC))

	require.NoError(t, repo.Seed(context.Background(), groups))
	require.NoError(t, repo.Seed(context.Background(), groups))

	got, ok, err := repo.GetByID(context.Background(), DemoGroupID)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, got.Validate())
	winner, drawn := got.WinnerOf(1)
	assert.True(t, drawn)
	assert.Equal(t, "demo-b", winner)
}
