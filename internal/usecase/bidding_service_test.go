package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	"github.com/riskibarqy/chit-fund/internal/domain/member"
	membermock "github.com/riskibarqy/chit-fund/internal/mocks/domain/member"
	notificationmock "github.com/riskibarqy/chit-fund/internal/mocks/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func placeBids(t *testing.T, svc *BiddingService, groupID string, month int, bids map[string]float64, order ...string) {
	t.Helper()
	for _, memberID := range order {
		_, err := svc.PlaceBid(t.Context(), PlaceBidInput{GroupID: groupID, MemberID: memberID, Amount: bids[memberID], Month: month})
		require.NoError(t, err)
	}
}

func TestBiddingService_RunDraw_SettlesAndNotifiesWinner(t *testing.T) {
	directory := membermock.NewDirectory(t)
	notifier := notificationmock.NewNotifier(t)
	env := newTestEnv(t, directory, notifier)
	env.seedGroup(t, "g-1", "A", "B", "C", "D", "E")

	placeBids(t, env.bidding, "g-1", 1, map[string]float64{"A": 9000, "B": 8500, "C": 9200}, "A", "B", "C")

	directory.
		On("GetMember", mock.Anything, "B").
		Return(member.Profile{ID: "B", Email: "bala@example.com", Name: "Bala"}, nil).
		Once()
	notifier.
		On("Notify", mock.Anything, "bala@example.com", "You won the draw!", "Congrats! You won ₹8500").
		Return(nil).
		Once()

	result, err := env.bidding.RunDraw(t.Context(), RunDrawInput{GroupID: "g-1", Month: 1, ActorID: "org-1"})
	require.NoError(t, err)

	assert.Equal(t, "B", result.WinnerID)
	assert.Equal(t, 2500.0, result.Commission)
	assert.Equal(t, 7800.0, result.PerMember)
	assert.Len(t, result.Distribution, 5)

	stored := env.mustGroup(t, "g-1")
	assert.Equal(t, []string{"B"}, stored.Ledger.MonthlyDraw)
	assert.Equal(t, []activity.Type{
		activity.TypePlaceBid, activity.TypePlaceBid, activity.TypePlaceBid, activity.TypeRunDraw,
	}, env.activityTypes(t, "g-1"))
}

func TestBiddingService_RunDraw_NoBids(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-1", "A", "B")

	_, err := env.bidding.RunDraw(t.Context(), RunDrawInput{GroupID: "g-1", Month: 2})
	if !errors.Is(err, chitgroup.ErrNoBids) {
		t.Fatalf("expected ErrNoBids, got %v", err)
	}

	stored := env.mustGroup(t, "g-1")
	assert.Empty(t, stored.Ledger.MonthlyDraw)
	assert.Equal(t, int64(1), stored.Version)
}

func TestBiddingService_RunDraw_SideEffectFailuresAreSwallowed(t *testing.T) {
	directory := membermock.NewDirectory(t)
	notifier := notificationmock.NewNotifier(t)
	env := newTestEnv(t, directory, notifier)
	env.seedGroup(t, "g-1", "A", "B")
	placeBids(t, env.bidding, "g-1", 1, map[string]float64{"A": 9000}, "A")

	directory.On("GetMember", mock.Anything, "A").Return(member.Profile{ID: "A", Email: "a@example.com"}, nil).Once()
	notifier.On("Notify", mock.Anything, "a@example.com", mock.Anything, mock.Anything).
		Return(errors.New("smtp down")).
		Once()

	result, err := env.bidding.RunDraw(t.Context(), RunDrawInput{GroupID: "g-1", Month: 1})
	require.NoError(t, err)
	assert.Equal(t, "A", result.WinnerID)
}

func TestBiddingService_RunDraw_RecoversFromPanickingNotifier(t *testing.T) {
	directory := membermock.NewDirectory(t)
	notifier := notificationmock.NewNotifier(t)
	env := newTestEnv(t, directory, notifier)
	env.seedGroup(t, "g-1", "A")
	placeBids(t, env.bidding, "g-1", 1, map[string]float64{"A": 9000}, "A")

	directory.On("GetMember", mock.Anything, "A").Return(member.Profile{ID: "A", Email: "a@example.com"}, nil).Once()
	notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Panic("template exploded").
		Once()

	_, err := env.bidding.RunDraw(t.Context(), RunDrawInput{GroupID: "g-1", Month: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, env.mustGroup(t, "g-1").Ledger.MonthlyDraw)
}

func TestBiddingService_PlaceBid_Validation(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-1", "A")

	tests := []struct {
		name    string
		input   PlaceBidInput
		wantErr error
	}{
		{name: "missing member", input: PlaceBidInput{GroupID: "g-1", Amount: 100, Month: 1}, wantErr: ErrInvalidInput},
		{name: "month out of range", input: PlaceBidInput{GroupID: "g-1", MemberID: "A", Amount: 100, Month: 11}, wantErr: chitgroup.ErrInvalidMonth},
		{name: "non positive amount", input: PlaceBidInput{GroupID: "g-1", MemberID: "A", Month: 1}, wantErr: ErrInvalidInput},
		{name: "above pot", input: PlaceBidInput{GroupID: "g-1", MemberID: "A", Amount: 60000, Month: 1}, wantErr: chitgroup.ErrBidExceedsPot},
		{name: "unknown group", input: PlaceBidInput{GroupID: "missing", MemberID: "A", Amount: 100, Month: 1}, wantErr: ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.bidding.PlaceBid(context.Background(), tc.input)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	assert.Empty(t, env.mustGroup(t, "g-1").Ledger.Bids)
}

func TestBiddingService_RedrawOverwritesWinner(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-1", "A", "B")
	placeBids(t, env.bidding, "g-1", 1, map[string]float64{"A": 9000}, "A")

	_, err := env.bidding.RunDraw(t.Context(), RunDrawInput{GroupID: "g-1", Month: 1})
	require.NoError(t, err)

	placeBids(t, env.bidding, "g-1", 1, map[string]float64{"B": 7000}, "B")
	result, err := env.bidding.RunDraw(t.Context(), RunDrawInput{GroupID: "g-1", Month: 1})
	require.NoError(t, err)

	assert.Equal(t, "B", result.WinnerID)
	assert.Equal(t, []string{"B"}, env.mustGroup(t, "g-1").Ledger.MonthlyDraw)
}
