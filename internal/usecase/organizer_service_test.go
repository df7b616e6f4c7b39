package usecase

import (
	"testing"

	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizerService_AdjustBid(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-1", "A", "B")
	_, err := env.bidding.PlaceBid(t.Context(), PlaceBidInput{GroupID: "g-1", MemberID: "A", Amount: 9000, Month: 1})
	require.NoError(t, err)

	result, err := env.organizer.AdjustBid(t.Context(), AdjustBidInput{GroupID: "g-1", Month: 1, MemberID: "A", NewAmount: 8000})
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, 9000.0, result.Adjustment.OldAmount)

	stored := env.mustGroup(t, "g-1")
	assert.Equal(t, 8000.0, stored.Ledger.Bids[0].Amount)
	require.Len(t, stored.Ledger.BidAdjustments, 1)
}

func TestOrganizerService_AdjustBid_NoMatchStillPersists(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-1", "A")
	before := env.mustGroup(t, "g-1").Version

	result, err := env.organizer.AdjustBid(t.Context(), AdjustBidInput{GroupID: "g-1", Month: 2, MemberID: "A", NewAmount: 8000})
	require.NoError(t, err)
	assert.False(t, result.Applied)

	stored := env.mustGroup(t, "g-1")
	assert.Equal(t, before+1, stored.Version)
	assert.Empty(t, stored.Ledger.BidAdjustments)
}

func TestOrganizerService_CompensateOrganizer(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.seedGroup(t, "g-1", "A")

	for _, amount := range []float64{1500, 99999} {
		_, err := env.organizer.CompensateOrganizer(t.Context(), CompensateInput{GroupID: "g-1", Month: 3, Amount: amount})
		require.NoError(t, err)
	}
	_, err := env.organizer.CompensateOrganizer(t.Context(), CompensateInput{GroupID: "g-1", Month: 0, Amount: 100})
	require.ErrorIs(t, err, chitgroup.ErrInvalidMonth)

	stored := env.mustGroup(t, "g-1")
	require.Len(t, stored.Ledger.OrganizerCompensations, 2)
	assert.Equal(t, fixedNow, stored.Ledger.OrganizerCompensations[0].RecordedAt)
}
