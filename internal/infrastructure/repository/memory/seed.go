package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
)

const DemoGroupID = "demo-office-chit"

// SeedGroups returns a demo group that is already two months into its cycle.
func SeedGroups(now time.Time) []chitgroup.Group {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -2, 0)
	g := chitgroup.Group{
		ID:             DemoGroupID,
		Name:           "Demo Office Chit",
		OrganizerID:    "demo-organizer",
		Capacity:       5,
		DurationMonths: 5,
		TotalAmount:    50000,
		CommissionRate: 5,
		PaymentDay:     chitgroup.DefaultPaymentDay,
		StartDate:      start,
		Description:    "Seeded for local development",
		CreatedAt:      start,
		UpdatedAt:      start,
	}
	g.Ledger.Participants = []string{"demo-a", "demo-b", "demo-c", "demo-d"}
	g.Ledger.Bids = []chitgroup.Bid{
		{MemberID: "demo-a", Amount: 9000, Month: 1, PlacedAt: start.AddDate(0, 0, 2)},
		{MemberID: "demo-b", Amount: 8500, Month: 1, PlacedAt: start.AddDate(0, 0, 3)},
	}
	g.Ledger.MonthlyDraw = []string{"demo-b"}
	g.Normalize()
	return []chitgroup.Group{g}
}

// Seed stores groups, skipping ones that already exist.
func (r *GroupRepository) Seed(ctx context.Context, groups []chitgroup.Group) error {
	for _, g := range groups {
		if _, exists := r.slot(g.ID); exists {
			continue
		}
		if err := r.Create(ctx, g); err != nil {
			return err
		}
	}
	return nil
}
