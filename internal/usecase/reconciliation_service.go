package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	"github.com/riskibarqy/chit-fund/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultReconcileWorkers  = 4
	defaultReconcileInterval = 24 * time.Hour
	reconcilePageSize        = 200
)

type ReconciliationConfig struct {
	Workers           int
	Interval          time.Duration
	DefaultPaymentDay int
}

type ReconcileResult struct {
	GroupsScanned    int   `json:"groups_scanned"`
	GroupsSkipped    int   `json:"groups_skipped"`
	GroupsFailed     int   `json:"groups_failed"`
	PenaltiesApplied int   `json:"penalties_applied"`
	DurationMs       int64 `json:"duration_ms"`
}

// ReconciliationService penalizes participants who have not paid for the current calendar month once
// their group's due date has passed. It goes through the same repository boundary as every other writer.
type ReconciliationService struct {
	groups        chitgroup.Repository
	contributions *ContributionService
	cfg           ReconciliationConfig
	logger        *logging.Logger
	now           func() time.Time
}

func NewReconciliationService(
	groups chitgroup.Repository,
	contributions *ContributionService,
	cfg ReconciliationConfig,
	logger *logging.Logger,
) *ReconciliationService {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultReconcileWorkers
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultReconcileInterval
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReconciliationService{
		groups:        groups,
		contributions: contributions,
		cfg:           cfg,
		logger:        logger.Named("reconciliation"),
		now:           time.Now,
	}
}

// Start waits for the next run boundary, then runs Run on every interval tick until ctx is done.
// Boundaries are counted from local midnight, so a 24h interval fires at 00:00 no matter when the
// process started.
func (s *ReconciliationService) Start(ctx context.Context) {
	first := nextRunAt(s.now(), s.cfg.Interval)
	s.logger.InfoContext(ctx, "reconciliation scheduler started",
		"interval", s.cfg.Interval.String(),
		"first_run", first.Format(time.RFC3339),
	)

	timer := time.NewTimer(first.Sub(s.now()))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "reconciliation scheduler stopped")
		return
	case <-timer.C:
		s.runScheduled(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "reconciliation scheduler stopped")
			return
		case <-ticker.C:
			s.runScheduled(ctx)
		}
	}
}

func (s *ReconciliationService) runScheduled(ctx context.Context) {
	result, err := s.Run(ctx, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "reconciliation run failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "reconciliation run completed",
		"groups_scanned", result.GroupsScanned,
		"groups_skipped", result.GroupsSkipped,
		"groups_failed", result.GroupsFailed,
		"penalties_applied", result.PenaltiesApplied,
		"duration_ms", result.DurationMs,
	)
}

// nextRunAt returns the first instant after now that is a whole number of intervals past now's local midnight.
func nextRunAt(now time.Time, interval time.Duration) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	steps := now.Sub(midnight)/interval + 1
	return midnight.Add(steps * interval)
}

// Run walks every group that is not closed at now. A failing group is logged and counted; it never
// stops the others.
func (s *ReconciliationService) Run(ctx context.Context, now time.Time) (ReconcileResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.Run")
	defer span.End()

	started := time.Now()
	groups, err := s.openGroups(ctx, now)
	if err != nil {
		return ReconcileResult{}, err
	}

	var (
		skipped   atomic.Int32
		failed    atomic.Int32
		penalties atomic.Int32
	)

	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, group := range groups {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			applied, due, err := s.reconcileGroup(ctx, group, now)
			penalties.Add(int32(applied))
			switch {
			case err != nil:
				failed.Add(1)
				s.logger.WarnContext(ctx, "reconcile group failed", "group_id", group.ID, "error", err)
			case !due:
				skipped.Add(1)
			}
		}); err != nil {
			workers.Done()
			return ReconcileResult{}, fmt.Errorf("submit group to worker pool: %w", err)
		}
	}
	workers.Wait()

	result := ReconcileResult{
		GroupsScanned:    len(groups),
		GroupsSkipped:    int(skipped.Load()),
		GroupsFailed:     int(failed.Load()),
		PenaltiesApplied: int(penalties.Load()),
		DurationMs:       time.Since(started).Milliseconds(),
	}
	span.SetAttributes(
		attribute.Int("reconcile.groups_scanned", result.GroupsScanned),
		attribute.Int("reconcile.penalties_applied", result.PenaltiesApplied),
	)
	return result, nil
}

// openGroups pages by offset; a group created mid-run shifts later pages, so IDs already seen are skipped.
func (s *ReconciliationService) openGroups(ctx context.Context, now time.Time) ([]chitgroup.Group, error) {
	out := make([]chitgroup.Group, 0)
	seen := make(map[string]struct{})
	for offset := 0; ; offset += reconcilePageSize {
		page, err := s.groups.List(ctx, chitgroup.ListFilter{Limit: reconcilePageSize, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("list groups: %w", err)
		}
		for _, g := range page {
			if _, dup := seen[g.ID]; dup {
				continue
			}
			seen[g.ID] = struct{}{}
			if chitgroup.ProjectStatus(g, now) != chitgroup.PhaseClosed {
				out = append(out, g)
			}
		}
		if len(page) < reconcilePageSize {
			return out, nil
		}
	}
}

// reconcileGroup reports how many penalties it applied and whether the group's due date had passed.
// Member failures are collected so one member does not hide the rest.
func (s *ReconciliationService) reconcileGroup(ctx context.Context, group chitgroup.Group, now time.Time) (int, bool, error) {
	due := chitgroup.DueDate(now, group.EffectivePaymentDay(s.cfg.DefaultPaymentDay))
	if now.Before(due) {
		return 0, false, nil
	}

	month, year := int(now.Month()), now.Year()
	applied := 0
	var firstErr error
	for _, memberID := range group.Ledger.Participants {
		if group.HasContribution(memberID, month, year) {
			continue
		}
		ok, err := s.contributions.penalizeUnpaid(ctx, group.ID, memberID, month, year, now.UTC())
		if err != nil {
			s.logger.WarnContext(ctx, "automatic penalty failed", "group_id", group.ID, "member_id", memberID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			applied++
		}
	}
	return applied, true, firstErr
}
