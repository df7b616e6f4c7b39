package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	qb "github.com/riskibarqy/chit-fund/internal/platform/querybuilder"
)

const activityLogsTable = "activity_logs"

type activityLogTableModel struct {
	ID           string    `db:"id"`
	ActivityType string    `db:"activity_type"`
	Details      string    `db:"details"`
	ActorID      string    `db:"actor_id"`
	GroupID      string    `db:"group_id"`
	OccurredAt   time.Time `db:"occurred_at"`
}

var activityLogColumns = qb.Columns(activityLogTableModel{})

// ActivityLogRepository writes append-only activity rows.
type ActivityLogRepository struct {
	db *sqlx.DB
}

func NewActivityLogRepository(db *sqlx.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Append(ctx context.Context, entry activity.Entry) error {
	query, args, err := qb.InsertModel(activityLogsTable, activityLogTableModel{
		ID:           entry.ID,
		ActivityType: string(entry.Type),
		Details:      entry.Details,
		ActorID:      entry.ActorID,
		GroupID:      entry.GroupID,
		OccurredAt:   entry.OccurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("build insert activity log query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

func (r *ActivityLogRepository) ListByGroup(ctx context.Context, groupID string, limit int) ([]activity.Entry, error) {
	query, args, err := qb.Select(activityLogColumns...).
		From(activityLogsTable).
		Where(qb.Eq("group_id", groupID)).
		OrderBy("occurred_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list activity logs query: %w", err)
	}

	var rows []activityLogTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}

	out := make([]activity.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, activity.Entry{
			ID:         row.ID,
			Type:       activity.Type(row.ActivityType),
			Details:    row.Details,
			ActorID:    row.ActorID,
			GroupID:    row.GroupID,
			OccurredAt: row.OccurredAt,
		})
	}
	return out, nil
}
