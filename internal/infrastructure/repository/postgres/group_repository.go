package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	"github.com/riskibarqy/chit-fund/internal/platform/logging"
	qb "github.com/riskibarqy/chit-fund/internal/platform/querybuilder"
)

const (
	groupsTable              = "chit_groups"
	defaultUpdateMaxAttempts = 3
)

var errVersionConflict = errors.New("chit group version conflict")

// GroupRepository stores one row per group with the ledger as a jsonb document.
// Updates lock the row with SELECT ... FOR UPDATE and write back guarded by the version column.
type GroupRepository struct {
	db          *sqlx.DB
	maxAttempts int
	logger      *logging.Logger
}

func NewGroupRepository(db *sqlx.DB, maxAttempts int, logger *logging.Logger) *GroupRepository {
	if maxAttempts < 1 {
		maxAttempts = defaultUpdateMaxAttempts
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &GroupRepository{db: db, maxAttempts: maxAttempts, logger: logger}
}

func (r *GroupRepository) Create(ctx context.Context, group chitgroup.Group) error {
	model, err := groupInsertFromDomain(group)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel(groupsTable, model)
	if err != nil {
		return fmt.Errorf("build insert chit group query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return crerr.WithStack(chitgroup.ErrDuplicateGroup)
		}
		return fmt.Errorf("insert chit group: %w", err)
	}
	return nil
}

func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (chitgroup.Group, bool, error) {
	query, args, err := qb.Select(groupColumns...).
		From(groupsTable).
		Where(qb.Eq("id", groupID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return chitgroup.Group{}, false, fmt.Errorf("build get chit group query: %w", err)
	}

	var row groupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return chitgroup.Group{}, false, nil
		}
		return chitgroup.Group{}, false, fmt.Errorf("get chit group: %w", err)
	}

	group, err := groupFromRow(row)
	if err != nil {
		return chitgroup.Group{}, false, err
	}
	return group, true, nil
}

func (r *GroupRepository) List(ctx context.Context, filter chitgroup.ListFilter) ([]chitgroup.Group, error) {
	builder := qb.Select(groupColumns...).From(groupsTable)
	if !filter.IncludeDeleted {
		builder.Where(qb.IsNull("deleted_at"))
	}
	if filter.OrganizerID != "" {
		builder.Where(qb.Eq("organizer_id", filter.OrganizerID))
	}
	query, args, err := builder.
		OrderBy("created_at DESC", "id").
		Limit(filter.Limit).
		Offset(filter.Offset).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list chit groups query: %w", err)
	}

	var rows []groupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list chit groups: %w", err)
	}

	out := make([]chitgroup.Group, 0, len(rows))
	for _, row := range rows {
		group, err := groupFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, group)
	}
	return out, nil
}

// Update retries lock conflicts a bounded number of times before giving up with ErrConcurrentUpdate.
func (r *GroupRepository) Update(ctx context.Context, groupID string, fn chitgroup.MutateFunc) (chitgroup.Group, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		group, err := r.updateOnce(ctx, groupID, fn)
		if err == nil {
			return group, nil
		}
		if !errors.Is(err, errVersionConflict) && !isRetryableTxError(err) {
			return chitgroup.Group{}, err
		}
		lastErr = err
		r.logger.WarnContext(ctx, "chit group update conflict, retrying",
			"group_id", groupID,
			"attempt", attempt,
			"error", err,
		)
		if err := sleepContext(ctx, time.Duration(attempt)*20*time.Millisecond); err != nil {
			return chitgroup.Group{}, err
		}
	}
	return chitgroup.Group{}, crerr.Wrapf(chitgroup.ErrConcurrentUpdate, "group %s after %d attempts: %v", groupID, r.maxAttempts, lastErr)
}

func (r *GroupRepository) updateOnce(ctx context.Context, groupID string, fn chitgroup.MutateFunc) (chitgroup.Group, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return chitgroup.Group{}, fmt.Errorf("begin tx for chit group update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Select(groupColumns...).
		From(groupsTable).
		Where(qb.Eq("id", groupID), qb.IsNull("deleted_at")).
		ForUpdate().
		ToSQL()
	if err != nil {
		return chitgroup.Group{}, fmt.Errorf("build lock chit group query: %w", err)
	}

	var row groupTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return chitgroup.Group{}, crerr.WithStack(chitgroup.ErrGroupNotFound)
		}
		return chitgroup.Group{}, fmt.Errorf("lock chit group: %w", err)
	}

	group, err := groupFromRow(row)
	if err != nil {
		return chitgroup.Group{}, err
	}
	if err := fn(&group); err != nil {
		return chitgroup.Group{}, err
	}

	ledger, err := encodeLedger(group.Ledger)
	if err != nil {
		return chitgroup.Group{}, err
	}

	// fixed terms (capacity, duration, amounts, commission) are never written back
	updateSQL, updateArgs, err := qb.Update(groupsTable).
		Set("name", group.Name).
		Set("description", group.Description).
		Set("start_date", toNullTime(group.StartDate)).
		Set("end_date", toNullTime(group.EndDate)).
		Set("payment_day", group.PaymentDay).
		Set("contribution_amount", group.ContributionAmount).
		Set("ledger", ledger).
		Set("deleted_at", group.DeletedAt).
		SetExpr("version", "version + 1").
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", groupID), qb.Eq("version", row.Version)).
		Returning("version", "updated_at").
		ToSQL()
	if err != nil {
		return chitgroup.Group{}, fmt.Errorf("build update chit group query: %w", err)
	}

	var written struct {
		Version   int64     `db:"version"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	if err := tx.GetContext(ctx, &written, updateSQL, updateArgs...); err != nil {
		if isNotFound(err) {
			return chitgroup.Group{}, errVersionConflict
		}
		if isUniqueViolation(err) {
			return chitgroup.Group{}, crerr.WithStack(chitgroup.ErrDuplicateGroup)
		}
		return chitgroup.Group{}, fmt.Errorf("update chit group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return chitgroup.Group{}, fmt.Errorf("commit chit group update: %w", err)
	}

	group.ID = row.ID
	group.Version = written.Version
	group.UpdatedAt = written.UpdatedAt
	return group, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
