package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/chit-fund/internal/domain/activity"
)

type ActivityLogRepository struct {
	mu      sync.RWMutex
	entries []activity.Entry
}

func NewActivityLogRepository() *ActivityLogRepository {
	return &ActivityLogRepository{}
}

func (r *ActivityLogRepository) Append(_ context.Context, entry activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	return nil
}

// ListByGroup returns the newest entries first.
func (r *ActivityLogRepository) ListByGroup(_ context.Context, groupID string, limit int) ([]activity.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]activity.Entry, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].GroupID != groupID {
			continue
		}
		out = append(out, r.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
