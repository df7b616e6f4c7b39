package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
)

// GroupRepository keeps aggregates in process. Each group has its own mutex so updates on one group
// never wait on another.
type GroupRepository struct {
	mu    sync.RWMutex
	items map[string]*groupSlot
	names map[string]string
	now   func() time.Time
}

type groupSlot struct {
	mu    sync.Mutex
	group chitgroup.Group
}

func NewGroupRepository() *GroupRepository {
	return &GroupRepository{
		items: make(map[string]*groupSlot),
		names: make(map[string]string),
		now:   time.Now,
	}
}

func (r *GroupRepository) Create(_ context.Context, group chitgroup.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[group.ID]; exists {
		return chitgroup.ErrDuplicateGroup
	}
	nameKey := normalizeName(group.Name)
	if _, exists := r.names[nameKey]; exists {
		return chitgroup.ErrDuplicateGroup
	}

	stored := group.Clone()
	stored.Version = 1
	r.items[group.ID] = &groupSlot{group: stored}
	r.names[nameKey] = group.ID
	return nil
}

func (r *GroupRepository) GetByID(_ context.Context, groupID string) (chitgroup.Group, bool, error) {
	slot, ok := r.slot(groupID)
	if !ok {
		return chitgroup.Group{}, false, nil
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.group.IsDeleted() {
		return chitgroup.Group{}, false, nil
	}
	return slot.group.Clone(), true, nil
}

func (r *GroupRepository) List(_ context.Context, filter chitgroup.ListFilter) ([]chitgroup.Group, error) {
	r.mu.RLock()
	slots := make([]*groupSlot, 0, len(r.items))
	for _, slot := range r.items {
		slots = append(slots, slot)
	}
	r.mu.RUnlock()

	out := make([]chitgroup.Group, 0, len(slots))
	for _, slot := range slots {
		slot.mu.Lock()
		item := slot.group.Clone()
		slot.mu.Unlock()

		if item.IsDeleted() && !filter.IncludeDeleted {
			continue
		}
		if filter.OrganizerID != "" && item.OrganizerID != filter.OrganizerID {
			continue
		}
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []chitgroup.Group{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Update applies fn to a copy under the group's lock and swaps it in only when fn succeeds.
func (r *GroupRepository) Update(ctx context.Context, groupID string, fn chitgroup.MutateFunc) (chitgroup.Group, error) {
	slot, ok := r.slot(groupID)
	if !ok {
		return chitgroup.Group{}, chitgroup.ErrGroupNotFound
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return chitgroup.Group{}, err
	}
	if slot.group.IsDeleted() {
		return chitgroup.Group{}, chitgroup.ErrGroupNotFound
	}

	working := slot.group.Clone()
	if err := fn(&working); err != nil {
		return chitgroup.Group{}, err
	}

	oldName := normalizeName(slot.group.Name)
	newName := normalizeName(working.Name)
	switch {
	case working.IsDeleted():
		r.release(groupID, oldName)
	case oldName != newName:
		if err := r.rename(groupID, oldName, newName); err != nil {
			return chitgroup.Group{}, err
		}
	}

	working.ID = slot.group.ID
	working.Version = slot.group.Version + 1
	working.UpdatedAt = r.now()
	slot.group = working
	return working.Clone(), nil
}

func (r *GroupRepository) slot(groupID string) (*groupSlot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot, ok := r.items[groupID]
	return slot, ok
}

func (r *GroupRepository) rename(groupID, oldName, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, exists := r.names[newName]; exists && owner != groupID {
		return chitgroup.ErrDuplicateGroup
	}
	delete(r.names, oldName)
	r.names[newName] = groupID
	return nil
}

// release frees a deleted group's name for reuse.
func (r *GroupRepository) release(groupID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, exists := r.names[name]; exists && owner == groupID {
		delete(r.names, name)
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
