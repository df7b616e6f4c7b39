package chitgroup

import "context"

// MutateFunc changes a group in place. Returning an error discards every change it made.
type MutateFunc func(g *Group) error

type ListFilter struct {
	OrganizerID    string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// Repository persists group aggregates. Soft-deleted groups are invisible to GetByID and Update.
// Update runs fn under an exclusive per-group boundary and stores the whole aggregate atomically,
// or nothing when fn fails.
type Repository interface {
	Create(ctx context.Context, group Group) error
	GetByID(ctx context.Context, groupID string) (Group, bool, error)
	List(ctx context.Context, filter ListFilter) ([]Group, error)
	Update(ctx context.Context, groupID string, fn MutateFunc) (Group, error)
}
