package activity

import "context"

// Repository appends and reads activity entries. Entries are never updated.
type Repository interface {
	Append(ctx context.Context, entry Entry) error
	ListByGroup(ctx context.Context, groupID string, limit int) ([]Entry, error)
}
