package member

import (
	"context"

	crerr "github.com/cockroachdb/errors"
)

var ErrNotFound = crerr.New("member not found")

// Profile is the contact data used to shape notifications.
type Profile struct {
	ID    string
	Email string
	Name  string
}

// Directory resolves member ids to profiles.
type Directory interface {
	GetMember(ctx context.Context, memberID string) (Profile, error)
}
