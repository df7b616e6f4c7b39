package cache

import (
	"context"

	"github.com/riskibarqy/chit-fund/internal/domain/member"
	basecache "github.com/riskibarqy/chit-fund/internal/platform/cache"
)

const memberKeyPrefix = "member:id:"

// MemberDirectory is a read-through cache in front of a member.Directory.
// Lookup failures, including not found, are not cached.
type MemberDirectory struct {
	next  member.Directory
	cache *basecache.Store[member.Profile]
}

func NewMemberDirectory(next member.Directory, cache *basecache.Store[member.Profile]) *MemberDirectory {
	return &MemberDirectory{next: next, cache: cache}
}

func (d *MemberDirectory) GetMember(ctx context.Context, memberID string) (member.Profile, error) {
	return d.cache.GetOrLoad(ctx, memberKeyPrefix+memberID, func(ctx context.Context) (member.Profile, error) {
		return d.next.GetMember(ctx, memberID)
	})
}

// Invalidate drops a cached profile, e.g. after the member changed contact details.
func (d *MemberDirectory) Invalidate(ctx context.Context, memberID string) {
	d.cache.Delete(ctx, memberKeyPrefix+memberID)
}
