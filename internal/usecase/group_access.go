package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
)

func loadGroup(ctx context.Context, repo chitgroup.Repository, groupID string) (chitgroup.Group, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return chitgroup.Group{}, fmt.Errorf("%w: group_id is required", ErrInvalidInput)
	}

	tagGroup(ctx, groupID)

	group, exists, err := repo.GetByID(ctx, groupID)
	if err != nil {
		return chitgroup.Group{}, fmt.Errorf("get group by id: %w", err)
	}
	if !exists {
		return chitgroup.Group{}, fmt.Errorf("%w: group_id=%s", ErrNotFound, groupID)
	}
	return group, nil
}

// mutateGroup runs fn under the repository's per-group boundary and classifies whatever comes back.
func mutateGroup(ctx context.Context, repo chitgroup.Repository, groupID string, fn chitgroup.MutateFunc) (chitgroup.Group, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return chitgroup.Group{}, fmt.Errorf("%w: group_id is required", ErrInvalidInput)
	}

	tagGroup(ctx, groupID)

	updated, err := repo.Update(ctx, groupID, fn)
	if err != nil {
		return chitgroup.Group{}, fmt.Errorf("update group %s: %w", groupID, classify(err))
	}
	return updated, nil
}

func requireMember(memberID string) (string, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return "", fmt.Errorf("%w: member_id is required", ErrInvalidInput)
	}
	return memberID, nil
}
