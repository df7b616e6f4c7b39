package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	"github.com/riskibarqy/chit-fund/internal/domain/member"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("conflict")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// classify tags a domain error with the matching use-case category while keeping the domain error
// matchable. Errors it does not know are returned unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, chitgroup.ErrGroupNotFound),
		errors.Is(err, chitgroup.ErrMemberNotFound),
		errors.Is(err, member.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, chitgroup.ErrInvalidGroup),
		errors.Is(err, chitgroup.ErrInvalidMonth),
		errors.Is(err, chitgroup.ErrInvalidAmount),
		errors.Is(err, chitgroup.ErrBidExceedsPot):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, chitgroup.ErrDuplicateGroup),
		errors.Is(err, chitgroup.ErrCapacityReached),
		errors.Is(err, chitgroup.ErrBackdatedAlreadyPaid),
		errors.Is(err, chitgroup.ErrConcurrentUpdate):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}
