package chitgroup

import crerr "github.com/cockroachdb/errors"

var (
	ErrGroupNotFound        = crerr.New("chit group not found")
	ErrDuplicateGroup       = crerr.New("chit group name already exists")
	ErrConcurrentUpdate     = crerr.New("chit group was modified concurrently")
	ErrNoBids               = crerr.New("no bids for month")
	ErrInsufficientWarnings = crerr.New("member has fewer than three warnings")
	ErrDuplicateRequest     = crerr.New("request already exists")
	ErrMemberNotFound       = crerr.New("member not found in group")
	ErrCapacityReached      = crerr.New("group capacity reached")
	ErrBackdatedAlreadyPaid = crerr.New("backdated dues already paid")
	ErrInvalidMonth         = crerr.New("invalid month")
	ErrInvalidAmount        = crerr.New("amount must be greater than zero")
	ErrBidExceedsPot        = crerr.New("bid must not exceed the pot value")
	ErrInvalidGroup         = crerr.New("invalid group")
)
