// internal/affiliate/errors.go
package affiliate

import (
	"errors"
	"fmt"

	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
)

var (
	ErrInvalidRate          = errors.New("invalid commission rate")
	ErrRateBelowMinCap      = errors.New("rate below affiliate minimum cap")
	ErrRateExceedsMaxCap    = errors.New("rate exceeds affiliate maximum cap")
	ErrInvalidReferralLevel = errors.New("invalid referral level")
	ErrCircularReferral     = errors.New("affiliate cannot refer itself")
	ErrParentNotFound       = errors.New("parent affiliate not found")
	ErrInvalidRateCaps      = errors.New("invalid rate caps")

	ErrAuthorityMismatch = fmt.Errorf("%w: affiliate authority mismatch", ledger.ErrUnauthorized)
	ErrRateUpdateTooSoon = fmt.Errorf("%w: commission rate changed less than a day ago", ledger.ErrRetryLater)
)
