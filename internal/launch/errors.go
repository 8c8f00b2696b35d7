// internal/launch/errors.go
package launch

import (
	"errors"
	"fmt"

	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidLaunchTime    = errors.New("invalid launch time window")
	ErrInvalidFeeConfig     = errors.New("invalid fee configuration")
	ErrInvalidVestingParams = errors.New("invalid vesting parameters")
	ErrInvalidPricing       = errors.New("invalid pricing parameters")
	ErrInvalidPrice         = errors.New("computed price is zero")
	ErrInvalidAntiBot       = errors.New("invalid anti-bot configuration")
	ErrUnknownPricingModel  = errors.New("unknown pricing model")
	ErrLaunchNotActive      = errors.New("launch is not active")
	ErrMaxSupplyReached     = errors.New("max supply reached")
	ErrPurchaseOutOfRange   = errors.New("purchase amount outside allowed range")
	ErrNoTokensToClaim      = errors.New("no tokens to claim")
	ErrAffiliateUnavailable = errors.New("affiliate processing is not configured")

	ErrAuthorityMismatch = fmt.Errorf("%w: launch authority mismatch", ledger.ErrUnauthorized)
	ErrCooldownActive    = fmt.Errorf("%w: purchase cooldown active", ledger.ErrRetryLater)
)
