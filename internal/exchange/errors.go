// internal/exchange/errors.go
package exchange

import (
	"errors"
	"fmt"

	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
)

var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidMint           = errors.New("invalid mint")
	ErrInvalidPoolConfig     = errors.New("invalid pool configuration")
	ErrInvalidPrice          = errors.New("invalid oracle price")
	ErrNoValidPriceSources   = errors.New("no valid price sources")
	ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")
	ErrSlippageExceeded      = errors.New("slippage tolerance exceeded")

	ErrInvalidOracleAuthority = fmt.Errorf("%w: not the pool oracle authority", ledger.ErrUnauthorized)
	ErrOraclePriceStale       = fmt.Errorf("%w: oracle price is stale", ledger.ErrRetryLater)
)

// SlippageExceededError carries the computed output that fell short of the
// caller's minimum.
type SlippageExceededError struct {
	Expected uint64
	Minimum  uint64
}

func (e *SlippageExceededError) Error() string {
	return fmt.Sprintf("%s: would receive %d, minimum %d", ErrSlippageExceeded, e.Expected, e.Minimum)
}

func (e *SlippageExceededError) Unwrap() error { return ErrSlippageExceeded }
