// internal/utils/amount/amount.go
package amount

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/genesis-launchpad/internal/genesis"
)

// Decimal converts a raw uint64 amount without loss.
func Decimal(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// Units shifts a base-unit amount by decimals, e.g. lamports to SOL.
func Units(v uint64, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), -decimals)
}

// Tokens renders base units of a 9-decimal token (or lamports) as whole units.
func Tokens(v uint64) decimal.Decimal {
	return Units(v, int32(genesis.TokenDecimals))
}

// Price renders a 1e9-precision price.
func Price(v uint64) decimal.Decimal {
	return Decimal(v).Div(Decimal(genesis.PricePrecision))
}

// Percent renders basis points as a percentage.
func Percent(bps uint16) decimal.Decimal {
	return decimal.New(int64(bps), -2)
}

// ParseTokens parses a whole-unit string ("1.5") into base units. Fractions
// finer than one base unit are truncated.
func ParseTokens(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, ErrNegative
	}
	base := d.Shift(int32(genesis.TokenDecimals)).Truncate(0).BigInt()
	if !base.IsUint64() {
		return 0, ErrOutOfRange
	}
	return base.Uint64(), nil
}
