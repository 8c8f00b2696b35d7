// internal/exchange/oracle.go
package exchange

import (
	"math/big"

	"github.com/rovshanmuradov/genesis-launchpad/internal/genesis"
	"github.com/rovshanmuradov/genesis-launchpad/internal/safemath"
)

// WeightedPrice aggregates the present sources with weights pyth 40,
// switchboard 35, ai 25, normalised over the sources present. With no
// source present the fallback is returned unchanged.
func WeightedPrice(s PriceSources, fallback uint64) uint64 {
	sum := new(big.Int)
	var weights uint64
	add := func(p *uint64, w uint64) {
		if p == nil {
			return
		}
		term := new(big.Int).SetUint64(*p)
		sum.Add(sum, term.Mul(term, new(big.Int).SetUint64(w)))
		weights += w
	}
	add(s.Pyth, genesis.PythWeight)
	add(s.Switchboard, genesis.SwitchboardWeight)
	add(s.AI, genesis.AIWeight)

	if weights == 0 {
		return fallback
	}
	// A weighted mean never exceeds its largest input, so it fits in uint64.
	return sum.Quo(sum, new(big.Int).SetUint64(weights)).Uint64()
}

// Volatility is the population standard deviation of the filled history
// slots, in PricePrecision units. Fewer than two samples give zero.
func Volatility(history []uint64) uint64 {
	var n int64
	sum := new(big.Int)
	sumSq := new(big.Int)
	for _, p := range history {
		if p == 0 {
			continue
		}
		v := new(big.Int).SetUint64(p)
		sum.Add(sum, v)
		sumSq.Add(sumSq, new(big.Int).Mul(v, v))
		n++
	}
	if n < 2 {
		return 0
	}

	// sigma = sqrt(n*sum(x^2) - sum(x)^2) / n
	count := big.NewInt(n)
	d := new(big.Int).Mul(count, sumSq)
	d.Sub(d, new(big.Int).Mul(sum, sum))
	if d.Sign() <= 0 {
		return 0
	}
	d.Sqrt(d)
	return d.Quo(d, count).Uint64()
}

// DynamicFee scales the base fee by volatility. Disabled pools, a zero
// threshold or volatility at or under the threshold keep the base fee; above
// it the multiplier is floor(volatility/threshold) capped at 5. The result is
// capped at 1000 bps.
func DynamicFee(baseBps uint16, enabled bool, volatility, threshold uint64) uint16 {
	if !enabled || threshold == 0 {
		return baseBps
	}
	multiplier := uint64(1)
	if volatility > threshold {
		multiplier = min(volatility/threshold, genesis.MaxVolatilityMultiplier)
	}
	return uint16(min(uint64(baseBps)*multiplier, uint64(genesis.MaxDynamicFeeBps)))
}

// OutputAmount converts amountIn at price. Selling mint A yields
// amountIn*price/precision of B; selling B yields amountIn*precision/price of A.
func OutputAmount(amountIn, price uint64, sellingA bool) (uint64, error) {
	if sellingA {
		return safemath.MulDiv(amountIn, price, genesis.PricePrecision)
	}
	return safemath.MulDiv(amountIn, genesis.PricePrecision, price)
}
