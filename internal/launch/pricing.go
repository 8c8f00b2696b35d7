// internal/launch/pricing.go
package launch

import (
	"fmt"

	"github.com/rovshanmuradov/genesis-launchpad/internal/genesis"
	"github.com/rovshanmuradov/genesis-launchpad/internal/safemath"
)

// CurrentPrice returns the price of one whole token, in lamports, at now.
//
// Linear:       initial + slope*sold
// Exponential:  initial * (1+slope)^sold, overflow is an error
// Fixed:        initial
// DutchAuction: initial - initial*elapsed/duration, floored at slope
func CurrentPrice(r *LaunchRecord, now int64) (uint64, error) {
	switch r.PricingModel {
	case Linear:
		step, err := safemath.Mul(r.Slope, r.TokensSold)
		if err != nil {
			return 0, fmt.Errorf("linear price: %w", err)
		}
		return safemath.Add(r.InitialPrice, step)

	case Exponential:
		base, err := safemath.Add(1, r.Slope)
		if err != nil {
			return 0, fmt.Errorf("exponential price: %w", err)
		}
		factor, err := safemath.Pow(base, r.TokensSold)
		if err != nil {
			return 0, fmt.Errorf("exponential price: %w", err)
		}
		return safemath.Mul(r.InitialPrice, factor)

	case Fixed:
		return r.InitialPrice, nil

	case DutchAuction:
		total := r.EndTime - r.StartTime
		if total <= 0 {
			return 0, fmt.Errorf("dutch auction: %w", safemath.ErrDivisionByZero)
		}
		elapsed := now - r.StartTime
		if elapsed < 0 {
			elapsed = 0
		}
		if elapsed > total {
			elapsed = total
		}
		drop, err := safemath.MulDiv(r.InitialPrice, uint64(elapsed), uint64(total))
		if err != nil {
			return 0, fmt.Errorf("dutch auction: %w", err)
		}
		price := r.InitialPrice - drop
		if price < r.Slope {
			price = r.Slope
		}
		return price, nil

	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownPricingModel, uint8(r.PricingModel))
	}
}

// TokensForSol converts a lamport amount to token base units at price.
func TokensForSol(solAmount, price uint64) (uint64, error) {
	if price == 0 {
		return 0, ErrInvalidPrice
	}
	return safemath.MulDiv(solAmount, genesis.TokenUnit, price)
}

// Vested returns the amount of a schedule unlocked at now.
//
// Before the cliff nothing is unlocked and after the full duration
// everything is. In between the unlocked share is (now-start)/(duration-cliff)
// of the total, capped at the total.
func Vested(v *VestingRecord, now int64) (uint64, error) {
	cliffEnd, err := safemath.AddInt64(v.StartTime, v.Cliff)
	if err != nil {
		return 0, err
	}
	end, err := safemath.AddInt64(v.StartTime, v.Duration)
	if err != nil {
		return 0, err
	}

	switch {
	case now < cliffEnd:
		return 0, nil
	case now >= end:
		return v.TotalAmount, nil
	}

	span := v.Duration - v.Cliff
	if span <= 0 {
		return v.TotalAmount, nil
	}
	unlocked, err := safemath.MulDiv(v.TotalAmount, uint64(now-v.StartTime), uint64(span))
	if err != nil {
		// total*elapsed/span exceeds u64 only when it is far above total.
		return v.TotalAmount, nil
	}
	if unlocked > v.TotalAmount {
		return v.TotalAmount, nil
	}
	return unlocked, nil
}

// Claimable returns vested minus already claimed.
func Claimable(v *VestingRecord, now int64) (uint64, error) {
	vested, err := Vested(v, now)
	if err != nil {
		return 0, err
	}
	if vested <= v.ClaimedAmount {
		return 0, nil
	}
	return vested - v.ClaimedAmount, nil
}
