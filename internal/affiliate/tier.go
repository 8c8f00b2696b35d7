// internal/affiliate/tier.go
package affiliate

import (
	"github.com/rovshanmuradov/genesis-launchpad/internal/genesis"
	"github.com/rovshanmuradov/genesis-launchpad/internal/safemath"
)

// TierFor classifies an affiliate by lifetime volume and conversion.
func TierFor(volume uint64, conversionBps uint32) Tier {
	switch {
	case volume >= genesis.PlatinumVolume:
		return Platinum
	case volume >= genesis.GoldVolume && conversionBps >= genesis.GoldConversion:
		return Gold
	case volume >= genesis.SilverVolume && conversionBps >= genesis.SilverConversion:
		return Silver
	default:
		return Bronze
	}
}

func (t Tier) multiplier() uint64 {
	switch t {
	case Silver:
		return 2
	case Gold:
		return 3
	case Platinum:
		return 5
	default:
		return 1
	}
}

// baseRate is the suggested starting commission for a tier.
func (t Tier) baseRate() int64 {
	switch t {
	case Silver:
		return 750
	case Gold:
		return 1_000
	case Platinum:
		return 1_250
	default:
		return 500
	}
}

// Score computes the performance score:
// (volume/1e6 + conversion/10 + referrals/10) * tier multiplier.
func Score(volume uint64, conversionBps, referrals uint32, tier Tier) (uint64, error) {
	points, err := safemath.Add(volume/1_000_000, uint64(conversionBps/10))
	if err != nil {
		return 0, err
	}
	if points, err = safemath.Add(points, uint64(referrals/10)); err != nil {
		return 0, err
	}
	return safemath.Mul(points, tier.multiplier())
}

// SuggestedRate is the heuristic commission for an affiliate: the tier base
// adjusted for conversion and clamped to the global rate bounds.
func SuggestedRate(tier Tier, conversionBps uint32) uint16 {
	rate := tier.baseRate()
	switch {
	case conversionBps >= genesis.HighConversionBps:
		rate += genesis.HighConversionBonus
	case conversionBps <= genesis.LowConversionBps:
		rate -= genesis.LowConversionPenalty
	}
	return uint16(clamp(rate, int64(genesis.MinRateBps), int64(genesis.MaxRateBps)))
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// refresh recomputes tier and score after a metric change. The tier upgrade
// time moves only when the tier does.
func (r *AffiliateRecord) refresh(now int64) error {
	tier := TierFor(r.TotalReferredVolume, r.ConversionRateBps)
	if tier != r.Tier {
		r.Tier = tier
		r.TierUpgradeTime = now
	}
	score, err := Score(r.TotalReferredVolume, r.ConversionRateBps, r.SuccessfulReferrals, r.Tier)
	if err != nil {
		return err
	}
	r.PerformanceScore = score
	return nil
}
