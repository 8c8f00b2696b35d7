// internal/affiliate/state.go
package affiliate

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/genesis-launchpad/internal/genesis"
	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
	"github.com/rovshanmuradov/genesis-launchpad/internal/safemath"
)

// Tier is an affiliate's performance bracket.
type Tier uint8

const (
	Bronze Tier = iota
	Silver
	Gold
	Platinum
)

func (t Tier) String() string {
	switch t {
	case Bronze:
		return "bronze"
	case Silver:
		return "silver"
	case Gold:
		return "gold"
	case Platinum:
		return "platinum"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	if t > Platinum {
		return nil, fmt.Errorf("unknown tier %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "bronze":
		*t = Bronze
	case "silver":
		*t = Silver
	case "gold":
		*t = Gold
	case "platinum":
		*t = Platinum
	default:
		return fmt.Errorf("unknown tier %q", string(b))
	}
	return nil
}

// AffiliateRecord is the persisted state of one affiliate.
type AffiliateRecord struct {
	Affiliate solana.PublicKey `json:"affiliate"`

	TotalReferredVolume     uint64 `json:"total_referred_volume"`
	MonthlyReferredVolume   uint64 `json:"monthly_referred_volume"`
	QuarterlyReferredVolume uint64 `json:"quarterly_referred_volume"`
	YearlyReferredVolume    uint64 `json:"yearly_referred_volume"`

	CommissionRateBps uint16 `json:"commission_rate_bps"`
	Tier              Tier   `json:"tier"`
	RateCapsEnabled   bool   `json:"rate_caps_enabled"`
	MinRateBps        uint16 `json:"min_rate_bps"`
	MaxRateBps        uint16 `json:"max_rate_bps"`

	ReferralLevel    uint8            `json:"referral_level"`
	Parent           solana.PublicKey `json:"parent"`
	TotalDescendants uint32           `json:"total_descendants"`

	SuccessfulReferrals uint32 `json:"successful_referrals"`
	TotalClicks         uint32 `json:"total_clicks"`
	ConversionRateBps   uint32 `json:"conversion_rate_bps"`
	PerformanceScore    uint64 `json:"performance_score"`

	CreatedAt          int64 `json:"created_at"`
	LastActivity       int64 `json:"last_activity"`
	LastRateUpdateTime int64 `json:"last_rate_update_time"`
	TierUpgradeTime    int64 `json:"tier_upgrade_time"`
	Bump               uint8 `json:"bump"`
}

func (*AffiliateRecord) RecordKind() ledger.Kind { return ledger.KindAffiliate }

// HasParent reports whether the affiliate was referred by another.
func (r *AffiliateRecord) HasParent() bool { return !r.Parent.IsZero() }

// AnalyticsRecord holds the rolling daily activity of an affiliate.
type AnalyticsRecord struct {
	Affiliate   solana.PublicKey                 `json:"affiliate"`
	DailyVolume [genesis.AnalyticsWindow]uint64 `json:"daily_volume"`
	DailyClicks [genesis.AnalyticsWindow]uint32 `json:"daily_clicks"`
	Index       uint8                            `json:"index"`
	LastUpdate  int64                            `json:"last_update"`
	Bump        uint8                            `json:"bump"`
}

func (*AnalyticsRecord) RecordKind() ledger.Kind { return ledger.KindAnalytics }

// append writes one day of activity into the current slot and advances.
func (a *AnalyticsRecord) append(volume uint64, clicks uint32) {
	a.DailyVolume[a.Index] = volume
	a.DailyClicks[a.Index] = clicks
	a.Index = uint8((int(a.Index) + 1) % genesis.AnalyticsWindow)
}

// AverageVolume is the 30-day mean of the daily volume slots. Empty slots
// count as zero days.
func (a *AnalyticsRecord) AverageVolume() uint64 {
	var sum uint64
	for _, v := range a.DailyVolume {
		next, err := safemath.Add(sum, v)
		if err != nil {
			return a.averageBySlot()
		}
		sum = next
	}
	return sum / genesis.AnalyticsWindow
}

func (a *AnalyticsRecord) averageBySlot() uint64 {
	var avg uint64
	for _, v := range a.DailyVolume {
		avg += v / genesis.AnalyticsWindow
	}
	return avg
}
