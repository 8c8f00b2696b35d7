// internal/genesis/constants.go
package genesis

// Basis points and rate bounds shared by the launch and affiliate ledgers.
const (
	BasisPoints          uint64 = 10_000
	MinRateBps           uint16 = 50
	MaxRateBps           uint16 = 2_000
	DefaultCommissionBps uint16 = 1_000
	MaxLegacyRateBps     uint16 = 10_000
)

// Vesting bounds in seconds.
const (
	MinVestingDuration int64 = 86_400
	MaxVestingDuration int64 = 31_557_600
)

// Token and price precision.
const (
	TokenDecimals  uint8  = 9
	TokenUnit      uint64 = 1_000_000_000
	PricePrecision uint64 = 1_000_000_000
)

// Oracle and dynamic fee parameters.
const (
	MaxOracleAge            int64  = 300
	PriceHistorySize               = 24
	MaxDynamicFeeBps        uint16 = 1_000
	MaxVolatilityMultiplier uint64 = 5

	PythWeight        uint64 = 40
	SwitchboardWeight uint64 = 35
	AIWeight          uint64 = 25
)

// Affiliate parameters.
const (
	RateUpdateCooldown int64 = 86_400
	AnalyticsWindow          = 30
	MinReferralLevel   uint8 = 1
	MaxReferralLevel   uint8 = 5

	PlatinumVolume   uint64 = 1_000_000_000
	GoldVolume       uint64 = 100_000_000
	SilverVolume     uint64 = 10_000_000
	GoldConversion   uint32 = 500
	SilverConversion uint32 = 200

	HighConversionBps uint32 = 500
	LowConversionBps  uint32 = 100
	HighConversionBonus      = 100
	LowConversionPenalty     = 50
)
