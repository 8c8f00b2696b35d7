package affiliate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/genesis-launchpad/internal/genesis"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		volume uint64
		conv   uint32
		want   Tier
	}{
		{0, 0, Bronze},
		{1_000_000_000, 0, Platinum},
		{100_000_000, 500, Gold},
		{100_000_000, 499, Silver},
		{100_000_000, 199, Bronze},
		{10_000_000, 200, Silver},
		{9_999_999, 10_000, Bronze},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.volume, tt.conv), "volume=%d conv=%d", tt.volume, tt.conv)
	}
}

func TestScore(t *testing.T) {
	got, err := Score(1_000_000_000, 500, 25, Platinum)
	require.NoError(t, err)
	assert.Equal(t, uint64((1_000+50+2)*5), got)

	got, err = Score(999_999, 9, 9, Bronze)
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = Score(math.MaxUint64, 0, 0, Platinum)
	assert.Error(t, err)
}

func TestSuggestedRate(t *testing.T) {
	tests := []struct {
		tier Tier
		conv uint32
		want uint16
	}{
		{Bronze, 0, 450},
		{Bronze, 300, 500},
		{Silver, 500, 850},
		{Gold, 100, 950},
		{Gold, 101, 1_000},
		{Platinum, 600, 1_350},
	}
	for _, tt := range tests {
		got := SuggestedRate(tt.tier, tt.conv)
		assert.Equal(t, tt.want, got, "%s conv=%d", tt.tier, tt.conv)
		assert.GreaterOrEqual(t, got, genesis.MinRateBps)
		assert.LessOrEqual(t, got, genesis.MaxRateBps)
	}

	assert.Equal(t, int64(50), clamp(-10, 50, 2_000))
	assert.Equal(t, int64(2_000), clamp(2_500, 50, 2_000))
}

func TestRefreshMovesUpgradeTimeOnlyOnChange(t *testing.T) {
	r := AffiliateRecord{TierUpgradeTime: 10}
	require.NoError(t, r.refresh(20))
	assert.Equal(t, Bronze, r.Tier)
	assert.Equal(t, int64(10), r.TierUpgradeTime)

	r.TotalReferredVolume = genesis.PlatinumVolume
	require.NoError(t, r.refresh(30))
	assert.Equal(t, Platinum, r.Tier)
	assert.Equal(t, int64(30), r.TierUpgradeTime)
	assert.Equal(t, uint64(1_000*5), r.PerformanceScore)
}

func TestAnalyticsRingWraps(t *testing.T) {
	var a AnalyticsRecord
	for i := 1; i <= genesis.AnalyticsWindow+1; i++ {
		a.append(uint64(i), uint32(i))
	}
	assert.Equal(t, uint8(1), a.Index)
	assert.Equal(t, uint64(31), a.DailyVolume[0])
	assert.Equal(t, uint32(2), a.DailyClicks[1])

	// 31 + (2 + ... + 30) = 495
	assert.Equal(t, uint64(495/30), a.AverageVolume())
}

func TestAverageVolumeSurvivesOverflow(t *testing.T) {
	var a AnalyticsRecord
	for i := range a.DailyVolume {
		a.DailyVolume[i] = math.MaxUint64
	}
	assert.Equal(t, uint64(math.MaxUint64/30*30), a.AverageVolume())
}

func TestTierText(t *testing.T) {
	var tier Tier
	require.NoError(t, tier.UnmarshalText([]byte("Gold")))
	assert.Equal(t, Gold, tier)
	text, err := Platinum.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "platinum", string(text))
	assert.Error(t, tier.UnmarshalText([]byte("diamond")))
}
