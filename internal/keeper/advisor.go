// internal/keeper/advisor.go
package keeper

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/genesis-launchpad/internal/affiliate"
	"github.com/rovshanmuradov/genesis-launchpad/internal/exchange"
	"github.com/rovshanmuradov/genesis-launchpad/internal/genesis"
)

// ErrNoAdvice means the advisor has nothing for this target; the keeper
// skips it.
var ErrNoAdvice = errors.New("no advice")

// PriceAdvisor proposes oracle readings for a pool.
type PriceAdvisor interface {
	SuggestPrice(ctx context.Context, pool exchange.PoolStatus) (exchange.PriceSources, error)
}

// RateAdvisor proposes a commission rate for an affiliate.
type RateAdvisor interface {
	SuggestRate(ctx context.Context, rec affiliate.AffiliateRecord) (uint16, error)
}

// Pair identifies a pool by its ordered mints.
type Pair struct {
	MintA solana.PublicKey
	MintB solana.PublicKey
}

func (p Pair) String() string {
	return fmt.Sprintf("%s/%s", p.MintA, p.MintB)
}

// StaticPriceAdvisor reports configured reference prices (price of A in B,
// 1e9 precision) as the AI source.
type StaticPriceAdvisor struct {
	prices map[Pair]uint64
}

func NewStaticPriceAdvisor(prices map[Pair]uint64) *StaticPriceAdvisor {
	copied := make(map[Pair]uint64, len(prices))
	for k, v := range prices {
		copied[k] = v
	}
	return &StaticPriceAdvisor{prices: copied}
}

func (a *StaticPriceAdvisor) SuggestPrice(_ context.Context, pool exchange.PoolStatus) (exchange.PriceSources, error) {
	price, ok := a.prices[Pair{MintA: pool.MintA, MintB: pool.MintB}]
	if !ok || price == 0 {
		return exchange.PriceSources{}, fmt.Errorf("%w: pool %s", ErrNoAdvice, pool.Address)
	}
	return exchange.PriceSources{AI: &price}, nil
}

// TierRateAdvisor applies the ledger's own tier heuristic, kept inside the
// affiliate's caps.
type TierRateAdvisor struct{}

func (TierRateAdvisor) SuggestRate(_ context.Context, rec affiliate.AffiliateRecord) (uint16, error) {
	rate := affiliate.SuggestedRate(rec.Tier, rec.ConversionRateBps)
	lo, hi := genesis.MinRateBps, genesis.MaxRateBps
	if rec.RateCapsEnabled {
		lo, hi = rec.MinRateBps, rec.MaxRateBps
	}
	return min(max(rate, lo), hi), nil
}
