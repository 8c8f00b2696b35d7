// internal/utils/metrics/events.go
package metrics

import (
	"context"

	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
)

// Handle implements events.Handler. Subscribe it with Bus.SubscribeAll.
func (c *Collector) Handle(_ context.Context, event events.Event) error {
	c.events.WithLabelValues(string(event.Type())).Inc()

	switch e := event.(type) {
	case events.TokensPurchasedEvent:
		launch := e.Launch.String()
		c.tokensPurchased.WithLabelValues(launch).Add(float64(e.TokensMinted))
		c.solRaised.WithLabelValues(launch).Add(float64(e.SolAmount))
	case events.CommissionPaidEvent:
		c.commissionPaid.WithLabelValues(e.Tier).Add(float64(e.Commission))
	case events.SwapExecutedEvent:
		pool := e.Pool.String()
		c.swapVolume.WithLabelValues(pool, e.SourceMint.String()).Add(float64(e.AmountIn))
		c.swapFees.WithLabelValues(pool).Add(float64(e.FeeAmount))
	case events.PriceUpdateEvent:
		pool := e.Pool.String()
		c.oraclePrice.WithLabelValues(pool).Set(float64(e.Weighted))
		c.oracleAge.WithLabelValues(pool).Set(0)
	case events.LiquidityAddedEvent:
		pool := e.Pool.String()
		c.poolLiquidity.WithLabelValues(pool, "a").Add(float64(e.AmountA))
		c.poolLiquidity.WithLabelValues(pool, "b").Add(float64(e.AmountB))
	}
	return nil
}

// UpdatePoolLiquidity sets the liquidity gauges from a pool snapshot.
func (c *Collector) UpdatePoolLiquidity(pool string, a, b uint64) {
	c.poolLiquidity.WithLabelValues(pool, "a").Set(float64(a))
	c.poolLiquidity.WithLabelValues(pool, "b").Set(float64(b))
}
