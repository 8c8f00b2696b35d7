package metrics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
	"github.com/rovshanmuradov/genesis-launchpad/internal/safemath"
)

func TestResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{context.Canceled, "cancelled"},
		{fmt.Errorf("buy: %w", ledger.ErrConflict), "conflict"},
		{fmt.Errorf("%w: cooldown", ledger.ErrRetryLater), "retry_later"},
		{fmt.Errorf("%w: wrong key", ledger.ErrUnauthorized), "unauthorized"},
		{ledger.ErrNotFound, "not_found"},
		{safemath.ErrOverflow, "arithmetic"},
		{assert.AnError, "rejected"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Result(tt.err))
	}
}

func TestRecordOperation(t *testing.T) {
	c := NewCollector()

	c.RecordOperation("launch", "buy_tokens", time.Millisecond, nil)
	c.RecordOperation("launch", "buy_tokens", time.Millisecond, nil)
	err := c.Measure("exchange", "swap", func() error { return ledger.ErrNotFound })
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.operations.WithLabelValues("launch", "buy_tokens", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("exchange", "swap", "not_found")))

	c.Reset()
	assert.Equal(t, 0, testutil.CollectAndCount(c.operations))
}

func TestHandleEvents(t *testing.T) {
	c := NewCollector()
	ctx := context.Background()
	pool := solana.NewWallet().PublicKey()
	launch := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	require.NoError(t, c.Handle(ctx, events.TokensPurchasedEvent{
		BaseEvent:    events.NewBase(events.TokensPurchased, 1),
		Launch:       launch,
		SolAmount:    1_000,
		TokensMinted: 5_000,
	}))
	require.NoError(t, c.Handle(ctx, events.CommissionPaidEvent{
		BaseEvent:  events.NewBase(events.CommissionPaid, 1),
		Commission: 500,
		Tier:       "gold",
	}))
	require.NoError(t, c.Handle(ctx, events.SwapExecutedEvent{
		BaseEvent:  events.NewBase(events.SwapExecuted, 2),
		Pool:       pool,
		SourceMint: mint,
		AmountIn:   40,
		FeeAmount:  3,
	}))
	c.ObserveOracleAge(pool.String(), 90*time.Second)
	require.NoError(t, c.Handle(ctx, events.PriceUpdateEvent{
		BaseEvent: events.NewBase(events.OraclePriceUpdated, 3),
		Pool:      pool,
		Weighted:  1_500_000_000,
	}))
	require.NoError(t, c.Handle(ctx, events.LiquidityAddedEvent{
		BaseEvent: events.NewBase(events.LiquidityAdded, 4),
		Pool:      pool,
		AmountA:   10,
		AmountB:   20,
	}))

	assert.Equal(t, 5_000.0, testutil.ToFloat64(c.tokensPurchased.WithLabelValues(launch.String())))
	assert.Equal(t, 1_000.0, testutil.ToFloat64(c.solRaised.WithLabelValues(launch.String())))
	assert.Equal(t, 500.0, testutil.ToFloat64(c.commissionPaid.WithLabelValues("gold")))
	assert.Equal(t, 40.0, testutil.ToFloat64(c.swapVolume.WithLabelValues(pool.String(), mint.String())))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.swapFees.WithLabelValues(pool.String())))
	assert.Equal(t, 1.5e9, testutil.ToFloat64(c.oraclePrice.WithLabelValues(pool.String())))
	assert.Zero(t, testutil.ToFloat64(c.oracleAge.WithLabelValues(pool.String())))
	assert.Equal(t, 20.0, testutil.ToFloat64(c.poolLiquidity.WithLabelValues(pool.String(), "b")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.events.WithLabelValues(string(events.SwapExecuted))))

	c.UpdatePoolLiquidity(pool.String(), 7, 8)
	assert.Equal(t, 7.0, testutil.ToFloat64(c.poolLiquidity.WithLabelValues(pool.String(), "a")))
}

func TestRegistryGathers(t *testing.T) {
	c := NewCollector()
	c.RecordOperation("affiliate", "register", time.Millisecond, nil)

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["genesis_operations_total"])
	assert.True(t, names["go_goroutines"])
}
