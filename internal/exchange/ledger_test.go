package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
	"github.com/rovshanmuradov/genesis-launchpad/internal/genesis"
	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
	"github.com/rovshanmuradov/genesis-launchpad/internal/token"
)

const t0 int64 = 1_700_000_000

type fixture struct {
	ctx      context.Context
	store    *ledger.Store
	clock    *ledger.ManualClock
	tokens   *token.Ledger
	recorder *events.Recorder
	pools    *Ledger
	mintA    solana.PublicKey
	mintB    solana.PublicKey
	oracle   solana.PublicKey
	user     solana.PublicKey
	lp       solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		clock:    ledger.NewManualClock(t0),
		recorder: events.NewRecorder(0),
		mintA:    solana.NewWallet().PublicKey(),
		mintB:    solana.NewWallet().PublicKey(),
		oracle:   solana.NewWallet().PublicKey(),
		user:     solana.NewWallet().PublicKey(),
		lp:       solana.NewWallet().PublicKey(),
	}
	f.store = ledger.NewStore(f.clock, f.recorder, zap.NewNop())
	f.tokens = token.NewLedger(zap.NewNop())
	f.pools = NewLedger(f.store, f.tokens, zaptest.NewLogger(t))

	issuer := solana.NewWallet().PublicKey()
	require.NoError(t, f.store.Atomically(f.ctx, func(tx *ledger.Tx) error {
		for _, m := range []solana.PublicKey{f.mintA, f.mintB} {
			if err := f.tokens.CreateMint(tx, m, issuer, genesis.TokenDecimals); err != nil {
				return err
			}
			if err := f.tokens.MintTo(tx, m, f.user, issuer, 100*genesis.TokenUnit); err != nil {
				return err
			}
			if err := f.tokens.MintTo(tx, m, f.lp, issuer, 1_000*genesis.TokenUnit); err != nil {
				return err
			}
		}
		return nil
	}))
	return f
}

func (f *fixture) config() PoolConfig {
	return PoolConfig{
		MintA:           f.mintA,
		MintB:           f.mintB,
		OracleAuthority: f.oracle,
		Provider:        ProviderHybrid,
		FeeBps:          30,
	}
}

func (f *fixture) openPool(t *testing.T, cfg PoolConfig) {
	t.Helper()
	_, err := f.pools.CreatePool(f.ctx, f.oracle, cfg)
	require.NoError(t, err)
	_, err = f.pools.AddLiquidity(f.ctx, f.lp, f.mintA, f.mintB, 1_000*genesis.TokenUnit, 1_000*genesis.TokenUnit)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, mint, owner solana.PublicKey) uint64 {
	t.Helper()
	var v uint64
	require.NoError(t, f.store.View(f.ctx, func(tx *ledger.Tx) error {
		var err error
		v, err = f.tokens.Balance(tx, mint, owner)
		return err
	}))
	return v
}

func TestCreatePoolValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		mutate  func(*PoolConfig)
		wantErr error
	}{
		{"same mint", func(c *PoolConfig) { c.MintB = c.MintA }, ErrInvalidMint},
		{"unknown mint", func(c *PoolConfig) { c.MintB = solana.NewWallet().PublicKey() }, ErrInvalidMint},
		{"fee too high", func(c *PoolConfig) { c.FeeBps = 1_001 }, ErrInvalidPoolConfig},
		{"dynamic without threshold", func(c *PoolConfig) { c.DynamicFeeEnabled = true }, ErrInvalidPoolConfig},
		{"no oracle", func(c *PoolConfig) { c.OracleAuthority = solana.PublicKey{} }, ErrInvalidPoolConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := f.config()
			tt.mutate(&cfg)
			_, err := f.pools.CreatePool(f.ctx, f.oracle, cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	rec, err := f.pools.CreatePool(f.ctx, f.oracle, f.config())
	require.NoError(t, err)
	assert.Equal(t, genesis.PricePrecision, rec.OraclePrice)
	for _, p := range rec.PriceHistory {
		assert.Equal(t, genesis.PricePrecision, p)
	}
	assert.Zero(t, rec.LiquidityA)
	assert.Equal(t, t0, rec.LastOracleUpdate)

	_, err = f.pools.CreatePool(f.ctx, f.oracle, f.config())
	assert.ErrorIs(t, err, ledger.ErrAlreadyExists)
}

func TestUpdateOraclePrice(t *testing.T) {
	f := newFixture(t)
	f.openPool(t, f.config())

	src := PriceSources{Pyth: u64(1_100_000_000), Switchboard: u64(1_200_000_000)}
	_, err := f.pools.UpdateOraclePrice(f.ctx, f.user, f.mintA, f.mintB, src)
	require.ErrorIs(t, err, ErrInvalidOracleAuthority)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	_, err = f.pools.UpdateOraclePrice(f.ctx, f.oracle, f.mintA, f.mintB, PriceSources{AI: u64(0)})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	f.clock.Advance(60)
	rec, err := f.pools.UpdateOraclePrice(f.ctx, f.oracle, f.mintA, f.mintB, src)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_146_666_666), rec.OraclePrice)
	assert.Equal(t, uint64(1_146_666_666), rec.PriceHistory[0])
	assert.Equal(t, uint8(1), rec.HistoryIndex)
	assert.Equal(t, t0+60, rec.LastOracleUpdate)

	// Sources merge: a later AI-only update keeps pyth and switchboard.
	rec, err = f.pools.UpdateOraclePrice(f.ctx, f.oracle, f.mintA, f.mintB, PriceSources{AI: u64(1_000_000_000), Confidence: u64(95)})
	require.NoError(t, err)
	assert.Equal(t, uint64(1_110_000_000), rec.OraclePrice)
	assert.Equal(t, uint64(95), rec.Confidence)

	updates := f.recorder.OfType(events.OraclePriceUpdated)
	require.Len(t, updates, 2)
	last := updates[1].(events.PriceUpdateEvent)
	assert.Equal(t, uint64(1_100_000_000), last.Pyth)
	assert.Equal(t, uint64(1_110_000_000), last.Weighted)
}

func TestUpdateOraclePriceWithoutSourcesKeepsLastPrice(t *testing.T) {
	f := newFixture(t)
	f.openPool(t, f.config())

	rec, err := f.pools.UpdateOraclePrice(f.ctx, f.oracle, f.mintA, f.mintB, PriceSources{Confidence: u64(10)})
	require.NoError(t, err)
	assert.Equal(t, genesis.PricePrecision, rec.OraclePrice)
}

func TestSwapBothDirections(t *testing.T) {
	f := newFixture(t)
	f.openPool(t, f.config())
	_, err := f.pools.UpdateOraclePrice(f.ctx, f.oracle, f.mintA, f.mintB, PriceSources{Pyth: u64(2_000_000_000)})
	require.NoError(t, err)

	vaultA, vaultB, err := genesis.PoolVaultAddresses(f.mintA, f.mintB)
	require.NoError(t, err)

	receipt, err := f.pools.Swap(f.ctx, f.user, SwapRequest{
		MintA:      f.mintA,
		MintB:      f.mintB,
		SourceMint: f.mintA,
		AmountIn:   10 * genesis.TokenUnit,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000_000), receipt.Price)
	assert.Equal(t, uint16(30), receipt.FeeBps)
	assert.Equal(t, uint64(20_000_000_000), receipt.AmountBeforeFee)
	assert.Equal(t, uint64(60_000_000), receipt.FeeAmount)
	assert.Equal(t, uint64(19_940_000_000), receipt.AmountOut)

	assert.Equal(t, 90*genesis.TokenUnit, f.balance(t, f.mintA, f.user))
	assert.Equal(t, 100*genesis.TokenUnit+19_940_000_000, f.balance(t, f.mintB, f.user))
	assert.Equal(t, 1_010*genesis.TokenUnit, f.balance(t, f.mintA, vaultA))
	assert.Equal(t, 1_000*genesis.TokenUnit-19_940_000_000, f.balance(t, f.mintB, vaultB))

	pool, err := f.pools.GetPool(f.ctx, f.mintA, f.mintB)
	require.NoError(t, err)
	assert.Equal(t, 1_010*genesis.TokenUnit, pool.LiquidityA)
	assert.Equal(t, 1_000*genesis.TokenUnit-19_940_000_000, pool.LiquidityB)
	assert.Equal(t, uint8(2), pool.HistoryIndex)

	receipt, err = f.pools.Swap(f.ctx, f.user, SwapRequest{
		MintA:      f.mintA,
		MintB:      f.mintB,
		SourceMint: f.mintB,
		AmountIn:   2 * genesis.TokenUnit,
	})
	require.NoError(t, err)
	assert.Equal(t, f.mintA, receipt.DestinationMint)
	assert.Equal(t, genesis.TokenUnit, receipt.AmountBeforeFee)
	assert.Equal(t, genesis.TokenUnit-3_000_000, receipt.AmountOut)

	assert.Len(t, f.recorder.OfType(events.SwapExecuted), 2)
}

func TestSwapRejections(t *testing.T) {
	f := newFixture(t)
	f.openPool(t, f.config())

	base := SwapRequest{MintA: f.mintA, MintB: f.mintB, SourceMint: f.mintA, AmountIn: genesis.TokenUnit}

	req := base
	req.AmountIn = 0
	_, err := f.pools.Swap(f.ctx, f.user, req)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	req = base
	req.SourceMint = solana.NewWallet().PublicKey()
	_, err = f.pools.Swap(f.ctx, f.user, req)
	assert.ErrorIs(t, err, ErrInvalidMint)

	req = base
	req.MinAmountOut = genesis.TokenUnit
	_, err = f.pools.Swap(f.ctx, f.user, req)
	require.ErrorIs(t, err, ErrSlippageExceeded)
	var slip *SlippageExceededError
	require.True(t, errors.As(err, &slip))
	assert.Equal(t, genesis.TokenUnit-3_000_000, slip.Expected)
	assert.Equal(t, genesis.TokenUnit, slip.Minimum)
	assert.Equal(t, 100*genesis.TokenUnit, f.balance(t, f.mintA, f.user))

	req = base
	req.AmountIn = 2_000 * genesis.TokenUnit
	_, err = f.pools.Swap(f.ctx, f.user, req)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)

	f.clock.Advance(genesis.MaxOracleAge)
	_, err = f.pools.Swap(f.ctx, f.user, base)
	require.NoError(t, err)

	f.clock.Advance(1)
	_, err = f.pools.Swap(f.ctx, f.user, base)
	require.ErrorIs(t, err, ErrOraclePriceStale)
	assert.True(t, ledger.IsRetryable(err))

	_, err = f.pools.Swap(f.ctx, f.user, SwapRequest{MintA: f.mintB, MintB: f.mintA, SourceMint: f.mintA, AmountIn: 1})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestSwapRoundingToZeroIsNotRejected(t *testing.T) {
	f := newFixture(t)
	f.openPool(t, f.config())
	_, err := f.pools.UpdateOraclePrice(f.ctx, f.oracle, f.mintA, f.mintB, PriceSources{Pyth: u64(500_000_000)})
	require.NoError(t, err)

	// One base unit of A at 0.5 rounds down to nothing; without a minimum
	// the swap still goes through.
	receipt, err := f.pools.Swap(f.ctx, f.user, SwapRequest{MintA: f.mintA, MintB: f.mintB, SourceMint: f.mintA, AmountIn: 1})
	require.NoError(t, err)
	assert.Zero(t, receipt.AmountOut)
	assert.Equal(t, 100*genesis.TokenUnit-1, f.balance(t, f.mintA, f.user))
	assert.Equal(t, 100*genesis.TokenUnit, f.balance(t, f.mintB, f.user))

	_, err = f.pools.Swap(f.ctx, f.user, SwapRequest{MintA: f.mintA, MintB: f.mintB, SourceMint: f.mintA, AmountIn: 1, MinAmountOut: 1})
	assert.ErrorIs(t, err, ErrSlippageExceeded)
}

func TestSwapUsesDynamicFee(t *testing.T) {
	f := newFixture(t)
	cfg := f.config()
	cfg.DynamicFeeEnabled = true
	cfg.VolatilityThreshold = 50_000_000
	f.openPool(t, cfg)

	q, err := f.pools.QuoteSwap(f.ctx, SwapRequest{MintA: f.mintA, MintB: f.mintB, SourceMint: f.mintA, AmountIn: genesis.TokenUnit})
	require.NoError(t, err)
	assert.Equal(t, uint16(30), q.FeeBps)
	assert.Zero(t, q.Volatility)

	_, err = f.pools.UpdateOraclePrice(f.ctx, f.oracle, f.mintA, f.mintB, PriceSources{Pyth: u64(2_000_000_000)})
	require.NoError(t, err)

	q, err = f.pools.QuoteSwap(f.ctx, SwapRequest{MintA: f.mintA, MintB: f.mintB, SourceMint: f.mintA, AmountIn: genesis.TokenUnit})
	require.NoError(t, err)
	assert.Equal(t, uint64(199_826_313), q.Volatility)
	assert.Equal(t, uint16(90), q.FeeBps)

	receipt, err := f.pools.Swap(f.ctx, f.user, SwapRequest{MintA: f.mintA, MintB: f.mintB, SourceMint: f.mintA, AmountIn: genesis.TokenUnit})
	require.NoError(t, err)
	assert.Equal(t, q.AmountOut, receipt.AmountOut)
}

func TestQuoteSwapIsMonotonicAndPure(t *testing.T) {
	f := newFixture(t)
	f.openPool(t, f.config())
	_, err := f.pools.UpdateOraclePrice(f.ctx, f.oracle, f.mintA, f.mintB, PriceSources{AI: u64(1_234_567_891)})
	require.NoError(t, err)

	var prev uint64
	for in := uint64(1); in < 2_000_000; in += 9_973 {
		q, err := f.pools.QuoteSwap(f.ctx, SwapRequest{MintA: f.mintA, MintB: f.mintB, SourceMint: f.mintB, AmountIn: in})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, q.AmountOut, prev)
		prev = q.AmountOut
	}

	pool, err := f.pools.GetPool(f.ctx, f.mintA, f.mintB)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), pool.HistoryIndex)
}

func TestLegacyPriceFallsBackWithoutSources(t *testing.T) {
	f := newFixture(t)
	f.openPool(t, f.config())

	_, err := f.pools.UpdateOraclePriceLegacy(f.ctx, f.oracle, f.mintA, f.mintB, 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	f.clock.Advance(200)
	rec, err := f.pools.UpdateOraclePriceLegacy(f.ctx, f.oracle, f.mintA, f.mintB, 3_000_000_000)
	require.NoError(t, err)
	assert.Zero(t, rec.HistoryIndex)
	assert.Equal(t, t0+200, rec.LastOracleUpdate)

	q, err := f.pools.QuoteSwap(f.ctx, SwapRequest{MintA: f.mintA, MintB: f.mintB, SourceMint: f.mintA, AmountIn: genesis.TokenUnit})
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000_000_000), q.Price)

	// Once a source is present it wins over the stored aggregate.
	_, err = f.pools.UpdateOraclePrice(f.ctx, f.oracle, f.mintA, f.mintB, PriceSources{Switchboard: u64(1_500_000_000)})
	require.NoError(t, err)
	_, err = f.pools.UpdateOraclePriceLegacy(f.ctx, f.oracle, f.mintA, f.mintB, 9_000_000_000)
	require.NoError(t, err)
	q, err = f.pools.QuoteSwap(f.ctx, SwapRequest{MintA: f.mintA, MintB: f.mintB, SourceMint: f.mintA, AmountIn: genesis.TokenUnit})
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), q.Price)
}

func TestAddLiquidity(t *testing.T) {
	f := newFixture(t)
	_, err := f.pools.CreatePool(f.ctx, f.oracle, f.config())
	require.NoError(t, err)

	_, err = f.pools.AddLiquidity(f.ctx, f.lp, f.mintA, f.mintB, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.pools.AddLiquidity(f.ctx, f.lp, f.mintA, f.mintB, 5_000*genesis.TokenUnit, 0)
	assert.ErrorIs(t, err, token.ErrInsufficientFunds)

	rec, err := f.pools.AddLiquidity(f.ctx, f.lp, f.mintA, f.mintB, 5*genesis.TokenUnit, 0)
	require.NoError(t, err)
	assert.Equal(t, 5*genesis.TokenUnit, rec.LiquidityA)
	assert.Zero(t, rec.LiquidityB)

	rec, err = f.pools.AddLiquidity(f.ctx, f.lp, f.mintA, f.mintB, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 5*genesis.TokenUnit+1, rec.LiquidityA)
	assert.Equal(t, uint64(7), rec.LiquidityB)
}

func TestUpdatePoolConfigAndPause(t *testing.T) {
	f := newFixture(t)
	f.openPool(t, f.config())

	upd := PoolConfigUpdate{FeeBps: 50, DynamicFeeEnabled: true, VolatilityThreshold: 1_000}
	_, err := f.pools.UpdatePoolConfig(f.ctx, f.user, f.mintA, f.mintB, upd)
	assert.ErrorIs(t, err, ErrInvalidOracleAuthority)

	_, err = f.pools.UpdatePoolConfig(f.ctx, f.oracle, f.mintA, f.mintB, PoolConfigUpdate{FeeBps: 1_001})
	assert.ErrorIs(t, err, ErrInvalidPoolConfig)

	f.clock.Advance(10)
	rec, err := f.pools.UpdatePoolConfig(f.ctx, f.oracle, f.mintA, f.mintB, upd)
	require.NoError(t, err)
	assert.Equal(t, uint16(50), rec.FeeBps)
	assert.True(t, rec.DynamicFeeEnabled)
	assert.Equal(t, t0+10, rec.LastVolatilityUpdate)

	assert.ErrorIs(t, f.pools.EmergencyPause(f.ctx, f.user, f.mintA, f.mintB, true), ErrInvalidOracleAuthority)
	require.NoError(t, f.pools.EmergencyPause(f.ctx, f.oracle, f.mintA, f.mintB, true))

	// Pausing is advisory; swaps still go through.
	_, err = f.pools.Swap(f.ctx, f.user, SwapRequest{MintA: f.mintA, MintB: f.mintB, SourceMint: f.mintA, AmountIn: genesis.TokenUnit})
	require.NoError(t, err)

	pools, err := f.pools.ListPools(f.ctx)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, uint16(50), pools[0].CurrentFee)
	assert.False(t, pools[0].OracleStale)
}
