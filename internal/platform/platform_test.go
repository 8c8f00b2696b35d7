package platform

import (
	"context"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/affiliate"
	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
	"github.com/rovshanmuradov/genesis-launchpad/internal/exchange"
	"github.com/rovshanmuradov/genesis-launchpad/internal/genesis"
	"github.com/rovshanmuradov/genesis-launchpad/internal/launch"
	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
	"github.com/rovshanmuradov/genesis-launchpad/internal/token"
)

const t0 int64 = 1_700_000_000

type fixture struct {
	ctx       context.Context
	p         *Platform
	clock     *ledger.ManualClock
	recorder  *events.Recorder
	authority solana.PublicKey
	mint      solana.PublicKey
	buyer     solana.PublicKey
	affiliate solana.PublicKey
	treasury  solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:       context.Background(),
		clock:     ledger.NewManualClock(t0),
		recorder:  events.NewRecorder(0),
		authority: solana.NewWallet().PublicKey(),
		mint:      solana.NewWallet().PublicKey(),
		buyer:     solana.NewWallet().PublicKey(),
		affiliate: solana.NewWallet().PublicKey(),
		treasury:  solana.NewWallet().PublicKey(),
	}
	f.p = New(f.clock, f.recorder, zap.NewNop())

	_, err := f.p.Launches.CreateLaunch(f.ctx, f.authority, launch.LaunchConfig{
		Mint:              f.mint,
		PricingModel:      launch.Fixed,
		InitialPrice:      100_000_000,
		MaxTokens:         1_000 * genesis.TokenUnit,
		StartTime:         t0,
		EndTime:           t0 + 86_400,
		AffiliateFeeBps:   500,
		PlatformFeeBps:    100,
		PlatformRecipient: f.treasury,
	})
	require.NoError(t, err)

	_, err = f.p.Airdrop(f.ctx, f.buyer, 10*genesis.TokenUnit)
	require.NoError(t, err)
	return f
}

func (f *fixture) buy(sol uint64, aff solana.PublicKey) (*launch.PurchaseReceipt, error) {
	return f.p.Launches.BuyTokens(f.ctx, f.buyer, launch.PurchaseRequest{
		Authority: f.authority,
		Mint:      f.mint,
		SolAmount: sol,
		Affiliate: aff,
	})
}

func TestPurchaseWithAffiliateCommitsTogether(t *testing.T) {
	f := newFixture(t)
	_, err := f.p.Affiliates.RegisterAffiliate(f.ctx, f.affiliate, affiliate.Registration{ReferralLevel: 1})
	require.NoError(t, err)

	receipt, err := f.buy(genesis.TokenUnit, f.affiliate)
	require.NoError(t, err)
	assert.Equal(t, uint64(10*genesis.TokenUnit), receipt.Tokens)
	assert.Equal(t, uint64(genesis.TokenUnit), receipt.Commission)

	buyer, err := f.p.Balance(f.ctx, f.buyer, f.mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(9_050_000_000), buyer.Lamports)
	assert.Equal(t, receipt.Tokens, buyer.Tokens)

	aff, err := f.p.Balance(f.ctx, f.affiliate, f.mint)
	require.NoError(t, err)
	assert.Zero(t, aff.Lamports)
	assert.Equal(t, receipt.Commission, aff.Tokens)

	treasury, err := f.p.Balance(f.ctx, f.treasury, solana.PublicKey{})
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), treasury.Lamports)

	rec, err := f.p.Affiliates.GetAffiliate(f.ctx, f.affiliate)
	require.NoError(t, err)
	assert.Equal(t, receipt.Tokens, rec.TotalReferredVolume)
	assert.Equal(t, uint32(1), rec.SuccessfulReferrals)

	var supply uint64
	require.NoError(t, f.p.Store.View(f.ctx, func(tx *ledger.Tx) error {
		supply, err = f.p.Tokens.Supply(tx, f.mint)
		return err
	}))
	assert.Equal(t, receipt.Tokens+receipt.Commission, supply)

	assert.Len(t, f.recorder.OfType(events.TokensPurchased), 1)
	assert.Len(t, f.recorder.OfType(events.CommissionPaid), 1)
}

func TestPurchaseWithUnknownAffiliateRollsBack(t *testing.T) {
	f := newFixture(t)
	stranger := solana.NewWallet().PublicKey()

	_, err := f.buy(genesis.TokenUnit, stranger)
	require.ErrorIs(t, err, ledger.ErrNotFound)

	buyer, err := f.p.Balance(f.ctx, f.buyer, f.mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(10*genesis.TokenUnit), buyer.Lamports)
	assert.Zero(t, buyer.Tokens)

	other, err := f.p.Balance(f.ctx, stranger, f.mint)
	require.NoError(t, err)
	assert.Zero(t, other.Lamports)

	rec, err := f.p.Launches.GetLaunch(f.ctx, f.authority, f.mint)
	require.NoError(t, err)
	assert.Zero(t, rec.TokensSold)
	assert.Empty(t, f.recorder.OfType(events.TokensPurchased))
}

func TestConcurrentPurchasesNeverDoubleCount(t *testing.T) {
	f := newFixture(t)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sold uint64
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			receipt, err := f.buy(100_000_000, solana.PublicKey{})
			if err != nil {
				assert.True(t, ledger.IsRetryable(err), "unexpected error: %v", err)
				return
			}
			mu.Lock()
			sold += receipt.Tokens
			mu.Unlock()
		}()
	}
	wg.Wait()

	rec, err := f.p.Launches.GetLaunch(f.ctx, f.authority, f.mint)
	require.NoError(t, err)
	assert.Equal(t, sold, rec.TokensSold)

	buyer, err := f.p.Balance(f.ctx, f.buyer, f.mint)
	require.NoError(t, err)
	assert.Equal(t, sold, buyer.Tokens)
}

func TestLaunchedTokenTradesOnPool(t *testing.T) {
	f := newFixture(t)
	issuer := solana.NewWallet().PublicKey()
	quoteMint := solana.NewWallet().PublicKey()
	oracle := solana.NewWallet().PublicKey()

	_, err := f.buy(genesis.TokenUnit, solana.PublicKey{})
	require.NoError(t, err)

	require.NoError(t, f.p.CreateToken(f.ctx, quoteMint, issuer, 1_000*genesis.TokenUnit))
	require.ErrorIs(t, f.p.CreateToken(f.ctx, quoteMint, issuer, 0), ledger.ErrAlreadyExists)
	require.NoError(t, f.p.Transfer(f.ctx, issuer, quoteMint, f.buyer, 100*genesis.TokenUnit))
	assert.ErrorIs(t, f.p.Transfer(f.ctx, f.buyer, quoteMint, issuer, 101*genesis.TokenUnit), token.ErrInsufficientFunds)

	_, err = f.p.Pools.CreatePool(f.ctx, issuer, exchange.PoolConfig{
		MintA:           f.mint,
		MintB:           quoteMint,
		OracleAuthority: oracle,
		FeeBps:          30,
	})
	require.NoError(t, err)
	_, err = f.p.Pools.AddLiquidity(f.ctx, f.buyer, f.mint, quoteMint, 5*genesis.TokenUnit, 50*genesis.TokenUnit)
	require.NoError(t, err)

	receipt, err := f.p.Pools.Swap(f.ctx, f.buyer, exchange.SwapRequest{
		MintA:      f.mint,
		MintB:      quoteMint,
		SourceMint: f.mint,
		AmountIn:   100_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(99_700_000), receipt.AmountOut)

	w, err := f.p.Balance(f.ctx, f.buyer, quoteMint)
	require.NoError(t, err)
	assert.Equal(t, uint64(50*genesis.TokenUnit+99_700_000), w.Tokens)

	stats := f.p.Stats()
	assert.NotZero(t, stats["commits"])
}
