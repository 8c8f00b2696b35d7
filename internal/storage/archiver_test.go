package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
	"github.com/rovshanmuradov/genesis-launchpad/internal/storage/models"
)

type memStorage struct {
	mu          sync.Mutex
	purchases   []*models.Purchase
	commissions []*models.Commission
	rates       []*models.RateChange
	swaps       []*models.Swap
	prices      []*models.OraclePrice
	err         error
}

func (m *memStorage) SavePurchase(_ context.Context, p *models.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.purchases = append(m.purchases, p)
	return nil
}

func (m *memStorage) SaveCommission(_ context.Context, c *models.Commission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commissions = append(m.commissions, c)
	return nil
}

func (m *memStorage) SaveRateChange(_ context.Context, r *models.RateChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = append(m.rates, r)
	return nil
}

func (m *memStorage) SaveSwap(_ context.Context, s *models.Swap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.swaps = append(m.swaps, s)
	return nil
}

func (m *memStorage) SaveOraclePrice(_ context.Context, p *models.OraclePrice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices = append(m.prices, p)
	return nil
}

func (m *memStorage) ListPurchases(_ context.Context, launch string, _, _ int) ([]*models.Purchase, error) {
	var out []*models.Purchase
	for _, p := range m.purchases {
		if p.Launch == launch {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStorage) ListSwaps(_ context.Context, pool string, _, _ int) ([]*models.Swap, error) {
	var out []*models.Swap
	for _, s := range m.swaps {
		if s.Pool == pool {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStorage) RunMigrations() error { return nil }
func (m *memStorage) Close() error         { return nil }

func TestArchiverPersistsEvents(t *testing.T) {
	store := &memStorage{}
	a := NewArchiver(store, zap.NewNop())
	ctx := context.Background()

	launch := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()
	affiliate := solana.NewWallet().PublicKey()

	require.NoError(t, a.Handle(ctx, events.TokensPurchasedEvent{
		BaseEvent:    events.NewBase(events.TokensPurchased, 1_700_000_000),
		Launch:       launch,
		SolAmount:    1_000_000_000,
		TokensMinted: 18_446_744_073_709_551_615,
		Vested:       true,
	}))
	require.NoError(t, a.Handle(ctx, events.CommissionPaidEvent{
		BaseEvent:  events.NewBase(events.CommissionPaid, 1_700_000_000),
		Affiliate:  affiliate,
		Commission: 100,
		RateBps:    1000,
		Tier:       "bronze",
	}))
	require.NoError(t, a.Handle(ctx, events.CommissionRateUpdatedEvent{
		BaseEvent: events.NewBase(events.CommissionRateUpdated, 1_700_000_001),
		Affiliate: affiliate,
		OldRate:   1000,
		NewRate:   1200,
		Suggested: true,
	}))
	require.NoError(t, a.Handle(ctx, events.SwapExecutedEvent{
		BaseEvent: events.NewBase(events.SwapExecuted, 1_700_000_002),
		Pool:      pool,
		AmountIn:  5,
		AmountOut: 9,
		FeeBps:    30,
	}))
	require.NoError(t, a.Handle(ctx, events.PriceUpdateEvent{
		BaseEvent: events.NewBase(events.OraclePriceUpdated, 1_700_000_003),
		Pool:      pool,
		Weighted:  2_000_000_000,
		Legacy:    true,
	}))
	require.NoError(t, a.Handle(ctx, events.PoolCreatedEvent{BaseEvent: events.NewBase(events.PoolCreated, 1)}))

	require.Len(t, store.purchases, 1)
	p := store.purchases[0]
	assert.Equal(t, launch.String(), p.Launch)
	assert.Empty(t, p.Affiliate)
	assert.Equal(t, "18446744073709551615", p.TokensMinted.String())
	assert.True(t, p.Vested)
	assert.Len(t, p.EventID, 36)
	assert.Equal(t, int64(1_700_000_000), p.EventTime.Unix())

	require.Len(t, store.commissions, 1)
	assert.Equal(t, affiliate.String(), store.commissions[0].Affiliate)
	assert.Equal(t, "100", store.commissions[0].Amount.String())

	require.Len(t, store.rates, 1)
	assert.Equal(t, uint16(1200), store.rates[0].NewRate)

	swaps, err := store.ListSwaps(ctx, pool.String(), 10, 0)
	require.NoError(t, err)
	require.Len(t, swaps, 1)
	assert.Equal(t, "9", swaps[0].AmountOut.String())

	require.Len(t, store.prices, 1)
	assert.True(t, store.prices[0].Legacy)
	assert.Equal(t, "2000000000", store.prices[0].Weighted.String())
}

func TestArchiverWrapsStorageErrors(t *testing.T) {
	store := &memStorage{err: assert.AnError}
	a := NewArchiver(store, zap.NewNop())

	err := a.Handle(context.Background(), events.TokensPurchasedEvent{
		BaseEvent: events.NewBase(events.TokensPurchased, 1),
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), string(events.TokensPurchased))
}

func TestArchiverSubscribe(t *testing.T) {
	bus := events.NewBus(zap.NewNop(), 4)
	defer bus.Shutdown(context.Background())

	store := &memStorage{}
	subs := NewArchiver(store, zap.NewNop()).Subscribe(bus)
	assert.Len(t, subs, len(ArchivedTypes))

	require.NoError(t, bus.PublishSync(context.Background(), events.SwapExecutedEvent{
		BaseEvent: events.NewBase(events.SwapExecuted, 1),
	}))
	assert.Len(t, store.swaps, 1)

	for _, s := range subs {
		s.Unsubscribe()
	}
	require.NoError(t, bus.PublishSync(context.Background(), events.SwapExecutedEvent{
		BaseEvent: events.NewBase(events.SwapExecuted, 2),
	}))
	assert.Len(t, store.swaps, 1)
}
