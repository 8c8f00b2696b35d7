// internal/keeper/price.go
package keeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/genesis-launchpad/internal/exchange"
	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
	"github.com/rovshanmuradov/genesis-launchpad/internal/utils/metrics"
)

// PoolLedger is the part of the exchange the price keeper drives.
type PoolLedger interface {
	GetPool(ctx context.Context, mintA, mintB solana.PublicKey) (*exchange.PoolStatus, error)
	UpdateOraclePrice(ctx context.Context, signer, mintA, mintB solana.PublicKey, src exchange.PriceSources) (*exchange.PoolRecord, error)
}

// PriceKeeper pushes advisor prices into managed pools, signing as the
// pools' oracle authority.
type PriceKeeper struct {
	pools       PoolLedger
	advisor     PriceAdvisor
	authority   solana.PublicKey
	targets     []Pair
	policy      RetryPolicy
	concurrency int
	clock       ledger.Clock
	metrics     *metrics.Collector
	logger      *zap.Logger
}

type PriceKeeperConfig struct {
	Authority   solana.PublicKey
	Pools       []Pair
	Retry       RetryPolicy
	Concurrency int
	Clock       ledger.Clock
	Metrics     *metrics.Collector
}

func NewPriceKeeper(pools PoolLedger, advisor PriceAdvisor, cfg PriceKeeperConfig, logger *zap.Logger) *PriceKeeper {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Clock == nil {
		cfg.Clock = ledger.SystemClock{}
	}
	return &PriceKeeper{
		pools:       pools,
		advisor:     advisor,
		authority:   cfg.Authority,
		targets:     cfg.Pools,
		policy:      cfg.Retry,
		concurrency: cfg.Concurrency,
		clock:       cfg.Clock,
		metrics:     cfg.Metrics,
		logger:      logger.Named("price_keeper"),
	}
}

func (k *PriceKeeper) Name() string { return "price_keeper" }

// RunOnce refreshes every managed pool. A failing pool does not stop the
// others; failures are joined into the returned error.
func (k *PriceKeeper) RunOnce(ctx context.Context) (Report, error) {
	var t tally
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(k.concurrency)

	for _, pair := range k.targets {
		g.Go(func() error {
			k.refresh(gCtx, pair, &t)
			return nil
		})
	}
	_ = g.Wait()

	report, err := t.result()
	k.logger.Info("Price pass complete",
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, err
}

func (k *PriceKeeper) refresh(ctx context.Context, pair Pair, t *tally) {
	log := k.logger.With(zap.Stringer("pair", pair))

	status, err := k.pools.GetPool(ctx, pair.MintA, pair.MintB)
	if err != nil {
		t.failed(fmt.Errorf("pool %s: %w", pair, err))
		log.Warn("Pool lookup failed", zap.Error(err))
		return
	}
	if k.metrics != nil {
		age := time.Duration(k.clock.Now()-status.LastOracleUpdate) * time.Second
		k.metrics.ObserveOracleAge(status.Address.String(), age)
	}

	src, err := k.advisor.SuggestPrice(ctx, *status)
	if errors.Is(err, ErrNoAdvice) {
		t.skipped()
		log.Debug("No price advice", zap.Error(err))
		return
	}
	if err != nil {
		t.failed(fmt.Errorf("advise %s: %w", pair, err))
		log.Warn("Price advisor failed", zap.Error(err))
		return
	}

	notify := func(err error, d time.Duration) {
		log.Debug("Oracle update conflicted, retrying", zap.Error(err), zap.Duration("backoff", d))
	}
	start := time.Now()
	rec, err := submit(ctx, k.policy, notify, func() (*exchange.PoolRecord, error) {
		return k.pools.UpdateOraclePrice(ctx, k.authority, pair.MintA, pair.MintB, src)
	})
	record(k.metrics, "exchange", "update_oracle_price", start, err)

	switch {
	case err == nil:
		t.updated()
		log.Debug("Oracle price refreshed", zap.Uint64("price", rec.OraclePrice))
	case errors.Is(err, ledger.ErrRetryLater):
		t.skipped()
		log.Info("Oracle update deferred", zap.Error(err))
	default:
		t.failed(fmt.Errorf("update %s: %w", pair, err))
		log.Warn("Oracle update failed", zap.Error(err))
	}
}
