// internal/keeper/rate.go
package keeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/genesis-launchpad/internal/affiliate"
	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
	"github.com/rovshanmuradov/genesis-launchpad/internal/utils/metrics"
)

// AffiliateLedger is the part of the commission engine the optimizer drives.
type AffiliateLedger interface {
	GetAffiliate(ctx context.Context, affiliate solana.PublicKey) (*affiliate.AffiliateRecord, error)
	UpdateCommissionRateAI(ctx context.Context, signer solana.PublicKey, rate uint16, suggested bool) (*affiliate.AffiliateRecord, error)
}

// RateOptimizer applies advisor rates to managed affiliates. Each update is
// submitted on the affiliate's behalf.
type RateOptimizer struct {
	affiliates  AffiliateLedger
	advisor     RateAdvisor
	targets     []solana.PublicKey
	policy      RetryPolicy
	concurrency int
	metrics     *metrics.Collector
	logger      *zap.Logger
}

type RateOptimizerConfig struct {
	Affiliates  []solana.PublicKey
	Retry       RetryPolicy
	Concurrency int
	Metrics     *metrics.Collector
}

func NewRateOptimizer(affiliates AffiliateLedger, advisor RateAdvisor, cfg RateOptimizerConfig, logger *zap.Logger) *RateOptimizer {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &RateOptimizer{
		affiliates:  affiliates,
		advisor:     advisor,
		targets:     cfg.Affiliates,
		policy:      cfg.Retry,
		concurrency: cfg.Concurrency,
		metrics:     cfg.Metrics,
		logger:      logger.Named("rate_optimizer"),
	}
}

func (o *RateOptimizer) Name() string { return "rate_optimizer" }

func (o *RateOptimizer) RunOnce(ctx context.Context) (Report, error) {
	var t tally
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, a := range o.targets {
		g.Go(func() error {
			o.optimize(gCtx, a, &t)
			return nil
		})
	}
	_ = g.Wait()

	report, err := t.result()
	o.logger.Info("Rate pass complete",
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, err
}

func (o *RateOptimizer) optimize(ctx context.Context, who solana.PublicKey, t *tally) {
	log := o.logger.With(zap.Stringer("affiliate", who))

	rec, err := o.affiliates.GetAffiliate(ctx, who)
	if err != nil {
		t.failed(fmt.Errorf("affiliate %s: %w", who, err))
		log.Warn("Affiliate lookup failed", zap.Error(err))
		return
	}

	rate, err := o.advisor.SuggestRate(ctx, *rec)
	if errors.Is(err, ErrNoAdvice) {
		t.skipped()
		return
	}
	if err != nil {
		t.failed(fmt.Errorf("advise %s: %w", who, err))
		log.Warn("Rate advisor failed", zap.Error(err))
		return
	}
	if rate == rec.CommissionRateBps {
		t.skipped()
		log.Debug("Rate unchanged", zap.Uint16("rate_bps", rate))
		return
	}

	notify := func(err error, d time.Duration) {
		log.Debug("Rate update conflicted, retrying", zap.Error(err), zap.Duration("backoff", d))
	}
	start := time.Now()
	_, err = submit(ctx, o.policy, notify, func() (*affiliate.AffiliateRecord, error) {
		return o.affiliates.UpdateCommissionRateAI(ctx, who, rate, true)
	})
	record(o.metrics, "affiliate", "update_commission_rate_ai", start, err)

	switch {
	case err == nil:
		t.updated()
		log.Info("Commission rate optimized",
			zap.Uint16("old_rate_bps", rec.CommissionRateBps),
			zap.Uint16("new_rate_bps", rate))
	case errors.Is(err, ledger.ErrRetryLater):
		t.skipped()
		log.Debug("Rate update deferred", zap.Error(err))
	default:
		t.failed(fmt.Errorf("update %s: %w", who, err))
		log.Warn("Rate update failed", zap.Error(err))
	}
}
