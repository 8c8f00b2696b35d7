// internal/affiliate/ledger.go
package affiliate

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
	"github.com/rovshanmuradov/genesis-launchpad/internal/genesis"
	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
	"github.com/rovshanmuradov/genesis-launchpad/internal/safemath"
)

// TokenMinter mints commission tokens.
type TokenMinter interface {
	MintTo(tx *ledger.Tx, mint, owner, authority solana.PublicKey, amount uint64) error
}

// Ledger keeps affiliate records and pays commission.
type Ledger struct {
	store  *ledger.Store
	tokens TokenMinter
	logger *zap.Logger
}

// NewLedger creates the commission engine.
func NewLedger(store *ledger.Store, tokens TokenMinter, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:  store,
		tokens: tokens,
		logger: logger.Named("affiliate"),
	}
}

// Registration holds the options an affiliate signs up with.
type Registration struct {
	Parent          solana.PublicKey `json:"parent"`
	ReferralLevel   uint8            `json:"referral_level"`
	RateCapsEnabled bool             `json:"rate_caps_enabled"`
	MinRateBps      uint16           `json:"min_rate_bps"`
	MaxRateBps      uint16           `json:"max_rate_bps"`
}

// Validate checks level and caps. The parent is checked against the store.
func (r *Registration) Validate(signer solana.PublicKey) error {
	if r.ReferralLevel < genesis.MinReferralLevel || r.ReferralLevel > genesis.MaxReferralLevel {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidReferralLevel,
			r.ReferralLevel, genesis.MinReferralLevel, genesis.MaxReferralLevel)
	}
	if !r.Parent.IsZero() && r.Parent.Equals(signer) {
		return ErrCircularReferral
	}
	if r.RateCapsEnabled {
		if r.MinRateBps < genesis.MinRateBps || r.MaxRateBps > genesis.MaxRateBps || r.MinRateBps > r.MaxRateBps {
			return fmt.Errorf("%w: [%d, %d] must lie within [%d, %d]", ErrInvalidRateCaps,
				r.MinRateBps, r.MaxRateBps, genesis.MinRateBps, genesis.MaxRateBps)
		}
	}
	return nil
}

// RegisterAffiliate creates the signer's affiliate and analytics records.
func (l *Ledger) RegisterAffiliate(ctx context.Context, signer solana.PublicKey, reg Registration) (*AffiliateRecord, error) {
	if err := reg.Validate(signer); err != nil {
		return nil, fmt.Errorf("register affiliate: %w", err)
	}
	addr, bump, err := genesis.AffiliateAddress(signer)
	if err != nil {
		return nil, err
	}
	analyticsAddr, analyticsBump, err := genesis.AnalyticsAddress(signer)
	if err != nil {
		return nil, err
	}

	minRate, maxRate := genesis.MinRateBps, genesis.MaxRateBps
	if reg.RateCapsEnabled {
		minRate, maxRate = reg.MinRateBps, reg.MaxRateBps
	}
	rate := uint16(clamp(int64(genesis.DefaultCommissionBps), int64(minRate), int64(maxRate)))

	var rec *AffiliateRecord
	err = l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		now := tx.Now()
		if !reg.Parent.IsZero() {
			if err := l.adoptChild(tx, reg.Parent); err != nil {
				return err
			}
		}

		rec = &AffiliateRecord{
			Affiliate:          signer,
			CommissionRateBps:  rate,
			Tier:               Bronze,
			RateCapsEnabled:    reg.RateCapsEnabled,
			MinRateBps:         minRate,
			MaxRateBps:         maxRate,
			ReferralLevel:      reg.ReferralLevel,
			Parent:             reg.Parent,
			CreatedAt:          now,
			LastActivity:       now,
			LastRateUpdateTime: now,
			TierUpgradeTime:    now,
			Bump:               bump,
		}
		if err := tx.Create(addr, rec); err != nil {
			return err
		}
		if err := tx.Create(analyticsAddr, &AnalyticsRecord{
			Affiliate:  signer,
			LastUpdate: now,
			Bump:       analyticsBump,
		}); err != nil {
			return err
		}
		tx.Emit(events.AffiliateRegisteredEvent{
			BaseEvent: events.NewBase(events.AffiliateRegistered, now),
			Affiliate: signer,
			Parent:    reg.Parent,
			Level:     reg.ReferralLevel,
			RateBps:   rate,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("register affiliate: %w", err)
	}

	l.logger.Info("Affiliate registered",
		zap.Stringer("affiliate", signer),
		zap.Uint8("level", reg.ReferralLevel),
		zap.Uint16("rate_bps", rate))
	return rec, nil
}

func (l *Ledger) adoptChild(tx *ledger.Tx, parent solana.PublicKey) error {
	paddr, _, err := genesis.AffiliateAddress(parent)
	if err != nil {
		return err
	}
	var p AffiliateRecord
	if err := tx.Get(paddr, &p); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrParentNotFound, parent)
		}
		return err
	}
	if p.TotalDescendants, err = safemath.AddU32(p.TotalDescendants, 1); err != nil {
		return err
	}
	return tx.Put(paddr, &p)
}

// load reads the signer's own record.
func (l *Ledger) load(tx *ledger.Tx, signer solana.PublicKey) (solana.PublicKey, *AffiliateRecord, error) {
	addr, _, err := genesis.AffiliateAddress(signer)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	var rec AffiliateRecord
	if err := tx.Get(addr, &rec); err != nil {
		return solana.PublicKey{}, nil, err
	}
	if !rec.Affiliate.Equals(signer) {
		return solana.PublicKey{}, nil, ErrAuthorityMismatch
	}
	return addr, &rec, nil
}

// SetCommissionRate is the legacy direct setter. It ignores caps and the
// update cooldown.
func (l *Ledger) SetCommissionRate(ctx context.Context, signer solana.PublicKey, rate uint16) (*AffiliateRecord, error) {
	if rate > genesis.MaxLegacyRateBps {
		return nil, fmt.Errorf("set commission rate: %w: %d above %d", ErrInvalidRate, rate, genesis.MaxLegacyRateBps)
	}
	var rec *AffiliateRecord
	err := l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		addr, r, err := l.load(tx, signer)
		if err != nil {
			return err
		}
		old := r.CommissionRateBps
		r.CommissionRateBps = rate
		if err := tx.Put(addr, r); err != nil {
			return err
		}
		rec = r
		tx.Emit(events.CommissionRateUpdatedEvent{
			BaseEvent: events.NewBase(events.CommissionRateUpdated, tx.Now()),
			Affiliate: signer,
			OldRate:   old,
			NewRate:   rate,
			Legacy:    true,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set commission rate: %w", err)
	}
	l.logger.Info("Commission rate set",
		zap.Stringer("affiliate", signer),
		zap.Uint16("rate_bps", rate))
	return rec, nil
}

// UpdateCommissionRateAI applies an advisory-driven rate. The rate must lie
// in the global bounds and the affiliate's caps, at most once a day.
func (l *Ledger) UpdateCommissionRateAI(ctx context.Context, signer solana.PublicKey, rate uint16, suggested bool) (*AffiliateRecord, error) {
	if rate < genesis.MinRateBps || rate > genesis.MaxRateBps {
		return nil, fmt.Errorf("update commission rate: %w: %d not in [%d, %d]",
			ErrInvalidRate, rate, genesis.MinRateBps, genesis.MaxRateBps)
	}
	var rec *AffiliateRecord
	err := l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		now := tx.Now()
		addr, r, err := l.load(tx, signer)
		if err != nil {
			return err
		}
		if r.RateCapsEnabled {
			if rate < r.MinRateBps {
				return fmt.Errorf("%w: %d < %d", ErrRateBelowMinCap, rate, r.MinRateBps)
			}
			if rate > r.MaxRateBps {
				return fmt.Errorf("%w: %d > %d", ErrRateExceedsMaxCap, rate, r.MaxRateBps)
			}
		}
		if elapsed := now - r.LastRateUpdateTime; elapsed < genesis.RateUpdateCooldown {
			return fmt.Errorf("%w: next update in %ds", ErrRateUpdateTooSoon, genesis.RateUpdateCooldown-elapsed)
		}

		old := r.CommissionRateBps
		r.CommissionRateBps = rate
		r.LastRateUpdateTime = now
		if err := tx.Put(addr, r); err != nil {
			return err
		}
		rec = r
		tx.Emit(events.CommissionRateUpdatedEvent{
			BaseEvent: events.NewBase(events.CommissionRateUpdated, now),
			Affiliate: signer,
			OldRate:   old,
			NewRate:   rate,
			Suggested: suggested,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update commission rate: %w", err)
	}
	l.logger.Info("Commission rate updated",
		zap.Stringer("affiliate", signer),
		zap.Uint16("rate_bps", rate),
		zap.Bool("suggested", suggested))
	return rec, nil
}

// ProcessCommission mints the affiliate's commission on a purchase. It runs
// inside the caller's transaction; mintAuthority is the capability the token
// ledger checks against the mint.
func (l *Ledger) ProcessCommission(tx *ledger.Tx, mintAuthority, mint, affiliate solana.PublicKey, purchased uint64) (uint64, error) {
	addr, _, err := genesis.AffiliateAddress(affiliate)
	if err != nil {
		return 0, err
	}
	var r AffiliateRecord
	if err := tx.Get(addr, &r); err != nil {
		return 0, err
	}

	commission, err := safemath.ApplyBps(purchased, r.CommissionRateBps)
	if err != nil {
		return 0, fmt.Errorf("commission: %w", err)
	}
	if commission > 0 {
		if err := l.tokens.MintTo(tx, mint, affiliate, mintAuthority, commission); err != nil {
			return 0, fmt.Errorf("mint commission: %w", err)
		}
	}

	for _, v := range []*uint64{
		&r.TotalReferredVolume,
		&r.MonthlyReferredVolume,
		&r.QuarterlyReferredVolume,
		&r.YearlyReferredVolume,
	} {
		if *v, err = safemath.Add(*v, purchased); err != nil {
			return 0, fmt.Errorf("referred volume: %w", err)
		}
	}
	if r.SuccessfulReferrals, err = safemath.AddU32(r.SuccessfulReferrals, 1); err != nil {
		return 0, err
	}
	now := tx.Now()
	r.LastActivity = now
	if err := r.refresh(now); err != nil {
		return 0, err
	}
	if err := tx.Put(addr, &r); err != nil {
		return 0, err
	}

	tx.Emit(events.CommissionPaidEvent{
		BaseEvent:       events.NewBase(events.CommissionPaid, now),
		Affiliate:       affiliate,
		Mint:            mint,
		PurchasedTokens: purchased,
		Commission:      commission,
		RateBps:         r.CommissionRateBps,
		Tier:            r.Tier.String(),
	})
	return commission, nil
}

// UpdateAnalytics appends a day of activity and refreshes derived metrics.
func (l *Ledger) UpdateAnalytics(ctx context.Context, signer solana.PublicKey, volume uint64, clicks uint32) (*AffiliateRecord, error) {
	analyticsAddr, _, err := genesis.AnalyticsAddress(signer)
	if err != nil {
		return nil, err
	}

	var rec *AffiliateRecord
	err = l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		now := tx.Now()
		addr, r, err := l.load(tx, signer)
		if err != nil {
			return err
		}
		var a AnalyticsRecord
		if err := tx.Get(analyticsAddr, &a); err != nil {
			return err
		}
		a.append(volume, clicks)
		a.LastUpdate = now

		if r.TotalReferredVolume, err = safemath.Add(r.TotalReferredVolume, volume); err != nil {
			return err
		}
		if r.TotalClicks, err = safemath.AddU32(r.TotalClicks, clicks); err != nil {
			return err
		}
		if r.TotalClicks > 0 {
			conv, err := safemath.MulDiv(uint64(r.SuccessfulReferrals), genesis.BasisPoints, uint64(r.TotalClicks))
			if err != nil {
				return err
			}
			r.ConversionRateBps = uint32(conv)
		}
		if err := r.refresh(now); err != nil {
			return err
		}

		if err := tx.Put(analyticsAddr, &a); err != nil {
			return err
		}
		if err := tx.Put(addr, r); err != nil {
			return err
		}
		rec = r
		tx.Emit(events.AnalyticsUpdatedEvent{
			BaseEvent:     events.NewBase(events.AnalyticsUpdated, now),
			Affiliate:     signer,
			Volume:        volume,
			Clicks:        clicks,
			ConversionBps: r.ConversionRateBps,
			Tier:          r.Tier.String(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update analytics: %w", err)
	}

	l.logger.Debug("Analytics updated",
		zap.Stringer("affiliate", signer),
		zap.Uint64("volume", volume),
		zap.Uint32("clicks", clicks),
		zap.Stringer("tier", rec.Tier))
	return rec, nil
}

// Suggestion is the advisory rate for an affiliate.
type Suggestion struct {
	Affiliate     solana.PublicKey `json:"affiliate"`
	CurrentRate   uint16           `json:"current_rate"`
	SuggestedRate uint16           `json:"suggested_rate"`
	Tier          Tier             `json:"tier"`
	Timestamp     int64            `json:"timestamp"`
}

// GetAISuggestedRate computes the heuristic rate without changing state and
// publishes it as an advisory event.
func (l *Ledger) GetAISuggestedRate(ctx context.Context, affiliate solana.PublicKey) (*Suggestion, error) {
	addr, _, err := genesis.AffiliateAddress(affiliate)
	if err != nil {
		return nil, err
	}
	var s Suggestion
	err = l.store.View(ctx, func(tx *ledger.Tx) error {
		var r AffiliateRecord
		if err := tx.Get(addr, &r); err != nil {
			return err
		}
		s = Suggestion{
			Affiliate:     affiliate,
			CurrentRate:   r.CommissionRateBps,
			SuggestedRate: SuggestedRate(r.Tier, r.ConversionRateBps),
			Tier:          r.Tier,
			Timestamp:     tx.Now(),
		}
		tx.Emit(events.AdvisoryRateEvent{
			BaseEvent:     events.NewBase(events.AdvisoryRateSuggested, s.Timestamp),
			Affiliate:     affiliate,
			CurrentRate:   s.CurrentRate,
			SuggestedRate: s.SuggestedRate,
			Tier:          s.Tier.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetAffiliate loads an affiliate record.
func (l *Ledger) GetAffiliate(ctx context.Context, affiliate solana.PublicKey) (*AffiliateRecord, error) {
	addr, _, err := genesis.AffiliateAddress(affiliate)
	if err != nil {
		return nil, err
	}
	var r AffiliateRecord
	if err := l.store.View(ctx, func(tx *ledger.Tx) error { return tx.Get(addr, &r) }); err != nil {
		return nil, err
	}
	return &r, nil
}

// AnalyticsSummary is an analytics record with its rolling average.
type AnalyticsSummary struct {
	AnalyticsRecord
	AverageDailyVolume uint64 `json:"average_daily_volume"`
}

// GetAnalytics loads an affiliate's rolling activity.
func (l *Ledger) GetAnalytics(ctx context.Context, affiliate solana.PublicKey) (*AnalyticsSummary, error) {
	addr, _, err := genesis.AnalyticsAddress(affiliate)
	if err != nil {
		return nil, err
	}
	var s AnalyticsSummary
	if err := l.store.View(ctx, func(tx *ledger.Tx) error { return tx.Get(addr, &s.AnalyticsRecord) }); err != nil {
		return nil, err
	}
	s.AverageDailyVolume = s.AverageVolume()
	return &s, nil
}

// ListAffiliates returns every affiliate record.
func (l *Ledger) ListAffiliates(ctx context.Context) ([]AffiliateRecord, error) {
	addrs := l.store.List(ledger.KindAffiliate)
	out := make([]AffiliateRecord, 0, len(addrs))
	err := l.store.View(ctx, func(tx *ledger.Tx) error {
		for _, a := range addrs {
			var r AffiliateRecord
			if err := tx.Get(a, &r); err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}
