// internal/launch/ledger.go
package launch

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

// TokenLedger is the token primitive the sale engine drives.
type TokenLedger interface {
	CreateMint(tx *ledger.Tx, mint, authority solana.PublicKey, decimals uint8) error
	MintTo(tx *ledger.Tx, mint, owner, authority solana.PublicKey, amount uint64) error
	Transfer(tx *ledger.Tx, mint, from, to, authority solana.PublicKey, amount uint64) error
	Balance(tx *ledger.Tx, mint, owner solana.PublicKey) (uint64, error)
	TransferLamports(tx *ledger.Tx, from, to solana.PublicKey, amount uint64) error
	Lamports(tx *ledger.Tx, owner solana.PublicKey) (uint64, error)
}

// CommissionProcessor mints affiliate commission inside the purchase
// transaction. mintAuthority is the launch's derived address, passed as the
// capability the token ledger checks.
type CommissionProcessor interface {
	ProcessCommission(tx *ledger.Tx, mintAuthority, mint, affiliate solana.PublicKey, purchasedTokens uint64) (uint64, error)
}

// Ledger runs token sales.
type Ledger struct {
	store       *ledger.Store
	tokens      TokenLedger
	commissions CommissionProcessor
	logger      *zap.Logger
}

// NewLedger creates the sale engine. commissions may be nil, in which case
// purchases naming an affiliate are rejected.
func NewLedger(store *ledger.Store, tokens TokenLedger, commissions CommissionProcessor, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:       store,
		tokens:      tokens,
		commissions: commissions,
		logger:      logger.Named("launch"),
	}
}

// LaunchConfig describes a new sale.
type LaunchConfig struct {
	Mint              solana.PublicKey `json:"mint"`
	PricingModel      PricingModel     `json:"pricing_model"`
	InitialPrice      uint64           `json:"initial_price"`
	Slope             uint64           `json:"slope"`
	MaxTokens         uint64           `json:"max_tokens"`
	StartTime         int64            `json:"start_time"`
	EndTime           int64            `json:"end_time"`
	VestingEnabled    bool             `json:"vesting_enabled"`
	VestingDuration   int64            `json:"vesting_duration"`
	VestingCliff      int64            `json:"vesting_cliff"`
	AntiBot           AntiBotLevel     `json:"anti_bot"`
	MinPurchase       uint64           `json:"min_purchase"`
	MaxPurchase       uint64           `json:"max_purchase"`
	Cooldown          int64            `json:"cooldown"`
	AffiliateFeeBps   uint16           `json:"affiliate_fee_bps"`
	PlatformFeeBps    uint16           `json:"platform_fee_bps"`
	PlatformRecipient solana.PublicKey `json:"platform_recipient"`
}

// Validate checks a config against the clock reading now.
func (c *LaunchConfig) Validate(now int64) error {
	if c.StartTime >= c.EndTime {
		return fmt.Errorf("%w: start %d must precede end %d", ErrInvalidLaunchTime, c.StartTime, c.EndTime)
	}
	if c.StartTime < now {
		return fmt.Errorf("%w: start %d is in the past", ErrInvalidLaunchTime, c.StartTime)
	}
	if c.AffiliateFeeBps > genesis.MaxRateBps || c.PlatformFeeBps > genesis.MaxRateBps {
		return fmt.Errorf("%w: fees must not exceed %d bps", ErrInvalidFeeConfig, genesis.MaxRateBps)
	}
	if c.PlatformFeeBps > 0 && c.PlatformRecipient.IsZero() {
		return fmt.Errorf("%w: platform recipient required", ErrInvalidFeeConfig)
	}
	if c.VestingEnabled {
		if c.VestingDuration < genesis.MinVestingDuration || c.VestingDuration > genesis.MaxVestingDuration {
			return fmt.Errorf("%w: duration %d outside [%d, %d]", ErrInvalidVestingParams,
				c.VestingDuration, genesis.MinVestingDuration, genesis.MaxVestingDuration)
		}
		if c.VestingCliff < 0 || c.VestingCliff > c.VestingDuration {
			return fmt.Errorf("%w: cliff %d", ErrInvalidVestingParams, c.VestingCliff)
		}
	}
	if c.InitialPrice == 0 || c.MaxTokens == 0 {
		return fmt.Errorf("%w: initial price and max tokens must be positive", ErrInvalidPricing)
	}
	switch c.PricingModel {
	case Linear, Exponential, Fixed:
	case DutchAuction:
		if c.Slope == 0 || c.Slope > c.InitialPrice {
			return fmt.Errorf("%w: dutch auction floor must be in (0, initial price]", ErrInvalidPricing)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownPricingModel, uint8(c.PricingModel))
	}
	switch c.AntiBot {
	case AntiBotNone:
	case AntiBotBasic, AntiBotAdvanced, AntiBotMaximum:
		if c.MinPurchase > c.MaxPurchase || c.MaxPurchase == 0 {
			return fmt.Errorf("%w: purchase range [%d, %d]", ErrInvalidAntiBot, c.MinPurchase, c.MaxPurchase)
		}
		if c.Cooldown < 0 {
			return fmt.Errorf("%w: negative cooldown", ErrInvalidAntiBot)
		}
	default:
		return fmt.Errorf("%w: level %d", ErrInvalidAntiBot, uint8(c.AntiBot))
	}
	return nil
}

// CreateLaunch opens a sale and its mint. The mint authority is the launch
// record's derived address.
func (l *Ledger) CreateLaunch(ctx context.Context, authority solana.PublicKey, cfg LaunchConfig) (*LaunchRecord, error) {
	addr, bump, err := genesis.LaunchAddress(authority, cfg.Mint)
	if err != nil {
		return nil, err
	}

	var rec *LaunchRecord
	err = l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		now := tx.Now()
		if err := cfg.Validate(now); err != nil {
			return err
		}
		rec = &LaunchRecord{
			Authority:         authority,
			Mint:              cfg.Mint,
			PricingModel:      cfg.PricingModel,
			InitialPrice:      cfg.InitialPrice,
			Slope:             cfg.Slope,
			MaxTokens:         cfg.MaxTokens,
			StartTime:         cfg.StartTime,
			EndTime:           cfg.EndTime,
			VestingEnabled:    cfg.VestingEnabled,
			VestingDuration:   cfg.VestingDuration,
			VestingCliff:      cfg.VestingCliff,
			AntiBot:           cfg.AntiBot,
			MinPurchase:       cfg.MinPurchase,
			MaxPurchase:       cfg.MaxPurchase,
			Cooldown:          cfg.Cooldown,
			LastPurchaseTime:  now,
			AffiliateFeeBps:   cfg.AffiliateFeeBps,
			PlatformFeeBps:    cfg.PlatformFeeBps,
			PlatformRecipient: cfg.PlatformRecipient,
			CreatedAt:         now,
			Bump:              bump,
		}
		if err := tx.Create(addr, rec); err != nil {
			return err
		}
		if err := l.tokens.CreateMint(tx, cfg.Mint, addr, genesis.TokenDecimals); err != nil {
			return err
		}
		tx.Emit(events.LaunchCreatedEvent{
			BaseEvent: events.NewBase(events.LaunchCreated, now),
			Launch:    addr,
			Authority: authority,
			Mint:      cfg.Mint,
			Model:     cfg.PricingModel.String(),
			MaxTokens: cfg.MaxTokens,
			StartTime: cfg.StartTime,
			EndTime:   cfg.EndTime,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create launch: %w", err)
	}

	l.logger.Info("Launch created",
		zap.Stringer("launch", addr),
		zap.Stringer("mint", cfg.Mint),
		zap.Stringer("model", cfg.PricingModel),
		zap.Uint64("max_tokens", cfg.MaxTokens))
	return rec, nil
}

// PurchaseRequest is a buyer's order.
type PurchaseRequest struct {
	Authority solana.PublicKey `json:"authority"`
	Mint      solana.PublicKey `json:"mint"`
	SolAmount uint64           `json:"sol_amount"`
	Affiliate solana.PublicKey `json:"affiliate"`
	Vesting   bool             `json:"vesting"`
}

// HasAffiliate reports whether the order names a referrer.
func (r PurchaseRequest) HasAffiliate() bool { return !r.Affiliate.IsZero() }

// Quote is the priced breakdown of a purchase.
type Quote struct {
	Price        uint64 `json:"price"`
	Tokens       uint64 `json:"tokens"`
	PlatformFee  uint64 `json:"platform_fee"`
	AffiliateFee uint64 `json:"affiliate_fee"`
	NetAmount    uint64 `json:"net_amount"`
}

// PurchaseReceipt describes an executed purchase.
type PurchaseReceipt struct {
	Quote
	Launch     solana.PublicKey `json:"launch"`
	Buyer      solana.PublicKey `json:"buyer"`
	Commission uint64           `json:"commission"`
	Vested     bool             `json:"vested"`
	TokensSold uint64           `json:"tokens_sold"`
}

// quote prices sol against rec at now, enforcing supply but not gating.
func quote(rec *LaunchRecord, now int64, sol uint64, withAffiliate bool) (Quote, error) {
	price, err := CurrentPrice(rec, now)
	if err != nil {
		return Quote{}, err
	}
	if price == 0 {
		return Quote{}, ErrInvalidPrice
	}
	tokens, err := TokensForSol(sol, price)
	if err != nil {
		return Quote{}, fmt.Errorf("tokens for sol: %w", err)
	}
	if tokens == 0 {
		return Quote{}, fmt.Errorf("%w: amount buys no tokens", ErrInvalidAmount)
	}
	sold, err := safemath.Add(rec.TokensSold, tokens)
	if err != nil {
		return Quote{}, err
	}
	if sold > rec.MaxTokens {
		return Quote{}, fmt.Errorf("%w: %d available", ErrMaxSupplyReached, rec.MaxTokens-rec.TokensSold)
	}

	q := Quote{Price: price, Tokens: tokens}
	if rec.PlatformFeeBps > 0 {
		if q.PlatformFee, err = safemath.ApplyBps(sol, rec.PlatformFeeBps); err != nil {
			return Quote{}, err
		}
	}
	if withAffiliate {
		if q.AffiliateFee, err = safemath.ApplyBps(sol, rec.AffiliateFeeBps); err != nil {
			return Quote{}, err
		}
	}
	net, err := safemath.Sub(sol, q.PlatformFee)
	if err == nil {
		net, err = safemath.Sub(net, q.AffiliateFee)
	}
	if err != nil {
		return Quote{}, fmt.Errorf("%w: fees exceed amount", ErrInvalidFeeConfig)
	}
	q.NetAmount = net
	return q, nil
}

func (l *Ledger) checkPurchase(rec *LaunchRecord, now int64, sol uint64) error {
	if sol == 0 {
		return ErrInvalidAmount
	}
	if !rec.Active(now) {
		return fmt.Errorf("%w: window [%d, %d], now %d", ErrLaunchNotActive, rec.StartTime, rec.EndTime, now)
	}
	if rec.TokensSold >= rec.MaxTokens {
		return ErrMaxSupplyReached
	}
	if rec.AntiBot.checksAmount() && (sol < rec.MinPurchase || sol > rec.MaxPurchase) {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrPurchaseOutOfRange, sol, rec.MinPurchase, rec.MaxPurchase)
	}
	if rec.AntiBot.checksCooldown() && now-rec.LastPurchaseTime < rec.Cooldown {
		return fmt.Errorf("%w: %ds remaining", ErrCooldownActive, rec.Cooldown-(now-rec.LastPurchaseTime))
	}
	return nil
}

// BuyTokens executes a purchase. Fee transfers, minting, vesting and the
// affiliate commission all commit together or not at all.
func (l *Ledger) BuyTokens(ctx context.Context, buyer solana.PublicKey, req PurchaseRequest) (*PurchaseReceipt, error) {
	addr, _, err := genesis.LaunchAddress(req.Authority, req.Mint)
	if err != nil {
		return nil, err
	}
	vault, _, err := genesis.SolVaultAddress(req.Authority, req.Mint)
	if err != nil {
		return nil, err
	}
	if req.HasAffiliate() && l.commissions == nil {
		return nil, ErrAffiliateUnavailable
	}

	var receipt *PurchaseReceipt
	err = l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		now := tx.Now()
		var rec LaunchRecord
		if err := tx.Get(addr, &rec); err != nil {
			return err
		}
		if err := l.checkPurchase(&rec, now, req.SolAmount); err != nil {
			return err
		}
		if req.Vesting && !rec.VestingEnabled {
			return fmt.Errorf("%w: launch has no vesting", ErrInvalidVestingParams)
		}

		q, err := quote(&rec, now, req.SolAmount, req.HasAffiliate())
		if err != nil {
			return err
		}

		if err := l.tokens.TransferLamports(tx, buyer, rec.PlatformRecipient, q.PlatformFee); err != nil {
			return fmt.Errorf("platform fee: %w", err)
		}
		if err := l.tokens.TransferLamports(tx, buyer, vault, q.NetAmount); err != nil {
			return fmt.Errorf("sale proceeds: %w", err)
		}

		if req.Vesting {
			if err := l.vest(tx, addr, &rec, buyer, q.Tokens); err != nil {
				return err
			}
		} else if err := l.tokens.MintTo(tx, rec.Mint, buyer, addr, q.Tokens); err != nil {
			return fmt.Errorf("mint to buyer: %w", err)
		}

		var commission uint64
		if req.HasAffiliate() {
			commission, err = l.commissions.ProcessCommission(tx, addr, rec.Mint, req.Affiliate, q.Tokens)
			if err != nil {
				return fmt.Errorf("process commission: %w", err)
			}
		}

		if err := applyPurchase(&rec, now, q); err != nil {
			return err
		}
		if err := tx.Put(addr, &rec); err != nil {
			return err
		}

		receipt = &PurchaseReceipt{
			Quote:      q,
			Launch:     addr,
			Buyer:      buyer,
			Commission: commission,
			Vested:     req.Vesting,
			TokensSold: rec.TokensSold,
		}
		tx.Emit(events.TokensPurchasedEvent{
			BaseEvent:    events.NewBase(events.TokensPurchased, now),
			Launch:       addr,
			Mint:         rec.Mint,
			Buyer:        buyer,
			Affiliate:    req.Affiliate,
			SolAmount:    req.SolAmount,
			Price:        q.Price,
			TokensMinted: q.Tokens,
			PlatformFee:  q.PlatformFee,
			AffiliateFee: q.AffiliateFee,
			Vested:       req.Vesting,
			TokensSold:   rec.TokensSold,
		})
		return nil
	})
	if err != nil {
		l.logger.Debug("Purchase rejected",
			zap.Stringer("launch", addr),
			zap.Stringer("buyer", buyer),
			zap.Uint64("sol_amount", req.SolAmount),
			zap.Error(err))
		return nil, fmt.Errorf("buy tokens: %w", err)
	}

	l.logger.Info("Tokens purchased",
		zap.Stringer("launch", addr),
		zap.Stringer("buyer", buyer),
		zap.Uint64("sol_amount", req.SolAmount),
		zap.Uint64("tokens", receipt.Tokens),
		zap.Uint64("price", receipt.Price),
		zap.Uint64("commission", receipt.Commission))
	return receipt, nil
}

// applyPurchase records the sale. The affiliate fee is deducted from the
// sale and only tallied; commission is paid in tokens.
func applyPurchase(rec *LaunchRecord, now int64, q Quote) error {
	var err error
	if rec.TokensSold, err = safemath.Add(rec.TokensSold, q.Tokens); err != nil {
		return err
	}
	if rec.TotalSolCollected, err = safemath.Add(rec.TotalSolCollected, q.NetAmount); err != nil {
		return err
	}
	if rec.TotalPlatformFees, err = safemath.Add(rec.TotalPlatformFees, q.PlatformFee); err != nil {
		return err
	}
	if rec.TotalAffiliateFees, err = safemath.Add(rec.TotalAffiliateFees, q.AffiliateFee); err != nil {
		return err
	}
	if rec.PurchaseCount, err = safemath.Add(rec.PurchaseCount, 1); err != nil {
		return err
	}
	rec.LastPurchaseTime = now
	return nil
}

// vest mints tokens into the beneficiary's vesting vault and creates or
// refreshes the schedule. A refresh restarts the schedule with the unclaimed
// remainder plus the new tokens.
func (l *Ledger) vest(tx *ledger.Tx, launchAddr solana.PublicKey, rec *LaunchRecord, beneficiary solana.PublicKey, tokens uint64) error {
	vaddr, bump, err := genesis.VestingAddress(launchAddr, beneficiary)
	if err != nil {
		return err
	}

	var v VestingRecord
	if err := tx.Get(vaddr, &v); err != nil && !errors.Is(err, ledger.ErrNotFound) {
		return err
	}
	remaining, err := safemath.Sub(v.TotalAmount, v.ClaimedAmount)
	if err != nil {
		return err
	}
	total, err := safemath.Add(remaining, tokens)
	if err != nil {
		return err
	}

	now := tx.Now()
	v = VestingRecord{
		Launch:        launchAddr,
		Beneficiary:   beneficiary,
		TotalAmount:   total,
		StartTime:     now,
		Duration:      rec.VestingDuration,
		Cliff:         rec.VestingCliff,
		LastClaimTime: now,
		Bump:          bump,
	}
	if err := l.tokens.MintTo(tx, rec.Mint, vaddr, launchAddr, tokens); err != nil {
		return fmt.Errorf("mint to vesting vault: %w", err)
	}
	return tx.Put(vaddr, &v)
}

// WithdrawSol moves the entire sale vault to the launch authority.
func (l *Ledger) WithdrawSol(ctx context.Context, signer, authority, mint solana.PublicKey) (uint64, error) {
	if !signer.Equals(authority) {
		return 0, ErrAuthorityMismatch
	}
	addr, _, err := genesis.LaunchAddress(authority, mint)
	if err != nil {
		return 0, err
	}
	vault, _, err := genesis.SolVaultAddress(authority, mint)
	if err != nil {
		return 0, err
	}

	var amount uint64
	err = l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		var rec LaunchRecord
		if err := tx.Get(addr, &rec); err != nil {
			return err
		}
		if !rec.Authority.Equals(signer) {
			return ErrAuthorityMismatch
		}
		balance, err := l.tokens.Lamports(tx, vault)
		if err != nil {
			return err
		}
		if balance == 0 {
			return fmt.Errorf("%w: vault is empty", ErrInvalidAmount)
		}
		if err := l.tokens.TransferLamports(tx, vault, signer, balance); err != nil {
			return err
		}
		amount = balance
		tx.Emit(events.SolWithdrawnEvent{
			BaseEvent: events.NewBase(events.SolWithdrawn, tx.Now()),
			Launch:    addr,
			Authority: signer,
			Amount:    balance,
		})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("withdraw sol: %w", err)
	}

	l.logger.Info("Sale proceeds withdrawn",
		zap.Stringer("launch", addr),
		zap.Uint64("lamports", amount))
	return amount, nil
}

// ClaimVestedTokens transfers the unlocked part of a beneficiary's schedule.
func (l *Ledger) ClaimVestedTokens(ctx context.Context, beneficiary, authority, mint solana.PublicKey) (uint64, error) {
	addr, _, err := genesis.LaunchAddress(authority, mint)
	if err != nil {
		return 0, err
	}
	vaddr, _, err := genesis.VestingAddress(addr, beneficiary)
	if err != nil {
		return 0, err
	}

	var claimed uint64
	err = l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		now := tx.Now()
		var v VestingRecord
		if err := tx.Get(vaddr, &v); err != nil {
			return err
		}
		if !v.Beneficiary.Equals(beneficiary) {
			return ErrAuthorityMismatch
		}
		claimable, err := Claimable(&v, now)
		if err != nil {
			return err
		}
		if claimable == 0 {
			return ErrNoTokensToClaim
		}
		if err := l.tokens.Transfer(tx, mint, vaddr, beneficiary, vaddr, claimable); err != nil {
			return fmt.Errorf("release vested tokens: %w", err)
		}
		if v.ClaimedAmount, err = safemath.Add(v.ClaimedAmount, claimable); err != nil {
			return err
		}
		v.LastClaimTime = now
		if err := tx.Put(vaddr, &v); err != nil {
			return err
		}

		claimed = claimable
		tx.Emit(events.VestedTokensClaimedEvent{
			BaseEvent:   events.NewBase(events.VestedTokensClaimed, now),
			Launch:      addr,
			Beneficiary: beneficiary,
			Amount:      claimable,
			Claimed:     v.ClaimedAmount,
			Total:       v.TotalAmount,
		})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("claim vested tokens: %w", err)
	}

	l.logger.Info("Vested tokens claimed",
		zap.Stringer("launch", addr),
		zap.Stringer("beneficiary", beneficiary),
		zap.Uint64("amount", claimed))
	return claimed, nil
}

// LaunchUpdate is a partial update; nil fields are left unchanged.
type LaunchUpdate struct {
	EndTime     *int64  `json:"end_time,omitempty"`
	MaxTokens   *uint64 `json:"max_tokens,omitempty"`
	MinPurchase *uint64 `json:"min_purchase,omitempty"`
	MaxPurchase *uint64 `json:"max_purchase,omitempty"`
}

// UpdateLaunch applies an authority-signed partial update.
func (l *Ledger) UpdateLaunch(ctx context.Context, signer, authority, mint solana.PublicKey, upd LaunchUpdate) (*LaunchRecord, error) {
	if !signer.Equals(authority) {
		return nil, ErrAuthorityMismatch
	}
	addr, _, err := genesis.LaunchAddress(authority, mint)
	if err != nil {
		return nil, err
	}

	var rec LaunchRecord
	err = l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		now := tx.Now()
		if err := tx.Get(addr, &rec); err != nil {
			return err
		}
		if !rec.Authority.Equals(signer) {
			return ErrAuthorityMismatch
		}
		if upd.EndTime != nil {
			if *upd.EndTime <= now || *upd.EndTime <= rec.StartTime {
				return fmt.Errorf("%w: end %d must be in the future", ErrInvalidLaunchTime, *upd.EndTime)
			}
			rec.EndTime = *upd.EndTime
		}
		if upd.MaxTokens != nil {
			if *upd.MaxTokens < rec.TokensSold || *upd.MaxTokens == 0 {
				return fmt.Errorf("%w: max tokens %d below sold %d", ErrInvalidAmount, *upd.MaxTokens, rec.TokensSold)
			}
			rec.MaxTokens = *upd.MaxTokens
		}
		if upd.MinPurchase != nil {
			rec.MinPurchase = *upd.MinPurchase
		}
		if upd.MaxPurchase != nil {
			rec.MaxPurchase = *upd.MaxPurchase
		}
		if rec.AntiBot.checksAmount() && (rec.MinPurchase > rec.MaxPurchase || rec.MaxPurchase == 0) {
			return fmt.Errorf("%w: purchase range [%d, %d]", ErrInvalidAntiBot, rec.MinPurchase, rec.MaxPurchase)
		}
		if err := tx.Put(addr, &rec); err != nil {
			return err
		}
		tx.Emit(events.LaunchUpdatedEvent{
			BaseEvent:   events.NewBase(events.LaunchUpdated, now),
			Launch:      addr,
			EndTime:     rec.EndTime,
			MaxTokens:   rec.MaxTokens,
			MinPurchase: rec.MinPurchase,
			MaxPurchase: rec.MaxPurchase,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update launch: %w", err)
	}

	l.logger.Info("Launch updated", zap.Stringer("launch", addr))
	return &rec, nil
}

// GetLaunch loads a launch record.
func (l *Ledger) GetLaunch(ctx context.Context, authority, mint solana.PublicKey) (*LaunchRecord, error) {
	addr, _, err := genesis.LaunchAddress(authority, mint)
	if err != nil {
		return nil, err
	}
	var rec LaunchRecord
	if err := l.store.View(ctx, func(tx *ledger.Tx) error { return tx.Get(addr, &rec) }); err != nil {
		return nil, err
	}
	return &rec, nil
}

// VestingStatus is a schedule with its unlock state at query time.
type VestingStatus struct {
	VestingRecord
	Vested    uint64 `json:"vested"`
	Claimable uint64 `json:"claimable"`
}

// GetVesting loads a beneficiary's schedule.
func (l *Ledger) GetVesting(ctx context.Context, authority, mint, beneficiary solana.PublicKey) (*VestingStatus, error) {
	addr, _, err := genesis.LaunchAddress(authority, mint)
	if err != nil {
		return nil, err
	}
	vaddr, _, err := genesis.VestingAddress(addr, beneficiary)
	if err != nil {
		return nil, err
	}

	var st VestingStatus
	err = l.store.View(ctx, func(tx *ledger.Tx) error {
		if err := tx.Get(vaddr, &st.VestingRecord); err != nil {
			return err
		}
		if st.Vested, err = Vested(&st.VestingRecord, tx.Now()); err != nil {
			return err
		}
		st.Claimable, err = Claimable(&st.VestingRecord, tx.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// QuotePurchase prices an order without executing it or applying anti-bot gates.
func (l *Ledger) QuotePurchase(ctx context.Context, authority, mint solana.PublicKey, sol uint64, withAffiliate bool) (*Quote, error) {
	addr, _, err := genesis.LaunchAddress(authority, mint)
	if err != nil {
		return nil, err
	}
	var q Quote
	err = l.store.View(ctx, func(tx *ledger.Tx) error {
		var rec LaunchRecord
		if err := tx.Get(addr, &rec); err != nil {
			return err
		}
		if sol == 0 {
			return ErrInvalidAmount
		}
		q, err = quote(&rec, tx.Now(), sol, withAffiliate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListLaunches returns every launch record.
func (l *Ledger) ListLaunches(ctx context.Context) ([]LaunchRecord, error) {
	addrs := l.store.List(ledger.KindLaunch)
	out := make([]LaunchRecord, 0, len(addrs))
	err := l.store.View(ctx, func(tx *ledger.Tx) error {
		for _, a := range addrs {
			var rec LaunchRecord
			if err := tx.Get(a, &rec); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}
