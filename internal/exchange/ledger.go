// internal/exchange/ledger.go
package exchange

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
	"github.com/rovshanmuradov/genesis-launchpad/internal/genesis"
	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
	"github.com/rovshanmuradov/genesis-launchpad/internal/safemath"
)

// TokenLedger is the token primitive the pool custodies balances with.
type TokenLedger interface {
	Supply(tx *ledger.Tx, mint solana.PublicKey) (uint64, error)
	Transfer(tx *ledger.Tx, mint, from, to, authority solana.PublicKey, amount uint64) error
	Balance(tx *ledger.Tx, mint, owner solana.PublicKey) (uint64, error)
}

// Ledger runs oracle-priced pools.
type Ledger struct {
	store  *ledger.Store
	tokens TokenLedger
	logger *zap.Logger
}

// NewLedger creates the exchange engine.
func NewLedger(store *ledger.Store, tokens TokenLedger, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:  store,
		tokens: tokens,
		logger: logger.Named("exchange"),
	}
}

// PoolConfig describes a new pool.
type PoolConfig struct {
	MintA               solana.PublicKey `json:"mint_a"`
	MintB               solana.PublicKey `json:"mint_b"`
	OracleAuthority     solana.PublicKey `json:"oracle_authority"`
	Provider            OracleProvider   `json:"provider"`
	PythFeedA           solana.PublicKey `json:"pyth_feed_a"`
	PythFeedB           solana.PublicKey `json:"pyth_feed_b"`
	SwitchboardFeed     solana.PublicKey `json:"switchboard_feed"`
	FeeBps              uint16           `json:"fee_bps"`
	DynamicFeeEnabled   bool             `json:"dynamic_fee_enabled"`
	VolatilityThreshold uint64           `json:"volatility_threshold"`
}

// PoolConfigUpdate is the mutable part of a pool's configuration.
type PoolConfigUpdate struct {
	FeeBps              uint16 `json:"fee_bps"`
	DynamicFeeEnabled   bool   `json:"dynamic_fee_enabled"`
	VolatilityThreshold uint64 `json:"volatility_threshold"`
}

// Validate checks fee bounds and the dynamic fee threshold.
func (u PoolConfigUpdate) Validate() error {
	if u.FeeBps > genesis.MaxDynamicFeeBps {
		return fmt.Errorf("%w: fee %d bps above %d", ErrInvalidPoolConfig, u.FeeBps, genesis.MaxDynamicFeeBps)
	}
	if u.DynamicFeeEnabled && u.VolatilityThreshold == 0 {
		return fmt.Errorf("%w: dynamic fee needs a volatility threshold", ErrInvalidPoolConfig)
	}
	return nil
}

// Validate checks the pair and fee configuration.
func (c *PoolConfig) Validate() error {
	if c.MintA.IsZero() || c.MintB.IsZero() || c.MintA.Equals(c.MintB) {
		return fmt.Errorf("%w: pool needs two distinct mints", ErrInvalidMint)
	}
	if c.OracleAuthority.IsZero() {
		return fmt.Errorf("%w: oracle authority required", ErrInvalidPoolConfig)
	}
	if c.Provider > ProviderHybrid {
		return fmt.Errorf("%w: provider %d", ErrInvalidPoolConfig, uint8(c.Provider))
	}
	return PoolConfigUpdate{
		FeeBps:              c.FeeBps,
		DynamicFeeEnabled:   c.DynamicFeeEnabled,
		VolatilityThreshold: c.VolatilityThreshold,
	}.Validate()
}

// CreatePool opens a pool for a mint pair at a 1:1 price.
func (l *Ledger) CreatePool(ctx context.Context, signer solana.PublicKey, cfg PoolConfig) (*PoolRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	addr, bump, err := genesis.PoolAddress(cfg.MintA, cfg.MintB)
	if err != nil {
		return nil, err
	}

	var rec *PoolRecord
	err = l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		now := tx.Now()
		for _, m := range []solana.PublicKey{cfg.MintA, cfg.MintB} {
			if _, err := l.tokens.Supply(tx, m); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidMint, err)
			}
		}
		rec = &PoolRecord{
			MintA:                cfg.MintA,
			MintB:                cfg.MintB,
			OracleAuthority:      cfg.OracleAuthority,
			Provider:             cfg.Provider,
			PythFeedA:            cfg.PythFeedA,
			PythFeedB:            cfg.PythFeedB,
			SwitchboardFeed:      cfg.SwitchboardFeed,
			OraclePrice:          genesis.PricePrecision,
			FeeBps:               cfg.FeeBps,
			DynamicFeeEnabled:    cfg.DynamicFeeEnabled,
			VolatilityThreshold:  cfg.VolatilityThreshold,
			LastOracleUpdate:     now,
			LastVolatilityUpdate: now,
			CreatedAt:            now,
			Bump:                 bump,
		}
		for i := range rec.PriceHistory {
			rec.PriceHistory[i] = genesis.PricePrecision
		}
		if err := tx.Create(addr, rec); err != nil {
			return err
		}
		tx.Emit(events.PoolCreatedEvent{
			BaseEvent:       events.NewBase(events.PoolCreated, now),
			Pool:            addr,
			MintA:           cfg.MintA,
			MintB:           cfg.MintB,
			OracleAuthority: cfg.OracleAuthority,
			FeeBps:          cfg.FeeBps,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	l.logger.Info("Pool created",
		zap.Stringer("pool", addr),
		zap.Stringer("mint_a", cfg.MintA),
		zap.Stringer("mint_b", cfg.MintB),
		zap.Stringer("provider", cfg.Provider),
		zap.Stringer("creator", signer))
	return rec, nil
}

// loadForAuthority reads a pool and checks signer is its oracle authority.
func loadForAuthority(tx *ledger.Tx, signer, mintA, mintB solana.PublicKey) (solana.PublicKey, *PoolRecord, error) {
	addr, _, err := genesis.PoolAddress(mintA, mintB)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	var p PoolRecord
	if err := tx.Get(addr, &p); err != nil {
		return solana.PublicKey{}, nil, err
	}
	if !p.OracleAuthority.Equals(signer) {
		return solana.PublicKey{}, nil, ErrInvalidOracleAuthority
	}
	return addr, &p, nil
}

// UpdateOraclePrice merges new per-source prices and records the weighted
// aggregate.
func (l *Ledger) UpdateOraclePrice(ctx context.Context, signer, mintA, mintB solana.PublicKey, src PriceSources) (*PoolRecord, error) {
	for _, p := range []*uint64{src.Pyth, src.Switchboard, src.AI} {
		if p != nil && *p == 0 {
			return nil, fmt.Errorf("update oracle price: %w: source price is zero", ErrInvalidPrice)
		}
	}

	var rec *PoolRecord
	err := l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		now := tx.Now()
		addr, p, err := loadForAuthority(tx, signer, mintA, mintB)
		if err != nil {
			return err
		}
		p.merge(src)
		p.OraclePrice = WeightedPrice(p.sources(), p.OraclePrice)
		p.LastOracleUpdate = now
		p.recordPrice(p.OraclePrice)
		if err := tx.Put(addr, p); err != nil {
			return err
		}
		rec = p
		tx.Emit(events.PriceUpdateEvent{
			BaseEvent:   events.NewBase(events.OraclePriceUpdated, now),
			Pool:        addr,
			Pyth:        p.PythPrice,
			Switchboard: p.SwitchboardPrice,
			AI:          p.AIPrice,
			Weighted:    p.OraclePrice,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update oracle price: %w", err)
	}

	l.logger.Debug("Oracle price updated",
		zap.Stringer("mint_a", mintA),
		zap.Stringer("mint_b", mintB),
		zap.Uint64("weighted", rec.OraclePrice))
	return rec, nil
}

// UpdateOraclePriceLegacy sets the aggregate price directly. Per-source
// prices and the history are left untouched.
func (l *Ledger) UpdateOraclePriceLegacy(ctx context.Context, signer, mintA, mintB solana.PublicKey, price uint64) (*PoolRecord, error) {
	if price == 0 {
		return nil, fmt.Errorf("update oracle price: %w: price is zero", ErrInvalidPrice)
	}
	var rec *PoolRecord
	err := l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		now := tx.Now()
		addr, p, err := loadForAuthority(tx, signer, mintA, mintB)
		if err != nil {
			return err
		}
		p.OraclePrice = price
		p.LastOracleUpdate = now
		if err := tx.Put(addr, p); err != nil {
			return err
		}
		rec = p
		tx.Emit(events.PriceUpdateEvent{
			BaseEvent: events.NewBase(events.OraclePriceUpdated, now),
			Pool:      addr,
			Weighted:  price,
			Legacy:    true,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update oracle price: %w", err)
	}
	return rec, nil
}

// SwapRequest sells AmountIn of SourceMint for the other side of the pair.
type SwapRequest struct {
	MintA        solana.PublicKey `json:"mint_a"`
	MintB        solana.PublicKey `json:"mint_b"`
	SourceMint   solana.PublicKey `json:"source_mint"`
	AmountIn     uint64           `json:"amount_in"`
	MinAmountOut uint64           `json:"min_amount_out"`
}

// SwapQuote is the priced breakdown of a swap.
type SwapQuote struct {
	Price           uint64           `json:"price"`
	Volatility      uint64           `json:"volatility"`
	FeeBps          uint16           `json:"fee_bps"`
	AmountBeforeFee uint64           `json:"amount_before_fee"`
	FeeAmount       uint64           `json:"fee_amount"`
	AmountOut       uint64           `json:"amount_out"`
	DestinationMint solana.PublicKey `json:"destination_mint"`
}

// priceSwap computes a swap against p at now without checking slippage or
// liquidity.
func priceSwap(p *PoolRecord, now int64, req SwapRequest) (SwapQuote, error) {
	if req.AmountIn == 0 {
		return SwapQuote{}, ErrInvalidAmount
	}
	sellingA := req.SourceMint.Equals(p.MintA)
	if !sellingA && !req.SourceMint.Equals(p.MintB) {
		return SwapQuote{}, fmt.Errorf("%w: %s is not in the pair", ErrInvalidMint, req.SourceMint)
	}
	if p.Stale(now) {
		return SwapQuote{}, fmt.Errorf("%w: last update %ds ago", ErrOraclePriceStale, now-p.LastOracleUpdate)
	}

	q := SwapQuote{
		Price:           WeightedPrice(p.sources(), p.OraclePrice),
		Volatility:      Volatility(p.PriceHistory[:]),
		DestinationMint: p.MintA,
	}
	if sellingA {
		q.DestinationMint = p.MintB
	}
	if q.Price == 0 {
		return SwapQuote{}, ErrNoValidPriceSources
	}
	q.FeeBps = DynamicFee(p.FeeBps, p.DynamicFeeEnabled, q.Volatility, p.VolatilityThreshold)

	var err error
	if q.AmountBeforeFee, err = OutputAmount(req.AmountIn, q.Price, sellingA); err != nil {
		return SwapQuote{}, fmt.Errorf("swap output: %w", err)
	}
	if q.FeeAmount, err = safemath.ApplyBps(q.AmountBeforeFee, q.FeeBps); err != nil {
		return SwapQuote{}, fmt.Errorf("swap fee: %w", err)
	}
	q.AmountOut = q.AmountBeforeFee - q.FeeAmount
	return q, nil
}

// SwapReceipt describes an executed swap.
type SwapReceipt struct {
	SwapQuote
	Pool       solana.PublicKey `json:"pool"`
	User       solana.PublicKey `json:"user"`
	SourceMint solana.PublicKey `json:"source_mint"`
	AmountIn   uint64           `json:"amount_in"`
}

// Swap executes a swap at the live weighted price.
func (l *Ledger) Swap(ctx context.Context, user solana.PublicKey, req SwapRequest) (*SwapReceipt, error) {
	addr, _, err := genesis.PoolAddress(req.MintA, req.MintB)
	if err != nil {
		return nil, err
	}
	vaultA, vaultB, err := genesis.PoolVaultAddresses(req.MintA, req.MintB)
	if err != nil {
		return nil, err
	}

	var receipt *SwapReceipt
	err = l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		now := tx.Now()
		var p PoolRecord
		if err := tx.Get(addr, &p); err != nil {
			return err
		}
		q, err := priceSwap(&p, now, req)
		if err != nil {
			return err
		}
		if q.AmountOut < req.MinAmountOut {
			return &SlippageExceededError{Expected: q.AmountOut, Minimum: req.MinAmountOut}
		}

		srcVault, dstVault := vaultA, vaultB
		srcLiquidity, dstLiquidity := &p.LiquidityA, &p.LiquidityB
		if !req.SourceMint.Equals(p.MintA) {
			srcVault, dstVault = vaultB, vaultA
			srcLiquidity, dstLiquidity = &p.LiquidityB, &p.LiquidityA
		}

		available, err := l.tokens.Balance(tx, q.DestinationMint, dstVault)
		if err != nil {
			return err
		}
		if available < q.AmountOut {
			return fmt.Errorf("%w: vault holds %d, swap needs %d", ErrInsufficientLiquidity, available, q.AmountOut)
		}

		if err := l.tokens.Transfer(tx, req.SourceMint, user, srcVault, user, req.AmountIn); err != nil {
			return fmt.Errorf("swap inbound: %w", err)
		}
		if err := l.tokens.Transfer(tx, q.DestinationMint, dstVault, user, dstVault, q.AmountOut); err != nil {
			return fmt.Errorf("swap outbound: %w", err)
		}

		if *srcLiquidity, err = safemath.Add(*srcLiquidity, req.AmountIn); err != nil {
			return err
		}
		if *dstLiquidity, err = safemath.Sub(*dstLiquidity, q.AmountOut); err != nil {
			return fmt.Errorf("%w: liquidity counter: %w", ErrInsufficientLiquidity, err)
		}
		p.recordPrice(q.Price)
		p.LastVolatilityUpdate = now
		if err := tx.Put(addr, &p); err != nil {
			return err
		}

		receipt = &SwapReceipt{
			SwapQuote:  q,
			Pool:       addr,
			User:       user,
			SourceMint: req.SourceMint,
			AmountIn:   req.AmountIn,
		}
		tx.Emit(events.SwapExecutedEvent{
			BaseEvent:  events.NewBase(events.SwapExecuted, now),
			Pool:       addr,
			User:       user,
			SourceMint: req.SourceMint,
			AmountIn:   req.AmountIn,
			AmountOut:  q.AmountOut,
			FeeAmount:  q.FeeAmount,
			FeeBps:     q.FeeBps,
			Price:      q.Price,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("swap: %w", err)
	}

	l.logger.Info("Swap executed",
		zap.Stringer("pool", addr),
		zap.Stringer("user", user),
		zap.Uint64("amount_in", req.AmountIn),
		zap.Uint64("amount_out", receipt.AmountOut),
		zap.Uint16("fee_bps", receipt.FeeBps))
	return receipt, nil
}

// QuoteSwap prices a swap without executing it.
func (l *Ledger) QuoteSwap(ctx context.Context, req SwapRequest) (*SwapQuote, error) {
	addr, _, err := genesis.PoolAddress(req.MintA, req.MintB)
	if err != nil {
		return nil, err
	}
	var q SwapQuote
	err = l.store.View(ctx, func(tx *ledger.Tx) error {
		var p PoolRecord
		if err := tx.Get(addr, &p); err != nil {
			return err
		}
		q, err = priceSwap(&p, tx.Now(), req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// AddLiquidity deposits into both vaults. No share is issued.
func (l *Ledger) AddLiquidity(ctx context.Context, user, mintA, mintB solana.PublicKey, amountA, amountB uint64) (*PoolRecord, error) {
	if amountA == 0 && amountB == 0 {
		return nil, fmt.Errorf("add liquidity: %w", ErrInvalidAmount)
	}
	addr, _, err := genesis.PoolAddress(mintA, mintB)
	if err != nil {
		return nil, err
	}
	vaultA, vaultB, err := genesis.PoolVaultAddresses(mintA, mintB)
	if err != nil {
		return nil, err
	}

	var rec *PoolRecord
	err = l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		var p PoolRecord
		if err := tx.Get(addr, &p); err != nil {
			return err
		}
		if err := l.tokens.Transfer(tx, mintA, user, vaultA, user, amountA); err != nil {
			return fmt.Errorf("deposit a: %w", err)
		}
		if err := l.tokens.Transfer(tx, mintB, user, vaultB, user, amountB); err != nil {
			return fmt.Errorf("deposit b: %w", err)
		}
		if p.LiquidityA, err = safemath.Add(p.LiquidityA, amountA); err != nil {
			return err
		}
		if p.LiquidityB, err = safemath.Add(p.LiquidityB, amountB); err != nil {
			return err
		}
		if err := tx.Put(addr, &p); err != nil {
			return err
		}
		rec = &p
		tx.Emit(events.LiquidityAddedEvent{
			BaseEvent: events.NewBase(events.LiquidityAdded, tx.Now()),
			Pool:      addr,
			User:      user,
			AmountA:   amountA,
			AmountB:   amountB,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add liquidity: %w", err)
	}

	l.logger.Info("Liquidity added",
		zap.Stringer("pool", addr),
		zap.Uint64("amount_a", amountA),
		zap.Uint64("amount_b", amountB))
	return rec, nil
}

// UpdatePoolConfig changes fee settings. Oracle authority only.
func (l *Ledger) UpdatePoolConfig(ctx context.Context, signer, mintA, mintB solana.PublicKey, upd PoolConfigUpdate) (*PoolRecord, error) {
	if err := upd.Validate(); err != nil {
		return nil, fmt.Errorf("update pool config: %w", err)
	}
	var rec *PoolRecord
	err := l.store.Atomically(ctx, func(tx *ledger.Tx) error {
		now := tx.Now()
		addr, p, err := loadForAuthority(tx, signer, mintA, mintB)
		if err != nil {
			return err
		}
		p.FeeBps = upd.FeeBps
		p.DynamicFeeEnabled = upd.DynamicFeeEnabled
		p.VolatilityThreshold = upd.VolatilityThreshold
		p.LastVolatilityUpdate = now
		if err := tx.Put(addr, p); err != nil {
			return err
		}
		rec = p
		tx.Emit(events.PoolConfigUpdatedEvent{
			BaseEvent:           events.NewBase(events.PoolConfigUpdated, now),
			Pool:                addr,
			FeeBps:              upd.FeeBps,
			DynamicFeeEnabled:   upd.DynamicFeeEnabled,
			VolatilityThreshold: upd.VolatilityThreshold,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update pool config: %w", err)
	}

	l.logger.Info("Pool config updated",
		zap.Stringer("mint_a", mintA),
		zap.Stringer("mint_b", mintB),
		zap.Uint16("fee_bps", upd.FeeBps),
		zap.Bool("dynamic", upd.DynamicFeeEnabled))
	return rec, nil
}

// EmergencyPause records the authority's intent to halt or resume trading.
// Swaps are not blocked; no paused state is stored.
func (l *Ledger) EmergencyPause(ctx context.Context, signer, mintA, mintB solana.PublicKey, paused bool) error {
	err := l.store.View(ctx, func(tx *ledger.Tx) error {
		_, _, err := loadForAuthority(tx, signer, mintA, mintB)
		return err
	})
	if err != nil {
		return fmt.Errorf("emergency pause: %w", err)
	}

	action := "resumed"
	if paused {
		action = "paused"
	}
	l.logger.Warn("Emergency control: pool trading "+action,
		zap.Stringer("mint_a", mintA),
		zap.Stringer("mint_b", mintB),
		zap.Stringer("authority", signer))
	return nil
}

// PoolStatus is a pool with its derived fee state.
type PoolStatus struct {
	PoolRecord
	Address     solana.PublicKey `json:"address"`
	Volatility  uint64           `json:"volatility"`
	CurrentFee  uint16           `json:"current_fee_bps"`
	OracleStale bool             `json:"oracle_stale"`
}

func status(addr solana.PublicKey, p PoolRecord, now int64) PoolStatus {
	vol := Volatility(p.PriceHistory[:])
	return PoolStatus{
		PoolRecord:  p,
		Address:     addr,
		Volatility:  vol,
		CurrentFee:  DynamicFee(p.FeeBps, p.DynamicFeeEnabled, vol, p.VolatilityThreshold),
		OracleStale: p.Stale(now),
	}
}

// GetPool loads a pool with its derived fee state.
func (l *Ledger) GetPool(ctx context.Context, mintA, mintB solana.PublicKey) (*PoolStatus, error) {
	addr, _, err := genesis.PoolAddress(mintA, mintB)
	if err != nil {
		return nil, err
	}
	var st PoolStatus
	err = l.store.View(ctx, func(tx *ledger.Tx) error {
		var p PoolRecord
		if err := tx.Get(addr, &p); err != nil {
			return err
		}
		st = status(addr, p, tx.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListPools returns every pool.
func (l *Ledger) ListPools(ctx context.Context) ([]PoolStatus, error) {
	addrs := l.store.List(ledger.KindPool)
	out := make([]PoolStatus, 0, len(addrs))
	err := l.store.View(ctx, func(tx *ledger.Tx) error {
		for _, a := range addrs {
			var p PoolRecord
			if err := tx.Get(a, &p); err != nil {
				return err
			}
			out = append(out, status(a, p, tx.Now()))
		}
		return nil
	})
	return out, err
}
