// internal/platform/platform.go
package platform

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/affiliate"
	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
	"github.com/rovshanmuradov/genesis-launchpad/internal/exchange"
	"github.com/rovshanmuradov/genesis-launchpad/internal/genesis"
	"github.com/rovshanmuradov/genesis-launchpad/internal/launch"
	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
	"github.com/rovshanmuradov/genesis-launchpad/internal/token"
)

// Platform wires the three ledgers onto one store so that a purchase and
// its commission commit together.
type Platform struct {
	Store      *ledger.Store
	Tokens     *token.Ledger
	Launches   *launch.Ledger
	Affiliates *affiliate.Ledger
	Pools      *exchange.Ledger

	logger *zap.Logger
}

// New builds a platform on an empty store. clock and publisher may be nil.
func New(clock ledger.Clock, publisher events.Publisher, logger *zap.Logger) *Platform {
	store := ledger.NewStore(clock, publisher, logger)
	tokens := token.NewLedger(logger)
	affiliates := affiliate.NewLedger(store, tokens, logger)

	return &Platform{
		Store:      store,
		Tokens:     tokens,
		Launches:   launch.NewLedger(store, tokens, affiliates, logger),
		Affiliates: affiliates,
		Pools:      exchange.NewLedger(store, tokens, logger),
		logger:     logger.Named("platform"),
	}
}

// Airdrop credits lamports from the dev faucet.
func (p *Platform) Airdrop(ctx context.Context, owner solana.PublicKey, lamports uint64) (uint64, error) {
	var balance uint64
	err := p.Store.Atomically(ctx, func(tx *ledger.Tx) error {
		if err := p.Tokens.Airdrop(tx, owner, lamports); err != nil {
			return err
		}
		var err error
		balance, err = p.Tokens.Lamports(tx, owner)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("airdrop: %w", err)
	}
	return balance, nil
}

// CreateToken opens a standalone mint, e.g. the quote side of a pool, and
// mints an initial supply to the authority.
func (p *Platform) CreateToken(ctx context.Context, mint, authority solana.PublicKey, supply uint64) error {
	err := p.Store.Atomically(ctx, func(tx *ledger.Tx) error {
		if err := p.Tokens.CreateMint(tx, mint, authority, genesis.TokenDecimals); err != nil {
			return err
		}
		if supply == 0 {
			return nil
		}
		return p.Tokens.MintTo(tx, mint, authority, authority, supply)
	})
	if err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	p.logger.Info("Token created",
		zap.Stringer("mint", mint),
		zap.Stringer("authority", authority),
		zap.Uint64("supply", supply))
	return nil
}

// Transfer moves tokens between two owners; the owner of the source signs.
func (p *Platform) Transfer(ctx context.Context, signer, mint, to solana.PublicKey, amount uint64) error {
	err := p.Store.Atomically(ctx, func(tx *ledger.Tx) error {
		return p.Tokens.Transfer(tx, mint, signer, to, signer, amount)
	})
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	return nil
}

// Wallet is a read-only balance snapshot.
type Wallet struct {
	Owner    solana.PublicKey `json:"owner"`
	Lamports uint64           `json:"lamports"`
	Mint     solana.PublicKey `json:"mint,omitempty"`
	Tokens   uint64           `json:"tokens"`
}

// Balance reads an owner's lamports and, when mint is set, token balance.
func (p *Platform) Balance(ctx context.Context, owner, mint solana.PublicKey) (*Wallet, error) {
	w := &Wallet{Owner: owner, Mint: mint}
	err := p.Store.View(ctx, func(tx *ledger.Tx) error {
		var err error
		if w.Lamports, err = p.Tokens.Lamports(tx, owner); err != nil {
			return err
		}
		if mint.IsZero() {
			return nil
		}
		w.Tokens, err = p.Tokens.Balance(tx, mint, owner)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	return w, nil
}

// Stats reports store counters.
func (p *Platform) Stats() map[string]uint64 {
	return p.Store.Stats()
}
