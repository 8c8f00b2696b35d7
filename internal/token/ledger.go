// internal/token/ledger.go
package token

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
	"github.com/rovshanmuradov/genesis-launchpad/internal/safemath"
)

var (
	ErrAuthorityMismatch = fmt.Errorf("%w: token authority mismatch", ledger.ErrUnauthorized)
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMintNotFound      = errors.New("mint not found")
)

// Ledger is the in-process fungible token primitive: mints, token accounts
// and native lamport balances stored in the shared record store.
type Ledger struct {
	logger *zap.Logger
}

// NewLedger creates a token ledger.
func NewLedger(logger *zap.Logger) *Ledger {
	return &Ledger{logger: logger.Named("token")}
}

// CreateMint registers a new mint controlled by authority.
func (l *Ledger) CreateMint(tx *ledger.Tx, mint, authority solana.PublicKey, decimals uint8) error {
	if err := tx.Create(mint, &Mint{Authority: authority, Decimals: decimals}); err != nil {
		return fmt.Errorf("create mint: %w", err)
	}
	l.logger.Debug("Mint created",
		zap.Stringer("mint", mint),
		zap.Stringer("authority", authority))
	return nil
}

// MintInfo loads a mint record.
func (l *Ledger) MintInfo(tx *ledger.Tx, mint solana.PublicKey) (*Mint, error) {
	var m Mint
	if err := tx.Get(mint, &m); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
		}
		return nil, err
	}
	return &m, nil
}

// MintTo mints amount to owner's token account. authority must be the mint
// authority; the destination account is opened on first use.
func (l *Ledger) MintTo(tx *ledger.Tx, mint, owner, authority solana.PublicKey, amount uint64) error {
	m, err := l.MintInfo(tx, mint)
	if err != nil {
		return err
	}
	if !m.Authority.Equals(authority) {
		return fmt.Errorf("mint to %s: %w", mint, ErrAuthorityMismatch)
	}
	if m.Supply, err = safemath.Add(m.Supply, amount); err != nil {
		return fmt.Errorf("mint supply: %w", err)
	}

	addr, acct, err := l.account(tx, owner, mint)
	if err != nil {
		return err
	}
	if acct.Amount, err = safemath.Add(acct.Amount, amount); err != nil {
		return fmt.Errorf("mint to balance: %w", err)
	}

	if err := tx.Put(mint, m); err != nil {
		return err
	}
	return tx.Put(addr, acct)
}

// Transfer moves amount of mint from one owner to another. authority must
// own the source account.
func (l *Ledger) Transfer(tx *ledger.Tx, mint, from, to, authority solana.PublicKey, amount uint64) error {
	if !from.Equals(authority) {
		return fmt.Errorf("transfer from %s: %w", from, ErrAuthorityMismatch)
	}
	if from.Equals(to) || amount == 0 {
		return nil
	}

	srcAddr, src, err := l.account(tx, from, mint)
	if err != nil {
		return err
	}
	dstAddr, dst, err := l.account(tx, to, mint)
	if err != nil {
		return err
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, src.Amount, amount)
	}
	src.Amount -= amount
	if dst.Amount, err = safemath.Add(dst.Amount, amount); err != nil {
		return fmt.Errorf("transfer balance: %w", err)
	}

	if err := tx.Put(srcAddr, src); err != nil {
		return err
	}
	return tx.Put(dstAddr, dst)
}

// Balance returns owner's balance of mint; a missing account reads as zero.
func (l *Ledger) Balance(tx *ledger.Tx, mint, owner solana.PublicKey) (uint64, error) {
	addr, err := AccountAddress(owner, mint)
	if err != nil {
		return 0, err
	}
	var acct Account
	if err := tx.Get(addr, &acct); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return acct.Amount, nil
}

// Supply returns the circulating supply of mint.
func (l *Ledger) Supply(tx *ledger.Tx, mint solana.PublicKey) (uint64, error) {
	m, err := l.MintInfo(tx, mint)
	if err != nil {
		return 0, err
	}
	return m.Supply, nil
}

// TransferLamports moves native balance between two addresses. from must
// be the signer or a derived vault acting through its owning ledger.
func (l *Ledger) TransferLamports(tx *ledger.Tx, from, to solana.PublicKey, amount uint64) error {
	if from.Equals(to) || amount == 0 {
		return nil
	}
	srcAddr, src, err := l.lamports(tx, from)
	if err != nil {
		return err
	}
	dstAddr, dst, err := l.lamports(tx, to)
	if err != nil {
		return err
	}
	if src.Lamports < amount {
		return fmt.Errorf("%w: have %d lamports, need %d", ErrInsufficientFunds, src.Lamports, amount)
	}
	src.Lamports -= amount
	if dst.Lamports, err = safemath.Add(dst.Lamports, amount); err != nil {
		return fmt.Errorf("lamport balance: %w", err)
	}

	if err := tx.Put(srcAddr, src); err != nil {
		return err
	}
	return tx.Put(dstAddr, dst)
}

// Lamports returns the native balance of owner.
func (l *Ledger) Lamports(tx *ledger.Tx, owner solana.PublicKey) (uint64, error) {
	_, acct, err := l.lamports(tx, owner)
	if err != nil {
		return 0, err
	}
	return acct.Lamports, nil
}

// Airdrop credits lamports out of thin air. Development faucet only.
func (l *Ledger) Airdrop(tx *ledger.Tx, owner solana.PublicKey, amount uint64) error {
	addr, acct, err := l.lamports(tx, owner)
	if err != nil {
		return err
	}
	if acct.Lamports, err = safemath.Add(acct.Lamports, amount); err != nil {
		return fmt.Errorf("airdrop: %w", err)
	}
	l.logger.Debug("Airdrop", zap.Stringer("owner", owner), zap.Uint64("lamports", amount))
	return tx.Put(addr, acct)
}

func (l *Ledger) account(tx *ledger.Tx, owner, mint solana.PublicKey) (solana.PublicKey, *Account, error) {
	addr, err := AccountAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	acct := &Account{Owner: owner, Mint: mint}
	if err := tx.Get(addr, acct); err != nil && !errors.Is(err, ledger.ErrNotFound) {
		return solana.PublicKey{}, nil, err
	}
	return addr, acct, nil
}

func (l *Ledger) lamports(tx *ledger.Tx, owner solana.PublicKey) (solana.PublicKey, *LamportAccount, error) {
	addr, err := lamportAddress(owner)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	acct := &LamportAccount{Owner: owner}
	if err := tx.Get(addr, acct); err != nil && !errors.Is(err, ledger.ErrNotFound) {
		return solana.PublicKey{}, nil, err
	}
	return addr, acct, nil
}
