package token

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
)

func setup(t *testing.T) (*ledger.Store, *Ledger) {
	t.Helper()
	return ledger.NewStore(ledger.NewManualClock(1_000), nil, zap.NewNop()), NewLedger(zap.NewNop())
}

func TestMintAndTransfer(t *testing.T) {
	store, tokens := setup(t)
	ctx := context.Background()
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()

	require.NoError(t, store.Atomically(ctx, func(tx *ledger.Tx) error {
		if err := tokens.CreateMint(tx, mint, authority, 9); err != nil {
			return err
		}
		if err := tokens.MintTo(tx, mint, alice, authority, 1_000); err != nil {
			return err
		}
		return tokens.Transfer(tx, mint, alice, bob, alice, 400)
	}))

	require.NoError(t, store.View(ctx, func(tx *ledger.Tx) error {
		a, err := tokens.Balance(tx, mint, alice)
		require.NoError(t, err)
		b, err := tokens.Balance(tx, mint, bob)
		require.NoError(t, err)
		supply, err := tokens.Supply(tx, mint)
		require.NoError(t, err)

		assert.Equal(t, uint64(600), a)
		assert.Equal(t, uint64(400), b)
		assert.Equal(t, uint64(1_000), supply)
		return nil
	}))
}

func TestAuthorityChecks(t *testing.T) {
	store, tokens := setup(t)
	ctx := context.Background()
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()
	intruder := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()

	require.NoError(t, store.Atomically(ctx, func(tx *ledger.Tx) error {
		if err := tokens.CreateMint(tx, mint, authority, 9); err != nil {
			return err
		}
		return tokens.MintTo(tx, mint, alice, authority, 10)
	}))

	err := store.Atomically(ctx, func(tx *ledger.Tx) error {
		return tokens.MintTo(tx, mint, intruder, intruder, 10)
	})
	assert.ErrorIs(t, err, ErrAuthorityMismatch)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	err = store.Atomically(ctx, func(tx *ledger.Tx) error {
		return tokens.Transfer(tx, mint, alice, intruder, intruder, 10)
	})
	assert.ErrorIs(t, err, ErrAuthorityMismatch)

	err = store.Atomically(ctx, func(tx *ledger.Tx) error {
		return tokens.Transfer(tx, mint, alice, intruder, alice, 11)
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestMintToUnknownMint(t *testing.T) {
	store, tokens := setup(t)
	err := store.Atomically(context.Background(), func(tx *ledger.Tx) error {
		k := solana.NewWallet().PublicKey()
		return tokens.MintTo(tx, solana.NewWallet().PublicKey(), k, k, 1)
	})
	assert.ErrorIs(t, err, ErrMintNotFound)
}

func TestLamports(t *testing.T) {
	store, tokens := setup(t)
	ctx := context.Background()
	alice := solana.NewWallet().PublicKey()
	vault := solana.NewWallet().PublicKey()

	require.NoError(t, store.Atomically(ctx, func(tx *ledger.Tx) error {
		if err := tokens.Airdrop(tx, alice, 5_000); err != nil {
			return err
		}
		return tokens.TransferLamports(tx, alice, vault, 1_500)
	}))

	err := store.Atomically(ctx, func(tx *ledger.Tx) error {
		return tokens.TransferLamports(tx, alice, vault, 10_000)
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	require.NoError(t, store.View(ctx, func(tx *ledger.Tx) error {
		a, err := tokens.Lamports(tx, alice)
		require.NoError(t, err)
		v, err := tokens.Lamports(tx, vault)
		require.NoError(t, err)
		assert.Equal(t, uint64(3_500), a)
		assert.Equal(t, uint64(1_500), v)
		return nil
	}))
}
