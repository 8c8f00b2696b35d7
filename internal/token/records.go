// internal/token/records.go
package token

import (
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
)

// Mint is the record of a fungible token.
type Mint struct {
	Authority solana.PublicKey
	Supply    uint64
	Decimals  uint8
}

func (*Mint) RecordKind() ledger.Kind { return ledger.KindMint }

// Account holds a token balance for an owner.
type Account struct {
	Owner  solana.PublicKey
	Mint   solana.PublicKey
	Amount uint64
}

func (*Account) RecordKind() ledger.Kind { return ledger.KindTokenAccount }

// LamportAccount holds the native balance of an address.
type LamportAccount struct {
	Owner    solana.PublicKey
	Lamports uint64
}

func (*LamportAccount) RecordKind() ledger.Kind { return ledger.KindLamports }

// AccountAddress returns the associated token account of owner for mint.
func AccountAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	return addr, err
}

// lamportAddress keys native balances. Wallets and derived vaults are keyed
// under the system program namespace so they cannot collide with records.
func lamportAddress(owner solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte("lamports"), owner.Bytes()}, solana.SystemProgramID)
	return addr, err
}
