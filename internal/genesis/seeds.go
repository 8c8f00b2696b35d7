// internal/genesis/seeds.go
package genesis

import (
	"crypto/sha256"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Seed prefixes for derived record addresses.
var (
	LaunchStateSeed        = []byte("launch_state")
	SolVaultSeed           = []byte("sol_vault")
	VestingScheduleSeed    = []byte("vesting_schedule")
	AffiliateInfoSeed      = []byte("affiliate_info")
	AffiliateAnalyticsSeed = []byte("affiliate_analytics")
	LiquidityPoolSeed      = []byte("liquidity_pool")
	PoolVaultSeed          = []byte("pool_vault")
	VaultASeed             = []byte("a")
	VaultBSeed             = []byte("b")
)

// Namespaces of the three ledgers. Records derived under different
// namespaces never collide even when their seeds do.
var (
	LaunchNamespace    = namespace("launch")
	AffiliateNamespace = namespace("affiliate")
	ExchangeNamespace  = namespace("exchange")
)

func namespace(name string) solana.PublicKey {
	sum := sha256.Sum256([]byte("genesis:" + name))
	return solana.PublicKeyFromBytes(sum[:])
}

// Derive returns the address and bump for a seed tuple under a namespace.
func Derive(ns solana.PublicKey, seeds ...[]byte) (solana.PublicKey, uint8, error) {
	owned := make([][]byte, len(seeds), len(seeds)+1)
	copy(owned, seeds)
	addr, bump, err := solana.FindProgramAddress(owned, ns)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive address: %w", err)
	}
	return addr, bump, nil
}

// LaunchAddress derives the launch record for (authority, mint).
func LaunchAddress(authority, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive(LaunchNamespace, LaunchStateSeed, authority.Bytes(), mint.Bytes())
}

// SolVaultAddress derives the lamport vault of a launch.
func SolVaultAddress(authority, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive(LaunchNamespace, SolVaultSeed, authority.Bytes(), mint.Bytes())
}

// VestingAddress derives the vesting record of a beneficiary within a launch.
func VestingAddress(launch, beneficiary solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive(LaunchNamespace, VestingScheduleSeed, launch.Bytes(), beneficiary.Bytes())
}

// AffiliateAddress derives the affiliate record.
func AffiliateAddress(affiliate solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive(AffiliateNamespace, AffiliateInfoSeed, affiliate.Bytes())
}

// AnalyticsAddress derives the affiliate analytics record.
func AnalyticsAddress(affiliate solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive(AffiliateNamespace, AffiliateAnalyticsSeed, affiliate.Bytes())
}

// PoolAddress derives the pool record for a mint pair.
func PoolAddress(mintA, mintB solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive(ExchangeNamespace, LiquidityPoolSeed, mintA.Bytes(), mintB.Bytes())
}

// PoolVaultAddresses derives the custody owners of both pool vaults.
func PoolVaultAddresses(mintA, mintB solana.PublicKey) (solana.PublicKey, solana.PublicKey, error) {
	a, _, err := Derive(ExchangeNamespace, PoolVaultSeed, mintA.Bytes(), mintB.Bytes(), VaultASeed)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	b, _, err := Derive(ExchangeNamespace, PoolVaultSeed, mintA.Bytes(), mintB.Bytes(), VaultBSeed)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	return a, b, nil
}
