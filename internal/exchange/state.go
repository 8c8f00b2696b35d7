// internal/exchange/state.go
package exchange

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/genesis-launchpad/internal/genesis"
	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
)

// OracleProvider tags where a pool's price is meant to come from.
type OracleProvider uint8

const (
	ProviderPyth OracleProvider = iota
	ProviderSwitchboard
	ProviderAI
	ProviderHybrid
)

func (p OracleProvider) String() string {
	switch p {
	case ProviderPyth:
		return "pyth"
	case ProviderSwitchboard:
		return "switchboard"
	case ProviderAI:
		return "ai"
	case ProviderHybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("provider(%d)", uint8(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p OracleProvider) MarshalText() ([]byte, error) {
	if p > ProviderHybrid {
		return nil, fmt.Errorf("%w: provider %d", ErrInvalidPoolConfig, uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *OracleProvider) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "pyth":
		*p = ProviderPyth
	case "switchboard":
		*p = ProviderSwitchboard
	case "ai":
		*p = ProviderAI
	case "hybrid", "":
		*p = ProviderHybrid
	default:
		return fmt.Errorf("%w: provider %q", ErrInvalidPoolConfig, string(b))
	}
	return nil
}

// PoolRecord is the persisted state of an oracle-priced pool.
type PoolRecord struct {
	MintA           solana.PublicKey `json:"mint_a"`
	MintB           solana.PublicKey `json:"mint_b"`
	OracleAuthority solana.PublicKey `json:"oracle_authority"`
	Provider        OracleProvider   `json:"provider"`

	// Feed references; the zero key means none.
	PythFeedA       solana.PublicKey `json:"pyth_feed_a"`
	PythFeedB       solana.PublicKey `json:"pyth_feed_b"`
	SwitchboardFeed solana.PublicKey `json:"switchboard_feed"`

	OraclePrice         uint64 `json:"oracle_price"`
	HasPythPrice        bool   `json:"has_pyth_price"`
	PythPrice           uint64 `json:"pyth_price"`
	HasSwitchboardPrice bool   `json:"has_switchboard_price"`
	SwitchboardPrice    uint64 `json:"switchboard_price"`
	HasAIPrice          bool   `json:"has_ai_price"`
	AIPrice             uint64 `json:"ai_price"`
	Confidence          uint64 `json:"confidence"`

	PriceHistory [genesis.PriceHistorySize]uint64 `json:"price_history"`
	HistoryIndex uint8                            `json:"history_index"`

	LiquidityA uint64 `json:"liquidity_a"`
	LiquidityB uint64 `json:"liquidity_b"`

	FeeBps              uint16 `json:"fee_bps"`
	DynamicFeeEnabled   bool   `json:"dynamic_fee_enabled"`
	VolatilityThreshold uint64 `json:"volatility_threshold"`

	LastOracleUpdate     int64 `json:"last_oracle_update"`
	LastVolatilityUpdate int64 `json:"last_volatility_update"`
	CreatedAt            int64 `json:"created_at"`
	Bump                 uint8 `json:"bump"`
}

func (*PoolRecord) RecordKind() ledger.Kind { return ledger.KindPool }

// Stale reports whether the last oracle update is older than the allowed age.
func (p *PoolRecord) Stale(now int64) bool {
	return now-p.LastOracleUpdate > genesis.MaxOracleAge
}

// recordPrice writes price into the current history slot and advances.
func (p *PoolRecord) recordPrice(price uint64) {
	p.PriceHistory[p.HistoryIndex] = price
	p.HistoryIndex = uint8((int(p.HistoryIndex) + 1) % genesis.PriceHistorySize)
}

// sources returns the present per-source prices.
func (p *PoolRecord) sources() PriceSources {
	var s PriceSources
	if p.HasPythPrice {
		s.Pyth = &p.PythPrice
	}
	if p.HasSwitchboardPrice {
		s.Switchboard = &p.SwitchboardPrice
	}
	if p.HasAIPrice {
		s.AI = &p.AIPrice
	}
	return s
}

// merge overwrites the per-source prices present in s.
func (p *PoolRecord) merge(s PriceSources) {
	if s.Pyth != nil {
		p.HasPythPrice, p.PythPrice = true, *s.Pyth
	}
	if s.Switchboard != nil {
		p.HasSwitchboardPrice, p.SwitchboardPrice = true, *s.Switchboard
	}
	if s.AI != nil {
		p.HasAIPrice, p.AIPrice = true, *s.AI
	}
	if s.Confidence != nil {
		p.Confidence = *s.Confidence
	}
}

// PriceSources is an oracle update. Nil fields are left as stored.
type PriceSources struct {
	Pyth        *uint64 `json:"pyth,omitempty"`
	Switchboard *uint64 `json:"switchboard,omitempty"`
	AI          *uint64 `json:"ai,omitempty"`
	Confidence  *uint64 `json:"confidence,omitempty"`
}

// Empty reports whether no price source is present.
func (s PriceSources) Empty() bool {
	return s.Pyth == nil && s.Switchboard == nil && s.AI == nil
}
