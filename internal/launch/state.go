// internal/launch/state.go
package launch

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
)

// PricingModel selects the bonding curve of a launch.
type PricingModel uint8

const (
	Linear PricingModel = iota
	Exponential
	Fixed
	DutchAuction
)

func (m PricingModel) String() string {
	switch m {
	case Linear:
		return "linear"
	case Exponential:
		return "exponential"
	case Fixed:
		return "fixed"
	case DutchAuction:
		return "dutch_auction"
	default:
		return fmt.Sprintf("pricing_model(%d)", uint8(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m PricingModel) MarshalText() ([]byte, error) {
	if m > DutchAuction {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPricingModel, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *PricingModel) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "linear":
		*m = Linear
	case "exponential":
		*m = Exponential
	case "fixed":
		*m = Fixed
	case "dutch_auction", "dutchauction":
		*m = DutchAuction
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPricingModel, string(b))
	}
	return nil
}

// AntiBotLevel controls purchase gating.
type AntiBotLevel uint8

const (
	AntiBotNone AntiBotLevel = iota
	AntiBotBasic
	AntiBotAdvanced
	AntiBotMaximum
)

func (a AntiBotLevel) String() string {
	switch a {
	case AntiBotNone:
		return "none"
	case AntiBotBasic:
		return "basic"
	case AntiBotAdvanced:
		return "advanced"
	case AntiBotMaximum:
		return "maximum"
	default:
		return fmt.Sprintf("anti_bot(%d)", uint8(a))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a AntiBotLevel) MarshalText() ([]byte, error) {
	if a > AntiBotMaximum {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAntiBot, uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AntiBotLevel) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "none", "":
		*a = AntiBotNone
	case "basic":
		*a = AntiBotBasic
	case "advanced":
		*a = AntiBotAdvanced
	case "maximum":
		*a = AntiBotMaximum
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAntiBot, string(b))
	}
	return nil
}

// checksAmount reports whether purchases must fall inside [min, max].
func (a AntiBotLevel) checksAmount() bool {
	switch a {
	case AntiBotNone:
		return false
	case AntiBotBasic, AntiBotAdvanced, AntiBotMaximum:
		return true
	default:
		return true
	}
}

// checksCooldown reports whether purchases are rate limited.
func (a AntiBotLevel) checksCooldown() bool {
	switch a {
	case AntiBotAdvanced, AntiBotMaximum:
		return true
	case AntiBotNone, AntiBotBasic:
		return false
	default:
		return true
	}
}

// LaunchRecord is the persisted state of one sale.
type LaunchRecord struct {
	Authority solana.PublicKey `json:"authority"`
	Mint      solana.PublicKey `json:"mint"`

	PricingModel PricingModel `json:"pricing_model"`
	InitialPrice uint64       `json:"initial_price"`
	Slope        uint64       `json:"slope"`
	TokensSold   uint64       `json:"tokens_sold"`
	MaxTokens    uint64       `json:"max_tokens"`
	StartTime    int64        `json:"start_time"`
	EndTime      int64        `json:"end_time"`

	VestingEnabled  bool  `json:"vesting_enabled"`
	VestingDuration int64 `json:"vesting_duration"`
	VestingCliff    int64 `json:"vesting_cliff"`

	AntiBot          AntiBotLevel `json:"anti_bot"`
	MinPurchase      uint64       `json:"min_purchase"`
	MaxPurchase      uint64       `json:"max_purchase"`
	Cooldown         int64        `json:"cooldown"`
	LastPurchaseTime int64        `json:"last_purchase_time"`

	AffiliateFeeBps   uint16           `json:"affiliate_fee_bps"`
	PlatformFeeBps    uint16           `json:"platform_fee_bps"`
	PlatformRecipient solana.PublicKey `json:"platform_recipient"`

	TotalSolCollected  uint64 `json:"total_sol_collected"`
	TotalPlatformFees  uint64 `json:"total_platform_fees"`
	TotalAffiliateFees uint64 `json:"total_affiliate_fees"`
	PurchaseCount      uint64 `json:"purchase_count"`
	CreatedAt          int64  `json:"created_at"`
	Bump               uint8  `json:"bump"`
}

func (*LaunchRecord) RecordKind() ledger.Kind { return ledger.KindLaunch }

// Active reports whether now falls inside the purchase window.
func (r *LaunchRecord) Active(now int64) bool {
	return now >= r.StartTime && now <= r.EndTime
}

// VestingRecord tracks tokens held for a beneficiary.
type VestingRecord struct {
	Launch        solana.PublicKey `json:"launch"`
	Beneficiary   solana.PublicKey `json:"beneficiary"`
	TotalAmount   uint64           `json:"total_amount"`
	ClaimedAmount uint64           `json:"claimed_amount"`
	StartTime     int64            `json:"start_time"`
	Duration      int64            `json:"duration"`
	Cliff         int64            `json:"cliff"`
	LastClaimTime int64            `json:"last_claim_time"`
	Bump          uint8            `json:"bump"`
}

func (*VestingRecord) RecordKind() ledger.Kind { return ledger.KindVesting }
