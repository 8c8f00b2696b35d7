// internal/events/types.go
package events

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// EventType represents the type of event.
type EventType string

const (
	// Launch events
	LaunchCreated       EventType = "launch.created"
	TokensPurchased     EventType = "launch.tokens_purchased"
	SolWithdrawn        EventType = "launch.sol_withdrawn"
	VestedTokensClaimed EventType = "launch.vested_claimed"
	LaunchUpdated       EventType = "launch.updated"

	// Affiliate events
	AffiliateRegistered   EventType = "affiliate.registered"
	CommissionPaid        EventType = "affiliate.commission_paid"
	CommissionRateUpdated EventType = "affiliate.rate_updated"
	AnalyticsUpdated      EventType = "affiliate.analytics_updated"
	AdvisoryRateSuggested EventType = "affiliate.advisory_rate"

	// Exchange events
	PoolCreated        EventType = "exchange.pool_created"
	OraclePriceUpdated EventType = "exchange.price_updated"
	SwapExecuted       EventType = "exchange.swap"
	LiquidityAdded     EventType = "exchange.liquidity_added"
	PoolConfigUpdated  EventType = "exchange.config_updated"
)

// AllTypes lists every event type the ledgers emit.
var AllTypes = []EventType{
	LaunchCreated, TokensPurchased, SolWithdrawn, VestedTokensClaimed, LaunchUpdated,
	AffiliateRegistered, CommissionPaid, CommissionRateUpdated, AnalyticsUpdated, AdvisoryRateSuggested,
	PoolCreated, OraclePriceUpdated, SwapExecuted, LiquidityAdded, PoolConfigUpdated,
}

// Event is the base interface for all events.
type Event interface {
	ID() string
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events. The id is assigned once
// when the event is staged, so every sink and the archive agree on it.
type BaseEvent struct {
	EventID   string    `json:"id"`
	EventType EventType `json:"type"`
	EventTime time.Time `json:"timestamp"`
}

func (e BaseEvent) ID() string {
	return e.EventID
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// NewBase stamps an event with a ledger timestamp in unix seconds.
func NewBase(t EventType, unix int64) BaseEvent {
	return BaseEvent{EventID: uuid.NewString(), EventType: t, EventTime: time.Unix(unix, 0).UTC()}
}

// LaunchCreatedEvent is emitted when a sale is opened.
type LaunchCreatedEvent struct {
	BaseEvent
	Launch    solana.PublicKey `json:"launch"`
	Authority solana.PublicKey `json:"authority"`
	Mint      solana.PublicKey `json:"mint"`
	Model     string           `json:"pricing_model"`
	MaxTokens uint64           `json:"max_tokens"`
	StartTime int64            `json:"start_time"`
	EndTime   int64            `json:"end_time"`
}

// TokensPurchasedEvent is emitted for every successful purchase.
type TokensPurchasedEvent struct {
	BaseEvent
	Launch       solana.PublicKey `json:"launch"`
	Mint         solana.PublicKey `json:"mint"`
	Buyer        solana.PublicKey `json:"buyer"`
	Affiliate    solana.PublicKey `json:"affiliate"`
	SolAmount    uint64           `json:"sol_amount"`
	Price        uint64           `json:"price"`
	TokensMinted uint64           `json:"tokens_minted"`
	PlatformFee  uint64           `json:"platform_fee"`
	AffiliateFee uint64           `json:"affiliate_fee"`
	Vested       bool             `json:"vested"`
	TokensSold   uint64           `json:"tokens_sold"`
}

// SolWithdrawnEvent is emitted when the launch authority drains the vault.
type SolWithdrawnEvent struct {
	BaseEvent
	Launch    solana.PublicKey `json:"launch"`
	Authority solana.PublicKey `json:"authority"`
	Amount    uint64           `json:"amount"`
}

// VestedTokensClaimedEvent is emitted on a successful vesting claim.
type VestedTokensClaimedEvent struct {
	BaseEvent
	Launch      solana.PublicKey `json:"launch"`
	Beneficiary solana.PublicKey `json:"beneficiary"`
	Amount      uint64           `json:"amount"`
	Claimed     uint64           `json:"claimed_total"`
	Total       uint64           `json:"total"`
}

// LaunchUpdatedEvent is emitted after a partial launch update.
type LaunchUpdatedEvent struct {
	BaseEvent
	Launch      solana.PublicKey `json:"launch"`
	EndTime     int64            `json:"end_time"`
	MaxTokens   uint64           `json:"max_tokens"`
	MinPurchase uint64           `json:"min_purchase"`
	MaxPurchase uint64           `json:"max_purchase"`
}

// AffiliateRegisteredEvent is emitted when an affiliate joins.
type AffiliateRegisteredEvent struct {
	BaseEvent
	Affiliate solana.PublicKey `json:"affiliate"`
	Parent    solana.PublicKey `json:"parent"`
	Level     uint8            `json:"level"`
	RateBps   uint16           `json:"rate_bps"`
}

// CommissionPaidEvent is emitted when commission tokens are minted.
type CommissionPaidEvent struct {
	BaseEvent
	Affiliate       solana.PublicKey `json:"affiliate"`
	Mint            solana.PublicKey `json:"mint"`
	PurchasedTokens uint64           `json:"purchased_tokens"`
	Commission      uint64           `json:"commission"`
	RateBps         uint16           `json:"rate_bps"`
	Tier            string           `json:"tier"`
}

// CommissionRateUpdatedEvent is emitted on any rate change.
type CommissionRateUpdatedEvent struct {
	BaseEvent
	Affiliate solana.PublicKey `json:"affiliate"`
	OldRate   uint16           `json:"old_rate"`
	NewRate   uint16           `json:"new_rate"`
	Suggested bool             `json:"suggested"`
	Legacy    bool             `json:"legacy"`
}

// AnalyticsUpdatedEvent is emitted after a daily analytics append.
type AnalyticsUpdatedEvent struct {
	BaseEvent
	Affiliate     solana.PublicKey `json:"affiliate"`
	Volume        uint64           `json:"volume"`
	Clicks        uint32           `json:"clicks"`
	ConversionBps uint32           `json:"conversion_bps"`
	Tier          string           `json:"tier"`
}

// AdvisoryRateEvent carries the heuristic rate suggestion for an affiliate.
type AdvisoryRateEvent struct {
	BaseEvent
	Affiliate     solana.PublicKey `json:"affiliate"`
	CurrentRate   uint16           `json:"current_rate"`
	SuggestedRate uint16           `json:"suggested_rate"`
	Tier          string           `json:"tier"`
}

// PoolCreatedEvent is emitted when a pool is opened.
type PoolCreatedEvent struct {
	BaseEvent
	Pool            solana.PublicKey `json:"pool"`
	MintA           solana.PublicKey `json:"mint_a"`
	MintB           solana.PublicKey `json:"mint_b"`
	OracleAuthority solana.PublicKey `json:"oracle_authority"`
	FeeBps          uint16           `json:"fee_bps"`
}

// PriceUpdateEvent is emitted after every multi-source oracle update.
// Absent sources are reported as zero.
type PriceUpdateEvent struct {
	BaseEvent
	Pool        solana.PublicKey `json:"pool"`
	Pyth        uint64           `json:"pyth_price"`
	Switchboard uint64           `json:"switchboard_price"`
	AI          uint64           `json:"ai_price"`
	Weighted    uint64           `json:"weighted_price"`
	Legacy      bool             `json:"legacy"`
}

// SwapExecutedEvent is emitted for every fill.
type SwapExecutedEvent struct {
	BaseEvent
	Pool       solana.PublicKey `json:"pool"`
	User       solana.PublicKey `json:"user"`
	SourceMint solana.PublicKey `json:"source_mint"`
	AmountIn   uint64           `json:"amount_in"`
	AmountOut  uint64           `json:"amount_out"`
	FeeAmount  uint64           `json:"fee_amount"`
	FeeBps     uint16           `json:"fee_bps"`
	Price      uint64           `json:"price"`
}

// LiquidityAddedEvent is emitted for custodial deposits.
type LiquidityAddedEvent struct {
	BaseEvent
	Pool    solana.PublicKey `json:"pool"`
	User    solana.PublicKey `json:"user"`
	AmountA uint64           `json:"amount_a"`
	AmountB uint64           `json:"amount_b"`
}

// PoolConfigUpdatedEvent is emitted after a config change.
type PoolConfigUpdatedEvent struct {
	BaseEvent
	Pool                solana.PublicKey `json:"pool"`
	FeeBps              uint16           `json:"fee_bps"`
	DynamicFeeEnabled   bool             `json:"dynamic_fee_enabled"`
	VolatilityThreshold uint64           `json:"volatility_threshold"`
}
