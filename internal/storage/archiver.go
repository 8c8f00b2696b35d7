// internal/storage/archiver.go
package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/genesis-launchpad/internal/events"
	"github.com/rovshanmuradov/genesis-launchpad/internal/storage/models"
	"github.com/rovshanmuradov/genesis-launchpad/internal/utils/amount"
)

// ArchivedTypes are the event types the Archiver persists.
var ArchivedTypes = []events.EventType{
	events.TokensPurchased,
	events.CommissionPaid,
	events.CommissionRateUpdated,
	events.SwapExecuted,
	events.OraclePriceUpdated,
}

// Archiver writes committed ledger events to a Storage.
type Archiver struct {
	store  Storage
	logger *zap.Logger
}

func NewArchiver(store Storage, logger *zap.Logger) *Archiver {
	return &Archiver{store: store, logger: logger.Named("archiver")}
}

// Subscribe registers the archiver for every archived event type.
func (a *Archiver) Subscribe(bus *events.Bus) []events.Subscription {
	subs := make([]events.Subscription, 0, len(ArchivedTypes))
	for _, t := range ArchivedTypes {
		subs = append(subs, bus.Subscribe(t, a))
	}
	return subs
}

// Handle implements events.Handler. Event types it does not archive are ignored.
func (a *Archiver) Handle(ctx context.Context, event events.Event) error {
	id := event.ID()
	if id == "" {
		id = uuid.NewString()
	}
	base := models.BaseModel{EventID: id, EventTime: event.Timestamp()}

	var err error
	switch e := event.(type) {
	case events.TokensPurchasedEvent:
		err = a.store.SavePurchase(ctx, &models.Purchase{
			BaseModel:    base,
			Launch:       e.Launch.String(),
			Mint:         e.Mint.String(),
			Buyer:        e.Buyer.String(),
			Affiliate:    optionalKey(e.Affiliate.IsZero(), e.Affiliate.String()),
			SolAmount:    amount.Decimal(e.SolAmount),
			Price:        amount.Decimal(e.Price),
			TokensMinted: amount.Decimal(e.TokensMinted),
			PlatformFee:  amount.Decimal(e.PlatformFee),
			AffiliateFee: amount.Decimal(e.AffiliateFee),
			Vested:       e.Vested,
		})
	case events.CommissionPaidEvent:
		err = a.store.SaveCommission(ctx, &models.Commission{
			BaseModel:       base,
			Affiliate:       e.Affiliate.String(),
			Mint:            e.Mint.String(),
			PurchasedTokens: amount.Decimal(e.PurchasedTokens),
			Amount:          amount.Decimal(e.Commission),
			RateBps:         e.RateBps,
			Tier:            e.Tier,
		})
	case events.CommissionRateUpdatedEvent:
		err = a.store.SaveRateChange(ctx, &models.RateChange{
			BaseModel: base,
			Affiliate: e.Affiliate.String(),
			OldRate:   e.OldRate,
			NewRate:   e.NewRate,
			Suggested: e.Suggested,
			Legacy:    e.Legacy,
		})
	case events.SwapExecutedEvent:
		err = a.store.SaveSwap(ctx, &models.Swap{
			BaseModel:  base,
			Pool:       e.Pool.String(),
			User:       e.User.String(),
			SourceMint: e.SourceMint.String(),
			AmountIn:   amount.Decimal(e.AmountIn),
			AmountOut:  amount.Decimal(e.AmountOut),
			FeeAmount:  amount.Decimal(e.FeeAmount),
			FeeBps:     e.FeeBps,
			Price:      amount.Decimal(e.Price),
		})
	case events.PriceUpdateEvent:
		err = a.store.SaveOraclePrice(ctx, &models.OraclePrice{
			BaseModel:   base,
			Pool:        e.Pool.String(),
			Pyth:        amount.Decimal(e.Pyth),
			Switchboard: amount.Decimal(e.Switchboard),
			AI:          amount.Decimal(e.AI),
			Weighted:    amount.Decimal(e.Weighted),
			Legacy:      e.Legacy,
		})
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("archive %s: %w", event.Type(), err)
	}
	a.logger.Debug("Event archived",
		zap.String("event_type", string(event.Type())),
		zap.String("event_id", base.EventID))
	return nil
}

func optionalKey(zero bool, s string) string {
	if zero {
		return ""
	}
	return s
}
