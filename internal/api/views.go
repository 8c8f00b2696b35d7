// internal/api/views.go
package api

import (
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/genesis-launchpad/internal/affiliate"
	"github.com/rovshanmuradov/genesis-launchpad/internal/exchange"
	"github.com/rovshanmuradov/genesis-launchpad/internal/launch"
	"github.com/rovshanmuradov/genesis-launchpad/internal/platform"
	"github.com/rovshanmuradov/genesis-launchpad/internal/utils/amount"
)

// Responses carry the raw integer fields plus human-readable decimals.

type WalletView struct {
	*platform.Wallet
	SOL    decimal.Decimal `json:"sol"`
	Amount decimal.Decimal `json:"amount"`
}

func walletView(w *platform.Wallet) WalletView {
	return WalletView{Wallet: w, SOL: amount.Tokens(w.Lamports), Amount: amount.Tokens(w.Tokens)}
}

type LaunchView struct {
	*launch.LaunchRecord
	Price        decimal.Decimal `json:"price_display"`
	Sold         decimal.Decimal `json:"sold_display"`
	SolCollected decimal.Decimal `json:"sol_collected_display"`
	Active       bool            `json:"active"`
}

func launchView(rec *launch.LaunchRecord, now int64) LaunchView {
	price, _ := launch.CurrentPrice(rec, now)
	return LaunchView{
		LaunchRecord: rec,
		Price:        amount.Price(price),
		Sold:         amount.Tokens(rec.TokensSold),
		SolCollected: amount.Tokens(rec.TotalSolCollected),
		Active:       rec.Active(now),
	}
}

type QuoteView struct {
	*launch.Quote
	PriceDisplay  decimal.Decimal `json:"price_display"`
	TokensDisplay decimal.Decimal `json:"tokens_display"`
}

func quoteView(q *launch.Quote) QuoteView {
	return QuoteView{Quote: q, PriceDisplay: amount.Price(q.Price), TokensDisplay: amount.Tokens(q.Tokens)}
}

type PurchaseView struct {
	*launch.PurchaseReceipt
	TokensDisplay     decimal.Decimal `json:"tokens_display"`
	CommissionDisplay decimal.Decimal `json:"commission_display"`
}

func purchaseView(r *launch.PurchaseReceipt) PurchaseView {
	return PurchaseView{
		PurchaseReceipt:   r,
		TokensDisplay:     amount.Tokens(r.Tokens),
		CommissionDisplay: amount.Tokens(r.Commission),
	}
}

type AffiliateView struct {
	*affiliate.AffiliateRecord
	RatePercent   decimal.Decimal `json:"rate_percent"`
	VolumeDisplay decimal.Decimal `json:"volume_display"`
}

func affiliateView(r *affiliate.AffiliateRecord) AffiliateView {
	return AffiliateView{
		AffiliateRecord: r,
		RatePercent:     amount.Percent(r.CommissionRateBps),
		VolumeDisplay:   amount.Tokens(r.TotalReferredVolume),
	}
}

type PoolView struct {
	*exchange.PoolStatus
	PriceDisplay      decimal.Decimal `json:"price_display"`
	LiquidityADisplay decimal.Decimal `json:"liquidity_a_display"`
	LiquidityBDisplay decimal.Decimal `json:"liquidity_b_display"`
	FeePercent        decimal.Decimal `json:"fee_percent"`
}

func poolView(p *exchange.PoolStatus) PoolView {
	return PoolView{
		PoolStatus:        p,
		PriceDisplay:      amount.Price(p.OraclePrice),
		LiquidityADisplay: amount.Tokens(p.LiquidityA),
		LiquidityBDisplay: amount.Tokens(p.LiquidityB),
		FeePercent:        amount.Percent(p.CurrentFee),
	}
}

type SwapView struct {
	*exchange.SwapReceipt
	AmountOutDisplay decimal.Decimal `json:"amount_out_display"`
	FeeDisplay       decimal.Decimal `json:"fee_display"`
}

func swapView(r *exchange.SwapReceipt) SwapView {
	return SwapView{
		SwapReceipt:      r,
		AmountOutDisplay: amount.Tokens(r.AmountOut),
		FeeDisplay:       amount.Tokens(r.FeeAmount),
	}
}
