// internal/storage/models/affiliate.go
package models

import "github.com/shopspring/decimal"

type Commission struct {
	BaseModel
	Affiliate       string          `gorm:"index;not null;type:varchar(44)"`
	Mint            string          `gorm:"not null;type:varchar(44)"`
	PurchasedTokens decimal.Decimal `gorm:"type:numeric(20,0);not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,0);not null"`
	RateBps         uint16          `gorm:"not null"`
	Tier            string          `gorm:"not null;type:varchar(20)"`
}

type RateChange struct {
	BaseModel
	Affiliate string `gorm:"index;not null;type:varchar(44)"`
	OldRate   uint16 `gorm:"not null"`
	NewRate   uint16 `gorm:"not null"`
	Suggested bool
	Legacy    bool
}
