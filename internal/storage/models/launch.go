// internal/storage/models/launch.go
package models

import "github.com/shopspring/decimal"

type Purchase struct {
	BaseModel
	Launch       string          `gorm:"index;not null;type:varchar(44)"`
	Mint         string          `gorm:"not null;type:varchar(44)"`
	Buyer        string          `gorm:"index;not null;type:varchar(44)"`
	Affiliate    string          `gorm:"index;type:varchar(44)"`
	SolAmount    decimal.Decimal `gorm:"type:numeric(20,0);not null"`
	Price        decimal.Decimal `gorm:"type:numeric(20,0);not null"`
	TokensMinted decimal.Decimal `gorm:"type:numeric(20,0);not null"`
	PlatformFee  decimal.Decimal `gorm:"type:numeric(20,0)"`
	AffiliateFee decimal.Decimal `gorm:"type:numeric(20,0)"`
	Vested       bool
}
