// internal/storage/models/exchange.go
package models

import "github.com/shopspring/decimal"

type Swap struct {
	BaseModel
	Pool       string          `gorm:"index;not null;type:varchar(44)"`
	User       string          `gorm:"index;not null;type:varchar(44)"`
	SourceMint string          `gorm:"not null;type:varchar(44)"`
	AmountIn   decimal.Decimal `gorm:"type:numeric(20,0);not null"`
	AmountOut  decimal.Decimal `gorm:"type:numeric(20,0);not null"`
	FeeAmount  decimal.Decimal `gorm:"type:numeric(20,0)"`
	FeeBps     uint16          `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:numeric(20,0);not null"`
}

type OraclePrice struct {
	BaseModel
	Pool        string          `gorm:"index;not null;type:varchar(44)"`
	Pyth        decimal.Decimal `gorm:"type:numeric(20,0)"`
	Switchboard decimal.Decimal `gorm:"type:numeric(20,0)"`
	AI          decimal.Decimal `gorm:"type:numeric(20,0)"`
	Weighted    decimal.Decimal `gorm:"type:numeric(20,0);not null"`
	Legacy      bool
}
