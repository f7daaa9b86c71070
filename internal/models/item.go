package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices and totals go out as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Item is a stocked product. Quantity is the quantity on hand and is only
// changed by the inventory service or an explicit admin override.
type Item struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Description string          `gorm:"size:1000" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity    int             `gorm:"not null;default:0;index" json:"quantity"`
	CategoryID  *uint           `gorm:"index" json:"categoryId"`
	Category    *Category       `gorm:"constraint:OnDelete:SET NULL" json:"category"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// StockValue is price × quantity on hand.
func (i *Item) StockValue() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
