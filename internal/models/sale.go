package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale records the sale of some quantity of one item.
// TotalAmount is a snapshot of item price × quantity taken when the sale was
// recorded (or its quantity/item last changed), it is not recomputed on
// later price changes.
type Sale struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ItemID      uint            `gorm:"index;not null" json:"itemId"`
	Item        *Item           `gorm:"constraint:OnDelete:RESTRICT" json:"item,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"totalAmount"`
	SaleDate    time.Time       `gorm:"index;not null" json:"saleDate"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// BeforeSave stores SaleDate in UTC. SQLite keeps times as text with their
// offset, so range filters and ordering only hold within a single zone.
func (s *Sale) BeforeSave(tx *gorm.DB) error {
	s.SaleDate = s.SaleDate.UTC()
	return nil
}
