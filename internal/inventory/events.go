package inventory

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Event is something that happened to stock or sales, published after commit.
type Event interface {
	Name() string
}

type SaleRecorded struct {
	SaleID      uint
	ItemID      uint
	Quantity    int
	TotalAmount decimal.Decimal
}

type SaleAdjusted struct {
	SaleID      uint
	OldItemID   uint
	NewItemID   uint
	OldQuantity int
	NewQuantity int
	TotalAmount decimal.Decimal
}

type SaleReversed struct {
	SaleID   uint
	ItemID   uint
	Quantity int
	Restored bool // false when the item no longer existed
}

// StockChanged is emitted for every change of an item's quantity on hand.
type StockChanged struct {
	ItemID      uint
	Change      int
	NewQuantity int
	Reason      string
}

type ItemPurged struct {
	ItemID       uint
	SalesRemoved int64
}

type CategoryPurged struct {
	CategoryID   uint
	ItemsRemoved int64
	SalesRemoved int64
}

func (SaleRecorded) Name() string   { return "sale.recorded" }
func (SaleAdjusted) Name() string   { return "sale.adjusted" }
func (SaleReversed) Name() string   { return "sale.reversed" }
func (StockChanged) Name() string   { return "stock.changed" }
func (ItemPurged) Name() string     { return "item.purged" }
func (CategoryPurged) Name() string { return "category.purged" }

// reasons carried by StockChanged
const (
	ReasonSale       = "sale"
	ReasonSaleUpdate = "sale_update"
	ReasonSaleDelete = "sale_delete"
	ReasonOverride   = "override"
)

// EventDispatcher receives committed events.
type EventDispatcher interface {
	Dispatch(ctx context.Context, events ...Event)
}

// LogDispatcher writes events to the structured logger.
type LogDispatcher struct {
	Logger log.FieldLogger
}

func (d LogDispatcher) Dispatch(ctx context.Context, events ...Event) {
	logger := d.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	for _, ev := range events {
		logger.WithFields(log.Fields{
			"event":   ev.Name(),
			"payload": ev,
		}).Info("inventory event")
	}
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(context.Context, ...Event) {}
