package inventory

import (
	"context"
	"time"

	"github.com/ABEL-1010/Inventory-Management-System/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrNegativeStock rejects a stock override below zero.
var ErrNegativeStock = errors.New("Quantity cannot be negative")

// Service keeps item quantities consistent with the sales recorded against
// them. Every mutating call runs in a single transaction; events are
// dispatched only after commit.
type Service struct {
	db     *gorm.DB
	events EventDispatcher
	now    func() time.Time
}

// NewService returns a Service. A nil dispatcher discards events.
func NewService(db *gorm.DB, events EventDispatcher) *Service {
	if events == nil {
		events = nopDispatcher{}
	}
	return &Service{db: db, events: events, now: time.Now}
}

type CreateSaleInput struct {
	ItemID   uint
	Quantity int
	SaleDate *time.Time // now when nil
}

// UpdateSaleInput holds the fields to change; nil means keep.
type UpdateSaleInput struct {
	ItemID   *uint
	Quantity *int
	SaleDate *time.Time
}

// PurgeResult counts what a cascading delete removed.
type PurgeResult struct {
	ItemsRemoved int64 `json:"itemsRemoved"`
	SalesRemoved int64 `json:"salesRemoved"`
}

// CreateSale records a sale and takes its quantity out of stock.
func (s *Service) CreateSale(ctx context.Context, in CreateSaleInput) (*models.Sale, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var (
		sale   models.Sale
		events []Event
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := findItem(tx, in.ItemID)
		if err != nil {
			return err
		}
		if item.Quantity < in.Quantity {
			return &InsufficientStockError{Available: item.Quantity}
		}

		saleDate := s.now()
		if in.SaleDate != nil {
			saleDate = *in.SaleDate
		}
		saleDate = saleDate.UTC()
		sale = models.Sale{
			ItemID:      item.ID,
			Quantity:    in.Quantity,
			TotalAmount: lineTotal(item.Price, in.Quantity),
			SaleDate:    saleDate,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return errors.Wrap(err, "create sale")
		}

		stock, err := adjustStock(tx, item.ID, -in.Quantity)
		if err != nil {
			return err
		}
		events = append(events,
			SaleRecorded{SaleID: sale.ID, ItemID: item.ID, Quantity: sale.Quantity, TotalAmount: sale.TotalAmount},
			StockChanged{ItemID: item.ID, Change: -in.Quantity, NewQuantity: stock, Reason: ReasonSale},
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Dispatch(ctx, events...)
	return s.GetSale(ctx, sale.ID)
}

// UpdateSale changes a sale's quantity, item or date and moves stock to match.
// When the item changes the old item gets the old quantity back and the new
// item is charged the new quantity; the total is recomputed at the current
// price of whichever item the sale ends up on.
func (s *Service) UpdateSale(ctx context.Context, id uint, in UpdateSaleInput) (*models.Sale, error) {
	if in.Quantity != nil && *in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var events []Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := findSale(tx, id)
		if err != nil {
			return err
		}

		oldItemID, oldQty := sale.ItemID, sale.Quantity
		newItemID, newQty := oldItemID, oldQty
		if in.ItemID != nil {
			newItemID = *in.ItemID
		}
		if in.Quantity != nil {
			newQty = *in.Quantity
		}

		switch {
		case newItemID != oldItemID:
			item, err := findItem(tx, newItemID)
			if err != nil {
				return err
			}
			restored, err := adjustStock(tx, oldItemID, oldQty)
			if err != nil && !errors.Is(err, ErrItemNotFound) {
				return err
			}
			if err == nil {
				events = append(events, StockChanged{ItemID: oldItemID, Change: oldQty, NewQuantity: restored, Reason: ReasonSaleUpdate})
			}
			stock, err := adjustStock(tx, item.ID, -newQty)
			if err != nil {
				return err
			}
			events = append(events, StockChanged{ItemID: item.ID, Change: -newQty, NewQuantity: stock, Reason: ReasonSaleUpdate})
			sale.ItemID = item.ID
			sale.TotalAmount = lineTotal(item.Price, newQty)

		case newQty != oldQty:
			item, err := findItem(tx, oldItemID)
			if err != nil {
				return err
			}
			diff := oldQty - newQty
			stock, err := adjustStock(tx, item.ID, diff)
			if err != nil {
				return err
			}
			events = append(events, StockChanged{ItemID: item.ID, Change: diff, NewQuantity: stock, Reason: ReasonSaleUpdate})
			sale.TotalAmount = lineTotal(item.Price, newQty)
		}

		sale.Quantity = newQty
		if in.SaleDate != nil {
			sale.SaleDate = in.SaleDate.UTC()
		}
		if err := tx.Model(sale).Select("item_id", "quantity", "total_amount", "sale_date").Updates(sale).Error; err != nil {
			return errors.Wrap(err, "update sale")
		}

		events = append(events, SaleAdjusted{
			SaleID:      sale.ID,
			OldItemID:   oldItemID,
			NewItemID:   sale.ItemID,
			OldQuantity: oldQty,
			NewQuantity: newQty,
			TotalAmount: sale.TotalAmount,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Dispatch(ctx, events...)
	return s.GetSale(ctx, id)
}

// DeleteSale removes a sale and puts its quantity back in stock. The sale is
// removed even if its item no longer exists.
func (s *Service) DeleteSale(ctx context.Context, id uint) error {
	var events []Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := findSale(tx, id)
		if err != nil {
			return err
		}

		restored := true
		stock, err := adjustStock(tx, sale.ItemID, sale.Quantity)
		switch {
		case errors.Is(err, ErrItemNotFound):
			restored = false
		case err != nil:
			return err
		default:
			events = append(events, StockChanged{ItemID: sale.ItemID, Change: sale.Quantity, NewQuantity: stock, Reason: ReasonSaleDelete})
		}

		if err := tx.Delete(&models.Sale{}, sale.ID).Error; err != nil {
			return errors.Wrap(err, "delete sale")
		}
		events = append(events, SaleReversed{SaleID: sale.ID, ItemID: sale.ItemID, Quantity: sale.Quantity, Restored: restored})
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Dispatch(ctx, events...)
	return nil
}

// DeleteItem removes an item together with all of its sales. Stock is not
// restored since the item itself is gone.
func (s *Service) DeleteItem(ctx context.Context, id uint) (PurgeResult, error) {
	var res PurgeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findItem(tx, id); err != nil {
			return err
		}
		del := tx.Where("item_id = ?", id).Delete(&models.Sale{})
		if del.Error != nil {
			return errors.Wrap(del.Error, "delete item sales")
		}
		res.SalesRemoved = del.RowsAffected

		if err := tx.Delete(&models.Item{}, id).Error; err != nil {
			return errors.Wrap(err, "delete item")
		}
		res.ItemsRemoved = 1
		return nil
	})
	if err != nil {
		return PurgeResult{}, err
	}

	s.events.Dispatch(ctx, ItemPurged{ItemID: id, SalesRemoved: res.SalesRemoved})
	return res, nil
}

// DeleteCategory removes a category, its items and their sales.
func (s *Service) DeleteCategory(ctx context.Context, id uint) (PurgeResult, error) {
	var res PurgeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return errors.Wrap(err, "find category")
		}

		var itemIDs []uint
		if err := tx.Model(&models.Item{}).Where("category_id = ?", id).Pluck("id", &itemIDs).Error; err != nil {
			return errors.Wrap(err, "list category items")
		}
		if len(itemIDs) > 0 {
			del := tx.Where("item_id IN ?", itemIDs).Delete(&models.Sale{})
			if del.Error != nil {
				return errors.Wrap(del.Error, "delete category sales")
			}
			res.SalesRemoved = del.RowsAffected

			del = tx.Where("id IN ?", itemIDs).Delete(&models.Item{})
			if del.Error != nil {
				return errors.Wrap(del.Error, "delete category items")
			}
			res.ItemsRemoved = del.RowsAffected
		}

		if err := tx.Delete(&category).Error; err != nil {
			return errors.Wrap(err, "delete category")
		}
		return nil
	})
	if err != nil {
		return PurgeResult{}, err
	}

	s.events.Dispatch(ctx, CategoryPurged{CategoryID: id, ItemsRemoved: res.ItemsRemoved, SalesRemoved: res.SalesRemoved})
	return res, nil
}

// SetItemQuantity overrides the quantity on hand (stock take, restock).
func (s *Service) SetItemQuantity(ctx context.Context, id uint, qty int) (*models.Item, error) {
	if qty < 0 {
		return nil, ErrNegativeStock
	}

	var (
		item  *models.Item
		event StockChanged
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		item, err = findItem(tx, id)
		if err != nil {
			return err
		}
		event = StockChanged{ItemID: id, Change: qty - item.Quantity, NewQuantity: qty, Reason: ReasonOverride}
		if err := tx.Model(item).Update("quantity", qty).Error; err != nil {
			return errors.Wrap(err, "set quantity")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event.Change != 0 {
		s.events.Dispatch(ctx, event)
	}
	return s.GetItem(ctx, id)
}

// GetSale loads a sale with its item and the item's category.
func (s *Service) GetSale(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := s.db.WithContext(ctx).Preload("Item.Category").First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, errors.Wrap(err, "get sale")
	}
	return &sale, nil
}

// GetItem loads an item with its category.
func (s *Service) GetItem(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).Preload("Category").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, errors.Wrap(err, "get item")
	}
	return &item, nil
}

func findItem(tx *gorm.DB, id uint) (*models.Item, error) {
	var item models.Item
	if err := tx.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, errors.Wrap(err, "find item")
	}
	return &item, nil
}

func findSale(tx *gorm.DB, id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := tx.First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, errors.Wrap(err, "find sale")
	}
	return &sale, nil
}

// adjustStock adds delta to an item's quantity and returns the new quantity.
// Decrements only apply while enough stock is left, otherwise the current
// quantity is reported in an InsufficientStockError.
func adjustStock(tx *gorm.DB, itemID uint, delta int) (int, error) {
	q := tx.Model(&models.Item{}).Where("id = ?", itemID)
	if delta < 0 {
		q = q.Where("quantity >= ?", -delta)
	}
	res := q.Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "adjust stock")
	}

	item, err := findItem(tx, itemID)
	if err != nil {
		return 0, err
	}
	if res.RowsAffected == 0 {
		return 0, &InsufficientStockError{Available: item.Quantity}
	}
	return item.Quantity, nil
}

func lineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}
