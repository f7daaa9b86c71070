package stats

import (
	"context"
	"time"

	"github.com/ABEL-1010/Inventory-Management-System/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// UnknownItemLabel names the product of a recent sale whose item is gone.
const UnknownItemLabel = "Unknown Item"

const (
	topCategoriesLimit = 5
	recentSalesLimit   = 5
	lowStockListLimit  = 10
)

// Service answers read-only aggregate queries over items and sales.
type Service struct {
	db                *gorm.DB
	lowStockThreshold int
}

// NewService returns a Service. Items with quantity below lowStockThreshold
// count as low stock (10 when threshold <= 0).
func NewService(db *gorm.DB, lowStockThreshold int) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &Service{db: db, lowStockThreshold: lowStockThreshold}
}

type MonthlySales struct {
	Month string          `json:"month"`
	Sales decimal.Decimal `json:"sales"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type RecentSale struct {
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
	SaleDate    time.Time       `json:"saleDate"`
}

type LowStockItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// DashboardStats is the payload of the admin dashboard.
type DashboardStats struct {
	TotalItems          int64           `json:"totalItems"`
	TotalCategories     int64           `json:"totalCategories"`
	TotalSales          int64           `json:"totalSales"`
	LowQuantity         int64           `json:"lowQuantity"`
	TodaySales          decimal.Decimal `json:"todaySales"`
	MonthlyData         []MonthlySales  `json:"monthlyData"`
	TopCategories       []CategoryCount `json:"topCategories"`
	RecentSales         []RecentSale    `json:"recentSales"`
	LowQuantityProducts []LowStockItem  `json:"lowQuantityProducts"`
}

// Dashboard computes the dashboard as of now. The queries are independent and
// run concurrently; an empty database yields zeros and empty lists.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (*DashboardStats, error) {
	out := &DashboardStats{
		TodaySales:          decimal.Zero,
		TopCategories:       []CategoryCount{},
		RecentSales:         []RecentSale{},
		LowQuantityProducts: []LowStockItem{},
	}
	// sale dates are stored in UTC, so are the bounds
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).UTC()
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	yearEnd := yearStart.AddDate(1, 0, 0).UTC()
	yearStart = yearStart.UTC()

	g, gctx := errgroup.WithContext(ctx)
	db := s.db.WithContext(gctx)

	g.Go(func() error {
		return errors.Wrap(db.Model(&models.Item{}).Count(&out.TotalItems).Error, "count items")
	})
	g.Go(func() error {
		return errors.Wrap(db.Model(&models.Category{}).Count(&out.TotalCategories).Error, "count categories")
	})
	g.Go(func() error {
		return errors.Wrap(db.Model(&models.Sale{}).Count(&out.TotalSales).Error, "count sales")
	})
	g.Go(func() error {
		return errors.Wrap(db.Model(&models.Item{}).
			Where("quantity < ?", s.lowStockThreshold).
			Count(&out.LowQuantity).Error, "count low stock")
	})
	g.Go(func() error {
		var totals []decimal.Decimal
		if err := db.Model(&models.Sale{}).
			Where("sale_date >= ?", midnight).
			Pluck("total_amount", &totals).Error; err != nil {
			return errors.Wrap(err, "today sales")
		}
		out.TodaySales = sum(totals)
		return nil
	})
	g.Go(func() error {
		var sales []models.Sale
		if err := db.Select("sale_date", "total_amount").
			Where("sale_date >= ? AND sale_date < ?", yearStart, yearEnd).
			Find(&sales).Error; err != nil {
			return errors.Wrap(err, "monthly sales")
		}
		out.MonthlyData = monthly(sales, now.Location())
		return nil
	})
	g.Go(func() error {
		var rows []CategoryCount
		if err := db.Table("categories").
			Select("categories.name AS name, COUNT(items.id) AS value").
			Joins("LEFT JOIN items ON items.category_id = categories.id").
			Group("categories.id, categories.name").
			Order("value DESC, categories.name ASC").
			Limit(topCategoriesLimit).
			Scan(&rows).Error; err != nil {
			return errors.Wrap(err, "top categories")
		}
		if rows != nil {
			out.TopCategories = rows
		}
		return nil
	})
	g.Go(func() error {
		var sales []models.Sale
		if err := db.Preload("Item").
			Order("sale_date DESC, id DESC").
			Limit(recentSalesLimit).
			Find(&sales).Error; err != nil {
			return errors.Wrap(err, "recent sales")
		}
		for i := range sales {
			out.RecentSales = append(out.RecentSales, recentSale(&sales[i]))
		}
		return nil
	})
	g.Go(func() error {
		var items []models.Item
		if err := db.Select("name", "quantity").
			Where("quantity < ?", s.lowStockThreshold).
			Order("quantity ASC, name ASC").
			Limit(lowStockListLimit).
			Find(&items).Error; err != nil {
			return errors.Wrap(err, "low stock items")
		}
		for _, it := range items {
			out.LowQuantityProducts = append(out.LowQuantityProducts, LowStockItem{Name: it.Name, Quantity: it.Quantity})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func recentSale(sale *models.Sale) RecentSale {
	r := RecentSale{
		ProductName: UnknownItemLabel,
		Quantity:    sale.Quantity,
		Amount:      sale.TotalAmount,
		SaleDate:    sale.SaleDate,
	}
	if sale.Item != nil && sale.Item.Name != "" {
		r.ProductName = sale.Item.Name
	}
	return r
}

// monthly buckets sales of one calendar year into Jan..Dec.
func monthly(sales []models.Sale, loc *time.Location) []MonthlySales {
	months := make([]MonthlySales, 12)
	for i := range months {
		months[i] = MonthlySales{Month: time.Month(i + 1).String()[:3], Sales: decimal.Zero}
	}
	for _, sale := range sales {
		m := sale.SaleDate.In(loc).Month()
		months[m-1].Sales = months[m-1].Sales.Add(sale.TotalAmount)
	}
	return months
}

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
