package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ABEL-1010/Inventory-Management-System/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// UncategorizedLabel names the bucket of items without a category.
const UncategorizedLabel = "Uncategorized"

// grouping periods for SalesByDate
const (
	GroupByDay   = "day"
	GroupByWeek  = "week"
	GroupByMonth = "month"
)

// ErrInvalidGroupBy is returned for an unknown SalesByDate period.
var ErrInvalidGroupBy = errors.New("groupBy must be one of day, week, month")

// ReportFilter narrows the sales a report covers. EndDate includes the whole day.
type ReportFilter struct {
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	CategoryID *uint      `json:"categoryId,omitempty"`
	GroupBy    string     `json:"groupBy,omitempty"`
}

type ItemSalesRow struct {
	ItemID        uint            `json:"itemId"`
	ItemName      string          `json:"itemName"`
	CategoryName  string          `json:"categoryName"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	SaleCount     int             `json:"saleCount"`
	AveragePrice  decimal.Decimal `json:"averagePrice"`
}

type PeriodSalesRow struct {
	PeriodLabel      string          `json:"periodLabel"`
	TotalSales       int             `json:"totalSales"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TransactionCount int             `json:"transactionCount"`
	AverageSaleValue decimal.Decimal `json:"averageSaleValue"`
}

type CategorySalesRow struct {
	CategoryName      string          `json:"categoryName"`
	ItemCount         int             `json:"itemCount"`
	TotalQuantity     int             `json:"totalQuantity"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	SaleCount         int             `json:"saleCount"`
	RevenuePercentage decimal.Decimal `json:"revenuePercentage"`
}

// Totals is shared by every sales report summary.
type Totals struct {
	TotalQuantity     int             `json:"totalQuantity"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalTransactions int             `json:"totalTransactions"`
}

func (t *Totals) add(sale *models.Sale) {
	t.TotalQuantity += sale.Quantity
	t.TotalRevenue = t.TotalRevenue.Add(sale.TotalAmount)
	t.TotalTransactions++
}

type ItemSummary struct {
	TotalItems int `json:"totalItems"`
	Totals
}

type DateSummary struct {
	TotalPeriods int `json:"totalPeriods"`
	Totals
}

type CategorySummary struct {
	TotalCategories int `json:"totalCategories"`
	Totals
}

type ItemReport struct {
	Rows    []ItemSalesRow `json:"salesByItem"`
	Summary ItemSummary    `json:"summary"`
}

type DateReport struct {
	Rows    []PeriodSalesRow `json:"salesByDate"`
	Summary DateSummary      `json:"summary"`
}

type CategoryReport struct {
	Rows    []CategorySalesRow `json:"salesByCategory"`
	Summary CategorySummary    `json:"summary"`
}

// stock statuses in the inventory report
const (
	StatusInStock    = "in_stock"
	StatusLowStock   = "low_stock"
	StatusOutOfStock = "out_of_stock"
)

type InventoryRow struct {
	ItemID       uint            `json:"itemId"`
	ItemName     string          `json:"itemName"`
	CategoryName string          `json:"categoryName"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	StockValue   decimal.Decimal `json:"stockValue"`
	Status       string          `json:"status"`
}

type InventorySummary struct {
	TotalItems    int             `json:"totalItems"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	LowStock      int             `json:"lowStock"`
	OutOfStock    int             `json:"outOfStock"`
}

type InventoryReport struct {
	Rows    []InventoryRow   `json:"inventory"`
	Summary InventorySummary `json:"summary"`
}

// loadSales returns the sales matching f with item and category loaded.
func (s *Service) loadSales(ctx context.Context, f ReportFilter) ([]models.Sale, error) {
	q := s.db.WithContext(ctx).Preload("Item.Category")
	if f.StartDate != nil {
		q = q.Where("sale_date >= ?", f.StartDate.UTC())
	}
	if f.EndDate != nil {
		end := f.EndDate.AddDate(0, 0, 1)
		q = q.Where("sale_date < ?", time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location()).UTC())
	}
	if f.CategoryID != nil {
		q = q.Where("item_id IN (?)", s.db.WithContext(ctx).Model(&models.Item{}).
			Select("id").Where("category_id = ?", *f.CategoryID))
	}

	var sales []models.Sale
	if err := q.Order("sale_date ASC, id ASC").Find(&sales).Error; err != nil {
		return nil, errors.Wrap(err, "load report sales")
	}
	return sales, nil
}

// SalesByItem totals sales per item, highest revenue first.
func (s *Service) SalesByItem(ctx context.Context, f ReportFilter) (*ItemReport, error) {
	sales, err := s.loadSales(ctx, f)
	if err != nil {
		return nil, err
	}

	byItem := make(map[uint]*ItemSalesRow)
	summary := ItemSummary{Totals: Totals{TotalRevenue: decimal.Zero}}
	for i := range sales {
		sale := &sales[i]
		row, ok := byItem[sale.ItemID]
		if !ok {
			row = &ItemSalesRow{ItemID: sale.ItemID, TotalRevenue: decimal.Zero}
			if sale.Item != nil {
				row.ItemName = sale.Item.Name
				row.CategoryName = categoryName(sale.Item)
			}
			byItem[sale.ItemID] = row
		}
		row.TotalQuantity += sale.Quantity
		row.TotalRevenue = row.TotalRevenue.Add(sale.TotalAmount)
		row.SaleCount++

		summary.add(sale)
	}

	rows := make([]ItemSalesRow, 0, len(byItem))
	for _, row := range byItem {
		row.AveragePrice = average(row.TotalRevenue, row.TotalQuantity)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].TotalRevenue.Cmp(rows[j].TotalRevenue); c != 0 {
			return c > 0
		}
		return rows[i].ItemName < rows[j].ItemName
	})
	summary.TotalItems = len(rows)

	return &ItemReport{Rows: rows, Summary: summary}, nil
}

// SalesByDate totals sales per day, ISO week or month, oldest period first.
func (s *Service) SalesByDate(ctx context.Context, f ReportFilter) (*DateReport, error) {
	groupBy := f.GroupBy
	if groupBy == "" {
		groupBy = GroupByDay
	}
	if groupBy != GroupByDay && groupBy != GroupByWeek && groupBy != GroupByMonth {
		return nil, ErrInvalidGroupBy
	}

	sales, err := s.loadSales(ctx, f)
	if err != nil {
		return nil, err
	}

	byPeriod := make(map[string]*PeriodSalesRow)
	summary := DateSummary{Totals: Totals{TotalRevenue: decimal.Zero}}
	for i := range sales {
		sale := &sales[i]
		label := PeriodLabel(sale.SaleDate, groupBy)
		row, ok := byPeriod[label]
		if !ok {
			row = &PeriodSalesRow{PeriodLabel: label, TotalRevenue: decimal.Zero}
			byPeriod[label] = row
		}
		row.TotalSales += sale.Quantity
		row.TotalRevenue = row.TotalRevenue.Add(sale.TotalAmount)
		row.TransactionCount++

		summary.add(sale)
	}

	rows := make([]PeriodSalesRow, 0, len(byPeriod))
	for _, row := range byPeriod {
		row.AverageSaleValue = average(row.TotalRevenue, row.TransactionCount)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].PeriodLabel < rows[j].PeriodLabel })
	summary.TotalPeriods = len(rows)

	return &DateReport{Rows: rows, Summary: summary}, nil
}

// PeriodLabel formats t as 2006-01-02, 2006-W01 (ISO week) or 2006-01.
func PeriodLabel(t time.Time, groupBy string) string {
	switch groupBy {
	case GroupByWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GroupByMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// SalesByCategory totals sales per category; items without one land in
// the Uncategorized bucket.
func (s *Service) SalesByCategory(ctx context.Context, f ReportFilter) (*CategoryReport, error) {
	sales, err := s.loadSales(ctx, f)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		row   *CategorySalesRow
		items map[uint]struct{}
	}
	byCategory := make(map[string]*bucket)
	summary := CategorySummary{Totals: Totals{TotalRevenue: decimal.Zero}}
	for i := range sales {
		sale := &sales[i]
		name := UncategorizedLabel
		if sale.Item != nil {
			name = categoryName(sale.Item)
		}
		b, ok := byCategory[name]
		if !ok {
			b = &bucket{
				row:   &CategorySalesRow{CategoryName: name, TotalRevenue: decimal.Zero},
				items: make(map[uint]struct{}),
			}
			byCategory[name] = b
		}
		b.items[sale.ItemID] = struct{}{}
		b.row.TotalQuantity += sale.Quantity
		b.row.TotalRevenue = b.row.TotalRevenue.Add(sale.TotalAmount)
		b.row.SaleCount++

		summary.add(sale)
	}

	rows := make([]CategorySalesRow, 0, len(byCategory))
	for _, b := range byCategory {
		b.row.ItemCount = len(b.items)
		b.row.RevenuePercentage = decimal.Zero
		if summary.TotalRevenue.IsPositive() {
			b.row.RevenuePercentage = b.row.TotalRevenue.Mul(decimal.NewFromInt(100)).Div(summary.TotalRevenue).Round(1)
		}
		rows = append(rows, *b.row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].TotalRevenue.Cmp(rows[j].TotalRevenue); c != 0 {
			return c > 0
		}
		return rows[i].CategoryName < rows[j].CategoryName
	})
	summary.TotalCategories = len(rows)

	return &CategoryReport{Rows: rows, Summary: summary}, nil
}

// InventoryReport lists current stock with its value, optionally for one category.
func (s *Service) InventoryReport(ctx context.Context, categoryID *uint) (*InventoryReport, error) {
	q := s.db.WithContext(ctx).Preload("Category").Order("name ASC")
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	var items []models.Item
	if err := q.Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "load inventory")
	}

	report := &InventoryReport{
		Rows:    make([]InventoryRow, 0, len(items)),
		Summary: InventorySummary{TotalValue: decimal.Zero},
	}
	for i := range items {
		it := &items[i]
		row := InventoryRow{
			ItemID:       it.ID,
			ItemName:     it.Name,
			CategoryName: categoryName(it),
			Quantity:     it.Quantity,
			Price:        it.Price,
			StockValue:   it.StockValue(),
			Status:       s.stockStatus(it.Quantity),
		}
		report.Rows = append(report.Rows, row)

		report.Summary.TotalItems++
		report.Summary.TotalQuantity += it.Quantity
		report.Summary.TotalValue = report.Summary.TotalValue.Add(row.StockValue)
		switch row.Status {
		case StatusOutOfStock:
			report.Summary.OutOfStock++
		case StatusLowStock:
			report.Summary.LowStock++
		}
	}
	return report, nil
}

func (s *Service) stockStatus(qty int) string {
	switch {
	case qty <= 0:
		return StatusOutOfStock
	case qty < s.lowStockThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

func categoryName(item *models.Item) string {
	if item.Category == nil || item.Category.Name == "" {
		return UncategorizedLabel
	}
	return item.Category.Name
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}
