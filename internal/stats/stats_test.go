package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ABEL-1010/Inventory-Management-System/internal/config"
	"github.com/ABEL-1010/Inventory-Management-System/internal/database"
	"github.com/ABEL-1010/Inventory-Management-System/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "stats.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

type fixture struct {
	db      *gorm.DB
	food    *models.Category
	toys    *models.Category
	bread   *models.Item
	milk    *models.Item
	ball    *models.Item
	loose   *models.Item
	reftime time.Time
}

func (f *fixture) sale(t *testing.T, item *models.Item, qty int, at time.Time) {
	t.Helper()
	s := models.Sale{
		ItemID:      item.ID,
		Quantity:    qty,
		TotalAmount: item.Price.Mul(decimal.NewFromInt(int64(qty))),
		SaleDate:    at,
	}
	require.NoError(t, f.db.Create(&s).Error)
}

// newFixture: Food{bread 2.00 x50, milk 1.50 x3}, Toys{ball 10.00 x0}, loose 5.00 x20
func newFixture(t *testing.T) *fixture {
	db := setupDB(t)
	f := &fixture{db: db, reftime: time.Date(2026, 3, 15, 14, 0, 0, 0, time.Local)}

	f.food = &models.Category{Name: "Food"}
	f.toys = &models.Category{Name: "Toys"}
	require.NoError(t, db.Create(f.food).Error)
	require.NoError(t, db.Create(f.toys).Error)

	mk := func(name, price string, qty int, cat *models.Category) *models.Item {
		it := &models.Item{Name: name, Price: decimal.RequireFromString(price), Quantity: qty}
		if cat != nil {
			it.CategoryID = &cat.ID
		}
		require.NoError(t, db.Create(it).Error)
		return it
	}
	f.bread = mk("Bread", "2.00", 50, f.food)
	f.milk = mk("Milk", "1.50", 3, f.food)
	f.ball = mk("Ball", "10.00", 0, f.toys)
	f.loose = mk("Loose", "5.00", 20, nil)
	return f
}

func TestDashboard_Empty(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db, 10)

	got, err := svc.Dashboard(context.Background(), time.Now())
	require.NoError(t, err)

	assert.Zero(t, got.TotalItems)
	assert.Zero(t, got.TotalCategories)
	assert.Zero(t, got.TotalSales)
	assert.Zero(t, got.LowQuantity)
	assert.True(t, got.TodaySales.IsZero())
	require.Len(t, got.MonthlyData, 12)
	assert.Equal(t, "Jan", got.MonthlyData[0].Month)
	assert.Equal(t, "Dec", got.MonthlyData[11].Month)
	for _, m := range got.MonthlyData {
		assert.True(t, m.Sales.IsZero())
	}
	assert.Empty(t, got.TopCategories)
	assert.Empty(t, got.RecentSales)
	assert.Empty(t, got.LowQuantityProducts)
}

func TestDashboard_Aggregates(t *testing.T) {
	f := newFixture(t)
	now := f.reftime
	f.sale(t, f.bread, 2, now.Add(-time.Hour))                            // today, 4.00
	f.sale(t, f.milk, 1, now.Add(-2*time.Hour))                           // today, 1.50
	f.sale(t, f.loose, 1, now.AddDate(0, 0, -1))                          // yesterday, 5.00
	f.sale(t, f.bread, 5, time.Date(2026, 1, 10, 9, 0, 0, 0, time.Local)) // Jan, 10.00
	f.sale(t, f.ball, 1, time.Date(2025, 12, 31, 9, 0, 0, 0, time.Local)) // last year

	svc := NewService(f.db, 10)
	got, err := svc.Dashboard(context.Background(), now)
	require.NoError(t, err)

	assert.EqualValues(t, 4, got.TotalItems)
	assert.EqualValues(t, 2, got.TotalCategories)
	assert.EqualValues(t, 5, got.TotalSales)
	assert.EqualValues(t, 2, got.LowQuantity) // milk 3, ball 0
	assert.True(t, decimal.RequireFromString("5.50").Equal(got.TodaySales), got.TodaySales.String())

	assert.True(t, decimal.NewFromInt(10).Equal(got.MonthlyData[0].Sales))
	assert.True(t, decimal.Zero.Equal(got.MonthlyData[1].Sales))
	assert.True(t, decimal.RequireFromString("10.50").Equal(got.MonthlyData[2].Sales))

	require.Len(t, got.TopCategories, 2)
	assert.Equal(t, CategoryCount{Name: "Food", Value: 2}, got.TopCategories[0])
	assert.Equal(t, CategoryCount{Name: "Toys", Value: 1}, got.TopCategories[1])

	require.Len(t, got.RecentSales, 5)
	assert.Equal(t, "Bread", got.RecentSales[0].ProductName)
	assert.Equal(t, 2, got.RecentSales[0].Quantity)

	require.Len(t, got.LowQuantityProducts, 2)
	assert.Equal(t, LowStockItem{Name: "Ball", Quantity: 0}, got.LowQuantityProducts[0])
	assert.Equal(t, LowStockItem{Name: "Milk", Quantity: 3}, got.LowQuantityProducts[1])
}

func TestDashboard_LowQuantityCountsAll(t *testing.T) {
	db := setupDB(t)
	for i := 0; i < 15; i++ {
		require.NoError(t, db.Create(&models.Item{
			Name:     "item-" + string(rune('a'+i)),
			Price:    decimal.NewFromInt(1),
			Quantity: i % 5,
		}).Error)
	}

	got, err := NewService(db, 10).Dashboard(context.Background(), time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 15, got.LowQuantity)
	assert.Len(t, got.LowQuantityProducts, 10)
}

func TestSalesByItem(t *testing.T) {
	f := newFixture(t)
	f.sale(t, f.bread, 2, f.reftime)
	f.sale(t, f.bread, 3, f.reftime)
	f.sale(t, f.loose, 4, f.reftime)

	got, err := NewService(f.db, 10).SalesByItem(context.Background(), ReportFilter{})
	require.NoError(t, err)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Loose", got.Rows[0].ItemName)
	assert.Equal(t, UncategorizedLabel, got.Rows[0].CategoryName)
	assert.True(t, decimal.NewFromInt(20).Equal(got.Rows[0].TotalRevenue))

	bread := got.Rows[1]
	assert.Equal(t, "Food", bread.CategoryName)
	assert.Equal(t, 5, bread.TotalQuantity)
	assert.Equal(t, 2, bread.SaleCount)
	assert.True(t, decimal.NewFromInt(2).Equal(bread.AveragePrice))

	assert.Equal(t, 2, got.Summary.TotalItems)
	assert.Equal(t, 9, got.Summary.TotalQuantity)
	assert.Equal(t, 3, got.Summary.TotalTransactions)
	assert.True(t, decimal.NewFromInt(30).Equal(got.Summary.TotalRevenue))
}

func TestSalesByItem_Filters(t *testing.T) {
	f := newFixture(t)
	day := func(d int) time.Time { return time.Date(2026, 3, d, 12, 0, 0, 0, time.Local) }
	f.sale(t, f.bread, 1, day(1))
	f.sale(t, f.bread, 1, day(5))
	f.sale(t, f.loose, 1, day(5))
	f.sale(t, f.milk, 1, day(9))

	start := time.Date(2026, 3, 5, 0, 0, 0, 0, time.Local)
	end := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	svc := NewService(f.db, 10)

	got, err := svc.SalesByItem(context.Background(), ReportFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	// end date covers the whole day
	assert.Equal(t, 3, got.Summary.TotalTransactions)

	got, err = svc.SalesByItem(context.Background(), ReportFilter{StartDate: &start, EndDate: &end, CategoryID: &f.food.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Summary.TotalTransactions)
	for _, row := range got.Rows {
		assert.Equal(t, "Food", row.CategoryName)
	}
}

func TestSalesByDate_Grouping(t *testing.T) {
	f := newFixture(t)
	f.sale(t, f.bread, 1, time.Date(2026, 1, 15, 10, 0, 0, 0, time.Local))
	f.sale(t, f.bread, 2, time.Date(2026, 1, 15, 18, 0, 0, 0, time.Local))
	f.sale(t, f.bread, 3, time.Date(2026, 1, 16, 10, 0, 0, 0, time.Local))
	f.sale(t, f.bread, 4, time.Date(2026, 2, 2, 10, 0, 0, 0, time.Local))
	svc := NewService(f.db, 10)

	days, err := svc.SalesByDate(context.Background(), ReportFilter{GroupBy: GroupByDay})
	require.NoError(t, err)
	require.Len(t, days.Rows, 3)
	assert.Equal(t, "2026-01-15", days.Rows[0].PeriodLabel)
	assert.Equal(t, 3, days.Rows[0].TotalSales)
	assert.Equal(t, 2, days.Rows[0].TransactionCount)
	assert.True(t, decimal.NewFromInt(3).Equal(days.Rows[0].AverageSaleValue))
	assert.Equal(t, 3, days.Summary.TotalPeriods)

	weeks, err := svc.SalesByDate(context.Background(), ReportFilter{GroupBy: GroupByWeek})
	require.NoError(t, err)
	require.Len(t, weeks.Rows, 2)
	assert.Equal(t, "2026-W03", weeks.Rows[0].PeriodLabel)
	assert.Equal(t, 6, weeks.Rows[0].TotalSales)
	assert.Equal(t, "2026-W06", weeks.Rows[1].PeriodLabel)

	months, err := svc.SalesByDate(context.Background(), ReportFilter{GroupBy: GroupByMonth})
	require.NoError(t, err)
	require.Len(t, months.Rows, 2)
	assert.Equal(t, "2026-01", months.Rows[0].PeriodLabel)
	assert.Equal(t, "2026-02", months.Rows[1].PeriodLabel)
	assert.Equal(t, 10, months.Summary.TotalQuantity)

	_, err = svc.SalesByDate(context.Background(), ReportFilter{GroupBy: "year"})
	assert.ErrorIs(t, err, ErrInvalidGroupBy)
}

func TestPeriodLabel_ISOWeekYear(t *testing.T) {
	// Jan 1 2027 is a Friday and belongs to the last ISO week of 2026
	assert.Equal(t, "2026-W53", PeriodLabel(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), GroupByWeek))
	assert.Equal(t, "2027-01-01", PeriodLabel(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), ""))
}

func TestSalesByCategory(t *testing.T) {
	f := newFixture(t)
	f.sale(t, f.bread, 5, f.reftime) // 10
	f.sale(t, f.milk, 2, f.reftime)  // 3
	f.sale(t, f.loose, 1, f.reftime) // 5
	f.sale(t, f.ball, 2, f.reftime)  // 20

	got, err := NewService(f.db, 10).SalesByCategory(context.Background(), ReportFilter{})
	require.NoError(t, err)

	require.Len(t, got.Rows, 3)
	assert.Equal(t, "Toys", got.Rows[0].CategoryName)
	assert.Equal(t, "Food", got.Rows[1].CategoryName)
	assert.Equal(t, 2, got.Rows[1].ItemCount)
	assert.Equal(t, 7, got.Rows[1].TotalQuantity)
	assert.True(t, decimal.NewFromInt(13).Equal(got.Rows[1].TotalRevenue))
	assert.Equal(t, UncategorizedLabel, got.Rows[2].CategoryName)

	// 20 / 38 = 52.6%
	assert.True(t, decimal.RequireFromString("52.6").Equal(got.Rows[0].RevenuePercentage), got.Rows[0].RevenuePercentage.String())
	assert.Equal(t, 3, got.Summary.TotalCategories)
	assert.Equal(t, 4, got.Summary.TotalTransactions)
}

func TestReports_Empty(t *testing.T) {
	svc := NewService(setupDB(t), 10)
	ctx := context.Background()

	byItem, err := svc.SalesByItem(ctx, ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, byItem.Rows)
	assert.True(t, byItem.Summary.TotalRevenue.IsZero())

	byDate, err := svc.SalesByDate(ctx, ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, byDate.Rows)

	byCat, err := svc.SalesByCategory(ctx, ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, byCat.Rows)
}

func TestInventoryReport(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.db, 10)

	got, err := svc.InventoryReport(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got.Rows, 4)

	byName := map[string]InventoryRow{}
	for _, r := range got.Rows {
		byName[r.ItemName] = r
	}
	assert.Equal(t, StatusInStock, byName["Bread"].Status)
	assert.Equal(t, StatusLowStock, byName["Milk"].Status)
	assert.Equal(t, StatusOutOfStock, byName["Ball"].Status)
	assert.Equal(t, UncategorizedLabel, byName["Loose"].CategoryName)
	assert.True(t, decimal.NewFromInt(100).Equal(byName["Bread"].StockValue))

	// 100 + 4.5 + 0 + 100
	assert.True(t, decimal.RequireFromString("204.5").Equal(got.Summary.TotalValue))
	assert.Equal(t, 1, got.Summary.LowStock)
	assert.Equal(t, 1, got.Summary.OutOfStock)

	toys, err := svc.InventoryReport(context.Background(), &f.toys.ID)
	require.NoError(t, err)
	require.Len(t, toys.Rows, 1)
	assert.Equal(t, "Ball", toys.Rows[0].ItemName)
}

func TestDashboard_SaleDatesWithOffsets(t *testing.T) {
	f := newFixture(t)
	est := time.FixedZone("EST", -5*60*60)
	// 03:00 UTC on Mar 15 and 23:00 UTC on Mar 14
	f.sale(t, f.bread, 2, time.Date(2026, 3, 14, 22, 0, 0, 0, est))
	f.sale(t, f.milk, 1, time.Date(2026, 3, 14, 18, 0, 0, 0, est))

	var stored models.Sale
	require.NoError(t, f.db.Order("id ASC").First(&stored).Error)
	assert.True(t, time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC).Equal(stored.SaleDate))

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	got, err := NewService(f.db, 10).Dashboard(context.Background(), now)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4.00").Equal(got.TodaySales), got.TodaySales.String())
	assert.True(t, decimal.RequireFromString("5.50").Equal(got.MonthlyData[2].Sales))
	assert.Equal(t, "Bread", got.RecentSales[0].ProductName)

	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	report, err := NewService(f.db, 10).SalesByItem(context.Background(), ReportFilter{StartDate: &day, EndDate: &day})
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "Bread", report.Rows[0].ItemName)
}

func TestDashboard_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(f.db, 10).Dashboard(ctx, f.reftime)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecentSale_MissingItem(t *testing.T) {
	got := recentSale(&models.Sale{Quantity: 2, TotalAmount: decimal.NewFromInt(6)})
	assert.Equal(t, UnknownItemLabel, got.ProductName)
	assert.Equal(t, 2, got.Quantity)

	got = recentSale(&models.Sale{Item: &models.Item{Name: "Milk"}})
	assert.Equal(t, "Milk", got.ProductName)
}
