package export

import (
	"strconv"

	"github.com/ABEL-1010/Inventory-Management-System/internal/stats"

	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func itoa(n int) string { return strconv.Itoa(n) }

func SalesByItemTable(r *stats.ItemReport) Table {
	t := Table{
		Title:   "Sales by Item",
		Headers: []string{"Item", "Category", "Quantity Sold", "Revenue", "Sales", "Average Price"},
	}
	for _, row := range r.Rows {
		t.Rows = append(t.Rows, []string{
			row.ItemName, row.CategoryName, itoa(row.TotalQuantity),
			money(row.TotalRevenue), itoa(row.SaleCount), money(row.AveragePrice),
		})
	}
	t.Summary = []KV{
		{"Total Items", itoa(r.Summary.TotalItems)},
		{"Total Quantity", itoa(r.Summary.TotalQuantity)},
		{"Total Revenue", money(r.Summary.TotalRevenue)},
		{"Total Transactions", itoa(r.Summary.TotalTransactions)},
	}
	return t
}

func SalesByDateTable(r *stats.DateReport) Table {
	t := Table{
		Title:   "Sales by Date",
		Headers: []string{"Period", "Quantity Sold", "Revenue", "Transactions", "Average Sale"},
	}
	for _, row := range r.Rows {
		t.Rows = append(t.Rows, []string{
			row.PeriodLabel, itoa(row.TotalSales), money(row.TotalRevenue),
			itoa(row.TransactionCount), money(row.AverageSaleValue),
		})
	}
	t.Summary = []KV{
		{"Total Periods", itoa(r.Summary.TotalPeriods)},
		{"Total Quantity", itoa(r.Summary.TotalQuantity)},
		{"Total Revenue", money(r.Summary.TotalRevenue)},
		{"Total Transactions", itoa(r.Summary.TotalTransactions)},
	}
	return t
}

func SalesByCategoryTable(r *stats.CategoryReport) Table {
	t := Table{
		Title:   "Sales by Category",
		Headers: []string{"Category", "Items", "Quantity Sold", "Revenue", "Sales", "Revenue %"},
	}
	for _, row := range r.Rows {
		t.Rows = append(t.Rows, []string{
			row.CategoryName, itoa(row.ItemCount), itoa(row.TotalQuantity),
			money(row.TotalRevenue), itoa(row.SaleCount), row.RevenuePercentage.StringFixed(1),
		})
	}
	t.Summary = []KV{
		{"Total Categories", itoa(r.Summary.TotalCategories)},
		{"Total Quantity", itoa(r.Summary.TotalQuantity)},
		{"Total Revenue", money(r.Summary.TotalRevenue)},
		{"Total Transactions", itoa(r.Summary.TotalTransactions)},
	}
	return t
}

func InventoryTable(r *stats.InventoryReport) Table {
	t := Table{
		Title:   "Inventory",
		Headers: []string{"Item", "Category", "Quantity", "Price", "Stock Value", "Status"},
	}
	for _, row := range r.Rows {
		t.Rows = append(t.Rows, []string{
			row.ItemName, row.CategoryName, itoa(row.Quantity),
			money(row.Price), money(row.StockValue), row.Status,
		})
	}
	t.Summary = []KV{
		{"Total Items", itoa(r.Summary.TotalItems)},
		{"Total Quantity", itoa(r.Summary.TotalQuantity)},
		{"Total Value", money(r.Summary.TotalValue)},
		{"Low Stock", itoa(r.Summary.LowStock)},
		{"Out of Stock", itoa(r.Summary.OutOfStock)},
	}
	return t
}

// DashboardTable flattens the dashboard counters and monthly revenue.
func DashboardTable(d *stats.DashboardStats) Table {
	t := Table{
		Title:   "Dashboard",
		Headers: []string{"Month", "Sales"},
	}
	for _, m := range d.MonthlyData {
		t.Rows = append(t.Rows, []string{m.Month, money(m.Sales)})
	}
	t.Summary = []KV{
		{"Total Items", strconv.FormatInt(d.TotalItems, 10)},
		{"Total Categories", strconv.FormatInt(d.TotalCategories, 10)},
		{"Total Sales", strconv.FormatInt(d.TotalSales, 10)},
		{"Low Quantity", strconv.FormatInt(d.LowQuantity, 10)},
		{"Today's Sales", money(d.TodaySales)},
	}
	return t
}
