package handler

import (
	"strconv"
	"time"

	"github.com/ABEL-1010/Inventory-Management-System/internal/export"
	"github.com/ABEL-1010/Inventory-Management-System/internal/stats"
	"github.com/ABEL-1010/Inventory-Management-System/internal/util"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the dashboard and the sales/inventory reports. Every
// endpoint answers JSON unless ?format=xlsx|csv|pdf asks for a download.
type ReportHandler struct {
	Stats *stats.Service
}

func NewReportHandler(st *stats.Service) *ReportHandler {
	return &ReportHandler{Stats: st}
}

// parseFilter reads ?startDate, ?endDate (YYYY-MM-DD), ?category and ?groupBy.
func parseFilter(c *gin.Context) (stats.ReportFilter, error) {
	var f stats.ReportFilter
	if s := c.Query("startDate"); s != "" {
		t, err := util.ParseDate(s)
		if err != nil {
			return f, invalid("Invalid startDate, expected YYYY-MM-DD")
		}
		f.StartDate = &t
	}
	if s := c.Query("endDate"); s != "" {
		t, err := util.ParseDate(s)
		if err != nil {
			return f, invalid("Invalid endDate, expected YYYY-MM-DD")
		}
		f.EndDate = &t
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, invalid("endDate must not be before startDate")
	}
	if s := c.Query("category"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return f, invalid("Invalid category")
		}
		v := uint(id)
		f.CategoryID = &v
	}
	f.GroupBy = c.Query("groupBy")
	return f, nil
}

// Dashboard serves GET /api/stats and GET /api/reports/dashboard-stats.
func (h *ReportHandler) Dashboard(c *gin.Context) {
	d, err := h.Stats.Dashboard(c.Request.Context(), time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if format := c.Query("format"); format != "" {
		sendTable(c, format, "dashboard", export.DashboardTable(d))
		return
	}
	util.Success(c, d)
}

func (h *ReportHandler) SalesByItem(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	r, err := h.Stats.SalesByItem(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if format := c.Query("format"); format != "" {
		sendTable(c, format, "sales_by_item", export.SalesByItemTable(r))
		return
	}
	util.Success(c, gin.H{"salesByItem": r.Rows, "summary": r.Summary, "filters": f})
}

func (h *ReportHandler) SalesByDate(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	r, err := h.Stats.SalesByDate(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if format := c.Query("format"); format != "" {
		sendTable(c, format, "sales_by_date", export.SalesByDateTable(r))
		return
	}
	util.Success(c, gin.H{"salesByDate": r.Rows, "summary": r.Summary, "filters": f})
}

func (h *ReportHandler) SalesByCategory(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	r, err := h.Stats.SalesByCategory(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if format := c.Query("format"); format != "" {
		sendTable(c, format, "sales_by_category", export.SalesByCategoryTable(r))
		return
	}
	util.Success(c, gin.H{"salesByCategory": r.Rows, "summary": r.Summary, "filters": f})
}

func (h *ReportHandler) Inventory(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	r, err := h.Stats.InventoryReport(c.Request.Context(), f.CategoryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if format := c.Query("format"); format != "" {
		sendTable(c, format, "inventory", export.InventoryTable(r))
		return
	}
	util.Success(c, gin.H{"inventory": r.Rows, "summary": r.Summary, "filters": f})
}
