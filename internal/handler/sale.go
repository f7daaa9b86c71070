package handler

import (
	"time"

	"github.com/ABEL-1010/Inventory-Management-System/internal/inventory"
	"github.com/ABEL-1010/Inventory-Management-System/internal/models"
	"github.com/ABEL-1010/Inventory-Management-System/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SaleHandler struct {
	DB        *gorm.DB
	Inventory *inventory.Service
	PageSize  int
}

func NewSaleHandler(db *gorm.DB, inv *inventory.Service, pageSize int) *SaleHandler {
	return &SaleHandler{DB: db, Inventory: inv, PageSize: pageSize}
}

// saleReq: item is the item id; saleDate accepts RFC 3339 or YYYY-MM-DD.
type saleReq struct {
	Item     *uint   `json:"item"`
	Quantity *int    `json:"quantity"`
	SaleDate *string `json:"saleDate"`
}

func (r *saleReq) date() (*time.Time, error) {
	if r.SaleDate == nil || *r.SaleDate == "" {
		return nil, nil
	}
	t, err := util.ParseDateTime(*r.SaleDate)
	if err != nil {
		return nil, invalid("Invalid saleDate")
	}
	return &t, nil
}

var saleSort = map[string]string{
	"saleDate":    "sales.sale_date",
	"quantity":    "sales.quantity",
	"totalAmount": "sales.total_amount",
	"createdAt":   "sales.created_at",
}

// ListSales: ?page, ?limit, ?search (item or category name), ?startDate,
// ?endDate, ?sortBy, ?sortOrder.
func (h *SaleHandler) ListSales(c *gin.Context) {
	page := util.ParsePage(c, h.PageSize)
	start, end, err := dayRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	base := h.DB.WithContext(c.Request.Context()).Model(&models.Sale{})
	if search := c.Query("search"); search != "" {
		p := likePattern(search)
		base = base.
			Joins("JOIN items ON items.id = sales.item_id").
			Joins("LEFT JOIN categories ON categories.id = items.category_id").
			Where("LOWER(items.name) LIKE ? ESCAPE '!' OR LOWER(categories.name) LIKE ? ESCAPE '!'", p, p)
	}
	if start != nil {
		base = base.Where("sales.sale_date >= ?", start.UTC())
	}
	if end != nil {
		base = base.Where("sales.sale_date < ?", end.UTC())
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	sales := []models.Sale{}
	if err := base.Preload("Item.Category").
		Order(sortClause(c, saleSort, "saleDate")).Order("sales.id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&sales).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	util.Success(c, gin.H{
		"sales":      sales,
		"pagination": util.NewPagination(page, total),
	})
}

// SalesByDateRange returns all sales in [startDate, endDate], newest first.
func (h *SaleHandler) SalesByDateRange(c *gin.Context) {
	startStr, endStr := c.Query("startDate"), c.Query("endDate")
	if startStr == "" || endStr == "" {
		respondServiceError(c, errDateRangeMissing)
		return
	}
	start, end, err := dayRange(startStr, endStr)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sales := []models.Sale{}
	if err := h.DB.WithContext(c.Request.Context()).Preload("Item.Category").
		Where("sale_date >= ? AND sale_date < ?", start.UTC(), end.UTC()).
		Order("sale_date DESC, id DESC").
		Find(&sales).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	util.Success(c, sales)
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sale, err := h.Inventory.GetSale(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	util.Success(c, sale)
}

func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req saleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondServiceError(c, invalid("Invalid request body"))
		return
	}
	if req.Item == nil || req.Quantity == nil {
		respondServiceError(c, invalid("item and quantity are required"))
		return
	}
	date, err := req.date()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sale, err := h.Inventory.CreateSale(c.Request.Context(), inventory.CreateSaleInput{
		ItemID:   *req.Item,
		Quantity: *req.Quantity,
		SaleDate: date,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	util.Created(c, sale)
}

func (h *SaleHandler) UpdateSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req saleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondServiceError(c, invalid("Invalid request body"))
		return
	}
	date, err := req.date()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sale, err := h.Inventory.UpdateSale(c.Request.Context(), id, inventory.UpdateSaleInput{
		ItemID:   req.Item,
		Quantity: req.Quantity,
		SaleDate: date,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	util.Success(c, sale)
}

func (h *SaleHandler) DeleteSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Inventory.DeleteSale(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	util.Message(c, "Sale removed and stock restored")
}
