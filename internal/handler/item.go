package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/ABEL-1010/Inventory-Management-System/internal/export"
	"github.com/ABEL-1010/Inventory-Management-System/internal/inventory"
	"github.com/ABEL-1010/Inventory-Management-System/internal/models"
	"github.com/ABEL-1010/Inventory-Management-System/internal/stats"
	"github.com/ABEL-1010/Inventory-Management-System/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ItemHandler struct {
	DB        *gorm.DB
	Inventory *inventory.Service
	Stats     *stats.Service
	PageSize  int
}

func NewItemHandler(db *gorm.DB, inv *inventory.Service, st *stats.Service, pageSize int) *ItemHandler {
	return &ItemHandler{DB: db, Inventory: inv, Stats: st, PageSize: pageSize}
}

// itemReq is shared by create and update; nil fields are left unchanged on update.
// category is the category id, 0 clears it.
type itemReq struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	Category    *uint            `json:"category"`
}

type quantityReq struct {
	Quantity *int `json:"quantity"`
}

var itemSort = map[string]string{
	"name":      "name",
	"price":     "price",
	"quantity":  "quantity",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// ListItems: ?page, ?limit, ?search, ?category, ?sortBy, ?sortOrder.
func (h *ItemHandler) ListItems(c *gin.Context) {
	page := util.ParsePage(c, h.PageSize)

	base := h.DB.WithContext(c.Request.Context()).Model(&models.Item{})
	if search := c.Query("search"); search != "" {
		p := likePattern(search)
		base = base.Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", p, p)
	}
	if cat := c.Query("category"); cat != "" {
		id, err := strconv.ParseUint(cat, 10, 64)
		if err != nil {
			respondServiceError(c, invalid("Invalid category"))
			return
		}
		base = base.Where("category_id = ?", id)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	items := []models.Item{}
	if err := base.Preload("Category").
		Order(sortClause(c, itemSort, "createdAt")).Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&items).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	util.Success(c, gin.H{
		"items":      items,
		"pagination": util.NewPagination(page, total),
	})
}

func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := h.Inventory.GetItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	util.Success(c, item)
}

// ListByCategory returns every item of one category, unpaginated.
func (h *ItemHandler) ListByCategory(c *gin.Context) {
	id, ok := parseID(c, "categoryId")
	if !ok {
		return
	}
	items := []models.Item{}
	if err := h.DB.WithContext(c.Request.Context()).Preload("Category").
		Where("category_id = ?", id).Order("name ASC").
		Find(&items).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	util.Success(c, items)
}

func (h *ItemHandler) nameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var count int64
	q := h.DB.WithContext(ctx).Model(&models.Item{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (h *ItemHandler) categoryExists(ctx context.Context, id uint) error {
	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return inventory.ErrCategoryNotFound
	}
	return nil
}

// applyItemReq validates req and copies it onto item.
func (h *ItemHandler) applyItemReq(ctx context.Context, item *models.Item, req *itemReq) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := util.ValidateName("name", name, 200); err != nil {
			return invalid(err.Error())
		}
		taken, err := h.nameTaken(ctx, name, item.ID)
		if err != nil {
			return err
		}
		if taken {
			return errItemExists
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if err := util.ValidatePrice(*req.Price); err != nil {
			return invalid(err.Error())
		}
		item.Price = *req.Price
	}
	if req.Category != nil {
		if *req.Category == 0 {
			item.CategoryID = nil
		} else {
			if err := h.categoryExists(ctx, *req.Category); err != nil {
				return err
			}
			id := *req.Category
			item.CategoryID = &id
		}
	}
	return nil
}

func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req itemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondServiceError(c, invalid("Invalid request body"))
		return
	}
	if req.Name == nil || req.Price == nil {
		respondServiceError(c, invalid("name and price are required"))
		return
	}

	ctx := c.Request.Context()
	var item models.Item
	if err := h.applyItemReq(ctx, &item, &req); err != nil {
		respondServiceError(c, err)
		return
	}
	if req.Quantity != nil {
		if err := util.ValidateStock(*req.Quantity); err != nil {
			respondServiceError(c, invalid(err.Error()))
			return
		}
		item.Quantity = *req.Quantity
	}

	if err := h.DB.WithContext(ctx).Create(&item).Error; err != nil {
		if isDuplicate(err) {
			err = errItemExists
		}
		respondServiceError(c, err)
		return
	}

	created, err := h.Inventory.GetItem(ctx, item.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	util.Created(c, created)
}

// UpdateItem changes item fields. A quantity in the body is an explicit
// stock override.
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req itemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondServiceError(c, invalid("Invalid request body"))
		return
	}

	ctx := c.Request.Context()
	item, err := h.Inventory.GetItem(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.applyItemReq(ctx, item, &req); err != nil {
		respondServiceError(c, err)
		return
	}
	if req.Quantity != nil {
		if err := util.ValidateStock(*req.Quantity); err != nil {
			respondServiceError(c, invalid(err.Error()))
			return
		}
	}

	// quantity goes through the inventory service, never through this update
	if err := h.DB.WithContext(ctx).Model(item).
		Select("name", "description", "price", "category_id").
		Updates(map[string]interface{}{
			"name":        item.Name,
			"description": item.Description,
			"price":       item.Price,
			"category_id": item.CategoryID,
		}).Error; err != nil {
		if isDuplicate(err) {
			err = errItemExists
		}
		respondServiceError(c, err)
		return
	}

	if req.Quantity != nil {
		if _, err := h.Inventory.SetItemQuantity(ctx, id, *req.Quantity); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	updated, err := h.Inventory.GetItem(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	util.Success(c, updated)
}

// UpdateQuantity is the explicit stock override (PATCH /items/:id/quantity).
func (h *ItemHandler) UpdateQuantity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req quantityReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		respondServiceError(c, invalid("quantity is required"))
		return
	}
	item, err := h.Inventory.SetItemQuantity(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	util.Success(c, item)
}

// DeleteItem removes the item and every sale recorded against it.
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.Inventory.DeleteItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	util.Success(c, gin.H{
		"message":      "Item and related sales deleted",
		"salesRemoved": res.SalesRemoved,
	})
}

// ExportItems downloads the current inventory (?format=xlsx|csv|pdf, ?category).
func (h *ItemHandler) ExportItems(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")
	var categoryID *uint
	if cat := c.Query("category"); cat != "" {
		id, err := strconv.ParseUint(cat, 10, 64)
		if err != nil {
			respondServiceError(c, invalid("Invalid category"))
			return
		}
		v := uint(id)
		categoryID = &v
	}

	report, err := h.Stats.InventoryReport(c.Request.Context(), categoryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	sendTable(c, format, "items", export.InventoryTable(report))
}
