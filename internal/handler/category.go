package handler

import (
	"errors"
	"strings"

	"github.com/ABEL-1010/Inventory-Management-System/internal/inventory"
	"github.com/ABEL-1010/Inventory-Management-System/internal/models"
	"github.com/ABEL-1010/Inventory-Management-System/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	DB        *gorm.DB
	Inventory *inventory.Service
	PageSize  int
}

func NewCategoryHandler(db *gorm.DB, inv *inventory.Service, pageSize int) *CategoryHandler {
	return &CategoryHandler{DB: db, Inventory: inv, PageSize: pageSize}
}

type categoryReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

var categorySort = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// ListCategories: ?page, ?limit, ?search (name or description), ?sortBy, ?sortOrder.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	page := util.ParsePage(c, h.PageSize)
	base := h.DB.WithContext(c.Request.Context()).Model(&models.Category{})
	if search := c.Query("search"); search != "" {
		p := likePattern(search)
		base = base.Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", p, p)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	categories := []models.Category{}
	if err := base.Order(sortClause(c, categorySort, "createdAt")).Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&categories).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	util.Success(c, gin.H{
		"categories": categories,
		"pagination": util.NewPagination(page, total),
	})
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var category models.Category
	if err := h.DB.WithContext(c.Request.Context()).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = inventory.ErrCategoryNotFound
		}
		respondServiceError(c, err)
		return
	}
	util.Success(c, category)
}

func (h *CategoryHandler) nameTaken(c *gin.Context, name string, exceptID uint) (bool, error) {
	var count int64
	q := h.DB.WithContext(c.Request.Context()).Model(&models.Category{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondServiceError(c, invalid("Invalid request body"))
		return
	}
	if req.Name == nil {
		respondServiceError(c, invalid("name is required"))
		return
	}
	name := strings.TrimSpace(*req.Name)
	if err := util.ValidateName("name", name, 100); err != nil {
		respondServiceError(c, invalid(err.Error()))
		return
	}

	taken, err := h.nameTaken(c, name, 0)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if taken {
		respondServiceError(c, errCategoryExists)
		return
	}

	category := models.Category{Name: name}
	if req.Description != nil {
		category.Description = strings.TrimSpace(*req.Description)
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&category).Error; err != nil {
		if isDuplicate(err) {
			err = errCategoryExists
		}
		respondServiceError(c, err)
		return
	}
	util.Created(c, category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondServiceError(c, invalid("Invalid request body"))
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = inventory.ErrCategoryNotFound
		}
		respondServiceError(c, err)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := util.ValidateName("name", name, 100); err != nil {
			respondServiceError(c, invalid(err.Error()))
			return
		}
		taken, err := h.nameTaken(c, name, id)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if taken {
			respondServiceError(c, errCategoryExists)
			return
		}
		category.Name = name
	}
	if req.Description != nil {
		category.Description = strings.TrimSpace(*req.Description)
	}

	if err := db.Save(&category).Error; err != nil {
		if isDuplicate(err) {
			err = errCategoryExists
		}
		respondServiceError(c, err)
		return
	}
	util.Success(c, category)
}

// DeleteCategory removes the category with its items and their sales.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.Inventory.DeleteCategory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	util.Success(c, gin.H{
		"message":      "Category removed",
		"itemsRemoved": res.ItemsRemoved,
		"salesRemoved": res.SalesRemoved,
	})
}
