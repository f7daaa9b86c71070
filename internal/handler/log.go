package handler

import (
	"strings"

	"github.com/ABEL-1010/Inventory-Management-System/internal/models"
	"github.com/ABEL-1010/Inventory-Management-System/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler lists the audit log (admin only).
type LogHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewLogHandler(db *gorm.DB, pageSize int) *LogHandler {
	return &LogHandler{DB: db, PageSize: pageSize}
}

type logResp struct {
	models.AuditLog
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// ListLogs: ?page, ?limit, ?start, ?end (YYYY-MM-DD), ?q (path or action), ?user.
func (h *LogHandler) ListLogs(c *gin.Context) {
	page := util.ParsePage(c, h.PageSize)
	start, end, err := dayRange(c.Query("start"), c.Query("end"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	base := h.DB.WithContext(c.Request.Context()).Model(&models.AuditLog{})
	if start != nil {
		base = base.Where("created_at >= ?", *start)
	}
	if end != nil {
		base = base.Where("created_at < ?", *end)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := likePattern(q)
		base = base.Where("LOWER(path) LIKE ? ESCAPE '!' OR LOWER(action) LIKE ? ESCAPE '!'", like, like)
	}
	if uid := c.Query("user"); uid != "" {
		base = base.Where("user_id = ?", uid)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	var logs []models.AuditLog
	if err := base.
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&logs).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	// resolve user names in one query
	ids := make([]uint, 0, len(logs))
	for _, l := range logs {
		if l.UserID != nil {
			ids = append(ids, *l.UserID)
		}
	}
	users := map[uint]models.User{}
	if len(ids) > 0 {
		var found []models.User
		if err := h.DB.WithContext(c.Request.Context()).Where("id IN ?", ids).Find(&found).Error; err != nil {
			respondServiceError(c, err)
			return
		}
		for _, u := range found {
			users[u.ID] = u
		}
	}

	items := make([]logResp, 0, len(logs))
	for _, l := range logs {
		r := logResp{AuditLog: l}
		if l.UserID != nil {
			if u, ok := users[*l.UserID]; ok {
				r.UserName = u.Name
				r.UserEmail = u.Email
			}
		}
		items = append(items, r)
	}

	util.Success(c, gin.H{
		"logs":       items,
		"pagination": util.NewPagination(page, total),
	})
}
