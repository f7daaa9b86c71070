package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/ABEL-1010/Inventory-Management-System/internal/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxAuditBody = 2000

// AuditMiddleware records every mutating request of an authenticated user.
// It must run after AuthMiddleware. Password fields are never stored.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody+1))
			rest := c.Request.Body
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(bodyBytes), rest))
		}

		c.Next()

		user := CurrentUser(c)
		if user == nil {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) <= maxAuditBody && !bytes.Contains(bytes.ToLower(bodyBytes), []byte("password")) {
			action += " " + string(bodyBytes)
		}

		userID := user.ID
		entry := models.AuditLog{
			UserID:    &userID,
			Method:    c.Request.Method,
			Path:      path,
			Action:    action,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := db.WithContext(c.Request.Context()).Create(&entry).Error; err != nil {
			log.WithError(err).WithField("path", path).Warn("write audit log")
		}
	}
}
