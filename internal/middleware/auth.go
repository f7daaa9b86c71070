package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ABEL-1010/Inventory-Management-System/internal/models"
	"github.com/ABEL-1010/Inventory-Management-System/internal/util"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CurrentUserKey is the gin context key holding the authenticated *models.User.
const CurrentUserKey = "currentUser"

// TokenCookie is the cookie checked when no bearer header or ?token= is sent.
const TokenCookie = "token"

// AuthMiddleware validates the JWT and loads the current user into the context.
// Inactive or deleted users are rejected.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			util.Abort(c, http.StatusUnauthorized, util.CodeAuth, "Not authorized, no token")
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			util.Abort(c, http.StatusUnauthorized, util.CodeAuth, "Not authorized, token failed")
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Abort(c, http.StatusUnauthorized, util.CodeAuth, "Not authorized, user not found")
			} else {
				log.WithError(err).Error("load current user")
				util.Abort(c, http.StatusInternalServerError, util.CodeServerErr, "Server error")
			}
			return
		}
		if !user.IsActive {
			util.Abort(c, http.StatusUnauthorized, util.CodeAuth, "Account is deactivated")
			return
		}

		c.Set(CurrentUserKey, &user)
		c.Next()
	}
}

// tokenFromRequest reads the bearer header, then ?token= (downloads opened in a
// new tab), then the token cookie.
func tokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if t := c.Query("token"); t != "" {
		return t
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			util.Abort(c, http.StatusUnauthorized, util.CodeAuth, "Not authorized")
			return
		}
		if !user.IsAdmin() {
			util.Abort(c, http.StatusForbidden, util.CodeForbidden, "Not authorized as admin")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by AuthMiddleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
