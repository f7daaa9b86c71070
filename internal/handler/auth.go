package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ABEL-1010/Inventory-Management-System/internal/middleware"
	"github.com/ABEL-1010/Inventory-Management-System/internal/models"
	"github.com/ABEL-1010/Inventory-Management-System/internal/util"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthHandler handles login.
type AuthHandler struct {
	DB           *gorm.DB
	JWTSecret    string
	Issuer       string
	TokenTTL     time.Duration
	MaxAttempts  int
	LockDuration time.Duration
}

func NewAuthHandler(db *gorm.DB, jwtSecret, issuer string, ttlHours, maxAttempts, lockMinutes int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if lockMinutes <= 0 {
		lockMinutes = 10
	}
	return &AuthHandler{
		DB:           db,
		JWTSecret:    jwtSecret,
		Issuer:       issuer,
		TokenTTL:     time.Duration(ttlHours) * time.Hour,
		MaxAttempts:  maxAttempts,
		LockDuration: time.Duration(lockMinutes) * time.Minute,
	}
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const msgBadCredentials = "Invalid email or password"

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Please provide email and password")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	db := h.DB.WithContext(c.Request.Context())
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, msgBadCredentials)
			return
		}
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Account is locked, try again later")
		return
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		// lock after MaxAttempts consecutive failures
		attempts := user.FailedLoginAttempts + 1
		updates := map[string]interface{}{"failed_login_attempts": attempts}
		if attempts >= h.MaxAttempts {
			lockUntil := now.Add(h.LockDuration)
			updates["locked_until"] = lockUntil
			updates["failed_login_attempts"] = 0
			log.WithField("user_id", user.ID).Warn("account locked after failed logins")
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			log.WithError(err).Warn("record failed login")
		}
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, msgBadCredentials)
		return
	}

	if !user.IsActive {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Account is deactivated")
		return
	}

	if err := db.Model(&user).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login":            now,
		"last_login_ip":         c.ClientIP(),
	}).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	user.LastLogin = &now

	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, user.ID, user.Role, h.TokenTTL)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.TokenTTL.Seconds()), "/", "", false, true)

	util.Success(c, gin.H{
		"token": token,
		"user":  user,
	})
}
