package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ABEL-1010/Inventory-Management-System/internal/middleware"
	"github.com/ABEL-1010/Inventory-Management-System/internal/models"
	"github.com/ABEL-1010/Inventory-Management-System/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProfileHandler serves the current user's own account.
type ProfileHandler struct {
	DB         *gorm.DB
	BcryptCost int
}

func NewProfileHandler(db *gorm.DB, bcryptCost int) *ProfileHandler {
	return &ProfileHandler{DB: db, BcryptCost: bcryptCost}
}

type updateProfileReq struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	CurrentPassword string  `json:"currentPassword"`
	Password        string  `json:"password"`
}

// GetProfile returns the current user.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authorized")
		return
	}
	util.Success(c, user)
}

// UpdateProfile changes name, email or password. A new password needs the
// current one.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Not authorized")
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if err := util.ValidateName("name", *req.Name, 100); err != nil {
			respondServiceError(c, invalid(err.Error()))
			return
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !validEmail(email) {
			respondServiceError(c, invalid("Invalid email"))
			return
		}
		if email != user.Email {
			taken, err := emailTaken(h.DB.WithContext(c.Request.Context()), email, user.ID)
			if err != nil {
				respondServiceError(c, err)
				return
			}
			if taken {
				respondServiceError(c, errUserExists)
				return
			}
			updates["email"] = email
		}
	}
	if req.Password != "" {
		if !util.CheckPassword(req.CurrentPassword, user.PasswordHash) {
			respondServiceError(c, invalid("Current password is incorrect"))
			return
		}
		if len(req.Password) < minPasswordLen {
			respondServiceError(c, invalid(fmt.Sprintf("Password must be at least %d characters", minPasswordLen)))
			return
		}
		hash, err := util.HashPassword(req.Password, h.BcryptCost)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		if err := h.DB.WithContext(c.Request.Context()).Model(user).Updates(updates).Error; err != nil {
			if isDuplicate(err) {
				respondServiceError(c, errUserExists)
				return
			}
			respondServiceError(c, err)
			return
		}
	}

	var fresh models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&fresh, user.ID).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	util.Success(c, fresh)
}
