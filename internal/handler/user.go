package handler

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ABEL-1010/Inventory-Management-System/internal/middleware"
	"github.com/ABEL-1010/Inventory-Management-System/internal/models"
	"github.com/ABEL-1010/Inventory-Management-System/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const minPasswordLen = 6

// UserHandler is the admin user management API.
type UserHandler struct {
	DB         *gorm.DB
	BcryptCost int
}

func NewUserHandler(db *gorm.DB, bcryptCost int) *UserHandler {
	return &UserHandler{DB: db, BcryptCost: bcryptCost}
}

type createUserReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleUser
}

func emailTaken(db *gorm.DB, email string, exceptID uint) (bool, error) {
	var count int64
	q := db.Model(&models.User{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (h *UserHandler) find(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users, newest first.
func (h *UserHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.WithContext(c.Request.Context()).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	util.Success(c, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.find(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	util.Success(c, user)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondServiceError(c, invalid("Invalid request body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondServiceError(c, invalid("Please fill in all required fields"))
		return
	}
	if !validEmail(req.Email) {
		respondServiceError(c, invalid("Invalid email"))
		return
	}
	if len(req.Password) < minPasswordLen {
		respondServiceError(c, invalid(fmt.Sprintf("Password must be at least %d characters", minPasswordLen)))
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if !validRole(req.Role) {
		respondServiceError(c, invalid("Role must be admin or user"))
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	taken, err := emailTaken(db, req.Email, 0)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if taken {
		respondServiceError(c, errUserExists)
		return
	}

	hash, err := util.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		if isDuplicate(err) {
			err = errUserExists
		}
		respondServiceError(c, err)
		return
	}
	util.Created(c, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondServiceError(c, invalid("Invalid request body"))
		return
	}

	ctx := c.Request.Context()
	user, err := h.find(ctx, id)
	if err != nil {
		respondServiceError(c, err)
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
		taken, err := emailTaken(h.DB.WithContext(ctx), email, user.ID)
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
	if req.Role != nil {
		if !validRole(*req.Role) {
			respondServiceError(c, invalid("Role must be admin or user"))
			return
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < minPasswordLen {
			respondServiceError(c, invalid(fmt.Sprintf("Password must be at least %d characters", minPasswordLen)))
			return
		}
		hash, err := util.HashPassword(*req.Password, h.BcryptCost)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		if err := h.DB.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			if isDuplicate(err) {
				err = errUserExists
			}
			respondServiceError(c, err)
			return
		}
	}

	user, err = h.find(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	util.Success(c, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if me := middleware.CurrentUser(c); me != nil && me.ID == id {
		respondServiceError(c, errSelfDelete)
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Delete(&models.User{}, id)
	if res.Error != nil {
		respondServiceError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondServiceError(c, errUserNotFound)
		return
	}
	util.Message(c, "User removed")
}
