package middleware

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ABEL-1010/Inventory-Management-System/internal/config"
	"github.com/ABEL-1010/Inventory-Management-System/internal/database"
	"github.com/ABEL-1010/Inventory-Management-System/internal/models"
	"github.com/ABEL-1010/Inventory-Management-System/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "mw-secret"

func setup(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "mw.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	r := gin.New()
	r.Use(RequestLogger(), AuditMiddleware(db))
	protected := r.Group("/p", AuthMiddleware(secret, db))
	protected.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Email)
	})
	protected.POST("/things", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	protected.GET("/admin", AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.POST("/open", func(c *gin.Context) { c.Status(http.StatusOK) })
	return db, r
}

func createUser(t *testing.T, db *gorm.DB, email, role string) (*models.User, string) {
	t.Helper()
	u := &models.User{Name: "n", Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(u).Error)
	tok, err := util.GenerateToken(secret, "test", u.ID, u.Role, time.Hour)
	require.NoError(t, err)
	return u, tok
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_TokenSources(t *testing.T) {
	db, r := setup(t)
	_, tok := createUser(t, db, "u@example.com", models.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/p/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u@example.com", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/p/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tok})
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/p/me?token="+tok, nil)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/p/me", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	db, r := setup(t)

	other, err := util.GenerateToken("other-secret", "test", 1, models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/p/me", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	admin, _ := createUser(t, db, "a@example.com", models.RoleAdmin)
	expired, err := util.GenerateToken(secret, "test", admin.ID, models.RoleAdmin, time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	req = httptest.NewRequest(http.MethodGet, "/p/me", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	// valid token for a deleted user
	u, tok := createUser(t, db, "gone@example.com", models.RoleUser)
	require.NoError(t, db.Delete(u).Error)
	req = httptest.NewRequest(http.MethodGet, "/p/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "user not found")
}

func TestAdminOnly(t *testing.T) {
	db, r := setup(t)
	_, userTok := createUser(t, db, "u@example.com", models.RoleUser)
	_, adminTok := createUser(t, db, "a@example.com", models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/p/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userTok)
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/p/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestAuditMiddleware(t *testing.T) {
	db, r := setup(t)
	u, tok := createUser(t, db, "u@example.com", models.RoleUser)

	req := httptest.NewRequest(http.MethodPost, "/p/things", strings.NewReader(`{"name":"box"}`))
	req.Header.Set("Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/p/things", strings.NewReader(`{"password":"hunter2"}`))
	req.Header.Set("Authorization", "Bearer "+tok)
	serve(r, req)

	// anonymous and read-only requests are not recorded
	serve(r, httptest.NewRequest(http.MethodPost, "/open", nil))
	req = httptest.NewRequest(http.MethodGet, "/p/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	serve(r, req)

	var logs []models.AuditLog
	require.NoError(t, db.Order("id ASC").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, u.ID, *logs[0].UserID)
	assert.Equal(t, `POST /p/things {"name":"box"}`, logs[0].Action)
	assert.Equal(t, http.StatusNoContent, logs[0].Status)
	assert.Equal(t, "POST /p/things", logs[1].Action)
}

func TestRequestLogger_RequestID(t *testing.T) {
	_, r := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/open", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", serve(r, req).Header().Get(RequestIDHeader))

	w := serve(r, httptest.NewRequest(http.MethodPost, "/open", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
