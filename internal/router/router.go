package router

import (
	"net/http"
	"time"

	"github.com/ABEL-1010/Inventory-Management-System/internal/config"
	"github.com/ABEL-1010/Inventory-Management-System/internal/handler"
	"github.com/ABEL-1010/Inventory-Management-System/internal/inventory"
	"github.com/ABEL-1010/Inventory-Management-System/internal/middleware"
	"github.com/ABEL-1010/Inventory-Management-System/internal/stats"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRouter builds the gin engine with middleware and every API route.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		// cors.New panics without any allowed origin
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is working!"})
	})

	inv := inventory.NewService(db, inventory.LogDispatcher{Logger: log.StandardLogger()})
	st := stats.NewService(db, cfg.App.LowStockThreshold)
	pageSize := cfg.App.PageSize

	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpireHours,
		cfg.Security.MaxLoginAttempts, cfg.Security.LockMinutes)
	profileHandler := handler.NewProfileHandler(db, cfg.Security.BcryptCost)
	userHandler := handler.NewUserHandler(db, cfg.Security.BcryptCost)
	categoryHandler := handler.NewCategoryHandler(db, inv, pageSize)
	itemHandler := handler.NewItemHandler(db, inv, st, pageSize)
	saleHandler := handler.NewSaleHandler(db, inv, pageSize)
	reportHandler := handler.NewReportHandler(st)
	logHandler := handler.NewLogHandler(db, pageSize)

	authed := middleware.AuthMiddleware(cfg.JWT.Secret, db)
	admin := middleware.AdminOnly()

	api := r.Group("/api")
	// records mutating requests once the auth middleware of the route has run
	api.Use(middleware.AuditMiddleware(db))

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.GET("/profile", authed, profileHandler.GetProfile)
	auth.PUT("/profile", authed, profileHandler.UpdateProfile)

	users := api.Group("/users", authed, admin)
	users.GET("", userHandler.ListUsers)
	users.POST("", userHandler.CreateUser)
	users.GET("/:id", userHandler.GetUser)
	users.PUT("/:id", userHandler.UpdateUser)
	users.DELETE("/:id", userHandler.DeleteUser)

	categories := api.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.POST("", authed, admin, categoryHandler.CreateCategory)
	categories.PUT("/:id", authed, admin, categoryHandler.UpdateCategory)
	categories.DELETE("/:id", authed, admin, categoryHandler.DeleteCategory)

	items := api.Group("/items")
	items.GET("", itemHandler.ListItems)
	items.GET("/export", authed, admin, itemHandler.ExportItems)
	items.GET("/category/:categoryId", itemHandler.ListByCategory)
	items.GET("/:id", itemHandler.GetItem)
	items.POST("", authed, admin, itemHandler.CreateItem)
	items.PUT("/:id", authed, admin, itemHandler.UpdateItem)
	items.PATCH("/:id/quantity", authed, admin, itemHandler.UpdateQuantity)
	items.DELETE("/:id", authed, admin, itemHandler.DeleteItem)

	sales := api.Group("/sales", authed)
	sales.GET("", saleHandler.ListSales)
	sales.GET("/date-range", saleHandler.SalesByDateRange)
	sales.GET("/:id", saleHandler.GetSale)
	sales.POST("", saleHandler.CreateSale)
	sales.PUT("/:id", admin, saleHandler.UpdateSale)
	sales.DELETE("/:id", admin, saleHandler.DeleteSale)

	api.GET("/stats", authed, admin, reportHandler.Dashboard)

	reports := api.Group("/reports", authed)
	reports.GET("/dashboard-stats", reportHandler.Dashboard)
	reports.GET("/sales-by-item", reportHandler.SalesByItem)
	reports.GET("/sales-by-date", reportHandler.SalesByDate)
	reports.GET("/sales-by-category", reportHandler.SalesByCategory)
	reports.GET("/inventory", reportHandler.Inventory)

	api.GET("/audit-logs", authed, admin, logHandler.ListLogs)

	return r
}
