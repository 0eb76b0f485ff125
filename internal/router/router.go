// Package router wires repositories, services, handlers and middleware
// into the gin engine. It is the composition root of the server.
package router

import (
	"time"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/config"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/handler"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/middleware"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/model"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/repository"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(),
		middleware.ErrorHandler(),
	)

	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	stockRepo := repository.NewStockMovementRepository(db)
	userRepo := repository.NewUserRepository(db)

	saleSvc := service.NewSaleService(saleRepo, productRepo, sessionRepo, stockRepo)
	sessionSvc := service.NewSessionService(sessionRepo)
	catalogSvc := service.NewCatalogService(productRepo, stockRepo)
	authSvc := service.NewAuthService(userRepo, cfg)

	healthH := handler.NewHealthHandler(db, rdb)
	salesH := handler.NewSalesHandler(saleSvc)
	sessionsH := handler.NewSessionsHandler(sessionSvc)
	productsH := handler.NewProductsHandler(catalogSvc)
	priceH := handler.NewPriceCheckHandler(catalogSvc, rdb)
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)

	r.GET("/healthz", healthH.Check)
	// The price-check terminal is unauthenticated, so it gets its own limiter.
	r.GET("/public/price-check/:barcode",
		middleware.RateLimiter(cfg.PublicRateLimit, time.Minute), priceH.Check)

	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/login", middleware.LoginRateLimiter(cfg.LoginRateLimit), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	authed := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		sales := authed.Group("/sales")
		sales.POST("", salesH.FinalizeSale)
		sales.GET("", salesH.ListSales)
		sales.GET("/:id", salesH.GetSale)
		sales.DELETE("/:id", middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin), salesH.CancelSale)

		sessions := authed.Group("/sessions")
		sessions.POST("", sessionsH.Open)
		sessions.GET("", sessionsH.List)
		sessions.GET("/current", sessionsH.Current)
		sessions.GET("/:id", sessionsH.Get)
		sessions.POST("/:id/close", sessionsH.Close)
		sessions.POST("/movements", sessionsH.RecordMovement)

		products := authed.Group("/products")
		products.GET("", productsH.List)
		products.GET("/low-stock", productsH.ListLowStock)
		products.GET("/barcode/:barcode", productsH.GetByBarcode)
		products.GET("/:id", productsH.Get)

		authed.GET("/stock-movements",
			middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin),
			productsH.ListStockMovements)

		manage := authed.Group("/products", middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin))
		manage.POST("", productsH.Create)
		manage.PUT("/:id", productsH.Update)
		manage.POST("/:id/stock", productsH.AdjustStock)
		manage.DELETE("/:id", productsH.Deactivate)
		manage.POST("/:id/reactivate", productsH.Reactivate)

		users := authed.Group("/users", middleware.RequireRole(model.RoleAdmin))
		users.POST("", usersH.Create)
		users.GET("", usersH.List)
		users.PUT("/:id", usersH.Update)
		users.DELETE("/:id", usersH.Deactivate)
		users.POST("/:id/reactivate", usersH.Reactivate)
	}

	return r
}
