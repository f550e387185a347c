// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gelateria/internal/domain/auth"
	"gelateria/internal/domain/client"
	"gelateria/internal/domain/consumption"
	"gelateria/internal/domain/material"
	"gelateria/internal/domain/product"
	"gelateria/internal/domain/purchase"
	"gelateria/internal/domain/reports"
	"gelateria/internal/domain/sale"
	"gelateria/internal/infrastructure/http/v1/handlers"
	"gelateria/internal/infrastructure/http/v1/middleware"
	"gelateria/internal/infrastructure/storage/postgres"
	"gelateria/pkg/logger"
)

// RouterConfig bundles everything the router needs.
type RouterConfig struct {
	Logger       *logger.Logger
	Pool         *postgres.Pool
	JWTValidator middleware.JWTValidator

	AuthService        *auth.Service
	ProductService     *product.Service
	MaterialService    *material.Service
	ClientService      *client.Service
	SaleService        *sale.Service
	PurchaseService    *purchase.Service
	ConsumptionService *consumption.Service
	ReportsService     *reports.Service

	// AllowedOrigins for CORS; empty allows any origin (dev)
	AllowedOrigins []string
}

// NewRouter creates and configures the gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Order matters: recovery first, error handler last before routes
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	productHandler := handlers.NewProductHandler(cfg.ProductService)
	materialHandler := handlers.NewMaterialHandler(cfg.MaterialService)
	clientHandler := handlers.NewClientHandler(cfg.ClientService)
	saleHandler := handlers.NewSaleHandler(cfg.SaleService)
	purchaseHandler := handlers.NewPurchaseHandler(cfg.PurchaseService)
	consumptionHandler := handlers.NewConsumptionHandler(cfg.ConsumptionService)
	reportsHandler := handlers.NewReportsHandler(cfg.ReportsService)

	requireAuth := middleware.Auth(cfg.JWTValidator)
	adminOnly := middleware.RequireRole(string(auth.RoleAdmin))
	sellers := middleware.RequireRole(string(auth.RoleAdmin), string(auth.RoleVendedor))

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/forgot-password", authHandler.ForgotPassword)
			authGroup.PUT("/reset-password/:token", authHandler.ResetPassword)
			authGroup.GET("/verify-email/:token", authHandler.VerifyEmail)
			authGroup.POST("/resend-verification", authHandler.ResendVerification)
			authGroup.POST("/create-first-admin", authHandler.CreateFirstAdmin)

			authGroup.GET("/me", requireAuth, authHandler.Me)
			authGroup.POST("/logout", requireAuth, authHandler.Logout)
			authGroup.GET("/users", requireAuth, adminOnly, authHandler.ListUsers)
			authGroup.POST("/create-user", requireAuth, adminOnly, authHandler.CreateUser)
		}

		products := api.Group("/products", requireAuth)
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.POST("", sellers, productHandler.Create)
			products.PUT("/:id", sellers, productHandler.Update)
			products.DELETE("/:id", adminOnly, productHandler.Delete)
		}

		materials := api.Group("/materials", requireAuth)
		{
			materials.GET("", materialHandler.List)
			materials.GET("/stats", materialHandler.Stats)
			materials.GET("/:id", materialHandler.Get)
			materials.POST("", sellers, materialHandler.Create)
			materials.PUT("/:id", sellers, materialHandler.Update)
			materials.DELETE("/:id", adminOnly, materialHandler.Delete)
		}

		clients := api.Group("/clients", requireAuth)
		{
			clients.GET("", clientHandler.List)
			clients.GET("/:id", clientHandler.Get)
			clients.POST("", clientHandler.Create)
			clients.PUT("/:id", clientHandler.Update)
			clients.DELETE("/:id", adminOnly, clientHandler.Delete)
		}

		sales := api.Group("/sales", requireAuth)
		{
			sales.GET("", saleHandler.List)
			sales.GET("/reports/period", adminOnly, reportsHandler.SalesByPeriod)
			sales.GET("/:id", saleHandler.Get)
			sales.POST("", sellers, saleHandler.Create)
			sales.PUT("/:id/payment", sellers, saleHandler.UpdatePayment)
		}

		purchases := api.Group("/material-purchases", requireAuth)
		{
			purchases.GET("", purchaseHandler.List)
			purchases.GET("/consumption-report", reportsHandler.MaterialConsumption)
			purchases.GET("/:id", purchaseHandler.Get)
			purchases.POST("", sellers, purchaseHandler.Create)
			purchases.PUT("/:id", sellers, purchaseHandler.Update)
			purchases.DELETE("/:id", adminOnly, purchaseHandler.Delete)
		}

		consumptions := api.Group("/material-consumptions", requireAuth)
		{
			consumptions.GET("", consumptionHandler.List)
			consumptions.GET("/:id", consumptionHandler.Get)
			consumptions.POST("", sellers, consumptionHandler.Create)
			consumptions.DELETE("/:id", adminOnly, consumptionHandler.Delete)
		}
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = origins
	}
	return cors.New(corsCfg)
}
