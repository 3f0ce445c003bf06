package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "invois/docs"
	"invois/internal/config"
	"invois/internal/domain"
	"invois/internal/handler"
	"invois/internal/middleware"
	"invois/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	documentH *handler.DocumentHandler,
	customerH *handler.CustomerHandler,
	uploadH *handler.UploadHandler,
	assistantH *handler.AssistantHandler,
	tenantH *handler.TenantHandler,
	userH *handler.UserHandler,
	statsH *handler.StatsHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Document routes
	documents := protected.Group("/documents")
	documents.POST("", documentH.Create)
	documents.GET("", documentH.List)
	documents.GET("/export", documentH.Export)
	documents.GET("/:id", documentH.GetByID)
	documents.PUT("/:id", documentH.Update)
	documents.DELETE("/:id", documentH.Delete)
	documents.POST("/:id/email", documentH.SendEmail)

	// Customer routes
	customers := protected.Group("/customers")
	customers.POST("", customerH.Create)
	customers.GET("", customerH.List)
	customers.GET("/:id", customerH.GetByID)
	customers.PUT("/:id", customerH.Update)
	customers.DELETE("/:id", customerH.Delete)

	// Upload routes
	uploads := protected.Group("/uploads")
	uploads.POST("/logo", uploadH.UploadLogo)
	uploads.POST("/qrcode", uploadH.UploadQRCode)

	// Assistant routes
	assistant := protected.Group("/assistant")
	assistant.POST("/chat", assistantH.Chat)

	// Admin routes - superadmin only
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(authSvc))
	admin.Use(middleware.RequireRole(domain.RoleSuperadmin))
	admin.POST("/tenants", tenantH.Create)
	admin.GET("/tenants", tenantH.List)
	admin.GET("/tenants/:id", tenantH.GetByID)
	admin.PUT("/tenants/:id", tenantH.Update)
	admin.DELETE("/tenants/:id", tenantH.Delete)
	admin.POST("/users", userH.Create)
	admin.GET("/users", userH.List)
	admin.GET("/users/:id", userH.GetByID)
	admin.PUT("/users/:id", userH.Update)
	admin.DELETE("/users/:id", userH.Delete)
	admin.GET("/stats", statsH.Global)

	return r
}
