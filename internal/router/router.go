// Package router wires handlers and middleware into the HTTP API.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "budgetplan/internal/docs" // Import swagger docs
	"budgetplan/internal/handlers"
	"budgetplan/internal/middleware"
	"budgetplan/internal/services"
)

// Services are the backends the API serves.
type Services struct {
	Staff     services.StaffServicer
	Plans     services.BudgetPlanServicer
	Transfers services.TransferServicer
	History   services.HistoryServicer
	Audit     services.AuditServicer
}

// Options tune the router.
type Options struct {
	IntegrationAPIKey string
	RequestTimeout    time.Duration
}

// New builds the gin engine with every route registered.
func New(svc Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Staff, svc.Audit)
	planHandler := handlers.NewBudgetPlanHandler(svc.Plans, svc.Audit)
	calculationHandler := handlers.NewCalculationHandler()
	transferHandler := handlers.NewTransferHandler(svc.Transfers, svc.Audit)
	historyHandler := handlers.NewHistoryHandler(svc.History)
	exportHandler := handlers.NewExportHandler(svc.Plans)
	integrationHandler := handlers.NewIntegrationHandler(svc.Plans)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RequestTimeout(opts.RequestTimeout))
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Dashboard routes, API key only
	integrations := v1.Group("/integrations")
	integrations.Use(middleware.APIKeyMiddleware(opts.IntegrationAPIKey))
	integrations.GET("/plans/:year/summary", integrationHandler.GetYearSummary)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	calculations := protected.Group("/calculations")
	calculations.POST("/ceilings", calculationHandler.ComputeCeilings)
	calculations.POST("/validate", calculationHandler.Validate)

	plans := protected.Group("/plans")
	plans.POST("/drafts/advance", calculationHandler.AdvanceDraft)
	plans.POST("", planHandler.CreatePlan)
	plans.GET("", planHandler.ListPlans)
	plans.GET("/:id", planHandler.GetPlan)
	plans.PUT("/:id", planHandler.UpdatePlan)
	plans.DELETE("/:id", planHandler.DeletePlan)
	plans.GET("/:id/summary", planHandler.GetPlanSummary)
	plans.POST("/:id/archive", planHandler.ArchivePlan)
	plans.POST("/:id/restore", planHandler.RestorePlan)
	plans.POST("/:id/transfers", transferHandler.CreateTransfer)
	plans.GET("/:id/history", historyHandler.ListHistory)
	plans.GET("/:id/history/as-of", historyHandler.GetPlanAsOf)
	plans.GET("/:id/export", exportHandler.ExportPlan)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
