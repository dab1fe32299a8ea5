package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/treviro/treviro_service/internal/api/handlers"
	"github.com/treviro/treviro_service/internal/api/middleware"
	"github.com/treviro/treviro_service/internal/infrastructure/di"
	"github.com/treviro/treviro_service/pkg/tracing"
)

// SetupRoutes configures all application routes
func SetupRoutes(container *di.Container) *gin.Engine {
	router := gin.New()

	// Global middleware - order matters
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware())
	router.Use(middleware.Logger(container.Logger))
	router.Use(middleware.Recovery(container.Logger))
	router.Use(middleware.CORS(container.Config.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(container.Config.Server.RateLimitPerMin))
	router.Use(middleware.SecurityHeaders())

	// Handlers
	healthHandler := handlers.NewHealthHandler(container.DB, container.Redis, container.Logger)
	investmentHandler := handlers.NewInvestmentHandler(container.Sessions)
	transactionHandler := handlers.NewTransactionHandler(container.Sessions)
	financialHandler := handlers.NewFinancialHandler(container.Sessions)
	dashboardHandler := handlers.NewDashboardHandler(container.Sessions)
	marketHandler := handlers.NewMarketHandler(container.MarketDataRepo)

	// Unauthenticated endpoints
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/live", healthHandler.Live)
	router.GET("/version", handlers.VersionHandler())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes behind JWT auth
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authentication(container.Config, container.Logger))
	{
		investments := v1.Group("/investments")
		{
			investments.POST("", investmentHandler.Create)
			investments.GET("", investmentHandler.List)
			investments.GET("/:id", investmentHandler.Get)
			investments.DELETE("/:id", investmentHandler.Delete)
			investments.POST("/:id/sales", investmentHandler.RecordSale)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.POST("", transactionHandler.Create)
			transactions.GET("", transactionHandler.List)
			transactions.GET("/:id", transactionHandler.Get)
			transactions.PUT("/:id", transactionHandler.Update)
			transactions.DELETE("/:id", transactionHandler.Delete)
		}

		income := v1.Group("/income")
		{
			income.POST("", financialHandler.CreateIncome)
			income.GET("", financialHandler.ListIncome)
			income.PUT("/:id", financialHandler.UpdateIncome)
			income.DELETE("/:id", financialHandler.DeleteIncome)
		}

		expenses := v1.Group("/expenses")
		{
			expenses.POST("", financialHandler.CreateExpense)
			expenses.GET("", financialHandler.ListExpenses)
			expenses.PUT("/:id", financialHandler.UpdateExpense)
			expenses.DELETE("/:id", financialHandler.DeleteExpense)
		}

		estimates := v1.Group("/fixed-estimates")
		{
			estimates.POST("", financialHandler.CreateFixedEstimate)
			estimates.GET("", financialHandler.ListFixedEstimates)
			estimates.PUT("/:id", financialHandler.UpdateFixedEstimate)
			estimates.DELETE("/:id", financialHandler.DeleteFixedEstimate)
			estimates.POST("/:id/confirm", financialHandler.ConfirmFixedEstimate)
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("", dashboardHandler.Get)
			dashboard.POST("/recalculate", dashboardHandler.Recalculate)
		}

		market := v1.Group("/market")
		{
			market.GET("/securities", marketHandler.ListSecurities)
			market.GET("/exchange-rates", marketHandler.ListExchangeRates)
			market.GET("/gold-prices", marketHandler.GetGoldPrices)
		}
	}

	return router
}
