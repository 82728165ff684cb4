// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"billcraft/internal/domain/documents/invoice"
	"billcraft/internal/domain/documents/quotation"
	"billcraft/internal/infrastructure/http/v1/handlers"
	"billcraft/internal/infrastructure/http/v1/middleware"
	"billcraft/internal/infrastructure/pdf"
	"billcraft/internal/infrastructure/storage/postgres"
	"billcraft/pkg/logger"
)

// RouterConfig holds the wired dependencies the router needs.
type RouterConfig struct {
	Pool *postgres.Pool

	Logger *logger.Logger

	// TokenValidator for session tokens; nil disables auth (tests, dev)
	TokenValidator middleware.TokenValidator

	Quotations *quotation.Service
	Invoices   *invoice.Service
	Renderer   *pdf.Renderer
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/healthz")
	{
		health.GET("", healthHandler.Ready)
		health.GET("/live", healthHandler.Live)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	api := router.Group("/api/v1")
	if cfg.TokenValidator != nil {
		api.Use(middleware.Auth(cfg.TokenValidator))
	}

	baseHandler := handlers.NewBaseHandler()

	quotationHandler := handlers.NewQuotationHandler(baseHandler, cfg.Quotations, cfg.Invoices, cfg.Renderer)
	quotationHandler.RegisterRoutes(api.Group("/quotations"))

	invoiceHandler := handlers.NewInvoiceHandler(baseHandler, cfg.Invoices, cfg.Renderer)
	invoiceHandler.RegisterRoutes(api.Group("/invoices"))

	return router
}
