package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/api/handlers"
	"github.com/saadsaiyed/pdf-to-shopify/internal/api/middleware"
	"github.com/saadsaiyed/pdf-to-shopify/internal/config"
)

// Services are the dependencies the HTTP surface calls into
type Services struct {
	Submissions handlers.Submitter
	Catalog     handlers.CatalogReader
	Sync        handlers.Syncer
	Idempotency middleware.KeyLocker
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, svcs Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.API.MaxUploadBytes

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "PDF Purchase Order API",
			"endpoints": []string{
				"GET /health",
				"POST /v1/submissions/pdf",
				"POST /v1/submissions/items",
				"GET /v1/submissions",
				"GET /v1/submissions/:id",
				"GET /v1/catalog",
				"GET /v1/catalog/variants?sku=",
				"POST /v1/catalog/sync",
				"GET /v1/catalog/sync/runs",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if cfg.API.AdminKeyHash == "" {
		logger.Warn("ADMIN_API_KEY_HASH not set; /v1 routes are unauthenticated")
	}

	// API v1 routes
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.API.AdminKeyHash, logger))
	{
		submissions := v1.Group("/submissions")
		submissions.Use(middleware.IdempotencyMiddleware(svcs.Idempotency, cfg.API.MaxUploadBytes, logger))
		{
			submissions.POST("/pdf", handlers.HandleSubmitPDF(svcs.Submissions, cfg.API.MaxUploadBytes, logger))
			submissions.POST("/items", handlers.HandleSubmitItemList(svcs.Submissions, logger))
			submissions.GET("", handlers.HandleListSubmissions(svcs.Submissions, logger))
			submissions.GET("/:id", handlers.HandleGetSubmission(svcs.Submissions, logger))
		}

		catalog := v1.Group("/catalog")
		{
			catalog.GET("", handlers.HandleGetCatalogStats(svcs.Catalog, logger))
			catalog.GET("/variants", handlers.HandleGetVariantBySKU(svcs.Catalog, logger))
			catalog.POST("/sync", handlers.HandleTriggerSync(svcs.Sync, logger))
			catalog.GET("/sync/runs", handlers.HandleListSyncRuns(svcs.Sync, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error processing request"})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
