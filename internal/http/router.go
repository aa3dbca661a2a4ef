package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/vendorly/vendorly-api/internal/config"
	"github.com/vendorly/vendorly-api/internal/http/handler"
	httpmiddleware "github.com/vendorly/vendorly-api/internal/http/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, vendorHandler *handler.VendorHandler, webhookHandler *handler.WebhookHandler, authMiddleware *httpmiddleware.Auth) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	r.Use(httpmiddleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	vendors := r.Group("/vendors", authMiddleware.RequireAccount)
	{
		vendors.GET("", vendorHandler.List)
		vendors.POST("", vendorHandler.Create)
		vendors.GET("/:id", vendorHandler.Get)
		vendors.PUT("/:id", vendorHandler.Update)
		vendors.DELETE("/:id", vendorHandler.Delete)
	}

	r.POST("/webhooks/identity", webhookHandler.Handle)

	return r
}
