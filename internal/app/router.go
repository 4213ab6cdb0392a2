package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/vasyakrg/tbank-test-gateway/internal/handler"
	"github.com/vasyakrg/tbank-test-gateway/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
// RedisClient and NewRelicApp are optional; nil disables the middleware.
type RouterDeps struct {
	Gateway       *handler.GatewayHandler
	Page          *handler.PageHandler
	Monitor       *handler.MonitorHandler
	RedisClient   *redis.Client
	NewRelicApp   *newrelic.Application
	TemplatesGlob string
}

// NewRouter creates the Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	glob := deps.TemplatesGlob
	if glob == "" {
		glob = "web/templates/*"
	}
	router.LoadHTMLGlob(glob)

	// Merchant-facing TBank API.
	v2 := router.Group("/v2")
	{
		if deps.RedisClient != nil {
			v2.Use(middleware.Idempotency(deps.RedisClient))
		}
		v2.POST("/Init", deps.Gateway.Init)
		v2.POST("/GetState", deps.Gateway.GetState)
		v2.POST("/Cancel", deps.Gateway.Cancel)
	}

	// Payer-facing approval page.
	payment := router.Group("/payment")
	{
		payment.GET("/:paymentId", deps.Page.Show)
		payment.POST("/:paymentId/complete", deps.Page.Complete)
	}

	// Introspection.
	router.GET("/api/payments", deps.Monitor.ListPayments)
	router.GET("/log", deps.Monitor.ShowLog)
	router.GET("/health", deps.Monitor.Health)

	return router
}
