package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"notify_relay/internal/config"
	"notify_relay/internal/http/controller"
	"notify_relay/internal/http/middleware"
	"notify_relay/internal/metrics"
)

func NewRouter(cfg *config.Config, handler *controller.Handler, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		otelgin.Middleware(cfg.OTELServiceName),
		middleware.ZapLogger(logger),
		middleware.Metrics(m),
		middleware.ZapRecovery(logger),
	)

	router.GET("/health", handler.Health)
	router.POST("/notify", handler.Notify)
	router.POST("/notify/publish", handler.PublishNotify)
	router.GET("/events", handler.Events)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	return router
}
