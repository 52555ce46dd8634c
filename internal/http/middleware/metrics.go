package middleware

import (
	"github.com/gin-gonic/gin"
	"notify_relay/internal/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics counts requests per matched route so path parameters and unknown
// paths do not explode label cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.ObserveRequest(route, c.Request.Method, c.Writer.Status())
	}
}
