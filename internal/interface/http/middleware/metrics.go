package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/pkg/metrics"
)

// Metrics 记录请求数、耗时和并发数
// route使用路由模板(/books/:id)，未匹配的路由统一记为unmatched
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		m.HTTPRequestsInFlight.Inc()
		start := time.Now()
		c.Next()
		m.HTTPRequestsInFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
