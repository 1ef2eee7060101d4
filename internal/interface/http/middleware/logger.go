package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xiebiao/library/pkg/tracing"
)

// HeaderRequestID 请求ID头
const HeaderRequestID = "X-Request-ID"

const ctxRequestID = "request_id"

// slowRequest 超过该耗时按Warn记录
const slowRequest = 3 * time.Second

// RequestLogger 请求日志
// 沿用上游传入的X-Request-ID，没有则生成，写回响应头
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency,
			"client_ip", c.ClientIP(),
			"request_id", requestID,
		}
		if traceID := tracing.TraceID(c.Request.Context()); traceID != "" {
			attrs = append(attrs, "trace_id", traceID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			logger.ErrorContext(ctx, "request", attrs...)
		case latency > slowRequest:
			logger.WarnContext(ctx, "slow request", attrs...)
		default:
			logger.InfoContext(ctx, "request", attrs...)
		}
	}
}

// GetRequestID 当前请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}
