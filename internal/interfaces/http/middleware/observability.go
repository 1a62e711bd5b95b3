package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/crs/internal/infrastructure/monitoring"
	"github.com/turtacn/crs/pkg/constants"
	"github.com/turtacn/crs/pkg/logger"
)

// Observability assigns every request a correlation ID, opens a trace span
// over the handler chain, and records request metrics against the route
// template.
// Observability 为每个请求分配关联 ID，在处理链上开启跟踪范围，
// 并按路由模板记录请求指标。
func Observability(tracer trace.Tracer, metrics *monitoring.Metrics, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.Request.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set(string(constants.ContextKeyRequestID), requestID)

		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+c.FullPath())
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}
		status := c.Writer.Status()
		duration := time.Since(start)

		metrics.RecordHTTP(c.Request.Method, path, strconv.Itoa(status), duration)
		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.path", path),
			attribute.Int("http.status_code", status),
		)

		if status >= 500 {
			log.Error(ctx, "request failed", nil,
				logger.String("method", c.Request.Method),
				logger.String("path", path),
				logger.Int("status", status),
				logger.Duration("duration", duration),
			)
		} else {
			log.Debug(ctx, "request completed",
				logger.String("method", c.Request.Method),
				logger.String("path", path),
				logger.Int("status", status),
				logger.Duration("duration", duration),
			)
		}
	}
}
