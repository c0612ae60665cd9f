package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"budgetplan/internal/logger"
	"budgetplan/internal/uuid"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
)

// RequestLogging tags each request with an ID and logs it once it
// completes. A valid X-Request-ID sent by a proxy is kept so a transfer can
// be traced across services. Client errors log at warn, server errors at
// error.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if !uuid.IsValid(requestID) {
			requestID = uuid.New()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()

		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if staffID := c.GetString("staffID"); staffID != "" {
			fields = append(fields, "staff_id", staffID)
		}
		if planID := c.Param("id"); planID != "" {
			fields = append(fields, "plan_id", planID)
		}

		log := logger.Get()
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Errorw("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warnw("request", fields...)
		default:
			log.Infow("request", fields...)
		}
	}
}
