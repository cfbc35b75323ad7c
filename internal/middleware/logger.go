package middleware

import (
	"time"

	"procurement/internal/metrics"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request and records its latency
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		status := c.Writer.Status()

		metrics.ObserveHTTPRequest(c.Request.Method, c.FullPath(), status, elapsed)

		fields := log.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   elapsed.String(),
			"client_ip": c.ClientIP(),
		}
		if principal, ok := GetPrincipal(c); ok {
			fields["user_id"] = principal.UserID.String()
		}
		entry := log.WithFields(fields)

		switch {
		case status >= 500:
			entry.Error("request completed")
		case status >= 400:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}
