package middleware

import (
	"fmt"
	"time"

	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/utils"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request when enabled (LOG_REQUESTS).
func RequestLogger(logger *logging.Logger, enabled bool) gin.HandlerFunc {
	logger.Info("RequestLogger middleware initialized (enabled=%v)", enabled)

	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		logger.LogHTTPRequest(
			method,
			path,
			utils.GetRealIP(c),
			c.Writer.Status(),
			c.Writer.Size(),
			fmt.Sprintf("%13v", latency),
		)
	}
}
