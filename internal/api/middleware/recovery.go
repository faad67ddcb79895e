package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/yantrahq/yantra/internal/api/constants"
	"github.com/yantrahq/yantra/internal/api/dto/common"
	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/utils"

	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into a 500 envelope and logs the stack.
func Recovery(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("[PANIC] %s %s | %s | %s | %v\n%s",
					c.Request.Method,
					c.Request.URL.Path,
					utils.GetRealIP(c),
					c.GetString(constants.ContextKeyRequestID),
					r,
					debug.Stack(),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, common.NewErrorResponse(common.ErrCodeInternalServer, "Internal server error", nil))
			}
		}()

		c.Next()
	}
}
