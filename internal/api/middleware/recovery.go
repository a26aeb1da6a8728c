package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	"productgen/internal/logger"
)

// Recovery turns a handler panic into a JSON 500. A panic caused by the
// client going away is dropped without a response. Stacks are logged at
// debug level.
func Recovery(logger *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if err, ok := recovered.(error); ok && brokenConnection(err) {
			c.Abort()
			return
		}

		log := logger.With("method", c.Request.Method).With("path", c.Request.URL.Path)
		if logger.IsDebug() {
			log.Error("Panic recovered: %v\n%s", recovered, debug.Stack())
		} else {
			log.Error("Panic recovered: %v", recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

func brokenConnection(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
