package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"productgen/internal/logger"
)

// Logger logs one line per request. Server errors log at error level.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		line := "%s %s %d %s %s"
		args := []interface{}{c.Request.Method, path, status, time.Since(start), c.ClientIP()}
		switch {
		case status >= 500:
			log.Error(line, args...)
		case len(c.Errors) > 0:
			log.Warn(line+" %s", append(args, c.Errors.String())...)
		default:
			log.Info(line, args...)
		}
	}
}
