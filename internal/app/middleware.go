package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	fLogger "github.com/drizzly-bear/weather-check/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags every request with an id (reusing the caller's one when
// sent) and writes one access log line after the handler returns.
func requestLogger(l zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Request = c.Request.WithContext(fLogger.WithRequestID(c.Request.Context(), id))

		c.Next()

		status := c.Writer.Status()
		ev := l.Info()
		if status >= 500 {
			ev = l.Error()
		}
		ev.Ctx(c.Request.Context()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration_ms", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request handled")
	}
}
