package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the id assigned to each request
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id, attaches a child logger to the request context
// (retrievable with log.Ctx) and logs completion with status and duration.
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := newRequestID()

		lgr := base.With().Str("requestID", requestID).Logger()
		c.Request = c.Request.WithContext(lgr.WithContext(c.Request.Context()))
		c.Header(RequestIDHeader, requestID)

		lgr.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("command", c.Query("command")).
			Str("remoteIP", c.ClientIP()).
			Msg("Incoming request")

		c.Next()

		lgr.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("command", c.Query("command")).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request completed")
	}
}

func newRequestID() string {
	u, err := uuid.NewRandom()
	if err == nil {
		return u.String()
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
