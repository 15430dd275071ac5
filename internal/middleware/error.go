package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-schedule/pkg/errors"
)

// ErrorHandler logs the errors handlers attached to the context. Client
// errors are logged at debug level, everything else at error level.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		logger := zerolog.Ctx(c.Request.Context())
		for _, e := range c.Errors {
			event := logger.Error()
			if appErr, ok := errors.As(e.Err); ok && appErr.StatusCode() < 500 {
				event = logger.Debug()
			}
			event.
				Err(e.Err).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("Request error")
		}
	}
}
