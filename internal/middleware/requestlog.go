package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/secret-notes/internal/logger"
)

// RequestLogger tags every request with an id (reusing X-Request-ID when the
// client sends one), stores a request-scoped zap logger on the context and
// writes one access line when the handler returns.
func RequestLogger(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			l := base.With(zap.String("request_id", rid))
			c.Set(logger.ContextKey, l)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err) // let the error handler set the final status
			}
			l.Info("request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			)
			return nil
		}
	}
}
