// Package logger builds the zap logger shared by the server and exposes the
// request-scoped logger stored on the echo context.
package logger

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ContextKey is the echo context key holding the request-scoped logger.
const ContextKey = "logger"

var base = zap.NewNop()

// New returns a JSON production logger for env "prod" and a console
// development logger otherwise.  level overrides the default level when set.
func New(env, level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if env == "prod" || env == "production" {
		cfg = zap.NewProductionConfig()
	}
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

// SetBase installs the logger returned by From when a request carries none.
func SetBase(l *zap.Logger) {
	if l != nil {
		base = l
	}
}

// From returns the request-scoped logger, falling back to the base logger.
func From(c echo.Context) *zap.Logger {
	if c != nil {
		if l, ok := c.Get(ContextKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return base
}
