package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/secret-notes/internal/logger"
	"github.com/iliyamo/secret-notes/internal/session"
)

// LoadSession resolves the session user, if any, before the handler runs so
// that session.Current works everywhere.  A store fault is logged and the
// request continues as anonymous.
func LoadSession(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, _, err := m.Resolve(c); err != nil {
				logger.From(c).Error("resolve session", zap.Error(err))
			}
			return next(c)
		}
	}
}

// RequireAuth redirects anonymous requests to /login.  It must run before
// any handler that reads or writes notes.
func RequireAuth(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !m.IsAuthenticated(c) {
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			return next(c)
		}
	}
}
