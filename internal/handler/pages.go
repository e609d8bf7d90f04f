package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PageHandler renders the static-ish pages.
type PageHandler struct {
	GoogleEnabled bool
}

type formPage struct {
	Google bool
}

// Index handles GET /.
func (h *PageHandler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", nil)
}

// LoginForm handles GET /login.
func (h *PageHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", formPage{Google: h.GoogleEnabled})
}

// RegisterForm handles GET /register.
func (h *PageHandler) RegisterForm(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", formPage{Google: h.GoogleEnabled})
}
