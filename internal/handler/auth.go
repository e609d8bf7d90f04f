package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/secret-notes/internal/logger"
	"github.com/iliyamo/secret-notes/internal/model"
	"github.com/iliyamo/secret-notes/internal/oauth"
	"github.com/iliyamo/secret-notes/internal/repository"
	"github.com/iliyamo/secret-notes/internal/service"
	"github.com/iliyamo/secret-notes/internal/session"
	"github.com/iliyamo/secret-notes/internal/utils"
)

// requestTimeout bounds the database and Redis work of one request.
const requestTimeout = 5 * time.Second

// stateCookieName carries the OAuth nonce between /auth/google and the callback.
const stateCookieName = "oauth_state"

// AccountService is implemented by service.Accounts.
type AccountService interface {
	Register(ctx context.Context, email, password string) (model.User, error)
	Authenticate(ctx context.Context, email, password string) (model.User, error)
	LoginExternal(ctx context.Context, email string) (model.User, error)
}

// AuthHandler bundles dependencies for the sign-in endpoints.
type AuthHandler struct {
	Accounts    AccountService
	Sessions    *session.Manager
	Google      oauth.Provider // nil disables Google sign-in
	StateSecret string
	Secure      bool
}

func NewAuthHandler(a AccountService, s *session.Manager, google oauth.Provider, stateSecret string, secure bool) *AuthHandler {
	return &AuthHandler{Accounts: a, Sessions: s, Google: google, StateSecret: stateSecret, Secure: secure}
}

// credentials reads the login/register form.  The form field is named
// "username" but "email" is accepted too.
func credentials(c echo.Context) (email, password string) {
	email = c.FormValue("username")
	if strings.TrimSpace(email) == "" {
		email = c.FormValue("email")
	}
	return email, c.FormValue("password")
}

// Register handles POST /register.  An existing email and bad input both
// go to /login, the same place a failed login lands.
func (h *AuthHandler) Register(c echo.Context) error {
	email, password := credentials(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Accounts.Register(ctx, email, password)
	switch {
	case errors.Is(err, repository.ErrEmailExists), errors.Is(err, service.ErrInvalidCredentials):
		return c.Redirect(http.StatusFound, "/login")
	case err != nil:
		logger.From(c).Error("register failed", zap.Error(err))
		return c.Redirect(http.StatusFound, "/register")
	}
	logger.From(c).Info("user registered", zap.Uint64("user_id", u.ID))
	// the account exists now; a retry from /register would hit the duplicate path
	return h.startSession(c, u, "/login")
}

// Login handles POST /login.
func (h *AuthHandler) Login(c echo.Context) error {
	email, password := credentials(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Accounts.Authenticate(ctx, email, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			logger.From(c).Error("login failed", zap.Error(err))
		}
		return c.Redirect(http.StatusFound, "/login")
	}
	return h.startSession(c, u, "/login")
}

// Logout handles GET /logout.  A session store failure is returned to echo
// rather than hidden behind a redirect.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.Sessions.Logout(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

// GoogleStart handles GET /auth/google.
func (h *AuthHandler) GoogleStart(c echo.Context) error {
	if h.Google == nil {
		return c.Redirect(http.StatusFound, "/login")
	}
	nonce, state, err := utils.NewOAuthState(h.StateSecret)
	if err != nil {
		logger.From(c).Error("oauth state", zap.Error(err))
		return c.Redirect(http.StatusFound, "/login")
	}
	c.SetCookie(h.stateCookie(nonce, int(utils.OAuthStateTTL/time.Second)))
	return c.Redirect(http.StatusFound, h.Google.AuthCodeURL(state))
}

// GoogleCallback handles GET /auth/google/notes.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if h.Google == nil {
		return c.Redirect(http.StatusFound, "/login")
	}
	log := logger.From(c)
	c.SetCookie(h.stateCookie("", -1))

	nonce, err := utils.ParseOAuthState(h.StateSecret, c.QueryParam("state"))
	ck, cerr := c.Cookie(stateCookieName)
	if err != nil || cerr != nil || ck.Value != nonce {
		log.Warn("oauth state mismatch")
		return c.Redirect(http.StatusFound, "/login")
	}
	if e := c.QueryParam("error"); e != "" {
		log.Info("oauth consent denied", zap.String("error", e))
		return c.Redirect(http.StatusFound, "/login")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*requestTimeout)
	defer cancel()
	prof, err := h.Google.Exchange(ctx, c.QueryParam("code"))
	if err != nil {
		log.Error("oauth exchange", zap.Error(err))
		return c.Redirect(http.StatusFound, "/login")
	}
	u, err := h.Accounts.LoginExternal(ctx, prof.Email)
	if err != nil {
		log.Error("external login", zap.Error(err))
		return c.Redirect(http.StatusFound, "/login")
	}
	return h.startSession(c, u, "/login")
}

func (h *AuthHandler) stateCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     "/auth/google",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// startSession logs u in and redirects to /notes, or to fallback when the
// session cannot be created.
func (h *AuthHandler) startSession(c echo.Context, u model.User, fallback string) error {
	if err := h.Sessions.Login(c, u); err != nil {
		logger.From(c).Error("session login", zap.Uint64("user_id", u.ID), zap.Error(err))
		return c.Redirect(http.StatusFound, fallback)
	}
	return c.Redirect(http.StatusFound, "/notes")
}
