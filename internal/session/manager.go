package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/secret-notes/internal/model"
	"github.com/iliyamo/secret-notes/internal/repository"
	"github.com/iliyamo/secret-notes/internal/utils"
)

// CookieName is the cookie carrying the session token.
const CookieName = "notes_session"

// contextKey holds the resolved user on the echo context.
const contextKey = "session_user"

// Store persists token -> user id bindings.
type Store interface {
	Save(ctx context.Context, token string, userID uint64) error
	Load(ctx context.Context, token string) (uint64, error)
	Delete(ctx context.Context, token string) error
	TTL() time.Duration
}

// UserLookup rehydrates a user from its id.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Manager moves a browser between the anonymous and authenticated states.
type Manager struct {
	store  Store
	users  UserLookup
	secure bool
}

func NewManager(store Store, users UserLookup, secureCookie bool) *Manager {
	return &Manager{store: store, users: users, secure: secureCookie}
}

// Login starts a session for u and sets the cookie.  Nothing is written to
// the response when the store fails.
func (m *Manager) Login(c echo.Context, u model.User) error {
	token, err := utils.NewSessionToken()
	if err != nil {
		return fmt.Errorf("session token: %w", err)
	}
	if err := m.store.Save(c.Request().Context(), token, u.ID); err != nil {
		return err
	}
	c.SetCookie(m.cookie(token, int(m.store.TTL()/time.Second)))
	c.Set(contextKey, u)
	return nil
}

// Resolve loads the user behind the request's cookie.  A missing cookie,
// unknown token or vanished user all yield ok=false with a nil error;
// only store or database faults are returned.
func (m *Manager) Resolve(c echo.Context) (model.User, bool, error) {
	if u, ok := c.Get(contextKey).(model.User); ok {
		return u, true, nil
	}
	ck, err := c.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return model.User{}, false, nil
	}
	ctx := c.Request().Context()
	id, err := m.store.Load(ctx, ck.Value)
	if errors.Is(err, ErrNoSession) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, err
	}
	u, err := m.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		_ = m.store.Delete(ctx, ck.Value)
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, err
	}
	c.Set(contextKey, u)
	return u, true, nil
}

// Current returns the user resolved earlier in the request.
func Current(c echo.Context) (model.User, bool) {
	u, ok := c.Get(contextKey).(model.User)
	return u, ok
}

// IsAuthenticated reports whether the request carries a live session.
// Faults count as unauthenticated.
func (m *Manager) IsAuthenticated(c echo.Context) bool {
	_, ok, err := m.Resolve(c)
	return err == nil && ok
}

// Logout destroys the session and expires the cookie.  Store failures are
// returned to the caller.
func (m *Manager) Logout(c echo.Context) error {
	if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
		if err := m.store.Delete(c.Request().Context(), ck.Value); err != nil {
			return err
		}
	}
	c.SetCookie(m.cookie("", -1))
	c.Set(contextKey, nil)
	return nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
