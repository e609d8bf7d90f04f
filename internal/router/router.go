package router // package router defines how HTTP routes are registered

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/secret-notes/internal/config"
	"github.com/iliyamo/secret-notes/internal/handler"
	"github.com/iliyamo/secret-notes/internal/middleware"
	"github.com/iliyamo/secret-notes/internal/session"
)

// Deps gathers what the routes need.  Redis may be nil in which case rate
// limiting and the page cache are off.
type Deps struct {
	Pages     *handler.PageHandler
	Auth      *handler.AuthHandler
	Notes     *handler.NotesHandler
	Sessions  *session.Manager
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	PageCache config.PageCacheConfig
}

// RegisterRoutes wires every endpoint.  The session is resolved for all
// routes; notes routes additionally require it.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	sess := middleware.LoadSession(d.Sessions)

	// anonymous pages, cached while no one is signed in
	cache := middleware.NewPageCache(d.PageCache, d.Redis)
	e.GET("/", d.Pages.Index, sess, cache)
	e.GET("/login", d.Pages.LoginForm, sess, cache)
	e.GET("/register", d.Pages.RegisterForm, sess, cache)

	// credential endpoints are throttled per client
	limited := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	e.POST("/register", d.Auth.Register, sess, limited)
	e.POST("/login", d.Auth.Login, sess, limited)
	e.GET("/logout", d.Auth.Logout, sess)
	e.GET("/auth/google", d.Auth.GoogleStart, sess)
	e.GET("/auth/google/notes", d.Auth.GoogleCallback, sess)

	authed := middleware.RequireAuth(d.Sessions)
	e.GET("/notes", d.Notes.List, sess, authed)
	e.POST("/add", d.Notes.Add, sess, authed)
	e.POST("/edit", d.Notes.Edit, sess, authed)
	e.POST("/delete", d.Notes.Delete, sess, authed)
}
