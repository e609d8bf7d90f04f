package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/secret-notes/internal/config"
	"github.com/iliyamo/secret-notes/internal/logger"
	"github.com/iliyamo/secret-notes/internal/model"
	"github.com/iliyamo/secret-notes/internal/repository"
	"github.com/iliyamo/secret-notes/internal/session"
)

type oneUser struct{ u model.User }

func (o oneUser) GetByID(_ context.Context, id uint64) (model.User, error) {
	if id == o.u.ID {
		return o.u, nil
	}
	return model.User{}, repository.ErrUserNotFound
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func newSessions(rdb *redis.Client) *session.Manager {
	return session.NewManager(session.NewRedisStore(rdb, time.Hour), oneUser{model.User{ID: 7, Email: "a@x.com"}}, false)
}

// loginCookie runs Manager.Login against a throwaway context.
func loginCookie(t *testing.T, m *session.Manager) *http.Cookie {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)
	require.NoError(t, m.Login(c, model.User{ID: 7, Email: "a@x.com"}))
	cks := rec.Result().Cookies()
	require.Len(t, cks, 1)
	return cks[0]
}

func serve(e *echo.Echo, method, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	_, rdb := newRedis(t)
	m := newSessions(rdb)
	e := echo.New()
	e.GET("/notes", func(c echo.Context) error {
		u, _ := session.Current(c)
		return c.String(http.StatusOK, u.Email)
	}, LoadSession(m), RequireAuth(m))

	rec := serve(e, http.MethodGet, "/notes")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	rec = serve(e, http.MethodGet, "/notes", loginCookie(t, m))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", rec.Body.String())
}

func TestRequireAuthTreatsStoreFaultAsAnonymous(t *testing.T) {
	mr, rdb := newRedis(t)
	m := newSessions(rdb)
	ck := loginCookie(t, m)
	e := echo.New()
	e.GET("/notes", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, LoadSession(m), RequireAuth(m))

	mr.Close()
	rec := serve(e, http.MethodGet, "/notes", ck)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestRequestLoggerAssignsID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/x", func(c echo.Context) error {
		logger.From(c).Info("inside")
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/boom", func(c echo.Context) error { return echo.ErrForbidden })

	rec := serve(e, http.MethodGet, "/x")
	rid := rec.Header().Get(echo.HeaderXRequestID)
	assert.Len(t, rid, 36)
	require.Equal(t, 2, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, rid, entry.ContextMap()["request_id"])
	}

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	last := logs.All()[logs.Len()-1]
	assert.EqualValues(t, http.StatusForbidden, last.ContextMap()["status"])
}

func TestTokenBucket(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 3, RefillTokens: 1,
		RefillInterval: time.Minute, TTL: time.Hour,
		KeyStrategy: "ip", Prefix: "rl",
	}
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.POST("/login", ok, NewTokenBucket(cfg, rdb))
	e.POST("/register", ok, NewTokenBucket(cfg, rdb))

	for i := 0; i < 3; i++ {
		rec := serve(e, http.MethodPost, "/login")
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := serve(e, http.MethodPost, "/login")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// "ip" strategy shares one bucket across routes
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodPost, "/register").Code)
}

func TestTokenBucketFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Minute, TTL: time.Hour, Prefix: "rl"}
	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, rdb))

	mr.Close()
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, serve(e, http.MethodPost, "/login").Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/login")

	assert.Equal(t, "rl:ip:10.0.0.9", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:ip:10.0.0.9:route:POST /login", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}, c))
}

func TestPageCache(t *testing.T) {
	mr, rdb := newRedis(t)
	m := newSessions(rdb)
	calls := 0
	e := echo.New()
	e.GET("/login", func(c echo.Context) error {
		calls++
		if u, ok := session.Current(c); ok {
			return c.HTML(http.StatusOK, "<p>hello "+u.Email+"</p>")
		}
		return c.HTML(http.StatusOK, "<p>login</p>")
	}, LoadSession(m), NewPageCache(config.PageCacheConfig{Enabled: true, TTL: time.Minute, Prefix: "page", MaxBodyBytes: 1024}, rdb))

	rec := serve(e, http.MethodGet, "/login")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.True(t, mr.Exists("page:/login"))

	rec = serve(e, http.MethodGet, "/login")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, "<p>login</p>", rec.Body.String())
	assert.Equal(t, 1, calls)

	// signed-in users never see or fill the cache
	rec = serve(e, http.MethodGet, "/login", loginCookie(t, m))
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, "<p>hello a@x.com</p>", rec.Body.String())
	assert.Equal(t, 2, calls)
}

func TestPageCacheSkipsNonHTML(t *testing.T) {
	mr, rdb := newRedis(t)
	e := echo.New()
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
		NewPageCache(config.PageCacheConfig{Enabled: true, TTL: time.Minute, Prefix: "page", MaxBodyBytes: 1024}, rdb))

	serve(e, http.MethodGet, "/healthz")
	assert.False(t, mr.Exists("page:/healthz"))
}

func TestPageEncoding(t *testing.T) {
	ct, body, ok := decodePage(encodePage("text/html; charset=UTF-8", []byte("<b>x</b>")))
	require.True(t, ok)
	assert.Equal(t, "text/html; charset=UTF-8", ct)
	assert.Equal(t, "<b>x</b>", string(body))

	_, _, ok = decodePage([]byte{0, 9, 'a'})
	assert.False(t, ok)
}
