package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func formContext(form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestCredentialsFallsBackToEmailField(t *testing.T) {
	c, _ := formContext(url.Values{"username": {"u@x.com"}, "email": {"e@x.com"}, "password": {"pw"}})
	email, pw := credentials(c)
	assert.Equal(t, "u@x.com", email)
	assert.Equal(t, "pw", pw)

	c, _ = formContext(url.Values{"username": {"  "}, "email": {"e@x.com"}})
	email, _ = credentials(c)
	assert.Equal(t, "e@x.com", email)
}

func TestNoteID(t *testing.T) {
	for in, want := range map[string]bool{"12": true, " 3 ": true, "0": false, "-1": false, "x": false, "": false} {
		c, _ := formContext(url.Values{"noteId": {in}})
		_, ok := noteID(c)
		assert.Equal(t, want, ok, in)
	}
}

func TestGoogleDisabledRedirectsToLogin(t *testing.T) {
	h := &AuthHandler{}
	c, rec := formContext(nil)
	assert.NoError(t, h.GoogleStart(c))
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	c, rec = formContext(nil)
	assert.NoError(t, h.GoogleCallback(c))
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestNotesWithoutSessionRedirects(t *testing.T) {
	h := NewNotesHandler(nil)
	c, rec := formContext(url.Values{"note": {"x"}})
	assert.NoError(t, h.Add(c))
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestHealth(t *testing.T) {
	c, rec := formContext(nil)
	assert.NoError(t, Health(c))
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStateCookieExpiryKeepsAttributes(t *testing.T) {
	h := &AuthHandler{Secure: true}
	set, cleared := h.stateCookie("nonce", 600), h.stateCookie("", -1)

	assert.Equal(t, set.Name, cleared.Name)
	assert.Equal(t, set.Path, cleared.Path)
	assert.Equal(t, set.HttpOnly, cleared.HttpOnly)
	assert.Equal(t, set.Secure, cleared.Secure)
	assert.Equal(t, set.SameSite, cleared.SameSite)
	assert.True(t, cleared.Secure)
	assert.Equal(t, -1, cleared.MaxAge)
}
