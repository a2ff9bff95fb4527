package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRequest(t *testing.T, uid uint) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	CreateSession(rec, uid)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	SetSecret("s3cret")
	t.Cleanup(func() { SetSecret("") })

	uid, ok := ParseSession(sessionRequest(t, 42))
	require.True(t, ok)
	assert.Equal(t, uint(42), uid)
}

func TestParseSessionRejectsTampering(t *testing.T) {
	SetSecret("s3cret")
	t.Cleanup(func() { SetSecret("") })

	req := sessionRequest(t, 42)
	c, _ := req.Cookie(SessionCookieName)

	forged := httptest.NewRequest(http.MethodGet, "/", nil)
	forged.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "1" + c.Value[2:]})
	_, ok := ParseSession(forged)
	assert.False(t, ok)

	SetSecret("rotated")
	_, ok = ParseSession(req)
	assert.False(t, ok, "a key rotation invalidates sessions")
}

func TestRequireAuth(t *testing.T) {
	t.Cleanup(func() { SetUserVerifier(nil) })
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Middleware(RequireAuth(ok))

	t.Run("anonymous json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
	})

	t.Run("anonymous browser", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("logged in", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, sessionRequest(t, 7))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("removed user", func(t *testing.T) {
		SetUserVerifier(func(_ context.Context, uid uint) bool { return uid != 7 })
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, sessionRequest(t, 7))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), SessionCookieName+"=;")
	})
}
