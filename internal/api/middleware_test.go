package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFrom(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestMethodOverride(t *testing.T) {
	tests := []struct {
		method   string
		override string
		want     string
	}{
		{http.MethodPost, "PUT", http.MethodPut},
		{http.MethodPost, "delete", http.MethodDelete},
		{http.MethodPost, "PATCH", http.MethodPatch},
		{http.MethodPost, "GET", http.MethodPost},
		{http.MethodPost, "", http.MethodPost},
		{http.MethodGet, "DELETE", http.MethodGet},
	}
	for _, tt := range tests {
		var got string
		h := MethodOverride(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Method
		}))
		req := httptest.NewRequest(tt.method, "/films/1", strings.NewReader(url.Values{"_method": {tt.override}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, tt.want, got, "%s with _method=%q", tt.method, tt.override)
	}
}

func TestRecoverPanic(t *testing.T) {
	views, err := NewRenderer(discardLogger())
	require.NoError(t, err)
	h := RecoverPanic(discardLogger(), views)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/films", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}

func TestRateLimit(t *testing.T) {
	// Registered first so it runs after newTestApp's cleanup cancels the sweeper.
	t.Cleanup(func() { goleak.VerifyNone(t) })
	app := newTestApp(t, newFakeFilms(), &fakeAuth{}, RouterConfig{LimiterEnabled: true, LimiterRPS: 0.001, LimiterBurst: 2})
	b := newBrowser(t, app.handler)

	assert.Equal(t, http.StatusOK, b.get("/healthz").Code)
	assert.Equal(t, http.StatusOK, b.get("/healthz").Code)
	assert.Equal(t, http.StatusTooManyRequests, b.get("/healthz").Code)

	other := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	other.RemoteAddr = "198.51.100.7:4242"
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code, "limits are per client IP")
}

var tokenField = regexp.MustCompile(`name="_token" value="([^"]+)"`)

func TestCSRF(t *testing.T) {
	app := newTestApp(t, newFakeFilms(), &fakeAuth{}, RouterConfig{CSRFKey: []byte("0123456789abcdef0123456789abcdef")})
	b := newBrowser(t, app.handler)

	rec := b.post("/login", url.Values{"email": {"mario@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "The page expired.")

	page := b.get("/login")
	require.Equal(t, http.StatusOK, page.Code)
	m := tokenField.FindStringSubmatch(page.Body.String())
	require.Len(t, m, 2, "login form carries the CSRF field")

	rec = b.post("/login", url.Values{"email": {"mario@example.com"}, "password": {"pw"}, "_token": {m[1]}})
	assert.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
}
