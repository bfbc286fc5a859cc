package middlewarectx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/saaskit/internal/http/cookie"
	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/jwt"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

const testSecret = "gate-test-secret"

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type staticMode bool

func (m staticMode) IsWaitingListMode(context.Context) bool { return bool(m) }

func newMaker(t *testing.T) *jwt.Maker {
	t.Helper()
	m, err := jwt.NewMaker(testSecret)
	require.NoError(t, err)
	return m
}

func issue(t *testing.T, m *jwt.Maker, role string) string {
	t.Helper()
	token, err := m.Issue(&models.User{UUID: "user-1", Email: "a@example.com", Role: role})
	require.NoError(t, err)
	return token
}

// echoHandler возвращает 200 и id пользователя из контекста.
func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := UserIDFromContext(r.Context())
		role, _ := r.Context().Value(Role).(string)
		w.Header().Set("X-User", id)
		w.Header().Set("X-Role", role)
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestClassify(t *testing.T) {
	tests := map[string]PathClass{
		"/static/app.js":              PathStatic,
		"/favicon.ico":                PathStatic,
		"/avatars/1.png":              PathStatic,
		"/":                           PathPublic,
		"/login":                      PathPublic,
		"/waiting":                    PathPublic,
		"/api/auth/login":             PathPublic,
		"/api/stripe/webhook":         PathPublic,
		"/api/waiting-list":           PathPublic,
		"/docs/index.html":            PathPublic,
		"/dashboard":                  PathProtected,
		"/api/auth/refresh":           PathProtected,
		"/api/users":                  PathProtected,
		"/api/stripe/create-checkout": PathProtected,
	}
	for path, want := range tests {
		assert.Equal(t, want, Classify(path), path)
	}
}

func TestGate_PublicPathsNeedNoToken(t *testing.T) {
	gate := Gate(newNoopLogger(), newMaker(t), staticMode(false))(echoHandler())

	for _, path := range []string{"/", "/login", "/api/auth/login", "/api/auth/register", "/api/stripe/webhook", "/api/waiting-list-mode", "/static/x.css"} {
		rec := serve(gate, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestGate_APIWithoutToken(t *testing.T) {
	gate := Gate(newNoopLogger(), newMaker(t), staticMode(false))(echoHandler())

	rec := serve(gate, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "authentication required", body.Message)
}

func TestGate_InvalidTokens(t *testing.T) {
	maker := newMaker(t)
	gate := Gate(newNoopLogger(), maker, staticMode(false))(echoHandler())

	valid := issue(t, maker, models.RoleUser)
	expired, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  gojwt.NewNumericDate(time.Now().Add(-8 * 24 * time.Hour)),
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]struct {
		token   string
		message string
	}{
		"tampered": {token: valid + "x", message: "invalid token"},
		"garbage":  {token: "not.a.token", message: "invalid token"},
		"expired":  {token: expired, message: "token expired"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := serve(gate, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestGate_PageRedirectsToLogin(t *testing.T) {
	gate := Gate(newNoopLogger(), newMaker(t), staticMode(false))(echoHandler())

	rec := serve(gate, httptest.NewRequest(http.MethodGet, "/dashboard?tab=billing", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fdashboard%3Ftab%3Dbilling", rec.Header().Get("Location"))
}

func TestGate_ValidTokenInjectsIdentity(t *testing.T) {
	maker := newMaker(t)
	gate := Gate(newNoopLogger(), maker, staticMode(false))(echoHandler())

	t.Run("header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, maker, models.RoleAdmin))
		rec := serve(gate, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", rec.Header().Get("X-User"))
		assert.Equal(t, models.RoleAdmin, rec.Header().Get("X-Role"))
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: issue(t, maker, models.RoleUser)})
		rec := serve(gate, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", rec.Header().Get("X-User"))
	})

	t.Run("header takes precedence over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: issue(t, maker, models.RoleUser)})
		rec := serve(gate, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGate_WaitingListMode(t *testing.T) {
	maker := newMaker(t)
	gate := Gate(newNoopLogger(), maker, staticMode(true))(echoHandler())

	rec := serve(gate, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, WaitingPath, rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/pricing", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: issue(t, maker, models.RoleUser)})
	rec = serve(gate, req)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	for _, path := range []string{"/login", "/waiting", "/api/waiting-list", "/static/app.js"} {
		rec := serve(gate, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: issue(t, maker, models.RoleAdmin)})
	rec = serve(gate, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, ExtractToken(req))

	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", ExtractToken(req))

	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", ExtractToken(req))
}
