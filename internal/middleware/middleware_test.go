package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cryptosignals/conf"
	"cryptosignals/internal/consts"
	"cryptosignals/internal/session"
	"cryptosignals/internal/signal"
	"cryptosignals/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(sessions session.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	conf.AppConfig.Jwt.Secret = "mw-secret"
	r := gin.New()
	r.Use(RequestId())
	ok := func(c *gin.Context) {
		u, _ := session.FromContext(c)
		c.String(http.StatusOK, string(u.ViewTier()))
	}
	auth := r.Group("/", AuthToken(sessions))
	auth.GET("/me", ok)
	auth.GET("/signals", RequirePlan(), ok)
	auth.GET("/admin", RequireAdmin(), ok)
	r.POST("/contact", AntiDuplicate(time.Minute), ok)
	return r
}

func login(t *testing.T, sessions session.Store, sid string, u session.User) string {
	t.Helper()
	require.NoError(t, sessions.Save(context.Background(), sid, u, time.Hour))
	token, err := jwt.GenToken(jwt.BuildClaims(time.Now().Add(time.Hour), u.ID, sid), "mw-secret")
	require.NoError(t, err)
	return token
}

func do(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthToken(t *testing.T) {
	sessions := session.NewMemoryStore()
	r := newEngine(sessions)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "garbage").Code)

	token := login(t, sessions, "s1", session.User{ID: 1, Plan: signal.TierPro})
	w := do(r, http.MethodGet, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pro", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	require.NoError(t, sessions.Delete(context.Background(), "s1"))
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", token).Code)
}

func TestAuthToken_SessionUserMismatch(t *testing.T) {
	sessions := session.NewMemoryStore()
	r := newEngine(sessions)

	require.NoError(t, sessions.Save(context.Background(), "s2", session.User{ID: 2}, time.Hour))
	token, err := jwt.GenToken(jwt.BuildClaims(time.Now().Add(time.Hour), 99, "s2"), "mw-secret")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", token).Code)
}

func TestRequirePlanAndAdmin(t *testing.T) {
	sessions := session.NewMemoryStore()
	r := newEngine(sessions)

	noPlan := login(t, sessions, "a", session.User{ID: 1, Role: consts.RoleUser})
	basic := login(t, sessions, "b", session.User{ID: 2, Role: consts.RoleUser, Plan: signal.TierBasic})
	admin := login(t, sessions, "c", session.User{ID: 3, Role: consts.RoleAdmin})

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/signals", noPlan).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/signals", basic).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/signals", admin).Code)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin", basic).Code)
	w := do(r, http.MethodGet, "/admin", admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "premium", w.Body.String())
}

func TestAntiDuplicate(t *testing.T) {
	r := newEngine(session.NewMemoryStore())
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/contact", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/contact", "").Code)
}
