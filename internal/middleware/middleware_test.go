package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-rcs/site-coordination/internal/auth"
)

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevocations) Revoke(_ context.Context, id string, _ time.Duration) error {
	s.revoked[id] = true
	return nil
}

func (s *stubRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	return s.revoked[id], s.err
}

func protectedRouter(jwtSvc *auth.JWTService, revs auth.Revocations, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger(zap.NewNop()))
	r.GET("/me", JWT(jwtSvc, revs, zap.NewNop()), guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": SessionEmail(c), "project": SessionProject(c)})
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWT_AllowsValidSession(t *testing.T) {
	svc := auth.NewJWTService("s", 1)
	token, _, err := svc.Generate("r@lab.org", "Crystals", auth.RoleResearcher)
	require.NoError(t, err)
	r := protectedRouter(svc, &stubRevocations{revoked: map[string]bool{}}, RequireResearcher())

	w := get(r, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"r@lab.org","project":"Crystals"}`, w.Body.String())
}

func TestJWT_Rejections(t *testing.T) {
	svc := auth.NewJWTService("s", 1)
	token, claims, err := svc.Generate("r@lab.org", "", auth.RoleResearcher)
	require.NoError(t, err)

	t.Run("missing", func(t *testing.T) {
		r := protectedRouter(svc, nil, RequireResearcher())
		assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	})
	t.Run("invalid", func(t *testing.T) {
		r := protectedRouter(svc, nil, RequireResearcher())
		assert.Equal(t, http.StatusUnauthorized, get(r, "not-a-token").Code)
	})
	t.Run("revoked", func(t *testing.T) {
		revs := &stubRevocations{revoked: map[string]bool{claims.ID: true}}
		r := protectedRouter(svc, revs, RequireResearcher())
		assert.Equal(t, http.StatusUnauthorized, get(r, token).Code)
	})
	t.Run("store down", func(t *testing.T) {
		revs := &stubRevocations{revoked: map[string]bool{}, err: errors.New("redis down")}
		r := protectedRouter(svc, revs, RequireResearcher())
		assert.Equal(t, http.StatusServiceUnavailable, get(r, token).Code)
	})
	t.Run("wrong role", func(t *testing.T) {
		r := protectedRouter(svc, nil, RequireAdmin())
		assert.Equal(t, http.StatusForbidden, get(r, token).Code)
	})
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("https://coord.example.org"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://coord.example.org")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://coord.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
