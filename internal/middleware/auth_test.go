package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/services"
	"marketvue_backend/pkg/apperrors"
)

// stubAuth - AuthService, у которого реализован только Authenticate
type stubAuth struct {
	services.AuthService
	actors map[string]*auth.Actor
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*auth.Actor, error) {
	if actor, ok := s.actors[token]; ok {
		return actor, nil
	}
	return nil, apperrors.ErrInvalidToken
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		actor := auth.ActorFromContext(c.Request.Context())
		if actor == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, string(actor.Role)+":"+GetUserID(c))
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var testAuth = stubAuth{actors: map[string]*auth.Actor{
	"root":  {ID: "1", Role: models.UserRoleSuperAdmin},
	"admin": {ID: "2", Role: models.UserRoleAdmin},
	"user":  {ID: "3", Role: models.UserRoleUser},
}}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(testAuth))

	w := do(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	w = do(r, "Bearer unknown")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")

	w = do(r, "Basic root")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "bearer admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ADMIN:2", w.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	r := newRouter(OptionalAuth(testAuth))

	assert.Equal(t, "anonymous", do(r, "").Body.String())
	assert.Equal(t, "anonymous", do(r, "Bearer garbage").Body.String())
	assert.Equal(t, "USER:3", do(r, "Bearer user").Body.String())
}

func TestRoleMiddleware_Strict(t *testing.T) {
	r := newRouter(AuthMiddleware(testAuth), RoleMiddleware(models.UserRoleAdmin))

	assert.Equal(t, http.StatusOK, do(r, "Bearer admin").Code)
	// SUPERADMIN не проходит на маршрут только для ADMIN
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer root").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer user").Code)

	// без AuthMiddleware актора нет
	bare := newRouter(RoleMiddleware(models.UserRoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, do(bare, "Bearer admin").Code)
}

func TestRequireRoles(t *testing.T) {
	r := newRouter(AuthMiddleware(testAuth), RequireRoles(models.UserRoleSuperAdmin, models.UserRoleAdmin))

	assert.Equal(t, http.StatusOK, do(r, "Bearer root").Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer admin").Code)

	w := do(r, "Bearer user")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_PERMISSIONS")
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://marketvue.cl"}))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://marketvue.cl")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://marketvue.cl", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
