package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yigit/unimag/internal/middleware"
	"github.com/yigit/unimag/internal/pkg/auth"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	jwt := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "unimag"})

	router := gin.New()
	SetupRouter(router, Handlers{}, middleware.NewAuthMiddleware(jwt, nil))
	return router
}

func TestRouteTable(t *testing.T) {
	registered := map[string]bool{}
	for _, r := range newTestRouter().Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /swagger/*any",
		"GET /api/health",
		"POST /api/auth/login",
		"GET /api/users/me",
		"GET /api/users/settings/:kind",
		"PUT /api/users/settings/:kind",
		"GET /api/manager/settings/:kind",
		"PUT /api/manager/settings/:kind",
		"POST /api/submissions",
		"GET /api/public/submissions/:id/download",
		"PATCH /api/admin/submissions/:id/status",
		"GET /api/admin/activity/stream",
		"POST /api/manager/submissions/download-zip",
		"GET /api/manager/submissions/download-zip",
		"GET /api/coordinator/students",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestUserSettingsRequireAuth(t *testing.T) {
	router := newTestRouter()

	for _, method := range []string{http.MethodGet, http.MethodPut} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, "/api/users/settings/notifications", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, method)
	}
}
