package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func int64Ptr(v int64) *int64 { return &v }

type userMap map[int64]*models.User

func (m userMap) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "unimag",
	})
}

func token(t *testing.T, jwt *auth.JWTService, u *models.User) string {
	t.Helper()
	tok, err := jwt.GenerateToken(auth.TokenSubject{UserID: u.ID, Email: u.Email, Role: u.Role.Code()})
	require.NoError(t, err)
	return tok
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorDetail {
	t.Helper()
	var body dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", apperrors.ErrResourceNotFound, http.StatusNotFound, "Resource not found"},
		{"custom not found", apperrors.NewCustomError(apperrors.ErrSubmissionNotFound, "Submission not found"), http.StatusNotFound, "Submission not found"},
		{"missing file", fmt.Errorf("open: %w", apperrors.ErrFileNotFound), http.StatusNotFound, "File not found on server"},
		{"forbidden", apperrors.NewForbiddenError("nope"), http.StatusForbidden, "nope"},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"validation", apperrors.NewValidationError("email", "Invalid email"), http.StatusBadRequest, "Invalid email"},
		{"self delete", apperrors.NewCustomError(apperrors.ErrSelfDeletion, "Cannot delete your own account"), http.StatusBadRequest, "Cannot delete your own account"},
		{"deadline", apperrors.ErrDeadlinePassed, http.StatusBadRequest, "Deadline has passed"},
		{"duplicate email", apperrors.ErrEmailAlreadyExists, http.StatusConflict, "Email already in use"},
		{"too large", apperrors.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "File size exceeds the upload limit"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := ErrorStatus(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, detail.Message)
		})
	}
}

func TestHandleAPIErrorWritesEnvelope(t *testing.T) {
	r := gin.New()
	r.GET("/fail", func(c *gin.Context) {
		HandleAPIError(c, apperrors.NewValidationError("title", "Title is required"))
	})
	r.GET("/boom", func(c *gin.Context) {
		HandleAPIError(c, errors.New("db down"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeValidationFailed, detail.Code)
	assert.Equal(t, "title", detail.Field)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestJWTAuth(t *testing.T) {
	jwt := newJWT()
	coord := &models.User{ID: 7, Email: "coord@uni.edu", Role: models.RoleCoordinator, FacultyID: int64Ptr(2)}
	m := NewAuthMiddleware(jwt, userMap{7: coord})

	r := gin.New()
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		v := CurrentViewer(c)
		c.JSON(http.StatusOK, gin.H{"id": v.UserID, "role": v.Role.Code(), "faculty": *v.FacultyID})
	})

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
	}{
		{"bearer header", "Bearer " + token(t, jwt, coord), "", http.StatusOK},
		{"query token", "", token(t, jwt, coord), http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", "", http.StatusUnauthorized},
		{"deleted user", "Bearer " + token(t, jwt, &models.User{ID: 99, Role: models.RoleStudent}), "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/me"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"id":7,"role":"COORD","faculty":2}`, w.Body.String())
			}
		})
	}
}

func TestRolesRequired(t *testing.T) {
	jwt := newJWT()
	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	student := &models.User{ID: 2, Role: models.RoleStudent}
	m := NewAuthMiddleware(jwt, userMap{1: admin, 2: student})

	r := gin.New()
	r.GET("/admin", m.JWTAuth(), m.RolesRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for user, want := range map[*models.User]int{admin: http.StatusNoContent, student: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, jwt, user))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "role %s", user.Role)
	}
}

func TestUserIDFromToken(t *testing.T) {
	jwt := newJWT()
	m := NewAuthMiddleware(jwt, userMap{})
	tok := token(t, jwt, &models.User{ID: 7, Email: "stu@uni.edu", Role: models.RoleStudent})

	tests := []struct {
		name   string
		header string
		query  string
		want   *int64
	}{
		{name: "bearer header", header: "Bearer " + tok, want: int64Ptr(7)},
		{name: "bare header", header: tok, want: int64Ptr(7)},
		{name: "query token", query: "?token=" + tok, want: int64Ptr(7)},
		{name: "no token"},
		{name: "broken token", header: "Bearer broken"},
		{name: "wrong scheme", header: "Basic " + tok},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/dashboard"+tt.query, nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, m.UserIDFromToken(c))
		})
	}
}

type visitSink struct {
	mu     sync.Mutex
	visits []*models.PageVisit
	wg     sync.WaitGroup
}

func (s *visitSink) RecordVisit(_ context.Context, v *models.PageVisit) error {
	defer s.wg.Done()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits = append(s.visits, v)
	return nil
}

func TestPageVisits(t *testing.T) {
	sink := &visitSink{}
	r := gin.New()
	r.Use(PageVisits(sink, func(*gin.Context) *int64 { return int64Ptr(5) }, zerolog.Nop()))
	r.NoRoute(func(c *gin.Context) { c.Status(http.StatusOK) })

	sink.wg.Add(1)
	for _, path := range []string{"/dashboard", "/api/health", "/static/app.js"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/dashboard", nil))
	sink.wg.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.visits, 1)
	assert.Equal(t, "/dashboard", sink.visits[0].PageURL)
	assert.Equal(t, int64(5), *sink.visits[0].UserID)
}

func TestPageVisitsAttributeBearerUser(t *testing.T) {
	jwt := newJWT()
	m := NewAuthMiddleware(jwt, userMap{})
	sink := &visitSink{}
	r := gin.New()
	r.Use(PageVisits(sink, m.UserIDFromToken, zerolog.Nop()))
	r.NoRoute(func(c *gin.Context) { c.Status(http.StatusOK) })

	sink.wg.Add(2)
	req := httptest.NewRequest(http.MethodGet, "/gallery", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, jwt, &models.User{ID: 11, Email: "co@uni.edu", Role: models.RoleCoordinator}))
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/about", nil))
	sink.wg.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.visits, 2)
	byURL := map[string]*int64{}
	for _, v := range sink.visits {
		byURL[v.PageURL] = v.UserID
	}
	require.NotNil(t, byURL["/gallery"])
	assert.Equal(t, int64(11), *byURL["/gallery"])
	assert.Nil(t, byURL["/about"])
}

type panicReporter struct {
	panics int
	errs   []error
}

func (r *panicReporter) ReportError(err error, _ *http.Request, _ map[string]interface{}) {
	r.errs = append(r.errs, err)
}
func (r *panicReporter) ReportPanic(interface{}, *http.Request) { r.panics++ }
func (r *panicReporter) Close(time.Duration)                    {}

func TestRecoveryAndErrorReporting(t *testing.T) {
	reporter := &panicReporter{}
	r := gin.New()
	r.Use(Recovery(reporter, zerolog.Nop()), ErrorReporter(reporter))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })
	r.GET("/fail", func(c *gin.Context) { HandleAPIError(c, errors.New("db down")) })
	r.GET("/missing", func(c *gin.Context) { HandleAPIError(c, apperrors.ErrResourceNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrorCodeInternalServer, decodeError(t, w).Code)
	assert.Equal(t, 1, reporter.panics)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Len(t, reporter.errs, 1)
	assert.EqualError(t, reporter.errs[0], "db down")
}
