package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appAuth "github.com/yigit/unimag/internal/app/auth"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/auth"
)

// Context keys set by the auth middleware
const (
	ContextKeyUserID = "userID"
	ContextKeyEmail  = "email"
	ContextKeyRole   = "role"
	ContextKeyViewer = "viewer"
)

// UserLookup resolves the account behind a token
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	users      UserLookup
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
	}
}

// JWTAuth requires a valid bearer token. The token is read from the
// Authorization header or, for download links, the "token" query parameter.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := requestToken(c)
		if raw == "" {
			abortWithError(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required")
			return
		}

		user, err := m.authenticate(c.Request.Context(), raw)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired):
				abortWithError(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token has expired")
			case errors.Is(err, apperrors.ErrInvalidFormat), errors.Is(err, apperrors.ErrTokenInvalid):
				abortWithError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
			case errors.Is(err, apperrors.ErrUserNotFound):
				abortWithError(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "User no longer exists")
			default:
				HandleAPIError(c, err)
			}
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// RolesRequired allows the request only for the given roles. JWTAuth must run first.
func (m *AuthMiddleware) RolesRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := CurrentViewer(c)
		if viewer.IsAnonymous() {
			abortWithError(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required")
			return
		}
		if !viewer.Role.Is(roles...) {
			abortWithError(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Access denied")
			return
		}
		c.Next()
	}
}

// UserIDFromToken returns the user id of a valid token without touching the database
func (m *AuthMiddleware) UserIDFromToken(c *gin.Context) *int64 {
	raw := requestToken(c)
	if raw == "" {
		return nil
	}
	token, err := auth.ExtractBearerToken(raw)
	if err != nil {
		return nil
	}
	claims, err := m.jwtService.ValidateToken(token)
	if err != nil {
		return nil
	}
	id := claims.UserID
	return &id
}

func (m *AuthMiddleware) authenticate(ctx context.Context, raw string) (*models.User, error) {
	token, err := auth.ExtractBearerToken(raw)
	if err != nil {
		return nil, err
	}
	claims, err := m.jwtService.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	// The role and faculty are read from the account so changes apply immediately.
	return m.users.GetByID(ctx, claims.UserID)
}

func requestToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return header
	}
	return c.Query("token")
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyEmail, user.Email)
	c.Set(ContextKeyRole, user.Role)
	c.Set(ContextKeyViewer, appAuth.NewViewer(user))
}

// CurrentViewer returns the authenticated viewer, or the anonymous one
func CurrentViewer(c *gin.Context) appAuth.Viewer {
	if v, ok := c.Get(ContextKeyViewer); ok {
		if viewer, ok := v.(appAuth.Viewer); ok {
			return viewer
		}
	}
	return appAuth.Anonymous()
}

// CurrentUserID returns the authenticated user id
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
