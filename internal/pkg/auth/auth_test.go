package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWT() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: 24 * time.Hour,
		TokenIssuer:    "unimag.test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWT()

	token, err := svc.GenerateToken(TokenSubject{UserID: 42, Email: "ada@uni.test", Role: "COORD"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ada@uni.test", claims.Email)
	assert.Equal(t, "COORD", claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, int64(86400), svc.ExpiresIn())
}

func TestValidateTokenErrors(t *testing.T) {
	svc := newTestJWT()
	token, err := svc.GenerateToken(TokenSubject{UserID: 1, Email: "a@b.c", Role: "ADMIN"})
	require.NoError(t, err)

	expired := newTestJWT()
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expiredToken, err := expired.GenerateToken(TokenSubject{UserID: 1, Email: "a@b.c", Role: "ADMIN"})
	require.NoError(t, err)

	otherSecret := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "unimag.test"})
	forged, err := otherSecret.GenerateToken(TokenSubject{UserID: 1, Email: "a@b.c", Role: "ADMIN"})
	require.NoError(t, err)

	otherIssuer := NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "elsewhere"})
	foreign, err := otherIssuer.GenerateToken(TokenSubject{UserID: 1, Email: "a@b.c", Role: "ADMIN"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid", token: token},
		{name: "empty", token: "", wantErr: apperrors.ErrTokenInvalid},
		{name: "malformed", token: "not-a-jwt", wantErr: apperrors.ErrInvalidFormat},
		{name: "expired", token: expiredToken, wantErr: apperrors.ErrTokenExpired},
		{name: "wrong secret", token: forged, wantErr: apperrors.ErrTokenInvalid},
		{name: "wrong issuer", token: foreign, wantErr: apperrors.ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer", header: "Bearer a.b.c", want: "a.b.c"},
		{name: "lowercase scheme", header: "bearer a.b.c", want: "a.b.c"},
		{name: "raw token", header: "a.b.c", want: "a.b.c"},
		{name: "quoted", header: `"Bearer a.b.c"`, want: "a.b.c"},
		{name: "empty", header: "", wantErr: true},
		{name: "basic auth", header: "Basic dXNlcg==", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name       string
		stored     string
		password   string
		wantOK     bool
		wantRehash bool
	}{
		{name: "bcrypt match", stored: string(hash), password: "secret123", wantOK: true},
		{name: "bcrypt mismatch", stored: string(hash), password: "nope"},
		{name: "legacy plain text", stored: "secret123", password: "secret123", wantOK: true, wantRehash: true},
		{name: "legacy mismatch", stored: "secret123", password: "secret124"},
		{name: "empty stored", stored: "", password: "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, rehash := VerifyPassword(tt.stored, tt.password)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantRehash, rehash)
		})
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("longenough")
	require.NoError(t, err)
	assert.True(t, IsHashed(hash))
	assert.True(t, CheckPassword(hash, "longenough"))
	assert.False(t, CheckPassword(hash, "different"))
}
