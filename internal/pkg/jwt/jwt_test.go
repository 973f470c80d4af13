package jwt

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_AccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "hr@example.com", user.RoleHR)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	parsed, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	role, _ := parsed.Get("role")
	typ, _ := parsed.Get("type")
	assert.Equal(t, "hr", role)
	assert.Equal(t, TokenTypeAccess, typ)
}

func TestJWTService_ParseRefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, time.Hour)

	refresh, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	userID, err := svc.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	access, _, err := svc.GenerateAccessToken("user-1", "hr@example.com", user.RoleHR)
	require.NoError(t, err)
	_, err = svc.ParseRefreshToken(access)
	assert.Error(t, err)

	again, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, refresh, again, "refresh tokens must be distinct per session")

	other := NewJWTService("other-secret", time.Minute, time.Hour)
	_, err = other.ParseRefreshToken(refresh)
	assert.Error(t, err)
}

func TestJWTService_Revoke(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute, time.Hour)
	assert.False(t, svc.IsTokenRevoked("abc"))
	svc.RevokeToken("abc")
	assert.True(t, svc.IsTokenRevoked("abc"))
}
