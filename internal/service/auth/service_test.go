package auth

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/auth"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/user"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/repository/memory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inlineTx struct{}

func (inlineTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

const testSecret = "test-secret-key-for-jwt"

func newTestService() (auth.AuthService, jwt.Service) {
	jwtService := jwt.NewJWTService(testSecret, time.Hour, 24*time.Hour)
	return NewAuthService(inlineTx{}, memory.NewUserRepository(), jwtService, memory.NewTokenRepository()), jwtService
}

func registerReq(email, role string) auth.RegisterRequest {
	return auth.RegisterRequest{
		Name:            "Back Office",
		Email:           email,
		Password:        "password123",
		ConfirmPassword: "password123",
		Role:            role,
	}
}

// asCaller returns a context carrying a verified access token for u.
func asCaller(t *testing.T, jwtService jwt.Service, id string, role user.Role) context.Context {
	t.Helper()
	token, _, err := jwtService.GenerateAccessToken(id, "caller@example.com", role)
	require.NoError(t, err)
	parsed, err := jwtauth.VerifyToken(jwtService.JWTAuth(), token)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), parsed, nil)
}

func TestRegister_FirstUserIsSuperAdmin(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.Register(context.Background(), registerReq("First@Example.com", "hr"), auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(user.RoleSuperAdmin), resp.User.Role)
	assert.Equal(t, "first@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestRegister_RequiresSuperAdminAfterBootstrap(t *testing.T) {
	svc, jwtService := newTestService()
	ctx := context.Background()

	first, err := svc.Register(ctx, registerReq("root@example.com", ""), auth.SessionTrackingRequest{})
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerReq("anon@example.com", ""), auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrRegistrationClosed)

	hrCtx := asCaller(t, jwtService, "hr-1", user.RoleHR)
	_, err = svc.Register(hrCtx, registerReq("hr2@example.com", ""), auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrRegistrationClosed)

	adminCtx := asCaller(t, jwtService, first.User.ID, user.RoleSuperAdmin)
	resp, err := svc.Register(adminCtx, registerReq("hr@example.com", ""), auth.SessionTrackingRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(user.RoleHR), resp.User.Role)

	_, err = svc.Register(adminCtx, registerReq("HR@example.com", "admin"), auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	req := registerReq("bad-email", "owner")
	req.ConfirmPassword = "different"

	_, err := svc.Register(context.Background(), req, auth.SessionTrackingRequest{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "confirmPassword")
	assert.Contains(t, fields, "role")
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, registerReq("hr@example.com", ""), auth.SessionTrackingRequest{})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, auth.LoginRequest{Email: "HR@example.com", Password: "password123"}, auth.SessionTrackingRequest{UserAgent: "test"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, auth.LoginRequest{Email: "hr@example.com", Password: "wrong-password"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, auth.LoginRequest{Email: "nobody@example.com", Password: "password123"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRefreshAndLogout(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	tokens, err := svc.Register(ctx, registerReq("hr@example.com", ""), auth.SessionTrackingRequest{})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx, tokens.RefreshToken))
	require.NoError(t, svc.Logout(ctx, tokens.RefreshToken))

	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

	assert.ErrorIs(t, svc.Logout(ctx, " "), auth.ErrInvalidToken)
}
