package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/user"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtected(t *testing.T, guard func(http.Handler) http.Handler) (http.Handler, jwt.Service) {
	t.Helper()
	svc := jwt.NewJWTService("test-secret", time.Minute, time.Hour)

	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(svc.JWTAuth()))
	r.Use(AuthRequired)
	if guard != nil {
		r.Use(guard)
	}
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r, svc
}

func call(h http.Handler, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthRequired(t *testing.T) {
	h, svc := newProtected(t, nil)

	access, _, err := svc.GenerateAccessToken("u1", "hr@example.com", user.RoleHR)
	require.NoError(t, err)
	refresh, _, err := svc.GenerateRefreshToken("u1")
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, call(h, access))
	assert.Equal(t, http.StatusUnauthorized, call(h, refresh))
	assert.Equal(t, http.StatusUnauthorized, call(h, ""))
	assert.Equal(t, http.StatusUnauthorized, call(h, "not-a-token"))
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name  string
		guard func(http.Handler) http.Handler
		role  user.Role
		want  int
	}{
		{"hr writes payroll", RequirePayrollWriter, user.RoleHR, http.StatusNoContent},
		{"admin writes payroll", RequirePayrollWriter, user.RoleAdmin, http.StatusNoContent},
		{"unknown role", RequirePayrollWriter, user.Role("viewer"), http.StatusForbidden},
		{"superadmin only", RequireSuperAdmin, user.RoleAdmin, http.StatusForbidden},
		{"superadmin passes", RequireSuperAdmin, user.RoleSuperAdmin, http.StatusNoContent},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h, svc := newProtected(t, c.guard)
			token, _, err := svc.GenerateAccessToken("u1", "x@example.com", c.role)
			require.NoError(t, err)
			assert.Equal(t, c.want, call(h, token))
		})
	}
}
