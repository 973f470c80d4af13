package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/config"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/email"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/hr-backoffice-go/internal/service/attendance"
	authService "github.com/cmlabs-hris/hr-backoffice-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/hr-backoffice-go/internal/service/employee"
	payrollService "github.com/cmlabs-hris/hr-backoffice-go/internal/service/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inlineTx struct{}

func (inlineTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type discardMailer struct{}

func (discardMailer) SendPayslip(string, email.PayslipData) error { return nil }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jwtSvc := jwt.NewJWTService("test-secret-key-for-jwt", time.Hour, 24*time.Hour)

	employees := memory.NewEmployeeRepository()
	attendanceRepo := memory.NewAttendanceRepository()
	payrolls := memory.NewPayrollRepository()

	empSvc := employeeService.NewEmployeeService(employees)
	paySvc := payrollService.NewPayrollService(payrolls, attendanceRepo, employees, empSvc)
	attSvc := attendanceService.NewAttendanceService(attendanceRepo, empSvc, paySvc)
	slipSvc := payrollService.NewPayslipService(payrolls, employees, memory.NewPayslipLogRepository(), discardMailer{}, config.PayrollConfig{PayslipMaxRetries: 3})
	authSvc := authService.NewAuthService(inlineTx{}, memory.NewUserRepository(), jwtSvc, memory.NewTokenRepository())

	router := NewRouter(RouterOptions{Env: "test"}, jwtSvc, Handlers{
		Auth:       NewAuthHandler(jwtSvc, authSvc),
		Employee:   NewEmployeeHandler(empSvc),
		Attendance: NewAttendanceHandler(attSvc),
		Payroll:    NewPayrollHandler(paySvc, slipSvc),
	})
	return &testServer{t: t, handler: router}
}

func (s *testServer) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.send(req)
}

func (s *testServer) send(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

// login bootstraps the first user, which becomes superadmin.
func (s *testServer) login() {
	s.t.Helper()
	rec, env := s.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":            "Root",
		"email":           "root@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var tokens struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &tokens))
	s.token = tokens.AccessToken
}

func januaryPayload() attendance.UploadRequest {
	return attendance.UploadRequest{
		DateHeaders:  []string{"2025-01-01", "2025-01-02"},
		ReportPeriod: &attendance.ReportPeriod{From: "2025-01-01", To: "2025-01-31"},
		AttendanceData: []attendance.RawEmployee{{
			Number:     "E1",
			Name:       "Asha Rao",
			Department: "Production",
			Details: []any{
				map[string]any{"status": "P", "timeIn": "0900", "timeOut": "1815"},
				"A",
			},
			Summary: map[string]any{"Present": "1", "Absent": "1"},
		}},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	s.login()

	s.token = ""
	rec, env := s.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":            "Second",
		"email":           "second@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rec, _ = s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "root@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, refreshTokenCookie, cookies[0].Name)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(cookies[0])
	rec, env = s.send(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "accessToken")

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(cookies[0])
	rec, _ = s.send(req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refreshToken": cookies[0].Value})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)
	rec, env := s.do(http.MethodGet, "/api/v1/employees", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestUploadToPayroll(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec, env := s.do(http.MethodPost, "/api/v1/attendance/upload", januaryPayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var upload attendance.UploadResponse
	require.NoError(t, json.Unmarshal(env.Data, &upload))
	assert.Equal(t, 1, upload.RecordsProcessed)
	require.Len(t, upload.EmployeesCreated, 1)

	rec, _ = s.do(http.MethodGet, "/api/v1/employees/E1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodGet, "/api/v1/attendance/employee/e1/date/2025-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"timeIn":"09:00"`)

	rec, env = s.do(http.MethodGet, "/api/v1/payrolls/month/1/year/2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"employeeId":"E1"`)

	rec, env = s.do(http.MethodPost, "/api/v1/payrolls/process-from-attendance", map[string]string{
		"periodFrom": "2025-01-01",
		"periodTo":   "2025-01-31",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(env.Data), `"processedCount":1`)

	rec, _ = s.do(http.MethodGet, "/api/v1/payrolls/month/1/year/2025/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payroll_January_2025.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestUploadFile(t *testing.T) {
	s := newTestServer(t)
	s.login()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "january.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Employee Number,Employee Name,Date,Status,Time In,Time Out\nE7,Kiran,2025-01-01,P,09:00,17:30\n"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("from", "2025-01-01"))
	require.NoError(t, mw.WriteField("to", "2025-01-31"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/upload/file", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec, env := s.send(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, string(env.Data), `"recordsProcessed":1`)
}

func TestMonthParamsValidated(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec, env := s.do(http.MethodGet, "/api/v1/payrolls/month/13/year/25", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Error.Details, "month")
	assert.Contains(t, env.Error.Details, "year")
}

func TestEmployeeCRUD(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec, _ := s.do(http.MethodPost, "/api/v1/employees", map[string]any{
		"employeeId":   "e42",
		"employeeName": "Divya",
		"mailId":       "divya@example.com",
		"salary":       "30000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, _ = s.do(http.MethodPost, "/api/v1/employees", map[string]any{
		"employeeId":   "E42",
		"employeeName": "Duplicate",
		"mailId":       "other@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/v1/payrolls/create-missing-employees", map[string]any{
		"employeeIds": []string{"E42", "E43"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := s.do(http.MethodGet, "/api/v1/employees?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalItems":2`)
	assert.NotEmpty(t, env.Data)

	rec, _ = s.do(http.MethodDelete, "/api/v1/employees/E43", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(http.MethodGet, "/api/v1/employees/E43", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
