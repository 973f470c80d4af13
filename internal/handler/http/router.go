package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the deployment values the router needs.
type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	LogLevel       slog.Level
}

type Handlers struct {
	Auth       AuthHandler
	Employee   EmployeeHandler
	Attendance AttendanceHandler
	Payroll    PayrollHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hr-backoffice"),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)

			// Bearer is optional here; the service decides who may register.
			r.With(jwtauth.Verifier(JWTService.JWTAuth())).Post("/register", h.Auth.Register)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.Employee.ListEmployees)
				r.Get("/{employeeId}", h.Employee.GetEmployee)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePayrollWriter)
					r.Post("/", h.Employee.CreateEmployee)
					r.Put("/{employeeId}", h.Employee.UpdateEmployee)
					r.Delete("/{employeeId}", h.Employee.DeleteEmployee)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.Attendance.List)
				r.Get("/range", h.Attendance.ListByDateRange)
				r.Get("/date/{date}", h.Attendance.ListForDate)
				r.Get("/summary", h.Attendance.Summary)
				r.Get("/stats", h.Attendance.Stats)
				r.Get("/employee/{employeeId}", h.Attendance.ListByEmployee)
				r.Get("/employee/{employeeId}/date/{date}", h.Attendance.GetEmployeeDaily)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePayrollWriter)
					r.Post("/upload", h.Attendance.Upload)
					r.Post("/upload/file", h.Attendance.UploadFile)
					r.Delete("/{id}", h.Attendance.Delete)
				})
			})

			r.Route("/payrolls", func(r chi.Router) {
				r.Get("/", h.Payroll.ListPayrolls)
				r.Get("/employee/{employeeId}", h.Payroll.GetByEmployee)
				r.Get("/month/{month}/year/{year}", h.Payroll.GetByMonth)
				r.Get("/month/{month}/year/{year}/export", h.Payroll.ExportMonth)
				r.Get("/email-results", h.Payroll.EmailResults)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePayrollWriter)
					r.Post("/", h.Payroll.CreatePayrun)
					r.Post("/process-from-attendance", h.Payroll.ProcessFromAttendance)
					r.Put("/employee/{employeeId}", h.Payroll.UpdatePayrun)
					r.Post("/employee/{employeeId}", h.Payroll.CreateOrUpdatePayrun)
					r.Delete("/employee/{employeeId}", h.Payroll.DeleteByEmployee)
					r.Put("/batch", h.Payroll.BatchUpdate)
					r.Post("/create-missing-employees", h.Employee.CreateMissingEmployees)
					r.Post("/send-payslip/{employeeId}", h.Payroll.SendPayslip)
					r.Post("/send-bulk-payslips", h.Payroll.SendBulkPayslips)
				})
			})
		})
	})
	return r
}
