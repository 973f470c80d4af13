// Package app wires repositories and services on top of one database pool.
package app

import (
	"fmt"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/config"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/auth"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/employee"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/database"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/email"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hr-backoffice-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hr-backoffice-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/hr-backoffice-go/internal/service/employee"
	payrollService "github.com/cmlabs-hris/hr-backoffice-go/internal/service/payroll"
)

type Services struct {
	JWT        jwt.Service
	Auth       auth.AuthService
	Employee   employee.EmployeeService
	Attendance attendance.AttendanceService
	Payroll    payroll.PayrollService
	Payslip    payroll.PayslipService
}

func NewServices(cfg *config.Config, db *database.DB) (*Services, error) {
	userRepo := postgresql.NewUserRepository(db)
	jwtRepo := postgresql.NewJWTRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	payslipLogRepo := postgresql.NewPayslipLogRepository(db)

	mailer, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email service: %w", err)
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL())
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	payrollSvc := payrollService.NewPayrollService(payrollRepo, attendanceRepo, employeeRepo, employeeSvc)

	return &Services{
		JWT:        jwtService,
		Auth:       serviceAuth.NewAuthService(postgresql.NewTransactor(db), userRepo, jwtService, jwtRepo),
		Employee:   employeeSvc,
		Attendance: attendanceService.NewAttendanceService(attendanceRepo, employeeSvc, payrollSvc),
		Payroll:    payrollSvc,
		Payslip:    payrollService.NewPayslipService(payrollRepo, employeeRepo, payslipLogRepo, mailer, cfg.Payroll),
	}, nil
}
