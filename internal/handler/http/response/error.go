package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/auth"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/employee"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/user"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrRegistrationClosed):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeIDExists):
		Conflict(w, "Employee ID already exists")
	case errors.Is(err, employee.ErrMailIDExists):
		Conflict(w, "Mail ID already registered")
	case errors.Is(err, employee.ErrEmployeeIDsRequired):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrDailyEntryNotFound):
		NotFound(w, "Attendance not found for this date")
	case errors.Is(err, attendance.ErrUnsupportedFileFormat):
		BadRequest(w, "Only .xlsx, .xls and .csv files are supported", nil)
	case errors.Is(err, attendance.ErrEmptySheet), errors.Is(err, attendance.ErrMissingColumn):
		BadRequest(w, err.Error(), nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollNotFound):
		NotFound(w, "Payroll not found")
	case errors.Is(err, payroll.ErrPayrunNotFound):
		NotFound(w, "Payrun not found for the given month and year")
	case errors.Is(err, payroll.ErrPayrunIndexOutOfRange):
		BadRequest(w, "Payrun index out of range", nil)
	case errors.Is(err, payroll.ErrPayrunExists):
		Conflict(w, "Payrun already exists for this month and year")
	case errors.Is(err, payroll.ErrVersionConflict):
		Conflict(w, "Payroll was modified concurrently, please retry")
	case errors.Is(err, payroll.ErrInvalidReportPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrEmployeeEmailMissing):
		BadRequest(w, "Employee email not found", nil)
	case errors.Is(err, payroll.ErrPayslipLogNotFound):
		NotFound(w, "Payslip email log not found")

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
