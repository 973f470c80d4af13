package payroll

import "errors"

var (
	ErrPayrollNotFound       = errors.New("payroll not found")
	ErrPayrunNotFound        = errors.New("payrun not found for the given month and year")
	ErrPayrunIndexOutOfRange = errors.New("payrun index out of range")
	ErrPayrunExists          = errors.New("payrun already exists for the given month and year")
	ErrVersionConflict       = errors.New("payroll was modified concurrently")
	ErrInvalidReportPeriod   = errors.New("report period date must be YYYY-MM-DD or DD-MM-YYYY")
	ErrEmployeeEmailMissing  = errors.New("employee email not found")
	ErrPayslipLogNotFound    = errors.New("payslip email log not found")
)
