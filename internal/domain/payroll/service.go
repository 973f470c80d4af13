package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	// ComputePayrollForPeriod derives and upserts a payrun for every attendance
	// record of the exact period. Per-employee failures are collected.
	ComputePayrollForPeriod(ctx context.Context, req ProcessFromAttendanceRequest) (ProcessFromAttendanceResponse, error)
	// UpsertPayrun merges input into the payrun for month/year, creating the
	// history or payrun when missing. It reports whether a payrun was created.
	UpsertPayrun(ctx context.Context, employeeID string, month, year int, input PayrunInput) (HistoryResponse, bool, error)

	CreatePayrun(ctx context.Context, req CreatePayrunRequest) (HistoryResponse, error)
	CreateOrUpdatePayrun(ctx context.Context, employeeID string, req UpsertPayrunRequest) (HistoryResponse, bool, error)
	GetAll(ctx context.Context) ([]HistoryResponse, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (HistoryResponse, error)
	UpdatePayrun(ctx context.Context, employeeID string, req UpdatePayrunRequest) (HistoryResponse, error)
	BatchUpdate(ctx context.Context, req BatchUpdateRequest) (BatchUpdateResponse, error)
	GetByMonth(ctx context.Context, month, year int) ([]MonthPayrollResponse, error)
	Delete(ctx context.Context, employeeID string) error
	ExportMonth(ctx context.Context, month, year int, w io.Writer) error
}

type PayslipService interface {
	SendPayslip(ctx context.Context, employeeID string, req SendPayslipRequest) (SendPayslipResponse, error)
	SendBulk(ctx context.Context, req SendBulkPayslipRequest) (SendBulkPayslipResponse, error)
	ListEmailResults(ctx context.Context, filter EmailLogFilter) ([]PayslipEmailLog, error)
	// RetryFailed re-sends due FAILED deliveries and returns how many succeeded.
	RetryFailed(ctx context.Context) (int, error)
}
