package payroll

import (
	"context"
	"time"
)

type PayrollRepository interface {
	GetByEmployeeID(ctx context.Context, employeeID string) (PayrollHistory, error)
	// Save inserts a history with Version 0 and otherwise updates it only when
	// the stored version still equals h.Version, returning ErrVersionConflict
	// when it does not. The returned history carries the new version.
	Save(ctx context.Context, h PayrollHistory) (PayrollHistory, error)
	List(ctx context.Context) ([]PayrollHistory, error)
	// ListByPeriod returns histories holding a payrun for month/year.
	ListByPeriod(ctx context.Context, month, year int) ([]PayrollHistory, error)
	Delete(ctx context.Context, employeeID string) error
}

type PayslipLogRepository interface {
	Create(ctx context.Context, log PayslipEmailLog) (PayslipEmailLog, error)
	Update(ctx context.Context, log PayslipEmailLog) error
	List(ctx context.Context, filter EmailLogFilter) ([]PayslipEmailLog, error)
	// ListRetryable returns FAILED logs below their retry limit whose next
	// retry time is due at now.
	ListRetryable(ctx context.Context, now time.Time, limit int) ([]PayslipEmailLog, error)
}
