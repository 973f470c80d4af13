package attendance

import "context"

type AttendanceRepository interface {
	FindByKey(ctx context.Context, employeeID, periodFrom, periodTo string) (AttendanceRecord, error)
	// Upsert saves by natural key and returns the stored record with its id.
	Upsert(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)
	GetByID(ctx context.Context, id string) (AttendanceRecord, error)
	ListByEmployee(ctx context.Context, employeeID string, period *Period) ([]AttendanceRecord, error)
	ListByPeriod(ctx context.Context, period *Period) ([]AttendanceRecord, error)
	ListOverlapping(ctx context.Context, startDate, endDate string) ([]AttendanceRecord, error)
	ListContainingDate(ctx context.Context, date string) ([]AttendanceRecord, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)
}
