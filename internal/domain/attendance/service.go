package attendance

import (
	"context"
	"io"
)

type AttendanceService interface {
	ProcessUpload(ctx context.Context, req UploadRequest) (UploadResponse, error)
	ImportFile(ctx context.Context, r io.Reader, req ImportFileRequest) (UploadResponse, error)

	GetEmployeeAttendance(ctx context.Context, employeeID string, period *Period) ([]RecordResponse, error)
	GetAllAttendance(ctx context.Context, period *Period) ([]RecordResponse, error)
	GetByDateRange(ctx context.Context, startDate, endDate string) ([]RecordResponse, error)
	GetAllForDate(ctx context.Context, date string) ([]DailyAttendanceResponse, error)
	GetEmployeeDaily(ctx context.Context, employeeID, date string) ([]DailyAttendanceResponse, error)
	GetSummary(ctx context.Context, employeeID string, period *Period) ([]SummaryResponse, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)
}

// PayrollSync derives the payrun of a freshly stored attendance record.
type PayrollSync interface {
	SyncFromAttendance(ctx context.Context, record AttendanceRecord) error
}
