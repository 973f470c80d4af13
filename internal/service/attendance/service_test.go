package attendance

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/employee"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/repository/memory"
	employeeService "github.com/cmlabs-hris/hr-backoffice-go/internal/service/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSync struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingSync) SyncFromAttendance(ctx context.Context, rec attendance.AttendanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, rec.EmployeeID)
	return r.err
}

type fixture struct {
	svc         attendance.AttendanceService
	repo        *memory.AttendanceRepository
	employees   *memory.EmployeeRepository
	payrollSync *recordingSync
}

func newFixture(seed ...employee.Employee) fixture {
	repo := memory.NewAttendanceRepository()
	employees := memory.NewEmployeeRepository(seed...)
	payrollSync := &recordingSync{}
	return fixture{
		svc:         NewAttendanceService(repo, employeeService.NewEmployeeService(employees), payrollSync),
		repo:        repo,
		employees:   employees,
		payrollSync: payrollSync,
	}
}

func januaryUpload(ids ...string) attendance.UploadRequest {
	req := attendance.UploadRequest{
		DateHeaders:  []string{"2025-01-01", "2025-01-02"},
		ReportPeriod: &attendance.ReportPeriod{From: "2025-01-01", To: "2025-01-31"},
	}
	for _, id := range ids {
		req.AttendanceData = append(req.AttendanceData, attendance.RawEmployee{
			Number:     attendance.FlexString(id),
			Name:       "Name " + id,
			Department: "Production",
			Details: []any{
				map[string]any{"status": "P", "timeIn": "0900", "timeOut": "1815"},
				"A",
			},
			Summary: map[string]any{"Present": "1", "Absent": "1"},
		})
	}
	return req
}

func TestProcessUpload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(employee.NewPlaceholder("E1", "Existing", "", ""))

	resp, err := f.svc.ProcessUpload(ctx, januaryUpload("e1", "e2"))
	require.NoError(t, err)

	assert.Equal(t, 2, resp.RecordsProcessed)
	assert.Len(t, resp.RecordIDs, 2)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, []attendance.CreatedEmployee{{EmployeeID: "E2", EmployeeName: "Name e2"}}, resp.EmployeesCreated)
	assert.Equal(t, attendance.Period{From: "2025-01-01", To: "2025-01-31"}, resp.ReportPeriod)
	assert.Equal(t, []string{"E1", "E2"}, f.payrollSync.calls)

	rec, err := f.repo.FindByKey(ctx, "E1", "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, "CSV_Excel_Upload", rec.SourceFile)
	require.Len(t, rec.DailyAttendance, 2)
	assert.Equal(t, attendance.DailyEntry{
		Date:      "2025-01-01",
		Status:    attendance.StatusPresent,
		TimeIn:    "09:00",
		TimeOut:   "18:15",
		WorkedHrs: "9.25",
		OT1:       "0.75",
	}, rec.DailyAttendance[0])
	assert.Equal(t, attendance.StatusAbsent, rec.DailyAttendance[1].Status)
	assert.Equal(t, "1", rec.MonthlySummary.PresentDays)
	assert.Equal(t, "0:00", rec.MonthlySummary.TotalOT1)
	require.NotNil(t, rec.PeriodStart)
	assert.Equal(t, "2025-01-01", rec.PeriodStart.Format("2006-01-02"))
}

func TestProcessUpload_IsIdempotentPerPeriod(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	first, err := f.svc.ProcessUpload(ctx, januaryUpload("E1"))
	require.NoError(t, err)
	second, err := f.svc.ProcessUpload(ctx, januaryUpload("E1"))
	require.NoError(t, err)

	assert.Equal(t, first.RecordIDs, second.RecordIDs)
	assert.Empty(t, second.EmployeesCreated)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalRecords)
	assert.Equal(t, int64(1), stats.UniqueEmployees)
}

func TestProcessUpload_PartialFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.repo.FailWith(func(op, key string) error {
		if op == "upsert" && key == "E2" {
			return errors.New("connection reset")
		}
		return nil
	})

	resp, err := f.svc.ProcessUpload(ctx, januaryUpload("E1", "E2", "E3"))
	require.NoError(t, err)

	assert.Equal(t, 2, resp.RecordsProcessed)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "E2", resp.Errors[0].EmployeeID)
	assert.Contains(t, resp.Errors[0].Error, "connection reset")
	assert.Equal(t, []string{"E1", "E3"}, f.payrollSync.calls)
}

func TestProcessUpload_PayrollFailureDoesNotFailUpload(t *testing.T) {
	f := newFixture()
	f.payrollSync.err = errors.New("payroll down")

	resp, err := f.svc.ProcessUpload(context.Background(), januaryUpload("E1"))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RecordsProcessed)
	assert.Empty(t, resp.Errors)
}

func TestProcessUpload_MissingIdentifier(t *testing.T) {
	f := newFixture()
	req := januaryUpload("E1")
	req.AttendanceData = append(req.AttendanceData, attendance.RawEmployee{Name: "Nobody"})

	resp, err := f.svc.ProcessUpload(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RecordsProcessed)
	assert.Len(t, resp.Errors, 1)
}

func TestProcessUpload_Validation(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ProcessUpload(context.Background(), attendance.UploadRequest{
		ReportPeriod: &attendance.ReportPeriod{From: "2025/01/01", To: "31-01-2025"},
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "attendanceData")
	assert.Contains(t, fields, "dateHeaders")
	assert.Contains(t, fields, "reportPeriod.from")
	assert.NotContains(t, fields, "reportPeriod.to")
}

func TestImportFile_CSV(t *testing.T) {
	f := newFixture()
	csv := "Employee Number,Employee Name,Date,Status,Time In,Time Out\n" +
		"E1,Asha,2025-01-01,P,09:00,17:30\n" +
		"E2,Ravi,2025-01-01,WO,,\n"

	resp, err := f.svc.ImportFile(context.Background(), strings.NewReader(csv), attendance.ImportFileRequest{
		FileName:   "january.csv",
		PeriodFrom: "2025-01-01",
		PeriodTo:   "2025-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.RecordsProcessed)
	assert.Len(t, resp.EmployeesCreated, 2)

	rec, err := f.repo.FindByKey(context.Background(), "E2", "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, "january.csv", rec.SourceFile)
	assert.Equal(t, attendance.StatusOff, rec.DailyAttendance[0].Status)
	assert.Equal(t, "1", rec.MonthlySummary.WeeklyOffDays)
}

func TestImportFile_UnsupportedFormat(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ImportFile(context.Background(), strings.NewReader("x"), attendance.ImportFileRequest{
		FileName:   "january.pdf",
		PeriodFrom: "2025-01-01",
		PeriodTo:   "2025-01-31",
	})
	assert.ErrorIs(t, err, attendance.ErrUnsupportedFileFormat)
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.ProcessUpload(ctx, januaryUpload("E1", "E2"))
	require.NoError(t, err)
	feb := januaryUpload("E1")
	feb.DateHeaders = []string{"2025-02-01", "2025-02-02"}
	feb.ReportPeriod = &attendance.ReportPeriod{From: "2025-02-01", To: "2025-02-28"}
	_, err = f.svc.ProcessUpload(ctx, feb)
	require.NoError(t, err)

	t.Run("employee history newest first", func(t *testing.T) {
		records, err := f.svc.GetEmployeeAttendance(ctx, "e1", nil)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "2025-02-01", records[0].ReportPeriodFrom)
	})

	t.Run("exact period", func(t *testing.T) {
		records, err := f.svc.GetAllAttendance(ctx, &attendance.Period{From: "2025-01-01", To: "2025-01-31"})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "E1", records[0].EmployeeID)
	})

	t.Run("date range", func(t *testing.T) {
		records, err := f.svc.GetByDateRange(ctx, "01-03-2025", "2025-03-31")
		require.NoError(t, err)
		assert.Empty(t, records)

		records, err = f.svc.GetByDateRange(ctx, "2025-01-20", "2025-02-10")
		require.NoError(t, err)
		assert.Len(t, records, 3)

		_, err = f.svc.GetByDateRange(ctx, "2025-02-10", "2025-01-20")
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("single day", func(t *testing.T) {
		entries, err := f.svc.GetAllForDate(ctx, "02-01-2025")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "2025-01-02", entries[0].Date)
		assert.Equal(t, attendance.StatusAbsent, entries[0].Status)
	})

	t.Run("employee day", func(t *testing.T) {
		entries, err := f.svc.GetEmployeeDaily(ctx, "E1", "2025-02-01")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, attendance.StatusPresent, entries[0].Status)

		_, err = f.svc.GetEmployeeDaily(ctx, "E1", "2025-03-01")
		assert.ErrorIs(t, err, attendance.ErrDailyEntryNotFound)
	})

	t.Run("summary", func(t *testing.T) {
		summaries, err := f.svc.GetSummary(ctx, "", &attendance.Period{From: "2025-02-01", To: "2025-02-28"})
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, "2025-02-01 to 2025-02-28", summaries[0].ReportPeriod)
		assert.Equal(t, "1", summaries[0].Summary.AbsentDays)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	resp, err := f.svc.ProcessUpload(ctx, januaryUpload("E1"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, resp.RecordIDs[0]))
	assert.ErrorIs(t, f.svc.Delete(ctx, resp.RecordIDs[0]), attendance.ErrRecordNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, "not-a-uuid"), attendance.ErrRecordNotFound)
}
