package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/employee"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
)

const uploadSourceFile = "CSV_Excel_Upload"

type AttendanceServiceImpl struct {
	attendanceRepo  attendance.AttendanceRepository
	employeeService employee.EmployeeService
	payrollSync     attendance.PayrollSync
	now             func() time.Time
}

// NewAttendanceService wires the ingestion pipeline. payrollSync may be nil,
// in which case uploads only store attendance.
func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeService employee.EmployeeService,
	payrollSync attendance.PayrollSync,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		attendanceRepo:  attendanceRepo,
		employeeService: employeeService,
		payrollSync:     payrollSync,
		now:             time.Now,
	}
}

// ========== INGESTION ==========

func (s *AttendanceServiceImpl) ProcessUpload(ctx context.Context, req attendance.UploadRequest) (attendance.UploadResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.UploadResponse{}, err
	}

	period := attendance.Period{
		From: strings.TrimSpace(req.ReportPeriod.From),
		To:   strings.TrimSpace(req.ReportPeriod.To),
	}
	periodStart, _ := validator.ParsePeriodDate(period.From)
	periodEnd, _ := validator.ParsePeriodDate(period.To)

	sourceFile := req.SourceFile
	if sourceFile == "" {
		sourceFile = uploadSourceFile
	}

	resp := attendance.UploadResponse{
		RecordIDs:        []string{},
		EmployeesCreated: []attendance.CreatedEmployee{},
		Errors:           []attendance.ItemError{},
		ReportPeriod:     period,
	}

	for _, raw := range req.AttendanceData {
		employeeID := employee.NormalizeID(raw.Identifier())
		if employeeID == "" {
			resp.Errors = append(resp.Errors, attendance.ItemError{Error: "employee number is required"})
			continue
		}

		master, created, err := s.employeeService.EnsureExists(ctx, employeeID, employee.PlaceholderHint{
			EmployeeName: raw.DisplayName(),
			Department:   raw.Department,
			Designation:  raw.Designation,
		})
		if err != nil {
			slog.Error("Failed to resolve employee for attendance", "employee_id", employeeID, "error", err)
			resp.Errors = append(resp.Errors, attendance.ItemError{EmployeeID: employeeID, Error: err.Error()})
			continue
		}
		if created {
			resp.EmployeesCreated = append(resp.EmployeesCreated, attendance.CreatedEmployee{
				EmployeeID:   master.EmployeeID,
				EmployeeName: master.EmployeeName,
			})
		}

		entries := AlignDetails(raw.Details, req.DateHeaders)
		for i := range entries {
			entries[i] = Enrich(entries[i])
		}

		name := raw.DisplayName()
		if name == "" {
			name = master.EmployeeName
		}
		record := attendance.AttendanceRecord{
			EmployeeID:       employeeID,
			EmployeeName:     name,
			Department:       strings.TrimSpace(raw.Department),
			Designation:      strings.TrimSpace(raw.Designation),
			Category:         strings.TrimSpace(raw.Category),
			Branch:           strings.TrimSpace(raw.Branch),
			ReportPeriodFrom: period.From,
			ReportPeriodTo:   period.To,
			PeriodStart:      &periodStart,
			PeriodEnd:        &periodEnd,
			DailyAttendance:  entries,
			MonthlySummary:   NormalizeSummary(raw.Summary),
			SourceFile:       sourceFile,
			ExtractedAt:      s.now(),
		}

		saved, err := s.attendanceRepo.Upsert(ctx, record)
		if err != nil {
			slog.Error("Failed to save attendance record", "employee_id", employeeID, "error", err)
			resp.Errors = append(resp.Errors, attendance.ItemError{EmployeeID: employeeID, Error: err.Error()})
			continue
		}
		resp.RecordIDs = append(resp.RecordIDs, saved.ID)
		resp.RecordsProcessed++

		if s.payrollSync != nil {
			if err := s.payrollSync.SyncFromAttendance(ctx, saved); err != nil {
				slog.Error("Failed to derive payroll from attendance", "employee_id", employeeID, "error", err)
			}
		}
	}

	slog.Info("Processed attendance upload",
		"report_period_from", period.From,
		"report_period_to", period.To,
		"records_processed", resp.RecordsProcessed,
		"employees_created", len(resp.EmployeesCreated),
		"errors", len(resp.Errors),
	)
	return resp, nil
}

func (s *AttendanceServiceImpl) ImportFile(ctx context.Context, r io.Reader, req attendance.ImportFileRequest) (attendance.UploadResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.UploadResponse{}, err
	}

	rows, err := spreadsheet.ReadRows(r, req.FileName)
	if err != nil {
		switch {
		case errors.Is(err, spreadsheet.ErrUnsupportedFormat):
			return attendance.UploadResponse{}, fmt.Errorf("%w: %s", attendance.ErrUnsupportedFileFormat, req.FileName)
		case errors.Is(err, spreadsheet.ErrEmptyWorksheet), errors.Is(err, spreadsheet.ErrNoWorksheet):
			return attendance.UploadResponse{}, attendance.ErrEmptySheet
		}
		return attendance.UploadResponse{}, fmt.Errorf("failed to read attendance file: %w", err)
	}

	upload, err := BuildUploadRequest(rows, req.PeriodFrom, req.PeriodTo)
	if err != nil {
		return attendance.UploadResponse{}, err
	}
	upload.SourceFile = req.FileName

	return s.ProcessUpload(ctx, upload)
}

// ========== QUERIES ==========

func (s *AttendanceServiceImpl) GetEmployeeAttendance(ctx context.Context, employeeID string, period *attendance.Period) ([]attendance.RecordResponse, error) {
	records, err := s.attendanceRepo.ListByEmployee(ctx, employee.NormalizeID(employeeID), period)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee attendance: %w", err)
	}
	return toRecordResponses(records), nil
}

func (s *AttendanceServiceImpl) GetAllAttendance(ctx context.Context, period *attendance.Period) ([]attendance.RecordResponse, error) {
	records, err := s.attendanceRepo.ListByPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return toRecordResponses(records), nil
}

func (s *AttendanceServiceImpl) GetByDateRange(ctx context.Context, startDate, endDate string) ([]attendance.RecordResponse, error) {
	var errs validator.ValidationErrors
	start, okStart := validator.ParsePeriodDate(startDate)
	if !okStart {
		errs.Add("startDate", "startDate must be YYYY-MM-DD or DD-MM-YYYY")
	}
	end, okEnd := validator.ParsePeriodDate(endDate)
	if !okEnd {
		errs.Add("endDate", "endDate must be YYYY-MM-DD or DD-MM-YYYY")
	}
	if okStart && okEnd && end.Before(start) {
		errs.Add("endDate", "endDate must not be before startDate")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	records, err := s.attendanceRepo.ListOverlapping(ctx, isoDate(start), isoDate(end))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by date range: %w", err)
	}
	return toRecordResponses(records), nil
}

func (s *AttendanceServiceImpl) GetAllForDate(ctx context.Context, date string) ([]attendance.DailyAttendanceResponse, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}

	records, err := s.attendanceRepo.ListContainingDate(ctx, isoDate(day))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for date: %w", err)
	}
	return dailyResponses(records, day), nil
}

func (s *AttendanceServiceImpl) GetEmployeeDaily(ctx context.Context, employeeID, date string) ([]attendance.DailyAttendanceResponse, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}

	records, err := s.attendanceRepo.ListByEmployee(ctx, employee.NormalizeID(employeeID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee attendance: %w", err)
	}

	result := dailyResponses(records, day)
	if len(result) == 0 {
		return nil, attendance.ErrDailyEntryNotFound
	}
	return result, nil
}

func (s *AttendanceServiceImpl) GetSummary(ctx context.Context, employeeID string, period *attendance.Period) ([]attendance.SummaryResponse, error) {
	var (
		records []attendance.AttendanceRecord
		err     error
	)
	if strings.TrimSpace(employeeID) != "" {
		records, err = s.attendanceRepo.ListByEmployee(ctx, employee.NormalizeID(employeeID), period)
	} else {
		records, err = s.attendanceRepo.ListByPeriod(ctx, period)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance summaries: %w", err)
	}

	result := make([]attendance.SummaryResponse, 0, len(records))
	for _, r := range records {
		result = append(result, attendance.SummaryResponse{
			EmployeeID:   r.EmployeeID,
			EmployeeName: r.EmployeeName,
			Department:   r.Department,
			Designation:  r.Designation,
			ReportPeriod: fmt.Sprintf("%s to %s", r.ReportPeriodFrom, r.ReportPeriodTo),
			Summary:      r.MonthlySummary,
		})
	}
	return result, nil
}

func (s *AttendanceServiceImpl) Delete(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return attendance.ErrRecordNotFound
	}
	return s.attendanceRepo.Delete(ctx, id)
}

func (s *AttendanceServiceImpl) Stats(ctx context.Context) (attendance.Stats, error) {
	stats, err := s.attendanceRepo.Stats(ctx)
	if err != nil {
		return attendance.Stats{}, fmt.Errorf("failed to get attendance stats: %w", err)
	}
	return stats, nil
}

// ========== HELPERS ==========

func toRecordResponses(records []attendance.AttendanceRecord) []attendance.RecordResponse {
	result := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, attendance.NewRecordResponse(r))
	}
	return result
}

// dailyResponses keeps, per record, the entry whose date falls on day.
func dailyResponses(records []attendance.AttendanceRecord, day time.Time) []attendance.DailyAttendanceResponse {
	result := make([]attendance.DailyAttendanceResponse, 0, len(records))
	for _, r := range records {
		for _, e := range r.DailyAttendance {
			if d, ok := validator.ParsePeriodDate(e.Date); !ok || !d.Equal(day) {
				continue
			}
			result = append(result, attendance.DailyAttendanceResponse{
				RecordID:         r.ID,
				EmployeeID:       r.EmployeeID,
				EmployeeName:     r.EmployeeName,
				Department:       r.Department,
				Designation:      r.Designation,
				ReportPeriodFrom: r.ReportPeriodFrom,
				ReportPeriodTo:   r.ReportPeriodTo,
				DailyEntry:       e,
			})
			break
		}
	}
	return result
}

func parseDay(date string) (time.Time, error) {
	day, ok := validator.ParsePeriodDate(date)
	if !ok {
		var errs validator.ValidationErrors
		errs.Add("date", "date must be YYYY-MM-DD or DD-MM-YYYY")
		return time.Time{}, errs
	}
	return day, nil
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}
