package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/database"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `
	id, employee_id, employee_name, department, designation, category, branch,
	report_period_from, report_period_to, period_start, period_end,
	daily_attendance, monthly_summary, source_file, extracted_at, created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.AttendanceRecord, error) {
	var r attendance.AttendanceRecord
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.EmployeeName, &r.Department, &r.Designation, &r.Category, &r.Branch,
		&r.ReportPeriodFrom, &r.ReportPeriodTo, &r.PeriodStart, &r.PeriodEnd,
		&r.DailyAttendance, &r.MonthlySummary, &r.SourceFile, &r.ExtractedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.AttendanceRecord{}, attendance.ErrRecordNotFound
	}
	return r, err
}

func (r *attendanceRepositoryImpl) list(ctx context.Context, where, order string, args ...any) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY ` + order

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	records := []attendance.AttendanceRecord{}
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *attendanceRepositoryImpl) FindByKey(ctx context.Context, employeeID, periodFrom, periodTo string) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records
		WHERE employee_id = $1 AND report_period_from = $2 AND report_period_to = $3`
	rec, err := scanAttendance(q.QueryRow(ctx, query, employeeID, periodFrom, periodTo))
	if err != nil && !errors.Is(err, attendance.ErrRecordNotFound) {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to find attendance record: %w", err)
	}
	return rec, err
}

// Upsert keeps the row id and created_at of an existing natural key.
func (r *attendanceRepositoryImpl) Upsert(ctx context.Context, rec attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)
	if rec.DailyAttendance == nil {
		rec.DailyAttendance = []attendance.DailyEntry{}
	}
	if rec.ExtractedAt.IsZero() {
		rec.ExtractedAt = time.Now()
	}

	query := `
		INSERT INTO attendance_records (
			id, employee_id, employee_name, department, designation, category, branch,
			report_period_from, report_period_to, period_start, period_end,
			daily_attendance, monthly_summary, source_file, extracted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (employee_id, report_period_from, report_period_to) DO UPDATE SET
			employee_name = EXCLUDED.employee_name,
			department = EXCLUDED.department,
			designation = EXCLUDED.designation,
			category = EXCLUDED.category,
			branch = EXCLUDED.branch,
			period_start = EXCLUDED.period_start,
			period_end = EXCLUDED.period_end,
			daily_attendance = EXCLUDED.daily_attendance,
			monthly_summary = EXCLUDED.monthly_summary,
			source_file = EXCLUDED.source_file,
			extracted_at = EXCLUDED.extracted_at,
			updated_at = NOW()
		RETURNING ` + attendanceColumns

	saved, err := scanAttendance(q.QueryRow(ctx, query,
		uuid.Must(uuid.NewV7()).String(), rec.EmployeeID, rec.EmployeeName, rec.Department, rec.Designation, rec.Category, rec.Branch,
		rec.ReportPeriodFrom, rec.ReportPeriodTo, rec.PeriodStart, rec.PeriodEnd,
		rec.DailyAttendance, rec.MonthlySummary, rec.SourceFile, rec.ExtractedAt,
	))
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to upsert attendance for %s: %w", rec.EmployeeID, err)
	}
	return saved, nil
}

func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	if uuid.Validate(id) != nil {
		return attendance.AttendanceRecord{}, attendance.ErrRecordNotFound
	}
	q := GetQuerier(ctx, r.db)
	rec, err := scanAttendance(q.QueryRow(ctx, `SELECT `+attendanceColumns+` FROM attendance_records WHERE id = $1`, id))
	if err != nil && !errors.Is(err, attendance.ErrRecordNotFound) {
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return rec, err
}

func (r *attendanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, period *attendance.Period) ([]attendance.AttendanceRecord, error) {
	if period == nil {
		return r.list(ctx, `employee_id = $1`, `period_start DESC NULLS LAST`, employeeID)
	}
	return r.list(ctx, `employee_id = $1 AND report_period_from = $2 AND report_period_to = $3`,
		`period_start DESC NULLS LAST`, employeeID, period.From, period.To)
}

func (r *attendanceRepositoryImpl) ListByPeriod(ctx context.Context, period *attendance.Period) ([]attendance.AttendanceRecord, error) {
	if period == nil {
		return r.list(ctx, "", `employee_id, period_start DESC NULLS LAST`)
	}
	return r.list(ctx, `report_period_from = $1 AND report_period_to = $2`,
		`employee_id, period_start DESC NULLS LAST`, period.From, period.To)
}

// ListOverlapping returns records whose start or end date falls within the range.
func (r *attendanceRepositoryImpl) ListOverlapping(ctx context.Context, startDate, endDate string) ([]attendance.AttendanceRecord, error) {
	start, ok := validator.ParsePeriodDate(startDate)
	if !ok {
		return nil, fmt.Errorf("invalid start date %q", startDate)
	}
	end, ok := validator.ParsePeriodDate(endDate)
	if !ok {
		return nil, fmt.Errorf("invalid end date %q", endDate)
	}
	return r.list(ctx, `(period_start BETWEEN $1::date AND $2::date) OR (period_end BETWEEN $1::date AND $2::date)`,
		`employee_id, period_start DESC`, start.Format(time.DateOnly), end.Format(time.DateOnly))
}

func (r *attendanceRepositoryImpl) ListContainingDate(ctx context.Context, date string) ([]attendance.AttendanceRecord, error) {
	day, ok := validator.ParsePeriodDate(date)
	if !ok {
		return nil, fmt.Errorf("invalid date %q", date)
	}
	return r.list(ctx, `period_start <= $1::date AND period_end >= $1::date`, `employee_id, period_start DESC`, day.Format(time.DateOnly))
}

func (r *attendanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return attendance.ErrRecordNotFound
	}
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceRepositoryImpl) Stats(ctx context.Context) (attendance.Stats, error) {
	q := GetQuerier(ctx, r.db)

	var stats attendance.Stats
	err := q.QueryRow(ctx, `SELECT COUNT(*), COUNT(DISTINCT employee_id) FROM attendance_records`).
		Scan(&stats.TotalRecords, &stats.UniqueEmployees)
	if err != nil {
		return attendance.Stats{}, fmt.Errorf("failed to count attendance records: %w", err)
	}
	if stats.TotalRecords == 0 {
		return stats, nil
	}

	var (
		extracted time.Time
		period    attendance.Period
	)
	err = q.QueryRow(ctx, `
		SELECT extracted_at, report_period_from, report_period_to
		FROM attendance_records
		ORDER BY extracted_at DESC
		LIMIT 1
	`).Scan(&extracted, &period.From, &period.To)
	if err != nil {
		return attendance.Stats{}, fmt.Errorf("failed to get latest attendance extraction: %w", err)
	}
	stats.LatestExtraction = &extracted
	stats.LatestPeriod = &period
	return stats, nil
}
