package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type AttendanceRepository struct {
	faults
	mu   sync.RWMutex
	rows map[string]attendance.AttendanceRecord
}

var _ attendance.AttendanceRepository = (*AttendanceRepository)(nil)

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{rows: make(map[string]attendance.AttendanceRecord)}
}

func (r *AttendanceRepository) FindByKey(ctx context.Context, employeeID, periodFrom, periodTo string) (attendance.AttendanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.rows {
		if rec.EmployeeID == employeeID && rec.ReportPeriodFrom == periodFrom && rec.ReportPeriodTo == periodTo {
			return rec, nil
		}
	}
	return attendance.AttendanceRecord{}, attendance.ErrRecordNotFound
}

func (r *AttendanceRepository) Upsert(ctx context.Context, rec attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	if err := r.check("upsert", rec.EmployeeID); err != nil {
		return attendance.AttendanceRecord{}, err
	}
	existing, err := r.FindByKey(ctx, rec.EmployeeID, rec.ReportPeriodFrom, rec.ReportPeriodTo)

	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if err == nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.ID = uuid.Must(uuid.NewV7()).String()
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	r.rows[rec.ID] = rec
	return rec, nil
}

func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (attendance.AttendanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.rows[id]
	if !ok {
		return attendance.AttendanceRecord{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (r *AttendanceRepository) ListByEmployee(ctx context.Context, employeeID string, period *attendance.Period) ([]attendance.AttendanceRecord, error) {
	result := r.filter(func(rec attendance.AttendanceRecord) bool {
		return rec.EmployeeID == employeeID && matchesPeriod(rec, period)
	})
	sort.SliceStable(result, func(i, j int) bool { return startOf(result[i]).After(startOf(result[j])) })
	return result, nil
}

func (r *AttendanceRepository) ListByPeriod(ctx context.Context, period *attendance.Period) ([]attendance.AttendanceRecord, error) {
	result := r.filter(func(rec attendance.AttendanceRecord) bool { return matchesPeriod(rec, period) })
	sortByEmployee(result)
	return result, nil
}

func (r *AttendanceRepository) ListOverlapping(ctx context.Context, startDate, endDate string) ([]attendance.AttendanceRecord, error) {
	start, _ := validator.ParsePeriodDate(startDate)
	end, _ := validator.ParsePeriodDate(endDate)
	within := func(t time.Time) bool { return !t.IsZero() && !t.Before(start) && !t.After(end) }

	result := r.filter(func(rec attendance.AttendanceRecord) bool {
		return within(startOf(rec)) || within(endOf(rec))
	})
	sortByEmployee(result)
	return result, nil
}

func (r *AttendanceRepository) ListContainingDate(ctx context.Context, date string) ([]attendance.AttendanceRecord, error) {
	day, _ := validator.ParsePeriodDate(date)
	result := r.filter(func(rec attendance.AttendanceRecord) bool {
		from, to := startOf(rec), endOf(rec)
		return !from.IsZero() && !to.IsZero() && !day.Before(from) && !day.After(to)
	})
	sortByEmployee(result)
	return result, nil
}

func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return attendance.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *AttendanceRepository) Stats(ctx context.Context) (attendance.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats attendance.Stats
	employees := make(map[string]bool)
	var latest *attendance.AttendanceRecord
	for _, rec := range r.rows {
		stats.TotalRecords++
		employees[rec.EmployeeID] = true
		if latest == nil || rec.ExtractedAt.After(latest.ExtractedAt) {
			rec := rec
			latest = &rec
		}
	}
	stats.UniqueEmployees = int64(len(employees))
	if latest != nil {
		extracted := latest.ExtractedAt
		stats.LatestExtraction = &extracted
		stats.LatestPeriod = &attendance.Period{From: latest.ReportPeriodFrom, To: latest.ReportPeriodTo}
	}
	return stats, nil
}

func (r *AttendanceRepository) filter(keep func(attendance.AttendanceRecord) bool) []attendance.AttendanceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []attendance.AttendanceRecord{}
	for _, rec := range r.rows {
		if keep(rec) {
			result = append(result, rec)
		}
	}
	return result
}

func matchesPeriod(rec attendance.AttendanceRecord, period *attendance.Period) bool {
	if period == nil {
		return true
	}
	return rec.ReportPeriodFrom == period.From && rec.ReportPeriodTo == period.To
}

func sortByEmployee(records []attendance.AttendanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].EmployeeID != records[j].EmployeeID {
			return records[i].EmployeeID < records[j].EmployeeID
		}
		return startOf(records[i]).After(startOf(records[j]))
	})
}

func startOf(rec attendance.AttendanceRecord) time.Time {
	if rec.PeriodStart != nil {
		return *rec.PeriodStart
	}
	t, _ := validator.ParsePeriodDate(rec.ReportPeriodFrom)
	return t
}

func endOf(rec attendance.AttendanceRecord) time.Time {
	if rec.PeriodEnd != nil {
		return *rec.PeriodEnd
	}
	t, _ := validator.ParsePeriodDate(rec.ReportPeriodTo)
	return t
}
