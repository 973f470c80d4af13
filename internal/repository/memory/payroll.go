package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
	"github.com/google/uuid"
)

type PayrollRepository struct {
	faults
	mu   sync.RWMutex
	rows map[string]payroll.PayrollHistory
}

var _ payroll.PayrollRepository = (*PayrollRepository)(nil)

func NewPayrollRepository() *PayrollRepository {
	return &PayrollRepository{rows: make(map[string]payroll.PayrollHistory)}
}

func (r *PayrollRepository) GetByEmployeeID(ctx context.Context, employeeID string) (payroll.PayrollHistory, error) {
	if err := r.check("get", employeeID); err != nil {
		return payroll.PayrollHistory{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.rows[employeeID]
	if !ok {
		return payroll.PayrollHistory{}, payroll.ErrPayrollNotFound
	}
	return cloneHistory(h), nil
}

func (r *PayrollRepository) Save(ctx context.Context, h payroll.PayrollHistory) (payroll.PayrollHistory, error) {
	if err := r.check("save", h.EmployeeID); err != nil {
		return payroll.PayrollHistory{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	stored, exists := r.rows[h.EmployeeID]
	switch {
	case h.Version == 0 && exists:
		return payroll.PayrollHistory{}, payroll.ErrVersionConflict
	case h.Version == 0:
		h.CreatedAt = now
	case !exists || stored.Version != h.Version:
		return payroll.PayrollHistory{}, payroll.ErrVersionConflict
	default:
		h.CreatedAt = stored.CreatedAt
	}
	h.Version++
	h.UpdatedAt = now
	r.rows[h.EmployeeID] = cloneHistory(h)
	return h, nil
}

func (r *PayrollRepository) List(ctx context.Context) ([]payroll.PayrollHistory, error) {
	return r.collect(func(payroll.PayrollHistory) bool { return true }), nil
}

func (r *PayrollRepository) ListByPeriod(ctx context.Context, month, year int) ([]payroll.PayrollHistory, error) {
	return r.collect(func(h payroll.PayrollHistory) bool {
		_, _, ok := h.Find(month, year)
		return ok
	}), nil
}

func (r *PayrollRepository) Delete(ctx context.Context, employeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[employeeID]; !ok {
		return payroll.ErrPayrollNotFound
	}
	delete(r.rows, employeeID)
	return nil
}

func (r *PayrollRepository) collect(keep func(payroll.PayrollHistory) bool) []payroll.PayrollHistory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []payroll.PayrollHistory{}
	for _, h := range r.rows {
		if keep(h) {
			result = append(result, cloneHistory(h))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result
}

func cloneHistory(h payroll.PayrollHistory) payroll.PayrollHistory {
	h.Payruns = append([]payroll.Payrun(nil), h.Payruns...)
	return h
}

type PayslipLogRepository struct {
	faults
	mu   sync.RWMutex
	rows []payroll.PayslipEmailLog
}

var _ payroll.PayslipLogRepository = (*PayslipLogRepository)(nil)

func NewPayslipLogRepository() *PayslipLogRepository {
	return &PayslipLogRepository{}
}

func (r *PayslipLogRepository) Create(ctx context.Context, log payroll.PayslipEmailLog) (payroll.PayslipEmailLog, error) {
	if err := r.check("create", log.EmployeeID); err != nil {
		return payroll.PayslipEmailLog{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	log.ID = uuid.Must(uuid.NewV7()).String()
	log.CreatedAt, log.UpdatedAt = now, now
	r.rows = append(r.rows, log)
	return log, nil
}

func (r *PayslipLogRepository) Update(ctx context.Context, log payroll.PayslipEmailLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == log.ID {
			log.CreatedAt = r.rows[i].CreatedAt
			log.UpdatedAt = time.Now()
			r.rows[i] = log
			return nil
		}
	}
	return payroll.ErrPayslipLogNotFound
}

func (r *PayslipLogRepository) List(ctx context.Context, filter payroll.EmailLogFilter) ([]payroll.PayslipEmailLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []payroll.PayslipEmailLog{}
	for i := len(r.rows) - 1; i >= 0; i-- {
		l := r.rows[i]
		if filter.EmployeeID != "" && l.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.SalaryMonth != 0 && l.SalaryMonth != filter.SalaryMonth {
			continue
		}
		if filter.SalaryYear != 0 && l.SalaryYear != filter.SalaryYear {
			continue
		}
		result = append(result, l)
	}
	return result, nil
}

func (r *PayslipLogRepository) ListRetryable(ctx context.Context, now time.Time, limit int) ([]payroll.PayslipEmailLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []payroll.PayslipEmailLog{}
	for _, l := range r.rows {
		if len(result) == limit {
			break
		}
		if l.Retryable(now) {
			result = append(result, l)
		}
	}
	return result, nil
}
