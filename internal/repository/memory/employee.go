package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/employee"
)

type EmployeeRepository struct {
	faults
	mu   sync.RWMutex
	rows map[string]employee.Employee
}

var _ employee.EmployeeRepository = (*EmployeeRepository)(nil)

func NewEmployeeRepository(seed ...employee.Employee) *EmployeeRepository {
	r := &EmployeeRepository{rows: make(map[string]employee.Employee)}
	for _, e := range seed {
		e.EmployeeID = employee.NormalizeID(e.EmployeeID)
		r.rows[e.EmployeeID] = e
	}
	return r
}

func (r *EmployeeRepository) GetByEmployeeID(ctx context.Context, employeeID string) (employee.Employee, error) {
	if err := r.check("get", employeeID); err != nil {
		return employee.Employee{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rows[employeeID]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *EmployeeRepository) ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rows[employeeID]
	return ok, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	if err := r.check("create", e.EmployeeID); err != nil {
		return employee.Employee{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[e.EmployeeID]; ok {
		return employee.Employee{}, employee.ErrEmployeeIDExists
	}
	for _, other := range r.rows {
		if e.MailID != "" && strings.EqualFold(other.MailID, e.MailID) {
			return employee.Employee{}, employee.ErrMailIDExists
		}
	}
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now
	r.rows[e.EmployeeID] = e
	return e, nil
}

func (r *EmployeeRepository) CreateIfMissing(ctx context.Context, e employee.Employee) (bool, error) {
	if err := r.check("create", e.EmployeeID); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[e.EmployeeID]; ok {
		return false, nil
	}
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now
	r.rows[e.EmployeeID] = e
	return true, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	if err := r.check("update", e.EmployeeID); err != nil {
		return employee.Employee{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.rows[e.EmployeeID]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = time.Now()
	r.rows[e.EmployeeID] = e
	return e, nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, employeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[employeeID]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(r.rows, employeeID)
	return nil
}

func (r *EmployeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []employee.Employee
	for _, e := range r.rows {
		if filter.Department != "" && !strings.EqualFold(e.Department, filter.Department) {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.EmployeeName), search) &&
			!strings.Contains(strings.ToLower(e.EmployeeID), search) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].EmployeeID < matched[j].EmployeeID })

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if filter.Limit <= 0 || start < 0 {
		return matched, total, nil
	}
	if start >= len(matched) {
		return []employee.Employee{}, total, nil
	}
	end := min(start+filter.Limit, len(matched))
	return matched[start:end], total, nil
}

func (r *EmployeeRepository) GetByEmployeeIDs(ctx context.Context, employeeIDs []string) (map[string]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]employee.Employee, len(employeeIDs))
	for _, id := range employeeIDs {
		if e, ok := r.rows[id]; ok {
			result[id] = e
		}
	}
	return result, nil
}
