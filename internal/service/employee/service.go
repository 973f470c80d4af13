package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/employee"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
	}
}

// ========== CRUD ==========

func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	newEmployee := req.ToEntity()

	exists, err := s.employeeRepo.ExistsByEmployeeID(ctx, newEmployee.EmployeeID)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to check employee id: %w", err)
	}
	if exists {
		return employee.EmployeeResponse{}, employee.ErrEmployeeIDExists
	}

	created, err := s.employeeRepo.Create(ctx, newEmployee)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to create employee: %w", err)
	}

	slog.Info("Created employee", "employee_id", created.EmployeeID)
	return employee.NewEmployeeResponse(created), nil
}

func (s *EmployeeServiceImpl) GetByEmployeeID(ctx context.Context, employeeID string) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByEmployeeID(ctx, employee.NormalizeID(employeeID))
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

func (s *EmployeeServiceImpl) List(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	filter.Normalize()

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	resp := employee.ListEmployeeResponse{
		Employees:  make([]employee.EmployeeResponse, 0, len(employees)),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	for _, e := range employees {
		resp.Employees = append(resp.Employees, employee.NewEmployeeResponse(e))
	}
	return resp, nil
}

func (s *EmployeeServiceImpl) Update(ctx context.Context, employeeID string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	current, err := s.employeeRepo.GetByEmployeeID(ctx, employee.NormalizeID(employeeID))
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	req.Apply(&current)

	updated, err := s.employeeRepo.Update(ctx, current)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update employee: %w", err)
	}
	return employee.NewEmployeeResponse(updated), nil
}

func (s *EmployeeServiceImpl) Delete(ctx context.Context, employeeID string) error {
	return s.employeeRepo.Delete(ctx, employee.NormalizeID(employeeID))
}

// ========== PLACEHOLDERS ==========

func (s *EmployeeServiceImpl) EnsureExists(ctx context.Context, employeeID string, hint employee.PlaceholderHint) (employee.Employee, bool, error) {
	id := employee.NormalizeID(employeeID)

	existing, err := s.employeeRepo.GetByEmployeeID(ctx, id)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		return employee.Employee{}, false, fmt.Errorf("failed to get employee %s: %w", id, err)
	}

	placeholder := employee.NewPlaceholder(id, hint.EmployeeName, hint.Department, hint.Designation)
	created, err := s.employeeRepo.CreateIfMissing(ctx, placeholder)
	if err != nil {
		return employee.Employee{}, false, fmt.Errorf("failed to create placeholder employee %s: %w", id, err)
	}
	if !created {
		// Lost a race with a concurrent insert.
		existing, err = s.employeeRepo.GetByEmployeeID(ctx, id)
		if err != nil {
			return employee.Employee{}, false, fmt.Errorf("failed to get employee %s: %w", id, err)
		}
		return existing, false, nil
	}

	slog.Info("Created placeholder employee", "employee_id", id)
	return placeholder, true, nil
}

func (s *EmployeeServiceImpl) CreateMissing(ctx context.Context, req employee.CreateMissingRequest) (employee.CreateMissingResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.CreateMissingResponse{}, err
	}

	resp := employee.CreateMissingResponse{
		Created:  []string{},
		Existing: []string{},
		Errors:   []employee.ItemError{},
	}

	seen := make(map[string]bool, len(req.EmployeeIDs))
	for _, raw := range req.EmployeeIDs {
		id := employee.NormalizeID(raw)
		if seen[id] {
			continue
		}
		seen[id] = true

		created, err := s.employeeRepo.CreateIfMissing(ctx, employee.NewPlaceholder(id, "", "", ""))
		switch {
		case err != nil:
			slog.Error("Failed to create missing employee", "employee_id", id, "error", err)
			resp.Errors = append(resp.Errors, employee.ItemError{EmployeeID: id, Error: err.Error()})
		case created:
			resp.Created = append(resp.Created, id)
		default:
			resp.Existing = append(resp.Existing, id)
		}
	}

	resp.Summary = employee.CreateMissingSummary{
		TotalProcessed: len(seen),
		Created:        len(resp.Created),
		Existing:       len(resp.Existing),
		Errors:         len(resp.Errors),
	}
	return resp, nil
}
