package employee

import "context"

type EmployeeService interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (EmployeeResponse, error)
	List(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)
	Update(ctx context.Context, employeeID string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, employeeID string) error

	// EnsureExists returns the master record for employeeID, creating a
	// placeholder from hint when none exists.
	EnsureExists(ctx context.Context, employeeID string, hint PlaceholderHint) (Employee, bool, error)
	CreateMissing(ctx context.Context, req CreateMissingRequest) (CreateMissingResponse, error)
}
