package employee

import "context"

type EmployeeRepository interface {
	GetByEmployeeID(ctx context.Context, employeeID string) (Employee, error)
	ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	// CreateIfMissing inserts e unless the id exists and reports whether a row was written.
	CreateIfMissing(ctx context.Context, e Employee) (bool, error)
	Update(ctx context.Context, e Employee) (Employee, error)
	Delete(ctx context.Context, employeeID string) error
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	GetByEmployeeIDs(ctx context.Context, employeeIDs []string) (map[string]Employee, error)
}
