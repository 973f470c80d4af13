package employee

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/employee"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		EmployeeID:   " emp001 ",
		EmployeeName: "Asha Rao",
		Department:   "Production",
		Designation:  "Operator",
		MailID:       "Asha.Rao@Example.com",
		Salary:       decimal.NewFromInt(41600),
		HRA:          decimal.NewFromInt(2000),
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewEmployeeRepository()
	svc := NewEmployeeService(repo)

	t.Run("normalizes id and mail", func(t *testing.T) {
		resp, err := svc.Create(ctx, validCreateRequest())
		require.NoError(t, err)
		assert.Equal(t, "EMP001", resp.EmployeeID)
		assert.Equal(t, "asha.rao@example.com", resp.MailID)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := svc.Create(ctx, validCreateRequest())
		assert.ErrorIs(t, err, employee.ErrEmployeeIDExists)
	})

	t.Run("validation", func(t *testing.T) {
		req := validCreateRequest()
		req.EmployeeID = ""
		req.MailID = "not-an-email"
		_, err := svc.Create(ctx, req)

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "employeeId")
		assert.Contains(t, verrs.ToMap(), "mailId")
	})
}

func TestGetByEmployeeID_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc := NewEmployeeService(memory.NewEmployeeRepository())
	_, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	resp, err := svc.GetByEmployeeID(ctx, "emp001")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", resp.EmployeeName)

	_, err = svc.GetByEmployeeID(ctx, "EMP404")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEnsureExists(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewEmployeeRepository()
	svc := NewEmployeeService(repo)

	created, isNew, err := svc.EnsureExists(ctx, "e7", employee.PlaceholderHint{EmployeeName: "Ravi", Department: "Packing"})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "E7", created.EmployeeID)
	assert.Equal(t, "e7@temp.com", created.MailID)
	assert.True(t, created.IsPlaceholder)
	assert.True(t, created.Salary.IsZero())

	again, isNew, err := svc.EnsureExists(ctx, "E7", employee.PlaceholderHint{EmployeeName: "Someone Else"})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, "Ravi", again.EmployeeName)
}

func TestEnsureExists_DefaultName(t *testing.T) {
	svc := NewEmployeeService(memory.NewEmployeeRepository())
	e, _, err := svc.EnsureExists(context.Background(), "x9", employee.PlaceholderHint{})
	require.NoError(t, err)
	assert.Equal(t, "Employee X9", e.EmployeeName)
}

func TestEnsureExists_RepositoryFailure(t *testing.T) {
	repo := memory.NewEmployeeRepository()
	repo.FailWith(func(op, key string) error {
		if op == "create" {
			return errors.New("disk full")
		}
		return nil
	})
	svc := NewEmployeeService(repo)

	_, _, err := svc.EnsureExists(context.Background(), "E1", employee.PlaceholderHint{})
	assert.ErrorContains(t, err, "disk full")
}

func TestCreateMissing(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewEmployeeRepository(employee.NewPlaceholder("E1", "One", "", ""))
	svc := NewEmployeeService(repo)

	resp, err := svc.CreateMissing(ctx, employee.CreateMissingRequest{EmployeeIDs: []string{"e1", "E2", "e2", "E3"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"E2", "E3"}, resp.Created)
	assert.Equal(t, []string{"E1"}, resp.Existing)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, employee.CreateMissingSummary{TotalProcessed: 3, Created: 2, Existing: 1}, resp.Summary)

	_, err = svc.CreateMissing(ctx, employee.CreateMissingRequest{})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewEmployeeService(memory.NewEmployeeRepository(employee.NewPlaceholder("E1", "One", "", "")))

	require.NoError(t, svc.Delete(ctx, "e1"))
	assert.ErrorIs(t, svc.Delete(ctx, "e1"), employee.ErrEmployeeNotFound)
}
