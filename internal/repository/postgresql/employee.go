package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/employee"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	employee_id, employee_name, department, department_code, designation, qualification,
	date_of_birth, date_of_joining, blood_group, mobile_number, mail_id, address,
	bank_name, bank_branch, bank_account_number, bank_ifsc_code,
	pan_number, aadhaar_no, uan_no, esic_id, epf_id,
	salary, allowance, hra, esic, epf, status, is_placeholder, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.EmployeeID, &e.EmployeeName, &e.Department, &e.DepartmentCode, &e.Designation, &e.Qualification,
		&e.DateOfBirth, &e.DateOfJoining, &e.BloodGroup, &e.MobileNumber, &e.MailID, &e.Address,
		&e.Bank.BankName, &e.Bank.BankBranch, &e.Bank.BankAccountNumber, &e.Bank.BankIFSCCode,
		&e.PANNumber, &e.AadhaarNo, &e.UANNo, &e.ESICID, &e.EPFID,
		&e.Salary, &e.Allowance, &e.HRA, &e.ESIC, &e.EPF, &e.Status, &e.IsPlaceholder, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, err
}

func employeeArgs(e employee.Employee) []any {
	return []any{
		e.EmployeeID, e.EmployeeName, e.Department, e.DepartmentCode, e.Designation, e.Qualification,
		e.DateOfBirth, e.DateOfJoining, e.BloodGroup, e.MobileNumber, e.MailID, e.Address,
		e.Bank.BankName, e.Bank.BankBranch, e.Bank.BankAccountNumber, e.Bank.BankIFSCCode,
		e.PANNumber, e.AadhaarNo, e.UANNo, e.ESICID, e.EPFID,
		e.Salary, e.Allowance, e.HRA, e.ESIC, e.EPF, e.Status, e.IsPlaceholder,
	}
}

const employeeInsert = `
	INSERT INTO employees (
		employee_id, employee_name, department, department_code, designation, qualification,
		date_of_birth, date_of_joining, blood_group, mobile_number, mail_id, address,
		bank_name, bank_branch, bank_account_number, bank_ifsc_code,
		pan_number, aadhaar_no, uan_no, esic_id, epf_id,
		salary, allowance, hra, esic, epf, status, is_placeholder
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11, $12,
		$13, $14, $15, $16,
		$17, $18, $19, $20, $21,
		$22, $23, $24, $25, $26, $27, $28
	)`

// mapEmployeeConflict turns unique violations into the domain duplicate errors.
func mapEmployeeConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "mail_id") {
		return employee.ErrMailIDExists
	}
	return employee.ErrEmployeeIDExists
}

func (r *employeeRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE employee_id = $1`
	e, err := scanEmployee(q.QueryRow(ctx, query, employeeID))
	if err != nil && !errors.Is(err, employee.ErrEmployeeNotFound) {
		return employee.Employee{}, fmt.Errorf("failed to get employee %s: %w", employeeID, err)
	}
	return e, err
}

func (r *employeeRepositoryImpl) ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM employees WHERE employee_id = $1)`, employeeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check employee %s: %w", employeeID, err)
	}
	return exists, nil
}

func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	query := employeeInsert + ` RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query, employeeArgs(newEmployee)...))
	if err != nil {
		if mapped := mapEmployeeConflict(err); mapped != err {
			return employee.Employee{}, mapped
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

// CreateIfMissing relies on ON CONFLICT so concurrent placeholder creation
// for the same id writes a single row.
func (r *employeeRepositoryImpl) CreateIfMissing(ctx context.Context, e employee.Employee) (bool, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, employeeInsert+` ON CONFLICT (employee_id) DO NOTHING`, employeeArgs(e)...)
	if err != nil {
		if mapped := mapEmployeeConflict(err); mapped != err {
			return false, mapped
		}
		return false, fmt.Errorf("failed to create employee %s: %w", e.EmployeeID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *employeeRepositoryImpl) Update(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE employees SET
			employee_name = $2, department = $3, department_code = $4, designation = $5, qualification = $6,
			date_of_birth = $7, date_of_joining = $8, blood_group = $9, mobile_number = $10, mail_id = $11, address = $12,
			bank_name = $13, bank_branch = $14, bank_account_number = $15, bank_ifsc_code = $16,
			pan_number = $17, aadhaar_no = $18, uan_no = $19, esic_id = $20, epf_id = $21,
			salary = $22, allowance = $23, hra = $24, esic = $25, epf = $26, status = $27, is_placeholder = $28,
			updated_at = NOW()
		WHERE employee_id = $1
		RETURNING ` + employeeColumns

	updated, err := scanEmployee(q.QueryRow(ctx, query, employeeArgs(e)...))
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, err
		}
		if mapped := mapEmployeeConflict(err); mapped != err {
			return employee.Employee{}, mapped
		}
		return employee.Employee{}, fmt.Errorf("failed to update employee %s: %w", e.EmployeeID, err)
	}
	return updated, nil
}

func (r *employeeRepositoryImpl) Delete(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE employee_id = $1`, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete employee %s: %w", employeeID, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, r.db)

	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+strings.ToLower(s)+"%")
		where = append(where, fmt.Sprintf("(LOWER(employee_name) LIKE $%d OR LOWER(employee_id) LIKE $%d)", len(args), len(args)))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		where = append(where, fmt.Sprintf("LOWER(department) = LOWER($%d)", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := `SELECT ` + employeeColumns + ` FROM employees` + whereClause + ` ORDER BY employee_id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, (max(filter.Page, 1)-1)*filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func (r *employeeRepositoryImpl) GetByEmployeeIDs(ctx context.Context, employeeIDs []string) (map[string]employee.Employee, error) {
	result := make(map[string]employee.Employee, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return result, nil
	}

	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+employeeColumns+` FROM employees WHERE employee_id = ANY($1)`, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get employees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		result[e.EmployeeID] = e
	}
	return result, rows.Err()
}
