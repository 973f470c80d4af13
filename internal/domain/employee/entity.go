package employee

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BankDetails struct {
	BankName          string `json:"bankName"`
	BankBranch        string `json:"bankBranch"`
	BankAccountNumber string `json:"bankAccountNumber"`
	BankIFSCCode      string `json:"bankIFSCCode"`
}

// Employee is the master record keyed by EmployeeID, always upper case.
type Employee struct {
	EmployeeID     string
	EmployeeName   string
	Department     string
	DepartmentCode string
	Designation    string
	Qualification  string
	DateOfBirth    *time.Time
	DateOfJoining  *time.Time
	BloodGroup     string
	MobileNumber   string
	MailID         string
	Address        string
	Bank           BankDetails
	PANNumber      string
	AadhaarNo      string
	UANNo          string
	ESICID         string
	EPFID          string
	Salary         decimal.Decimal
	Allowance      decimal.Decimal
	HRA            decimal.Decimal
	ESIC           decimal.Decimal
	EPF            decimal.Decimal
	Status         bool
	IsPlaceholder  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FinancialProfile is the read-only slice of an employee that payroll consumes.
type FinancialProfile struct {
	Salary    decimal.Decimal
	HRA       decimal.Decimal
	EPF       decimal.Decimal
	ESIC      decimal.Decimal
	Allowance decimal.Decimal
}

func (e Employee) FinancialProfile() FinancialProfile {
	return FinancialProfile{
		Salary:    e.Salary,
		HRA:       e.HRA,
		EPF:       e.EPF,
		ESIC:      e.ESIC,
		Allowance: e.Allowance,
	}
}

// NormalizeID trims and upper-cases an employee id.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// PlaceholderEmail is the synthetic mail id given to auto-created employees.
func PlaceholderEmail(employeeID string) string {
	return strings.ToLower(NormalizeID(employeeID)) + "@temp.com"
}

// NewPlaceholder builds a minimal active employee with zeroed financials, used
// when attendance references an id that has no master record yet.
func NewPlaceholder(employeeID, name, department, designation string) Employee {
	id := NormalizeID(employeeID)
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Employee %s", id)
	}
	return Employee{
		EmployeeID:    id,
		EmployeeName:  strings.TrimSpace(name),
		Department:    department,
		Designation:   designation,
		MailID:        PlaceholderEmail(id),
		Salary:        decimal.Zero,
		Allowance:     decimal.Zero,
		HRA:           decimal.Zero,
		ESIC:          decimal.Zero,
		EPF:           decimal.Zero,
		Status:        true,
		IsPlaceholder: true,
	}
}
