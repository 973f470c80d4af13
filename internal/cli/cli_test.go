package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/app"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/hr-backoffice-go/internal/service/attendance"
	employeeService "github.com/cmlabs-hris/hr-backoffice-go/internal/service/employee"
	payrollService "github.com/cmlabs-hris/hr-backoffice-go/internal/service/payroll"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

// memoryOpener serves every command from one in-memory store.
func memoryOpener(t *testing.T) (opener, *int) {
	t.Helper()
	employees := memory.NewEmployeeRepository()
	attendanceRepo := memory.NewAttendanceRepository()
	payrolls := memory.NewPayrollRepository()

	empSvc := employeeService.NewEmployeeService(employees)
	paySvc := payrollService.NewPayrollService(payrolls, attendanceRepo, employees, empSvc)
	s := &session{services: &app.Services{
		Employee:   empSvc,
		Attendance: attendanceService.NewAttendanceService(attendanceRepo, empSvc, paySvc),
		Payroll:    paySvc,
	}}

	opened := 0
	return func(context.Context) (*session, error) {
		opened++
		return s, nil
	}, &opened
}

func run(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(open, &out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSheet(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "march.csv")
	csv := "Employee Number,Employee Name,Department,Date,Status,Time In,Time Out\n" +
		"E1,Asha Rao,Production,2025-03-03,P,09:00,18:30\n" +
		"E1,Asha Rao,Production,2025-03-04,A,,\n" +
		"E2,Ravi Kumar,Stores,2025-03-03,P,09:00,17:30\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))
	return path
}

func TestImportProcessListExport(t *testing.T) {
	open, _ := memoryOpener(t)

	out, err := run(t, open, "attendance", "import", writeSheet(t), "--from", "2025-03-01", "--to", "2025-03-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 records for 2025-03-01 to 2025-03-31")
	assert.Contains(t, out, "created placeholder employee E1 (Asha Rao)")

	out, err = run(t, open, "payroll", "process", "--from", "2025-03-01", "--to", "2025-03-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 2 payrolls, 0 errors")

	out, err = run(t, open, "payroll", "list", "--month", "3", "--year", "2025")
	require.NoError(t, err)
	assert.Contains(t, out, "E1")
	assert.Contains(t, out, "Ravi Kumar")

	target := filepath.Join(t.TempDir(), "march.xlsx")
	out, err = run(t, open, "payroll", "export", "--month", "3", "--year", "2025", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+target)

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	rows, err := spreadsheet.ReadRows(f, "march.xlsx")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestValidationRunsBeforeConnecting(t *testing.T) {
	open, opened := memoryOpener(t)

	_, err := run(t, open, "payroll", "list", "--month", "13", "--year", "2025")
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "month")

	_, err = run(t, open, "payroll", "process", "--from", "2025/03/01", "--to", "2025-03-31")
	require.ErrorAs(t, err, &verrs)

	_, err = run(t, open, "attendance", "import", "missing.csv", "--from", "2025-03-01", "--to", "2025-03-31")
	assert.Error(t, err)

	assert.Zero(t, *opened)
}

func TestRequiredFlags(t *testing.T) {
	open, _ := memoryOpener(t)
	_, err := run(t, open, "payroll", "export", "--month", "3")
	assert.ErrorContains(t, err, "year")
}

func TestPrintPayrollTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printPayrollTable(&buf, nil))
	assert.Equal(t, "No payruns found\n", buf.String())
}
