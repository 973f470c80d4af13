package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/employee"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
)

// Attempts per compare-and-swap save before giving up on a busy history.
const maxSaveAttempts = 3

type PayrollServiceImpl struct {
	payrollRepo     payroll.PayrollRepository
	attendanceRepo  attendance.AttendanceRepository
	employeeRepo    employee.EmployeeRepository
	employeeService employee.EmployeeService
}

// Service is the concrete payroll service. It also derives payruns for the
// attendance pipeline.
type Service interface {
	payroll.PayrollService
	attendance.PayrollSync
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	employeeService employee.EmployeeService,
) Service {
	return &PayrollServiceImpl{
		payrollRepo:     payrollRepo,
		attendanceRepo:  attendanceRepo,
		employeeRepo:    employeeRepo,
		employeeService: employeeService,
	}
}

// ========== ATTENDANCE DERIVATION ==========

func (s *PayrollServiceImpl) ComputePayrollForPeriod(ctx context.Context, req payroll.ProcessFromAttendanceRequest) (payroll.ProcessFromAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.ProcessFromAttendanceResponse{}, err
	}

	records, err := s.attendanceRepo.ListByPeriod(ctx, &attendance.Period{
		From: strings.TrimSpace(req.PeriodFrom),
		To:   strings.TrimSpace(req.PeriodTo),
	})
	if err != nil {
		return payroll.ProcessFromAttendanceResponse{}, fmt.Errorf("failed to list attendance for period: %w", err)
	}

	resp := payroll.ProcessFromAttendanceResponse{
		Payrolls: []payroll.HistoryResponse{},
		Errors:   []payroll.ItemError{},
	}
	for _, rec := range records {
		h, err := s.syncRecord(ctx, rec)
		if err != nil {
			slog.Error("Failed to compute payroll", "employee_id", rec.EmployeeID, "error", err)
			resp.Errors = append(resp.Errors, payroll.ItemError{
				EmployeeID:   rec.EmployeeID,
				EmployeeName: rec.EmployeeName,
				Error:        err.Error(),
			})
			resp.ErrorCount++
			continue
		}
		resp.Payrolls = append(resp.Payrolls, payroll.NewHistoryResponse(h))
		resp.ProcessedCount++
	}

	slog.Info("Computed payroll for period",
		"period_from", req.PeriodFrom,
		"period_to", req.PeriodTo,
		"processed", resp.ProcessedCount,
		"errors", resp.ErrorCount,
	)
	return resp, nil
}

func (s *PayrollServiceImpl) SyncFromAttendance(ctx context.Context, rec attendance.AttendanceRecord) error {
	_, err := s.syncRecord(ctx, rec)
	return err
}

func (s *PayrollServiceImpl) syncRecord(ctx context.Context, rec attendance.AttendanceRecord) (payroll.PayrollHistory, error) {
	master, _, err := s.employeeService.EnsureExists(ctx, rec.EmployeeID, employee.PlaceholderHint{
		EmployeeName: rec.EmployeeName,
		Department:   rec.Department,
		Designation:  rec.Designation,
	})
	if err != nil {
		return payroll.PayrollHistory{}, err
	}

	payrun, err := Aggregate(rec, master.FinancialProfile())
	if err != nil {
		return payroll.PayrollHistory{}, err
	}

	h, _, err := s.upsert(ctx, master.EmployeeID, payrun.SalaryMonth, payrun.SalaryYear, payroll.InputFromPayrun(payrun))
	return h, err
}

// ========== UPSERT ENGINE ==========

func (s *PayrollServiceImpl) UpsertPayrun(ctx context.Context, employeeID string, month, year int, input payroll.PayrunInput) (payroll.HistoryResponse, bool, error) {
	var errs validator.ValidationErrors
	if !validator.IsValidMonth(month) {
		errs.Add("salaryMonth", "salaryMonth must be between 1 and 12")
	}
	if !validator.IsValidYear(year) {
		errs.Add("salaryYear", "salaryYear must be a four-digit year")
	}
	if err := errs.Err(); err != nil {
		return payroll.HistoryResponse{}, false, err
	}

	h, created, err := s.upsert(ctx, employee.NormalizeID(employeeID), month, year, input)
	if err != nil {
		return payroll.HistoryResponse{}, false, err
	}
	return payroll.NewHistoryResponse(h), created, nil
}

// upsert merges input into the (month, year) payrun, creating the history or
// the payrun when missing. The period always comes from month and year.
func (s *PayrollServiceImpl) upsert(ctx context.Context, employeeID string, month, year int, input payroll.PayrunInput) (payroll.PayrollHistory, bool, error) {
	var created bool
	h, err := mutateHistory(ctx, s.payrollRepo, employeeID, true, func(h *payroll.PayrollHistory) error {
		p, _, found := h.Find(month, year)
		input.Apply(&p)
		p.SalaryMonth, p.SalaryYear = month, year
		h.Upsert(p)
		created = !found
		return nil
	})
	return h, created, err
}

// mutateHistory runs a read-modify-write cycle on one employee's history,
// re-reading and reapplying mutate when a concurrent save wins.
func mutateHistory(ctx context.Context, repo payroll.PayrollRepository, employeeID string, createIfMissing bool, mutate func(*payroll.PayrollHistory) error) (payroll.PayrollHistory, error) {
	for attempt := 1; ; attempt++ {
		h, err := repo.GetByEmployeeID(ctx, employeeID)
		switch {
		case errors.Is(err, payroll.ErrPayrollNotFound) && createIfMissing:
			h = payroll.PayrollHistory{EmployeeID: employeeID}
		case err != nil:
			return payroll.PayrollHistory{}, err
		}

		if err := mutate(&h); err != nil {
			return payroll.PayrollHistory{}, err
		}

		saved, err := repo.Save(ctx, h)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, payroll.ErrVersionConflict) || attempt == maxSaveAttempts {
			return payroll.PayrollHistory{}, fmt.Errorf("failed to save payroll for %s: %w", employeeID, err)
		}
		slog.Warn("Payroll history changed concurrently, retrying", "employee_id", employeeID, "attempt", attempt)
	}
}

// ========== MAINTENANCE ==========

func (s *PayrollServiceImpl) CreatePayrun(ctx context.Context, req payroll.CreatePayrunRequest) (payroll.HistoryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.HistoryResponse{}, err
	}

	employeeID, err := s.requireEmployee(ctx, req.EmployeeID)
	if err != nil {
		return payroll.HistoryResponse{}, err
	}

	var p payroll.Payrun
	req.PayrunData.Apply(&p)
	h, err := mutateHistory(ctx, s.payrollRepo, employeeID, true, func(h *payroll.PayrollHistory) error {
		if _, _, found := h.Find(p.SalaryMonth, p.SalaryYear); found {
			return payroll.ErrPayrunExists
		}
		h.Payruns = append(h.Payruns, p)
		return nil
	})
	if err != nil {
		return payroll.HistoryResponse{}, err
	}

	slog.Info("Created payrun", "employee_id", employeeID, "salary_month", p.SalaryMonth, "salary_year", p.SalaryYear)
	return payroll.NewHistoryResponse(h), nil
}

func (s *PayrollServiceImpl) CreateOrUpdatePayrun(ctx context.Context, employeeID string, req payroll.UpsertPayrunRequest) (payroll.HistoryResponse, bool, error) {
	if err := req.Validate(); err != nil {
		return payroll.HistoryResponse{}, false, err
	}

	id, err := s.requireEmployee(ctx, employeeID)
	if err != nil {
		return payroll.HistoryResponse{}, false, err
	}
	return s.UpsertPayrun(ctx, id, int(req.SalaryMonth), int(req.SalaryYear), req.PayrunData)
}

func (s *PayrollServiceImpl) GetAll(ctx context.Context) ([]payroll.HistoryResponse, error) {
	histories, err := s.payrollRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls: %w", err)
	}
	result := make([]payroll.HistoryResponse, 0, len(histories))
	for _, h := range histories {
		result = append(result, payroll.NewHistoryResponse(h))
	}
	return result, nil
}

func (s *PayrollServiceImpl) GetByEmployeeID(ctx context.Context, employeeID string) (payroll.HistoryResponse, error) {
	h, err := s.payrollRepo.GetByEmployeeID(ctx, employee.NormalizeID(employeeID))
	if err != nil {
		return payroll.HistoryResponse{}, err
	}
	return payroll.NewHistoryResponse(h), nil
}

func (s *PayrollServiceImpl) UpdatePayrun(ctx context.Context, employeeID string, req payroll.UpdatePayrunRequest) (payroll.HistoryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.HistoryResponse{}, err
	}

	id := employee.NormalizeID(employeeID)
	index := *req.PayrunIndex
	h, err := mutateHistory(ctx, s.payrollRepo, id, false, func(h *payroll.PayrollHistory) error {
		if index >= len(h.Payruns) {
			return payroll.ErrPayrunIndexOutOfRange
		}
		p := h.Payruns[index]
		req.PayrunData.Apply(&p)
		if _, other, found := h.Find(p.SalaryMonth, p.SalaryYear); found && other != index {
			return payroll.ErrPayrunExists
		}
		h.Payruns[index] = p
		return nil
	})
	if err != nil {
		return payroll.HistoryResponse{}, err
	}
	return payroll.NewHistoryResponse(h), nil
}

func (s *PayrollServiceImpl) BatchUpdate(ctx context.Context, req payroll.BatchUpdateRequest) (payroll.BatchUpdateResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.BatchUpdateResponse{}, err
	}

	resp := payroll.BatchUpdateResponse{Results: make([]payroll.BatchUpdateResult, 0, len(req))}
	for _, item := range req {
		h, err := s.UpdatePayrun(ctx, item.EmployeeID, item.UpdateData)
		if err != nil {
			slog.Error("Batch payrun update failed", "employee_id", item.EmployeeID, "error", err)
			resp.Results = append(resp.Results, payroll.BatchUpdateResult{EmployeeID: item.EmployeeID, Error: err.Error()})
			continue
		}
		resp.Results = append(resp.Results, payroll.BatchUpdateResult{EmployeeID: item.EmployeeID, Success: true, Data: &h})
	}
	return resp, nil
}

func (s *PayrollServiceImpl) GetByMonth(ctx context.Context, month, year int) ([]payroll.MonthPayrollResponse, error) {
	var errs validator.ValidationErrors
	if !validator.IsValidMonth(month) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if !validator.IsValidYear(year) {
		errs.Add("year", "year must be a four-digit year")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	histories, err := s.payrollRepo.ListByPeriod(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls for month: %w", err)
	}

	ids := make([]string, 0, len(histories))
	for _, h := range histories {
		ids = append(ids, h.EmployeeID)
	}
	employees, err := s.employeeRepo.GetByEmployeeIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}

	result := make([]payroll.MonthPayrollResponse, 0, len(histories))
	for _, h := range histories {
		p, _, found := h.Find(month, year)
		if !found {
			continue
		}
		row := payroll.MonthPayrollResponse{EmployeeID: h.EmployeeID, CurrentPayrun: p}
		if e, ok := employees[h.EmployeeID]; ok {
			row.Employee = &payroll.EmployeeDetails{
				EmployeeName:      e.EmployeeName,
				Department:        e.Department,
				Designation:       e.Designation,
				MailID:            e.MailID,
				BankName:          e.Bank.BankName,
				BankAccountNumber: e.Bank.BankAccountNumber,
				BankIFSCCode:      e.Bank.BankIFSCCode,
			}
		}
		result = append(result, row)
	}
	return result, nil
}

func (s *PayrollServiceImpl) Delete(ctx context.Context, employeeID string) error {
	return s.payrollRepo.Delete(ctx, employee.NormalizeID(employeeID))
}

var exportHeaders = []string{
	"Employee ID", "Employee Name", "Department", "Designation",
	"Present", "Absent", "Basic", "HRA", "EPF", "ESIC", "Incentives", "Allowances", "Advance",
	"Payment Loss Days", "Payment Loss Amount", "OT1 Hours", "OT1 Amount", "OT2 Hours", "OT2 Amount",
	"Total Late Hours", "Total OT Payment", "Salary", "Balance",
}

func (s *PayrollServiceImpl) ExportMonth(ctx context.Context, month, year int, w io.Writer) error {
	rows, err := s.GetByMonth(ctx, month, year)
	if err != nil {
		return err
	}

	table := spreadsheet.Table{
		Sheet:   fmt.Sprintf("%s %d", payroll.MonthName(month), year),
		Headers: exportHeaders,
		Rows:    make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		var name, department, designation string
		if r.Employee != nil {
			name, department, designation = r.Employee.EmployeeName, r.Employee.Department, r.Employee.Designation
		}
		p := r.CurrentPayrun
		table.Rows = append(table.Rows, []any{
			r.EmployeeID, name, department, designation,
			p.Present, p.Absent,
			p.Basic.InexactFloat64(), p.HouseRent.InexactFloat64(), p.EPF.InexactFloat64(), p.ESIC.InexactFloat64(),
			p.Incentives.InexactFloat64(), p.Allowances.InexactFloat64(), p.Advance.InexactFloat64(),
			p.PaymentLossDays, p.PaymentLossAmount.InexactFloat64(),
			p.OT1Hours.InexactFloat64(), p.OT1Amount.InexactFloat64(),
			p.OT2Hours.InexactFloat64(), p.OT2Amount.InexactFloat64(),
			p.TotalLateHours.InexactFloat64(), p.TotalOTPayment.InexactFloat64(),
			p.Salary.InexactFloat64(), p.Balance.InexactFloat64(),
		})
	}

	if err := spreadsheet.WriteXLSX(w, table); err != nil {
		return fmt.Errorf("failed to write payroll export: %w", err)
	}
	slog.Info("Exported payroll", "salary_month", month, "salary_year", year, "rows", len(table.Rows))
	return nil
}

// ========== HELPERS ==========

func (s *PayrollServiceImpl) requireEmployee(ctx context.Context, employeeID string) (string, error) {
	id := employee.NormalizeID(employeeID)
	exists, err := s.employeeRepo.ExistsByEmployeeID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to check employee: %w", err)
	}
	if !exists {
		return "", employee.ErrEmployeeNotFound
	}
	return id, nil
}
