package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/config"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/employee"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/email"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Logs picked up per retry run.
const retryBatchSize = 50

var daysPerMonth = decimal.NewFromInt(30)

type PayslipServiceImpl struct {
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	logRepo      payroll.PayslipLogRepository
	mailer       email.EmailService
	cfg          config.PayrollConfig
	now          func() time.Time
}

func NewPayslipService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	logRepo payroll.PayslipLogRepository,
	mailer email.EmailService,
	cfg config.PayrollConfig,
) payroll.PayslipService {
	return &PayslipServiceImpl{
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		logRepo:      logRepo,
		mailer:       mailer,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *PayslipServiceImpl) SendPayslip(ctx context.Context, employeeID string, req payroll.SendPayslipRequest) (payroll.SendPayslipResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SendPayslipResponse{}, err
	}
	return s.send(ctx, employee.NormalizeID(employeeID), int(req.SalaryMonth), int(req.SalaryYear), nil)
}

func (s *PayslipServiceImpl) SendBulk(ctx context.Context, req payroll.SendBulkPayslipRequest) (payroll.SendBulkPayslipResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SendBulkPayslipResponse{}, err
	}

	batchID := uuid.Must(uuid.NewV7()).String()
	resp := payroll.SendBulkPayslipResponse{
		BatchID:    batchID,
		Successful: []payroll.SendPayslipResponse{},
		Failed:     []payroll.ItemError{},
	}

	seen := make(map[string]bool, len(req.EmployeeIDs))
	for _, raw := range req.EmployeeIDs {
		id := employee.NormalizeID(raw)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		sent, err := s.send(ctx, id, int(req.SalaryMonth), int(req.SalaryYear), &batchID)
		if err != nil {
			resp.Failed = append(resp.Failed, payroll.ItemError{EmployeeID: id, EmployeeName: sent.EmployeeName, Error: err.Error()})
			continue
		}
		resp.Successful = append(resp.Successful, sent)
	}
	resp.Total = len(seen)

	slog.Info("Bulk payslip run finished",
		"batch_id", batchID,
		"salary_month", int(req.SalaryMonth),
		"salary_year", int(req.SalaryYear),
		"successful", len(resp.Successful),
		"failed", len(resp.Failed),
	)
	return resp, nil
}

func (s *PayslipServiceImpl) ListEmailResults(ctx context.Context, filter payroll.EmailLogFilter) ([]payroll.PayslipEmailLog, error) {
	filter.EmployeeID = employee.NormalizeID(filter.EmployeeID)
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	logs, err := s.logRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip email logs: %w", err)
	}
	return logs, nil
}

func (s *PayslipServiceImpl) RetryFailed(ctx context.Context) (int, error) {
	logs, err := s.logRepo.ListRetryable(ctx, s.now(), retryBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list retryable payslip logs: %w", err)
	}

	succeeded := 0
	for _, log := range logs {
		if ctx.Err() != nil {
			return succeeded, ctx.Err()
		}
		log.RetryCount++

		emp, payrun, err := s.lookup(ctx, log.EmployeeID, log.SalaryMonth, log.SalaryYear)
		if err == nil {
			err = s.deliver(ctx, &log, emp, payrun)
		} else {
			s.markFailed(ctx, &log, err)
		}
		if err != nil {
			slog.Warn("Payslip retry failed", "log_id", log.ID, "employee_id", log.EmployeeID, "retry_count", log.RetryCount, "error", err)
			continue
		}
		succeeded++
	}

	if len(logs) > 0 {
		slog.Info("Payslip retry run finished", "attempted", len(logs), "succeeded", succeeded)
	}
	return succeeded, nil
}

// send delivers one payslip and records the attempt. Lookup failures are
// returned without a log entry since there is nothing to retry.
func (s *PayslipServiceImpl) send(ctx context.Context, employeeID string, month, year int, batchID *string) (payroll.SendPayslipResponse, error) {
	emp, payrun, err := s.lookup(ctx, employeeID, month, year)
	if err != nil {
		return payroll.SendPayslipResponse{EmployeeID: employeeID, EmployeeName: emp.EmployeeName}, err
	}

	log, err := s.logRepo.Create(ctx, payroll.PayslipEmailLog{
		BatchID:         batchID,
		EmployeeID:      emp.EmployeeID,
		EmployeeName:    emp.EmployeeName,
		EmailID:         emp.MailID,
		SalaryMonth:     month,
		SalaryYear:      year,
		Status:          payroll.EmailStatusPending,
		ResponseMessage: "Attempting to send email...",
		MaxRetries:      s.cfg.PayslipMaxRetries,
	})
	if err != nil {
		return payroll.SendPayslipResponse{EmployeeID: employeeID, EmployeeName: emp.EmployeeName}, fmt.Errorf("failed to record payslip email: %w", err)
	}

	resp := payroll.SendPayslipResponse{
		EmployeeID:   emp.EmployeeID,
		EmployeeName: emp.EmployeeName,
		Email:        emp.MailID,
		Salary:       payrun.Salary,
		LogID:        log.ID,
	}
	if err := s.deliver(ctx, &log, emp, payrun); err != nil {
		return resp, fmt.Errorf("failed to send payslip: %w", err)
	}
	return resp, nil
}

func (s *PayslipServiceImpl) lookup(ctx context.Context, employeeID string, month, year int) (employee.Employee, payroll.Payrun, error) {
	emp, err := s.employeeRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, payroll.Payrun{}, err
	}
	if strings.TrimSpace(emp.MailID) == "" {
		return emp, payroll.Payrun{}, payroll.ErrEmployeeEmailMissing
	}

	h, err := s.payrollRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return emp, payroll.Payrun{}, err
	}
	payrun, _, found := h.Find(month, year)
	if !found {
		return emp, payroll.Payrun{}, payroll.ErrPayrunNotFound
	}
	return emp, payrun, nil
}

// deliver mails the payslip and stores the outcome on log.
func (s *PayslipServiceImpl) deliver(ctx context.Context, log *payroll.PayslipEmailLog, emp employee.Employee, payrun payroll.Payrun) error {
	if err := s.mailer.SendPayslip(emp.MailID, buildPayslipData(s.cfg, emp, payrun)); err != nil {
		s.markFailed(ctx, log, err)
		return err
	}

	now := s.now()
	log.Status = payroll.EmailStatusSuccess
	log.ResponseMessage = "Payslip sent successfully to " + emp.MailID
	log.ErrorDetails = ""
	log.SentAt = &now
	log.NextRetryAt = nil
	if err := s.logRepo.Update(ctx, *log); err != nil {
		slog.Error("Failed to update payslip email log", "log_id", log.ID, "error", err)
	}

	_, err := mutateHistory(ctx, s.payrollRepo, emp.EmployeeID, false, func(h *payroll.PayrollHistory) error {
		_, i, found := h.Find(payrun.SalaryMonth, payrun.SalaryYear)
		if !found {
			return payroll.ErrPayrunNotFound
		}
		h.Payruns[i].PayslipGenerated = true
		h.Payruns[i].PayslipSent = true
		return nil
	})
	if err != nil && !errors.Is(err, payroll.ErrPayrunNotFound) {
		slog.Warn("Failed to flag payrun as sent", "employee_id", emp.EmployeeID, "error", err)
	}
	return nil
}

func (s *PayslipServiceImpl) markFailed(ctx context.Context, log *payroll.PayslipEmailLog, cause error) {
	next := s.now().Add(s.cfg.PayslipRetryDelay)
	log.Status = payroll.EmailStatusFailed
	log.ResponseMessage = "Error sending payslip email"
	log.ErrorDetails = cause.Error()
	log.NextRetryAt = &next
	if err := s.logRepo.Update(ctx, *log); err != nil {
		slog.Error("Failed to update payslip email log", "log_id", log.ID, "error", err)
	}
}

func buildPayslipData(cfg config.PayrollConfig, emp employee.Employee, p payroll.Payrun) email.PayslipData {
	money := func(d decimal.Decimal) string { return d.StringFixed(2) }
	deductions := p.EPF.Add(p.ESIC).Add(p.Advance).Add(p.PaymentLossAmount)

	var joined string
	if emp.DateOfJoining != nil {
		joined = emp.DateOfJoining.Format("02-01-2006")
	}

	return email.PayslipData{
		CompanyName:     cfg.CompanyName,
		CompanyAddress:  cfg.CompanyAddress,
		MonthName:       payroll.MonthName(p.SalaryMonth),
		Year:            p.SalaryYear,
		EmployeeID:      emp.EmployeeID,
		EmployeeName:    emp.EmployeeName,
		Designation:     emp.Designation,
		Department:      emp.Department,
		DateOfJoining:   joined,
		MobileNumber:    emp.MobileNumber,
		AadhaarNo:       emp.AadhaarNo,
		PANNumber:       emp.PANNumber,
		UANNo:           emp.UANNo,
		BankName:        emp.Bank.BankName,
		BankBranch:      emp.Bank.BankBranch,
		BankAccount:     emp.Bank.BankAccountNumber,
		BankIFSC:        emp.Bank.BankIFSCCode,
		PayableDays:     fmt.Sprint(p.Present),
		LeaveDays:       fmt.Sprint(p.Absent),
		PerDaySalary:    money(emp.Salary.Div(daysPerMonth)),
		Basic:           money(p.Basic),
		Incentives:      money(p.Incentives),
		Allowances:      money(p.Allowances),
		HouseRent:       money(p.HouseRent),
		OT1Hours:        p.OT1Hours.StringFixed(2),
		OT1Amount:       money(p.OT1Amount),
		OT2Hours:        p.OT2Hours.StringFixed(2),
		OT2Amount:       money(p.OT2Amount),
		Gross:           money(p.Salary),
		EPF:             money(p.EPF),
		ESIC:            money(p.ESIC),
		Advance:         money(p.Advance),
		PaymentLoss:     money(p.PaymentLossAmount),
		TotalDeductions: money(deductions),
		NetPay:          money(p.Salary.Sub(deductions)),
	}
}
