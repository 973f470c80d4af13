package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PayrollHandler interface {
	// Payruns
	CreatePayrun(w http.ResponseWriter, r *http.Request)
	ProcessFromAttendance(w http.ResponseWriter, r *http.Request)
	ListPayrolls(w http.ResponseWriter, r *http.Request)
	GetByEmployee(w http.ResponseWriter, r *http.Request)
	UpdatePayrun(w http.ResponseWriter, r *http.Request)
	CreateOrUpdatePayrun(w http.ResponseWriter, r *http.Request)
	DeleteByEmployee(w http.ResponseWriter, r *http.Request)
	BatchUpdate(w http.ResponseWriter, r *http.Request)

	// Month views
	GetByMonth(w http.ResponseWriter, r *http.Request)
	ExportMonth(w http.ResponseWriter, r *http.Request)

	// Payslips
	SendPayslip(w http.ResponseWriter, r *http.Request)
	SendBulkPayslips(w http.ResponseWriter, r *http.Request)
	EmailResults(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
	payslipService payroll.PayslipService
}

func NewPayrollHandler(payrollService payroll.PayrollService, payslipService payroll.PayslipService) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
		payslipService: payslipService,
	}
}

// ========== Payruns ==========

func (h *payrollHandlerImpl) CreatePayrun(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePayrunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreatePayrun decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.CreatePayrun(r.Context(), req)
	if err != nil {
		slog.Error("CreatePayrun service error", "error", err, "employee_id", req.EmployeeID)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payrun created successfully", result)
}

func (h *payrollHandlerImpl) ProcessFromAttendance(w http.ResponseWriter, r *http.Request) {
	var req payroll.ProcessFromAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.ComputePayrollForPeriod(r.Context(), req)
	if err != nil {
		slog.Error("ProcessFromAttendance service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Payroll processed from attendance",
		"period_from", req.PeriodFrom,
		"period_to", req.PeriodTo,
		"processed", result.ProcessedCount,
		"errors", result.ErrorCount,
	)
	response.SuccessWithMessage(w, fmt.Sprintf("Processed %d payrolls with %d errors", result.ProcessedCount, result.ErrorCount), result)
}

func (h *payrollHandlerImpl) ListPayrolls(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetAll(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetByEmployee(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetByEmployeeID(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpdatePayrun(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpdatePayrunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.UpdatePayrun(r.Context(), chi.URLParam(r, "employeeId"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payrun updated successfully", result)
}

func (h *payrollHandlerImpl) CreateOrUpdatePayrun(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpsertPayrunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, created, err := h.payrollService.CreateOrUpdatePayrun(r.Context(), chi.URLParam(r, "employeeId"), req)
	if err != nil {
		slog.Error("CreateOrUpdatePayrun service error", "error", err)
		response.HandleError(w, err)
		return
	}

	if created {
		response.Created(w, "Payrun created successfully", result)
		return
	}
	response.SuccessWithMessage(w, "Payrun updated successfully", result)
}

func (h *payrollHandlerImpl) DeleteByEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.payrollService.Delete(r.Context(), chi.URLParam(r, "employeeId")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll deleted successfully", nil)
}

func (h *payrollHandlerImpl) BatchUpdate(w http.ResponseWriter, r *http.Request) {
	var req payroll.BatchUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Request body must be an array of updates", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.BatchUpdate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ========== Month views ==========

func (h *payrollHandlerImpl) GetByMonth(w http.ResponseWriter, r *http.Request) {
	month, year, ok := monthYearParams(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.GetByMonth(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *payrollHandlerImpl) ExportMonth(w http.ResponseWriter, r *http.Request) {
	month, year, ok := monthYearParams(w, r)
	if !ok {
		return
	}

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.payrollService.ExportMonth(r.Context(), month, year, &buf); err != nil {
		slog.Error("ExportMonth service error", "error", err, "month", month, "year", year)
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, fmt.Sprintf("payroll_%s_%d.xlsx", payroll.MonthName(month), year), xlsxContentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write payroll export", "error", err)
	}
}

// ========== Payslips ==========

func (h *payrollHandlerImpl) SendPayslip(w http.ResponseWriter, r *http.Request) {
	var req payroll.SendPayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	employeeID := chi.URLParam(r, "employeeId")
	result, err := h.payslipService.SendPayslip(r.Context(), employeeID, req)
	if err != nil {
		slog.Error("SendPayslip service error", "error", err, "employee_id", employeeID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslip sent successfully", result)
}

func (h *payrollHandlerImpl) SendBulkPayslips(w http.ResponseWriter, r *http.Request) {
	var req payroll.SendBulkPayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payslipService.SendBulk(r.Context(), req)
	if err != nil {
		slog.Error("SendBulkPayslips service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Bulk payslips sent", "batch_id", result.BatchID, "successful", len(result.Successful), "failed", len(result.Failed))
	response.SuccessWithMessage(w, fmt.Sprintf("Sent %d of %d payslips", len(result.Successful), result.Total), result)
}

func (h *payrollHandlerImpl) EmailResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := payroll.EmailLogFilter{
		EmployeeID:  q.Get("employeeId"),
		Status:      q.Get("status"),
		SalaryMonth: queryInt(r, "salaryMonth", 0),
		SalaryYear:  queryInt(r, "salaryYear", 0),
	}

	result, err := h.payslipService.ListEmailResults(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// monthYearParams reads {month} and {year}, writing a validation error when
// either is out of range.
func monthYearParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	var errs validator.ValidationErrors
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || !validator.IsValidMonth(month) {
		errs.Add("month", "month must be between 1 and 12")
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || !validator.IsValidYear(year) {
		errs.Add("year", "year must be a four-digit year")
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return 0, 0, false
	}
	return month, year, true
}
