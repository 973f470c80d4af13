package payroll

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// FlexInt accepts a JSON number or a numeric string such as "05".
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*f = FlexInt(n)
	return nil
}

// PayrunInput is a partial payrun. Only set fields are applied.
type PayrunInput struct {
	SalaryMonth       *FlexInt         `json:"salaryMonth,omitempty"`
	SalaryYear        *FlexInt         `json:"salaryYear,omitempty"`
	Present           *FlexInt         `json:"present,omitempty"`
	Absent            *FlexInt         `json:"absent,omitempty"`
	Basic             *decimal.Decimal `json:"basic,omitempty"`
	HouseRent         *decimal.Decimal `json:"houseRent,omitempty"`
	EPF               *decimal.Decimal `json:"EPF,omitempty"`
	ESIC              *decimal.Decimal `json:"ESIC,omitempty"`
	Incentives        *decimal.Decimal `json:"incentives,omitempty"`
	Allowances        *decimal.Decimal `json:"allowances,omitempty"`
	Advance           *decimal.Decimal `json:"advance,omitempty"`
	PaymentLossDays   *FlexInt         `json:"paymentLossDays,omitempty"`
	PaymentLossAmount *decimal.Decimal `json:"paymentLossAmount,omitempty"`
	OT1Hours          *decimal.Decimal `json:"OT1Hours,omitempty"`
	OT1Amount         *decimal.Decimal `json:"OT1Amount,omitempty"`
	OT2Hours          *decimal.Decimal `json:"OT2Hours,omitempty"`
	OT2Amount         *decimal.Decimal `json:"OT2Amount,omitempty"`
	HoldOT            *decimal.Decimal `json:"holdOT,omitempty"`
	TotalLateHours    *decimal.Decimal `json:"totalLateHours,omitempty"`
	TotalBasicPayment *decimal.Decimal `json:"totalBasicPayment,omitempty"`
	TotalOTPayment    *decimal.Decimal `json:"totalOTPayment,omitempty"`
	Salary            *decimal.Decimal `json:"salary,omitempty"`
	Balance           *decimal.Decimal `json:"balance,omitempty"`
	ReportPeriodFrom  *string          `json:"reportPeriodFrom,omitempty"`
	ReportPeriodTo    *string          `json:"reportPeriodTo,omitempty"`
	PayslipGenerated  *bool            `json:"payslipGenerated,omitempty"`
	PayslipSent       *bool            `json:"payslipSent,omitempty"`
}

// InputFromPayrun returns an input that sets every field of p.
func InputFromPayrun(p Payrun) PayrunInput {
	i := func(v int) *FlexInt { f := FlexInt(v); return &f }
	d := func(v decimal.Decimal) *decimal.Decimal { return &v }
	s := func(v string) *string { return &v }
	b := func(v bool) *bool { return &v }
	return PayrunInput{
		SalaryMonth:       i(p.SalaryMonth),
		SalaryYear:        i(p.SalaryYear),
		Present:           i(p.Present),
		Absent:            i(p.Absent),
		Basic:             d(p.Basic),
		HouseRent:         d(p.HouseRent),
		EPF:               d(p.EPF),
		ESIC:              d(p.ESIC),
		Incentives:        d(p.Incentives),
		Allowances:        d(p.Allowances),
		Advance:           d(p.Advance),
		PaymentLossDays:   i(p.PaymentLossDays),
		PaymentLossAmount: d(p.PaymentLossAmount),
		OT1Hours:          d(p.OT1Hours),
		OT1Amount:         d(p.OT1Amount),
		OT2Hours:          d(p.OT2Hours),
		OT2Amount:         d(p.OT2Amount),
		HoldOT:            d(p.HoldOT),
		TotalLateHours:    d(p.TotalLateHours),
		TotalBasicPayment: d(p.TotalBasicPayment),
		TotalOTPayment:    d(p.TotalOTPayment),
		Salary:            d(p.Salary),
		Balance:           d(p.Balance),
		ReportPeriodFrom:  s(p.ReportPeriodFrom),
		ReportPeriodTo:    s(p.ReportPeriodTo),
		PayslipGenerated:  b(p.PayslipGenerated),
		PayslipSent:       b(p.PayslipSent),
	}
}

// Apply merges the set fields of in into p.
func (in PayrunInput) Apply(p *Payrun) {
	setInt := func(dst *int, src *FlexInt) {
		if src != nil {
			*dst = int(*src)
		}
	}
	setDec := func(dst *decimal.Decimal, src *decimal.Decimal) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&p.SalaryMonth, in.SalaryMonth)
	setInt(&p.SalaryYear, in.SalaryYear)
	setInt(&p.Present, in.Present)
	setInt(&p.Absent, in.Absent)
	setInt(&p.PaymentLossDays, in.PaymentLossDays)
	setDec(&p.Basic, in.Basic)
	setDec(&p.HouseRent, in.HouseRent)
	setDec(&p.EPF, in.EPF)
	setDec(&p.ESIC, in.ESIC)
	setDec(&p.Incentives, in.Incentives)
	setDec(&p.Allowances, in.Allowances)
	setDec(&p.Advance, in.Advance)
	setDec(&p.PaymentLossAmount, in.PaymentLossAmount)
	setDec(&p.OT1Hours, in.OT1Hours)
	setDec(&p.OT1Amount, in.OT1Amount)
	setDec(&p.OT2Hours, in.OT2Hours)
	setDec(&p.OT2Amount, in.OT2Amount)
	setDec(&p.HoldOT, in.HoldOT)
	setDec(&p.TotalLateHours, in.TotalLateHours)
	setDec(&p.TotalBasicPayment, in.TotalBasicPayment)
	setDec(&p.TotalOTPayment, in.TotalOTPayment)
	setDec(&p.Salary, in.Salary)
	setDec(&p.Balance, in.Balance)
	if in.ReportPeriodFrom != nil {
		p.ReportPeriodFrom = strings.TrimSpace(*in.ReportPeriodFrom)
	}
	if in.ReportPeriodTo != nil {
		p.ReportPeriodTo = strings.TrimSpace(*in.ReportPeriodTo)
	}
	if in.PayslipGenerated != nil {
		p.PayslipGenerated = *in.PayslipGenerated
	}
	if in.PayslipSent != nil {
		p.PayslipSent = *in.PayslipSent
	}
}

func (in PayrunInput) validate(errs *validator.ValidationErrors, prefix string, requirePeriod bool) {
	if in.SalaryMonth == nil {
		if requirePeriod {
			errs.Add(prefix+"salaryMonth", "salaryMonth is required")
		}
	} else if !validator.IsValidMonth(int(*in.SalaryMonth)) {
		errs.Add(prefix+"salaryMonth", "salaryMonth must be between 1 and 12")
	}
	if in.SalaryYear == nil {
		if requirePeriod {
			errs.Add(prefix+"salaryYear", "salaryYear is required")
		}
	} else if !validator.IsValidYear(int(*in.SalaryYear)) {
		errs.Add(prefix+"salaryYear", "salaryYear must be a four-digit year")
	}
	for name, v := range map[string]*FlexInt{"present": in.Present, "absent": in.Absent, "paymentLossDays": in.PaymentLossDays} {
		if v != nil && *v < 0 {
			errs.Add(prefix+name, name+" must not be negative")
		}
	}
}

type ProcessFromAttendanceRequest struct {
	PeriodFrom string `json:"periodFrom"`
	PeriodTo   string `json:"periodTo"`
}

func (r *ProcessFromAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors
	for field, v := range map[string]string{"periodFrom": r.PeriodFrom, "periodTo": r.PeriodTo} {
		if validator.IsEmpty(v) {
			errs.Add(field, field+" is required")
		} else if _, ok := validator.ParsePeriodDate(v); !ok {
			errs.Add(field, field+" must be YYYY-MM-DD or DD-MM-YYYY")
		}
	}
	return errs.Err()
}

type ItemError struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName,omitempty"`
	Error        string `json:"error"`
}

type ProcessFromAttendanceResponse struct {
	ProcessedCount int               `json:"processedCount"`
	ErrorCount     int               `json:"errorCount"`
	Payrolls       []HistoryResponse `json:"payrolls"`
	Errors         []ItemError       `json:"errors"`
}

type CreatePayrunRequest struct {
	EmployeeID string      `json:"employeeId"`
	PayrunData PayrunInput `json:"payrunData"`
}

func (r *CreatePayrunRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employeeId", "employeeId is required")
	}
	r.PayrunData.validate(&errs, "payrunData.", true)
	return errs.Err()
}

type UpsertPayrunRequest struct {
	SalaryMonth FlexInt     `json:"salaryMonth"`
	SalaryYear  FlexInt     `json:"salaryYear"`
	PayrunData  PayrunInput `json:"payrunData"`
}

func (r *UpsertPayrunRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidMonth(int(r.SalaryMonth)) {
		errs.Add("salaryMonth", "salaryMonth must be between 1 and 12")
	}
	if !validator.IsValidYear(int(r.SalaryYear)) {
		errs.Add("salaryYear", "salaryYear must be a four-digit year")
	}
	r.PayrunData.validate(&errs, "payrunData.", false)
	return errs.Err()
}

type UpdatePayrunRequest struct {
	PayrunIndex *int        `json:"payrunIndex"`
	PayrunData  PayrunInput `json:"payrunData"`
}

func (r *UpdatePayrunRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.PayrunIndex == nil {
		errs.Add("payrunIndex", "payrunIndex is required")
	} else if *r.PayrunIndex < 0 {
		errs.Add("payrunIndex", "payrunIndex must not be negative")
	}
	r.PayrunData.validate(&errs, "payrunData.", false)
	return errs.Err()
}

type BatchUpdateItem struct {
	EmployeeID string              `json:"employeeId"`
	UpdateData UpdatePayrunRequest `json:"updateData"`
}

// BatchUpdateRequest is a bare JSON array of updates.
type BatchUpdateRequest []BatchUpdateItem

func (r BatchUpdateRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r) == 0 {
		errs.Add("updates", "request body must be a non-empty array of updates")
	}
	return errs.Err()
}

type BatchUpdateResult struct {
	EmployeeID string           `json:"employeeId"`
	Success    bool             `json:"success"`
	Data       *HistoryResponse `json:"data,omitempty"`
	Error      string           `json:"error,omitempty"`
}

type BatchUpdateResponse struct {
	Results []BatchUpdateResult `json:"results"`
}

type HistoryResponse struct {
	EmployeeID string    `json:"employeeId"`
	Payruns    []Payrun  `json:"payruns"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func NewHistoryResponse(h PayrollHistory) HistoryResponse {
	payruns := h.Payruns
	if payruns == nil {
		payruns = []Payrun{}
	}
	return HistoryResponse{
		EmployeeID: h.EmployeeID,
		Payruns:    payruns,
		Version:    h.Version,
		CreatedAt:  h.CreatedAt,
		UpdatedAt:  h.UpdatedAt,
	}
}

// EmployeeDetails is the employee snippet shown next to a month's payrun.
type EmployeeDetails struct {
	EmployeeName      string `json:"employeeName"`
	Department        string `json:"department"`
	Designation       string `json:"designation"`
	MailID            string `json:"mailId"`
	BankName          string `json:"bankName"`
	BankAccountNumber string `json:"bankAccountNumber"`
	BankIFSCCode      string `json:"bankIFSCCode"`
}

type MonthPayrollResponse struct {
	EmployeeID    string           `json:"employeeId"`
	Employee      *EmployeeDetails `json:"employeeDetails"`
	CurrentPayrun Payrun           `json:"currentPayrun"`
}

type SendPayslipRequest struct {
	SalaryMonth FlexInt `json:"salaryMonth"`
	SalaryYear  FlexInt `json:"salaryYear"`
}

func (r *SendPayslipRequest) Validate() error {
	var errs validator.ValidationErrors
	validatePeriod(&errs, int(r.SalaryMonth), int(r.SalaryYear))
	return errs.Err()
}

type SendPayslipResponse struct {
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	Email        string          `json:"email"`
	Salary       decimal.Decimal `json:"salary"`
	LogID        string          `json:"logId"`
}

type SendBulkPayslipRequest struct {
	EmployeeIDs []string `json:"employeeIds"`
	SalaryMonth FlexInt  `json:"salaryMonth"`
	SalaryYear  FlexInt  `json:"salaryYear"`
}

func (r *SendBulkPayslipRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r.EmployeeIDs) == 0 {
		errs.Add("employeeIds", "employeeIds array is required")
	}
	validatePeriod(&errs, int(r.SalaryMonth), int(r.SalaryYear))
	return errs.Err()
}

type SendBulkPayslipResponse struct {
	BatchID    string                `json:"batchId"`
	Successful []SendPayslipResponse `json:"successful"`
	Failed     []ItemError           `json:"failed"`
	Total      int                   `json:"total"`
}

type EmailLogFilter struct {
	EmployeeID  string
	Status      string
	SalaryMonth int
	SalaryYear  int
}

func validatePeriod(errs *validator.ValidationErrors, month, year int) {
	if !validator.IsValidMonth(month) {
		errs.Add("salaryMonth", "salaryMonth must be between 1 and 12")
	}
	if !validator.IsValidYear(year) {
		errs.Add("salaryYear", "salaryYear must be a four-digit year")
	}
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English name of month, or "Unknown".
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return "Unknown"
	}
	return monthNames[month-1]
}
