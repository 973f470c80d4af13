package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payrun is one payroll line for an employee and salary period. Amounts and
// hours are serialized as decimal strings.
type Payrun struct {
	SalaryMonth       int             `json:"salaryMonth"`
	SalaryYear        int             `json:"salaryYear"`
	Present           int             `json:"present"`
	Absent            int             `json:"absent"`
	Basic             decimal.Decimal `json:"basic"`
	HouseRent         decimal.Decimal `json:"houseRent"`
	EPF               decimal.Decimal `json:"EPF"`
	ESIC              decimal.Decimal `json:"ESIC"`
	Incentives        decimal.Decimal `json:"incentives"`
	Allowances        decimal.Decimal `json:"allowances"`
	Advance           decimal.Decimal `json:"advance"`
	PaymentLossDays   int             `json:"paymentLossDays"`
	PaymentLossAmount decimal.Decimal `json:"paymentLossAmount"`
	OT1Hours          decimal.Decimal `json:"OT1Hours"`
	OT1Amount         decimal.Decimal `json:"OT1Amount"`
	OT2Hours          decimal.Decimal `json:"OT2Hours"`
	OT2Amount         decimal.Decimal `json:"OT2Amount"`
	HoldOT            decimal.Decimal `json:"holdOT"`
	TotalLateHours    decimal.Decimal `json:"totalLateHours"`
	TotalBasicPayment decimal.Decimal `json:"totalBasicPayment"`
	TotalOTPayment    decimal.Decimal `json:"totalOTPayment"`
	Salary            decimal.Decimal `json:"salary"`
	Balance           decimal.Decimal `json:"balance"`
	ReportPeriodFrom  string          `json:"reportPeriodFrom,omitempty"`
	ReportPeriodTo    string          `json:"reportPeriodTo,omitempty"`
	PayslipGenerated  bool            `json:"payslipGenerated"`
	PayslipSent       bool            `json:"payslipSent"`
}

// SamePeriod reports whether p is keyed by month and year.
func (p Payrun) SamePeriod(month, year int) bool {
	return p.SalaryMonth == month && p.SalaryYear == year
}

// PayrollHistory holds every payrun of one employee, at most one per
// (SalaryMonth, SalaryYear). Version is zero for a history not yet stored.
type PayrollHistory struct {
	EmployeeID string
	Payruns    []Payrun
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Find returns the payrun for month/year and its index.
func (h PayrollHistory) Find(month, year int) (Payrun, int, bool) {
	for i, p := range h.Payruns {
		if p.SamePeriod(month, year) {
			return p, i, true
		}
	}
	return Payrun{}, -1, false
}

// Upsert replaces the payrun with the same period or appends p. It reports
// whether an existing payrun was replaced.
func (h *PayrollHistory) Upsert(p Payrun) bool {
	if _, i, ok := h.Find(p.SalaryMonth, p.SalaryYear); ok {
		h.Payruns[i] = p
		return true
	}
	h.Payruns = append(h.Payruns, p)
	return false
}

// Payslip email delivery statuses.
const (
	EmailStatusPending = "PENDING"
	EmailStatusSuccess = "SUCCESS"
	EmailStatusFailed  = "FAILED"
)

// PayslipEmailLog records one payslip delivery attempt and its retry state.
type PayslipEmailLog struct {
	ID              string     `json:"id"`
	BatchID         *string    `json:"batchId"`
	EmployeeID      string     `json:"employeeId"`
	EmployeeName    string     `json:"employeeName"`
	EmailID         string     `json:"emailId"`
	SalaryMonth     int        `json:"salaryMonth"`
	SalaryYear      int        `json:"salaryYear"`
	Status          string     `json:"status"`
	ResponseMessage string     `json:"responseMessage"`
	ErrorDetails    string     `json:"errorDetails"`
	RetryCount      int        `json:"retryCount"`
	MaxRetries      int        `json:"maxRetries"`
	NextRetryAt     *time.Time `json:"nextRetryAt"`
	SentAt          *time.Time `json:"sentAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Retryable reports whether a failed delivery may be attempted again at now.
func (l PayslipEmailLog) Retryable(now time.Time) bool {
	if l.Status != EmailStatusFailed || l.RetryCount >= l.MaxRetries {
		return false
	}
	return l.NextRetryAt == nil || !l.NextRetryAt.After(now)
}
