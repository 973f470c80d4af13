package payroll

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/employee"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/workhours"
	"github.com/shopspring/decimal"
)

var (
	two           = decimal.NewFromInt(2)
	epfRate       = decimal.RequireFromString("0.12")
	epfThreshold  = decimal.NewFromInt(15000)
	esicThreshold = decimal.NewFromInt(210000)
)

// HRA is forfeited above this many absent days.
const hraForfeitAbsentDays = 9

// Aggregate builds the payrun of one attendance record. Salary month and
// year come from the record's reportPeriodFrom.
func Aggregate(rec attendance.AttendanceRecord, profile employee.FinancialProfile) (payroll.Payrun, error) {
	start, ok := validator.ParsePeriodDate(rec.ReportPeriodFrom)
	if !ok {
		return payroll.Payrun{}, fmt.Errorf("%w: %q", payroll.ErrInvalidReportPeriod, rec.ReportPeriodFrom)
	}

	var ot1Hours, ot2Hours, lateHours decimal.Decimal
	for _, e := range rec.DailyAttendance {
		ot1Hours = ot1Hours.Add(workhours.OT1Hours(e.TimeIn, e.TimeOut, e.Status, e.OT1, e.Shift))
		ot2Hours = ot2Hours.Add(workhours.OT2Hours(e.TimeIn, e.TimeOut, e.WorkedHrs, e.Status, e.OT2))
		if strings.TrimSpace(e.Late) != "" {
			lateHours = lateHours.Add(workhours.HoursOrZero(e.Late, "late"))
		} else {
			lateHours = lateHours.Add(workhours.LateHours(e.TimeIn, workhours.ShiftFor(e.TimeIn, e.TimeOut, e.Shift)))
		}
	}

	present := leadingInt(rec.MonthlySummary.PresentDays)
	absent := leadingInt(rec.MonthlySummary.AbsentDays)

	basic := profile.Salary.Div(two).Round(2)
	rate := workhours.HourlyRate(basic)
	ot1Amount := workhours.OT1Amount(ot1Hours, rate)
	ot2Amount := workhours.OT2Amount(ot2Hours, rate)
	otTotal := ot1Amount.Add(ot2Amount)

	hra := profile.HRA
	if absent > hraForfeitAbsentDays {
		hra = decimal.Zero
	}
	total := basic.Add(hra).Add(otTotal)

	epf := decimal.Zero
	if total.GreaterThan(epfThreshold) {
		epf = basic.Mul(epfRate).Round(2)
	}
	esic := decimal.Zero
	if total.GreaterThan(esicThreshold) {
		esic = profile.ESIC
	}

	return payroll.Payrun{
		SalaryMonth:       int(start.Month()),
		SalaryYear:        start.Year(),
		Present:           present,
		Absent:            absent,
		Basic:             basic,
		HouseRent:         hra,
		EPF:               epf,
		ESIC:              esic,
		Incentives:        decimal.Zero,
		Allowances:        profile.Allowance,
		Advance:           decimal.Zero,
		PaymentLossDays:   absent,
		PaymentLossAmount: decimal.Zero,
		OT1Hours:          ot1Hours,
		OT1Amount:         ot1Amount,
		OT2Hours:          ot2Hours,
		OT2Amount:         ot2Amount,
		HoldOT:            decimal.Zero,
		TotalLateHours:    lateHours,
		TotalBasicPayment: basic,
		TotalOTPayment:    otTotal,
		Salary:            total,
		Balance:           decimal.Zero,
		ReportPeriodFrom:  rec.ReportPeriodFrom,
		ReportPeriodTo:    rec.ReportPeriodTo,
	}, nil
}

// leadingInt reads the leading integer of s; "20.5" is 20, while "n/a" and
// values too large for an int are 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
