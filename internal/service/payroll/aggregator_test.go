package payroll

import (
	"testing"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/employee"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "%s: want %s got %s", field, want, got.String())
}

func profile(salary int64) employee.FinancialProfile {
	return employee.FinancialProfile{
		Salary:    decimal.NewFromInt(salary),
		HRA:       decimal.NewFromInt(2000),
		ESIC:      decimal.NewFromInt(500),
		EPF:       decimal.NewFromInt(1800),
		Allowance: decimal.NewFromInt(1000),
	}
}

func marchRecord(present, absent string) attendance.AttendanceRecord {
	return attendance.AttendanceRecord{
		EmployeeID:       "E1",
		ReportPeriodFrom: "01-03-2025",
		ReportPeriodTo:   "31-03-2025",
		DailyAttendance: []attendance.DailyEntry{
			{Date: "2025-03-03", Status: attendance.StatusPresent, TimeIn: "09:45", TimeOut: "18:15", WorkedHrs: "8.50", Late: "0.75", OT1: "0.75"},
			{Date: "2025-03-09", Status: attendance.StatusOff, OT2: "3.00"},
			{Date: "2025-03-10", Status: attendance.StatusPresent, Late: "1:30", OT1: "junk"},
			{Date: "2025-03-11", Status: attendance.StatusAbsent},
		},
		MonthlySummary: attendance.MonthlySummary{PresentDays: present, AbsentDays: absent},
	}
}

func TestAggregate(t *testing.T) {
	p, err := Aggregate(marchRecord("20", "2"), profile(41600))
	require.NoError(t, err)

	assert.Equal(t, 3, p.SalaryMonth)
	assert.Equal(t, 2025, p.SalaryYear)
	assert.Equal(t, 20, p.Present)
	assert.Equal(t, 2, p.Absent)
	assert.Equal(t, 2, p.PaymentLossDays)
	assert.Equal(t, "01-03-2025", p.ReportPeriodFrom)

	assertDecimal(t, "20800", p.Basic, "basic")
	assertDecimal(t, "2000", p.HouseRent, "houseRent")
	assertDecimal(t, "0.75", p.OT1Hours, "OT1Hours")
	assertDecimal(t, "93.75", p.OT1Amount, "OT1Amount")
	assertDecimal(t, "3", p.OT2Hours, "OT2Hours")
	assertDecimal(t, "600", p.OT2Amount, "OT2Amount")
	assertDecimal(t, "693.75", p.TotalOTPayment, "totalOTPayment")
	assertDecimal(t, "2.25", p.TotalLateHours, "totalLateHours")
	assertDecimal(t, "23493.75", p.Salary, "salary")
	assertDecimal(t, "2496", p.EPF, "EPF")
	assertDecimal(t, "0", p.ESIC, "ESIC")
	assertDecimal(t, "1000", p.Allowances, "allowances")
	assertDecimal(t, "20800", p.TotalBasicPayment, "totalBasicPayment")
	assert.False(t, p.PayslipSent)
}

func TestAggregate_HRAForfeitedAfterNineAbsences(t *testing.T) {
	p, err := Aggregate(marchRecord("15", "10"), profile(41600))
	require.NoError(t, err)
	assertDecimal(t, "0", p.HouseRent, "houseRent")
	assertDecimal(t, "21493.75", p.Salary, "salary")

	p, err = Aggregate(marchRecord("16", "9"), profile(41600))
	require.NoError(t, err)
	assertDecimal(t, "2000", p.HouseRent, "houseRent")
}

func TestAggregate_Thresholds(t *testing.T) {
	rec := marchRecord("26", "0")
	rec.DailyAttendance = nil

	low, err := Aggregate(rec, profile(10000))
	require.NoError(t, err)
	assertDecimal(t, "7000", low.Salary, "salary")
	assertDecimal(t, "0", low.EPF, "EPF")

	high, err := Aggregate(rec, profile(500000))
	require.NoError(t, err)
	assertDecimal(t, "252000", high.Salary, "salary")
	assertDecimal(t, "30000", high.EPF, "EPF")
	assertDecimal(t, "500", high.ESIC, "ESIC")
}

func TestAggregate_PlaceholderProfile(t *testing.T) {
	p, err := Aggregate(marchRecord("20", "2"), employee.NewPlaceholder("E1", "", "", "").FinancialProfile())
	require.NoError(t, err)
	assertDecimal(t, "0", p.Salary, "salary")
	assertDecimal(t, "0", p.OT1Amount, "OT1Amount")
	assertDecimal(t, "0.75", p.OT1Hours, "OT1Hours")
}

func TestAggregate_InvalidPeriod(t *testing.T) {
	rec := marchRecord("20", "2")
	rec.ReportPeriodFrom = "March 2025"
	_, err := Aggregate(rec, profile(41600))
	assert.ErrorIs(t, err, payroll.ErrInvalidReportPeriod)

	rec.ReportPeriodFrom = "2025-03-01"
	p, err := Aggregate(rec, profile(41600))
	require.NoError(t, err)
	assert.Equal(t, 3, p.SalaryMonth)
}

func TestLeadingInt(t *testing.T) {
	assert.Equal(t, 20, leadingInt("20"))
	assert.Equal(t, 20, leadingInt("20.5"))
	assert.Equal(t, 7, leadingInt(" 7 "))
	assert.Equal(t, 0, leadingInt("n/a"))
	assert.Equal(t, 0, leadingInt(""))
	assert.Equal(t, 0, leadingInt("99999999999999999999999"))
	assert.Equal(t, 0, leadingInt("-3"))
}
