package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var (
	success = color.New(color.FgGreen).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
	failure = color.New(color.FgRed, color.Bold).SprintFunc()
)

func printUploadSummary(w io.Writer, r attendance.UploadResponse) {
	fmt.Fprintf(w, "%s %d records for %s to %s\n",
		success("Imported"), r.RecordsProcessed, r.ReportPeriod.From, r.ReportPeriod.To)
	for _, e := range r.EmployeesCreated {
		fmt.Fprintf(w, "  %s placeholder employee %s (%s)\n", warning("created"), e.EmployeeID, e.EmployeeName)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s %s: %s\n", failure("failed"), e.EmployeeID, e.Error)
	}
}

func printProcessSummary(w io.Writer, r payroll.ProcessFromAttendanceResponse) {
	status := success("Processed")
	if r.ErrorCount > 0 {
		status = warning("Processed")
	}
	fmt.Fprintf(w, "%s %d payrolls, %d errors\n", status, r.ProcessedCount, r.ErrorCount)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s %s: %s\n", failure("failed"), e.EmployeeID, e.Error)
	}
}

// printPayrollTable renders one row per employee payrun of a month.
func printPayrollTable(w io.Writer, rows []payroll.MonthPayrollResponse) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, warning("No payruns found"))
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Employee", "Name", "Present", "Absent", "OT Hours", "OT Pay", "Salary", "Sent"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range rows {
		p := r.CurrentPayrun
		name := ""
		if r.Employee != nil {
			name = r.Employee.EmployeeName
		}
		sent := "no"
		if p.PayslipSent {
			sent = "yes"
		}
		data = append(data, []string{
			r.EmployeeID,
			name,
			strconv.Itoa(p.Present),
			strconv.Itoa(p.Absent),
			p.OT1Hours.Add(p.OT2Hours).StringFixed(2),
			p.TotalOTPayment.StringFixed(2),
			p.Salary.StringFixed(2),
			sent,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
