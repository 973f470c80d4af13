package attendance

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/workhours"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet columns in long format, one row per employee per day. The first
// alias is the documented header.
var sheetColumns = map[string][]string{
	"number":      {"employee number", "employee id", "employee no", "emp no", "employeeid", "number"},
	"name":        {"employee name", "name", "employeename"},
	"department":  {"department"},
	"designation": {"designation"},
	"category":    {"category"},
	"branch":      {"branch"},
	"date":        {"date"},
	"status":      {"status"},
	"shift":       {"shift"},
	"timeIn":      {"time in", "timein", "in time"},
	"timeOut":     {"time out", "timeout", "out time"},
	"workedHrs":   {"worked hrs", "worked hrs.", "workedhrs", "worked hours"},
	"late":        {"late"},
	"earlyOut":    {"early out", "earlyout"},
	"ot1":         {"ot1", "ot 1", "ot"},
	"ot2":         {"ot2", "ot 2"},
}

var requiredColumns = []string{"number", "date"}

// Plausible Excel serial range for attendance dates (1982..2119).
const (
	minDateSerial = 30000
	maxDateSerial = 80000
)

// BuildUploadRequest converts long-format sheet rows into an upload payload
// for the given report period.
func BuildUploadRequest(rows [][]string, periodFrom, periodTo string) (attendance.UploadRequest, error) {
	if len(rows) < 2 {
		return attendance.UploadRequest{}, attendance.ErrEmptySheet
	}

	index := headerIndex(rows[0])
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return attendance.UploadRequest{}, fmt.Errorf("%w: %s", attendance.ErrMissingColumn, sheetColumns[col][0])
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	type employeeRows struct {
		raw    attendance.RawEmployee
		byDate map[string]map[string]any
	}
	var order []string
	employees := make(map[string]*employeeRows)
	dates := make(map[string]bool)

	for _, row := range rows[1:] {
		number := cell(row, "number")
		date := normalizeSheetDate(cell(row, "date"))
		if number == "" || date == "" {
			continue
		}

		emp, ok := employees[number]
		if !ok {
			emp = &employeeRows{
				raw: attendance.RawEmployee{
					Number:      attendance.FlexString(number),
					Name:        cell(row, "name"),
					Department:  cell(row, "department"),
					Designation: cell(row, "designation"),
					Category:    cell(row, "category"),
					Branch:      cell(row, "branch"),
				},
				byDate: make(map[string]map[string]any),
			}
			employees[number] = emp
			order = append(order, number)
		}

		detail := map[string]any{"date": date}
		for _, col := range []string{"status", "shift", "timeIn", "timeOut", "workedHrs", "late", "earlyOut", "ot1", "ot2"} {
			if v := cell(row, col); v != "" {
				detail[col] = v
			}
		}
		// a repeated date replaces the earlier row
		emp.byDate[date] = detail
		dates[date] = true
	}

	if len(order) == 0 {
		return attendance.UploadRequest{}, attendance.ErrEmptySheet
	}

	headers := sortedDates(dates)
	req := attendance.UploadRequest{
		DateHeaders:  headers,
		ReportPeriod: &attendance.ReportPeriod{From: periodFrom, To: periodTo},
	}
	for _, number := range order {
		emp := employees[number]
		details := make([]any, len(headers))
		var summary sheetSummary
		for i, d := range headers {
			if detail, ok := emp.byDate[d]; ok {
				details[i] = detail
				summary.add(detail)
			}
		}
		emp.raw.Details = details
		emp.raw.Summary = summary.toMap()
		req.AttendanceData = append(req.AttendanceData, emp.raw)
	}
	return req, nil
}

func headerIndex(header []string) map[string]int {
	lookup := make(map[string]string)
	for col, aliases := range sheetColumns {
		for _, a := range aliases {
			lookup[a] = col
		}
	}
	index := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.Join(strings.Fields(strings.TrimPrefix(h, "\ufeff")), " "))
		if col, ok := lookup[key]; ok {
			if _, dup := index[col]; !dup {
				index[col] = i
			}
		}
	}
	return index
}

// normalizeSheetDate turns Excel date serials into YYYY-MM-DD and leaves
// textual dates unchanged.
func normalizeSheetDate(v string) string {
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial >= minDateSerial && serial <= maxDateSerial {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return v
}

func sortedDates(set map[string]bool) []string {
	dates := make([]string, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.SliceStable(dates, func(i, j int) bool {
		a, okA := validator.ParsePeriodDate(dates[i])
		b, okB := validator.ParsePeriodDate(dates[j])
		if okA && okB {
			return a.Before(b)
		}
		return dates[i] < dates[j]
	})
	return dates
}

// sheetSummary derives the monthly counters a sheet does not carry.
type sheetSummary struct {
	present, absent, off, holiday int
	worked, late, earlyOut        decimal.Decimal
	ot1, ot2                      decimal.Decimal
}

func (s *sheetSummary) add(detail map[string]any) {
	str := func(k string) string {
		v, _ := detail[k].(string)
		return v
	}
	switch NormalizeStatus(str("status")) {
	case attendance.StatusPresent:
		s.present++
	case attendance.StatusAbsent:
		s.absent++
	case attendance.StatusOff:
		s.off++
	case attendance.StatusHoliday:
		s.holiday++
	}
	s.worked = s.worked.Add(workhours.HoursOrZero(str("workedHrs"), "workedHrs"))
	s.late = s.late.Add(workhours.HoursOrZero(str("late"), "late"))
	s.earlyOut = s.earlyOut.Add(workhours.HoursOrZero(str("earlyOut"), "earlyOut"))
	s.ot1 = s.ot1.Add(workhours.HoursOrZero(str("ot1"), "ot1"))
	s.ot2 = s.ot2.Add(workhours.HoursOrZero(str("ot2"), "ot2"))
}

func (s *sheetSummary) toMap() map[string]any {
	return map[string]any{
		"presentDays":    strconv.Itoa(s.present),
		"absentDays":     strconv.Itoa(s.absent),
		"weeklyOffDays":  strconv.Itoa(s.off),
		"holidays":       strconv.Itoa(s.holiday),
		"totalWorkedHrs": s.worked.StringFixed(2),
		"totalLate":      s.late.StringFixed(2),
		"totalEarlyOut":  s.earlyOut.StringFixed(2),
		"totalOT1":       s.ot1.StringFixed(2),
		"totalOT2":       s.ot2.StringFixed(2),
	}
}
