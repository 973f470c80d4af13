package attendance

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/workhours"
)

// Candidate keys per canonical field, probed in order. Keys are compared
// case-insensitively.
var (
	statusKeys   = []string{"status"}
	shiftKeys    = []string{"shift"}
	timeInKeys   = []string{"timeIn", "Time In", "time_in", "in"}
	timeOutKeys  = []string{"timeOut", "Time Out", "time_out", "out"}
	workedKeys   = []string{"workedHrs", "Worked Hrs", "Worked Hrs.", "worked_hrs", "workedHours"}
	lateKeys     = []string{"late"}
	earlyOutKeys = []string{"earlyOut", "Early Out", "early_out"}
	ot1Keys      = []string{"ot1", "OT 1", "ot"}
	ot2Keys      = []string{"ot2", "OT 2"}
	dateKeys     = []string{"date"}
)

var summaryFields = []struct {
	keys     []string
	fallback string
	set      func(*attendance.MonthlySummary, string)
}{
	{[]string{"Present", "presentDays"}, "0", func(s *attendance.MonthlySummary, v string) { s.PresentDays = v }},
	{[]string{"Paid Leave", "paidLeaveDays", "paidLeave"}, "0", func(s *attendance.MonthlySummary, v string) { s.PaidLeaveDays = v }},
	{[]string{"L.O.P.", "lopDays", "LOP"}, "0", func(s *attendance.MonthlySummary, v string) { s.LOPDays = v }},
	{[]string{"Weekly OFF", "weeklyOffDays", "weeklyOff"}, "0", func(s *attendance.MonthlySummary, v string) { s.WeeklyOffDays = v }},
	{[]string{"Holiday", "holidays"}, "0", func(s *attendance.MonthlySummary, v string) { s.Holidays = v }},
	{[]string{"On Duty", "onDutyDays", "onDuty"}, "0", func(s *attendance.MonthlySummary, v string) { s.OnDutyDays = v }},
	{[]string{"Absent", "absentDays"}, "0", func(s *attendance.MonthlySummary, v string) { s.AbsentDays = v }},
	{[]string{"Worked Hrs.", "totalWorkedHrs", "Worked Hrs", "workedHrs"}, "0:00", func(s *attendance.MonthlySummary, v string) { s.TotalWorkedHrs = v }},
	{[]string{"Late", "totalLate"}, "0:00", func(s *attendance.MonthlySummary, v string) { s.TotalLate = v }},
	{[]string{"Early Out", "totalEarlyOut", "earlyOut"}, "0:00", func(s *attendance.MonthlySummary, v string) { s.TotalEarlyOut = v }},
	{[]string{"OT 1", "totalOT1", "OT1"}, "0:00", func(s *attendance.MonthlySummary, v string) { s.TotalOT1 = v }},
	{[]string{"OT 2", "totalOT2", "OT2"}, "0:00", func(s *attendance.MonthlySummary, v string) { s.TotalOT2 = v }},
	{[]string{"OT 3", "totalOT3", "OT3"}, "0:00", func(s *attendance.MonthlySummary, v string) { s.TotalOT3 = v }},
}

var statusAliases = map[string]string{
	"P":          attendance.StatusPresent,
	"PRESENT":    attendance.StatusPresent,
	"A":          attendance.StatusAbsent,
	"ABSENT":     attendance.StatusAbsent,
	"L":          attendance.StatusAbsent,
	"LEAVE":      attendance.StatusAbsent,
	"WO":         attendance.StatusOff,
	"OFF":        attendance.StatusOff,
	"WEEKLY OFF": attendance.StatusOff,
	"H":          attendance.StatusHoliday,
	"HOLIDAY":    attendance.StatusHoliday,
}

// Keyword order for bare string details.
var statusKeywords = []struct {
	keyword string
	status  string
}{
	{"PRESENT", attendance.StatusPresent},
	{"ABSENT", attendance.StatusAbsent},
	{"OFF", attendance.StatusOff},
	{"HOLIDAY", attendance.StatusHoliday},
	{"LEAVE", attendance.StatusAbsent},
}

// fieldSet is a raw record indexed by lower-cased key.
type fieldSet map[string]any

func newFieldSet(raw map[string]any) fieldSet {
	fs := make(fieldSet, len(raw))
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, dup := fs[key]; !dup {
			fs[key] = v
		}
	}
	return fs
}

// first returns the first non-empty value among keys.
func (fs fieldSet) first(keys []string) string {
	for _, k := range keys {
		if v, ok := fs[strings.ToLower(k)]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// NormalizeDetail maps one raw day (an object or a bare string) to a
// canonical entry. The date argument always wins over any embedded date.
func NormalizeDetail(raw any, date string) attendance.DailyEntry {
	entry := attendance.DailyEntry{Date: date}

	switch d := raw.(type) {
	case map[string]any:
		fs := newFieldSet(d)
		entry.Status = NormalizeStatus(fs.first(statusKeys))
		entry.Shift = fs.first(shiftKeys)
		entry.TimeIn = FormatTime(fs.first(timeInKeys))
		entry.TimeOut = FormatTime(fs.first(timeOutKeys))
		entry.WorkedHrs = fs.first(workedKeys)
		entry.Late = fs.first(lateKeys)
		entry.EarlyOut = fs.first(earlyOutKeys)
		entry.OT1 = fs.first(ot1Keys)
		entry.OT2 = fs.first(ot2Keys)
	case string:
		entry.Status = statusFromText(d)
	}

	return entry
}

// NormalizeStatus upper-cases a raw status and maps known codes onto the
// canonical statuses. Unknown values pass through upper-cased.
func NormalizeStatus(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if canonical, ok := statusAliases[s]; ok {
		return canonical
	}
	return s
}

func statusFromText(text string) string {
	s := strings.ToUpper(strings.TrimSpace(text))
	if s == "" {
		return ""
	}
	if canonical, ok := statusAliases[s]; ok {
		return canonical
	}
	for _, kw := range statusKeywords {
		if strings.Contains(s, kw.keyword) {
			return kw.status
		}
	}
	return ""
}

// FormatTime turns "930" into "09:30" and "1330" into "13:30". Values that
// already contain ':' or have another digit count are returned unchanged.
func FormatTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, ":") {
		return raw
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)
	switch len(digits) {
	case 3:
		return "0" + digits[:1] + ":" + digits[1:]
	case 4:
		return digits[:2] + ":" + digits[2:]
	}
	return raw
}

// AlignDetails pairs every date header with its raw detail: by index when
// available, otherwise by an embedded date equal to the header.
func AlignDetails(details []any, dateHeaders []string) []attendance.DailyEntry {
	entries := make([]attendance.DailyEntry, 0, len(dateHeaders))
	for i, date := range dateHeaders {
		var raw any
		if i < len(details) {
			raw = details[i]
		} else {
			raw = findByDate(details, date)
		}
		entries = append(entries, NormalizeDetail(raw, date))
	}
	return entries
}

func findByDate(details []any, date string) any {
	for _, d := range details {
		if m, ok := d.(map[string]any); ok && newFieldSet(m).first(dateKeys) == date {
			return m
		}
	}
	return nil
}

// NormalizeSummary maps a free-form summary object onto MonthlySummary,
// defaulting day counters to "0" and hour totals to "0:00".
func NormalizeSummary(raw map[string]any) attendance.MonthlySummary {
	fs := newFieldSet(raw)
	var summary attendance.MonthlySummary
	for _, f := range summaryFields {
		v := fs.first(f.keys)
		if v == "" {
			v = f.fallback
		}
		f.set(&summary, v)
	}
	return summary
}

// Enrich runs the hours calculator over an entry. Supplied hour values are
// canonicalized to two-decimal hours; missing ones are derived from the
// punch times and left empty when zero.
func Enrich(e attendance.DailyEntry) attendance.DailyEntry {
	shift := workhours.ShiftFor(e.TimeIn, e.TimeOut, e.Shift)

	worked := workhours.WorkedHours(e.TimeIn, e.TimeOut, e.WorkedHrs)
	late := workhours.LateHours(e.TimeIn, shift)
	if strings.TrimSpace(e.Late) != "" {
		late = workhours.HoursOrZero(e.Late, "late")
	}
	ot1 := workhours.OT1Hours(e.TimeIn, e.TimeOut, e.Status, e.OT1, e.Shift)
	ot2 := workhours.OT2Hours(e.TimeIn, e.TimeOut, e.WorkedHrs, e.Status, e.OT2)

	e.WorkedHrs = formatStored(e.WorkedHrs, worked.StringFixed(2), workhours.FormatHours(worked))
	e.Late = formatStored(e.Late, late.StringFixed(2), workhours.FormatHours(late))
	e.OT1 = formatStored(e.OT1, ot1.StringFixed(2), workhours.FormatHours(ot1))
	e.OT2 = formatStored(e.OT2, ot2.StringFixed(2), workhours.FormatHours(ot2))
	if strings.TrimSpace(e.EarlyOut) != "" {
		e.EarlyOut = workhours.HoursOrZero(e.EarlyOut, "earlyOut").StringFixed(2)
	}
	return e
}

func formatStored(raw, supplied, derived string) string {
	if strings.TrimSpace(raw) != "" {
		return supplied
	}
	return derived
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case json.Number:
		return t.String()
	case bool:
		return ""
	default:
		return ""
	}
}
