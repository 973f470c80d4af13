package attendance

import (
	"time"
)

// Canonical day statuses. Unrecognized raw statuses are kept upper-cased.
const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
	StatusOff     = "OFF"
	StatusHoliday = "HOLIDAY"
)

// DailyEntry is one normalized day. Hour fields hold decimal-hour strings.
type DailyEntry struct {
	Date      string `json:"date"`
	Status    string `json:"status"`
	Shift     string `json:"shift"`
	TimeIn    string `json:"timeIn"`
	TimeOut   string `json:"timeOut"`
	WorkedHrs string `json:"workedHrs"`
	Late      string `json:"late"`
	EarlyOut  string `json:"earlyOut"`
	OT1       string `json:"ot1"`
	OT2       string `json:"ot2"`
}

type MonthlySummary struct {
	PresentDays    string `json:"presentDays"`
	PaidLeaveDays  string `json:"paidLeaveDays"`
	LOPDays        string `json:"lopDays"`
	WeeklyOffDays  string `json:"weeklyOffDays"`
	Holidays       string `json:"holidays"`
	OnDutyDays     string `json:"onDutyDays"`
	AbsentDays     string `json:"absentDays"`
	TotalWorkedHrs string `json:"totalWorkedHrs"`
	TotalLate      string `json:"totalLate"`
	TotalEarlyOut  string `json:"totalEarlyOut"`
	TotalOT1       string `json:"totalOT1"`
	TotalOT2       string `json:"totalOT2"`
	TotalOT3       string `json:"totalOT3"`
}

// AttendanceRecord is unique per (EmployeeID, ReportPeriodFrom, ReportPeriodTo).
type AttendanceRecord struct {
	ID               string
	EmployeeID       string
	EmployeeName     string
	Department       string
	Designation      string
	Category         string
	Branch           string
	ReportPeriodFrom string
	ReportPeriodTo   string
	PeriodStart      *time.Time
	PeriodEnd        *time.Time
	DailyAttendance  []DailyEntry
	MonthlySummary   MonthlySummary
	SourceFile       string
	ExtractedAt      time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EntryFor returns the entry recorded for date.
func (r AttendanceRecord) EntryFor(date string) (DailyEntry, bool) {
	for _, e := range r.DailyAttendance {
		if e.Date == date {
			return e, true
		}
	}
	return DailyEntry{}, false
}

// Stats describes the attendance store as a whole.
type Stats struct {
	TotalRecords     int64      `json:"totalRecords"`
	UniqueEmployees  int64      `json:"uniqueEmployees"`
	LatestExtraction *time.Time `json:"latestExtraction"`
	LatestPeriod     *Period    `json:"latestPeriod"`
}

type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}
