package attendance

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
)

// FlexString accepts a JSON string or number.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(b)
	return nil
}

// RawEmployee is one employee block of an upload. Details are aligned by
// index with the request's date headers; each is an object or a bare string.
type RawEmployee struct {
	Number      FlexString     `json:"number"`
	EmployeeID  FlexString     `json:"employeeId"`
	ID          FlexString     `json:"id"`
	Name        string         `json:"name"`
	EmpName     string         `json:"employeeName"`
	Department  string         `json:"department"`
	Designation string         `json:"designation"`
	Category    string         `json:"category"`
	Branch      string         `json:"branch"`
	Details     []any          `json:"details"`
	Summary     map[string]any `json:"summary"`
}

// Identifier returns the first non-empty of number, employeeId and id.
func (e RawEmployee) Identifier() string {
	for _, v := range []FlexString{e.Number, e.EmployeeID, e.ID} {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

func (e RawEmployee) DisplayName() string {
	if n := strings.TrimSpace(e.Name); n != "" {
		return n
	}
	return strings.TrimSpace(e.EmpName)
}

type ReportPeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type UploadRequest struct {
	AttendanceData []RawEmployee  `json:"attendanceData"`
	DateHeaders    []string       `json:"dateHeaders"`
	ReportPeriod   *ReportPeriod  `json:"reportPeriod"`
	SourceFile     string         `json:"sourceFile,omitempty"`
}

func (r *UploadRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.AttendanceData) == 0 {
		errs.Add("attendanceData", "attendanceData is required")
	}
	if len(r.DateHeaders) == 0 {
		errs.Add("dateHeaders", "dateHeaders is required")
	}
	if r.ReportPeriod == nil {
		errs.Add("reportPeriod", "reportPeriod is required")
	} else {
		validatePeriod(&errs, "reportPeriod.from", r.ReportPeriod.From)
		validatePeriod(&errs, "reportPeriod.to", r.ReportPeriod.To)
	}

	return errs.Err()
}

type ImportFileRequest struct {
	FileName   string
	PeriodFrom string
	PeriodTo   string
}

func (r *ImportFileRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FileName) {
		errs.Add("file", "file is required")
	}
	validatePeriod(&errs, "from", r.PeriodFrom)
	validatePeriod(&errs, "to", r.PeriodTo)

	return errs.Err()
}

func validatePeriod(errs *validator.ValidationErrors, field, value string) {
	if validator.IsEmpty(value) {
		errs.Add(field, field+" is required")
		return
	}
	if _, ok := validator.ParsePeriodDate(value); !ok {
		errs.Add(field, field+" must be YYYY-MM-DD or DD-MM-YYYY")
	}
}

type CreatedEmployee struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
}

type ItemError struct {
	EmployeeID string `json:"employeeId"`
	Error      string `json:"error"`
}

type UploadResponse struct {
	RecordsProcessed int               `json:"recordsProcessed"`
	RecordIDs        []string          `json:"recordIds"`
	EmployeesCreated []CreatedEmployee `json:"employeesCreated"`
	Errors           []ItemError       `json:"errors"`
	ReportPeriod     Period            `json:"reportPeriod"`
}

type RecordResponse struct {
	ID               string         `json:"id"`
	EmployeeID       string         `json:"employeeId"`
	EmployeeName     string         `json:"employeeName"`
	Department       string         `json:"department"`
	Designation      string         `json:"designation"`
	Category         string         `json:"category"`
	Branch           string         `json:"branch"`
	ReportPeriodFrom string         `json:"reportPeriodFrom"`
	ReportPeriodTo   string         `json:"reportPeriodTo"`
	DailyAttendance  []DailyEntry   `json:"dailyAttendance"`
	MonthlySummary   MonthlySummary `json:"monthlySummary"`
	SourceFile       string         `json:"sourceFile"`
	ExtractedAt      time.Time      `json:"extractedAt"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func NewRecordResponse(r AttendanceRecord) RecordResponse {
	daily := r.DailyAttendance
	if daily == nil {
		daily = []DailyEntry{}
	}
	return RecordResponse{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		Department:       r.Department,
		Designation:      r.Designation,
		Category:         r.Category,
		Branch:           r.Branch,
		ReportPeriodFrom: r.ReportPeriodFrom,
		ReportPeriodTo:   r.ReportPeriodTo,
		DailyAttendance:  daily,
		MonthlySummary:   r.MonthlySummary,
		SourceFile:       r.SourceFile,
		ExtractedAt:      r.ExtractedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

type DailyAttendanceResponse struct {
	RecordID         string `json:"recordId"`
	EmployeeID       string `json:"employeeId"`
	EmployeeName     string `json:"employeeName"`
	Department       string `json:"department"`
	Designation      string `json:"designation"`
	ReportPeriodFrom string `json:"reportPeriodFrom"`
	ReportPeriodTo   string `json:"reportPeriodTo"`
	DailyEntry
}

type SummaryResponse struct {
	EmployeeID   string         `json:"employeeId"`
	EmployeeName string         `json:"employeeName"`
	Department   string         `json:"department"`
	Designation  string         `json:"designation"`
	ReportPeriod string         `json:"reportPeriod"`
	Summary      MonthlySummary `json:"summary"`
}
