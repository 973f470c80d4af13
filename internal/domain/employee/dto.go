package employee

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var bloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

type CreateEmployeeRequest struct {
	EmployeeID     string          `json:"employeeId"`
	EmployeeName   string          `json:"employeeName"`
	Department     string          `json:"department"`
	DepartmentCode string          `json:"departmentCode"`
	Designation    string          `json:"designation"`
	Qualification  string          `json:"qualification"`
	DateOfBirth    string          `json:"dateOfBirth"`
	DateOfJoining  string          `json:"dateOfJoining"`
	BloodGroup     string          `json:"bloodGroup"`
	MobileNumber   string          `json:"mobileNumber"`
	MailID         string          `json:"mailId"`
	Address        string          `json:"address"`
	BankDetails    BankDetails     `json:"bankDetails"`
	PANNumber      string          `json:"PANNumber"`
	AadhaarNo      string          `json:"aadhaarNo"`
	UANNo          string          `json:"UANNo"`
	ESICID         string          `json:"esicId"`
	EPFID          string          `json:"epfId"`
	Salary         decimal.Decimal `json:"salary"`
	Allowance      decimal.Decimal `json:"allowance"`
	HRA            decimal.Decimal `json:"hra"`
	ESIC           decimal.Decimal `json:"esic"`
	EPF            decimal.Decimal `json:"epf"`
	Status         *bool           `json:"status,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employeeId", "employeeId is required")
	} else if !validator.IsValidEmployeeID(strings.TrimSpace(r.EmployeeID)) {
		errs.Add("employeeId", "employeeId may only contain letters, numbers, '/', '_' and '-' (max 50)")
	}

	name := strings.TrimSpace(r.EmployeeName)
	if name == "" {
		errs.Add("employeeName", "employeeName is required")
	} else if len(name) < 3 || len(name) > 100 {
		errs.Add("employeeName", "employeeName must be between 3 and 100 characters")
	}

	if validator.IsEmpty(r.MailID) {
		errs.Add("mailId", "mailId is required")
	} else if !validator.IsValidEmail(strings.TrimSpace(r.MailID)) {
		errs.Add("mailId", "mailId must be a valid email address")
	}

	validateProfile(&errs, profileFields{
		dateOfBirth:   r.DateOfBirth,
		dateOfJoining: r.DateOfJoining,
		bloodGroup:    r.BloodGroup,
		mobileNumber:  r.MobileNumber,
		bank:          r.BankDetails,
		pan:           r.PANNumber,
		aadhaar:       r.AadhaarNo,
		uan:           r.UANNo,
	})
	validateAmounts(&errs, map[string]*decimal.Decimal{
		"salary": &r.Salary, "allowance": &r.Allowance, "hra": &r.HRA, "esic": &r.ESIC, "epf": &r.EPF,
	})

	return errs.Err()
}

// ToEntity converts the request into a normalized Employee.
func (r *CreateEmployeeRequest) ToEntity() Employee {
	status := true
	if r.Status != nil {
		status = *r.Status
	}
	return Employee{
		EmployeeID:     NormalizeID(r.EmployeeID),
		EmployeeName:   strings.TrimSpace(r.EmployeeName),
		Department:     strings.TrimSpace(r.Department),
		DepartmentCode: strings.TrimSpace(r.DepartmentCode),
		Designation:    strings.TrimSpace(r.Designation),
		Qualification:  strings.TrimSpace(r.Qualification),
		DateOfBirth:    parseOptionalDate(r.DateOfBirth),
		DateOfJoining:  parseOptionalDate(r.DateOfJoining),
		BloodGroup:     strings.TrimSpace(r.BloodGroup),
		MobileNumber:   strings.TrimSpace(r.MobileNumber),
		MailID:         strings.ToLower(strings.TrimSpace(r.MailID)),
		Address:        strings.TrimSpace(r.Address),
		Bank:           normalizeBank(r.BankDetails),
		PANNumber:      strings.ToUpper(strings.TrimSpace(r.PANNumber)),
		AadhaarNo:      strings.TrimSpace(r.AadhaarNo),
		UANNo:          strings.TrimSpace(r.UANNo),
		ESICID:         strings.TrimSpace(r.ESICID),
		EPFID:          strings.TrimSpace(r.EPFID),
		Salary:         r.Salary,
		Allowance:      r.Allowance,
		HRA:            r.HRA,
		ESIC:           r.ESIC,
		EPF:            r.EPF,
		Status:         status,
	}
}

type UpdateEmployeeRequest struct {
	EmployeeName   *string          `json:"employeeName,omitempty"`
	Department     *string          `json:"department,omitempty"`
	DepartmentCode *string          `json:"departmentCode,omitempty"`
	Designation    *string          `json:"designation,omitempty"`
	Qualification  *string          `json:"qualification,omitempty"`
	DateOfBirth    *string          `json:"dateOfBirth,omitempty"`
	DateOfJoining  *string          `json:"dateOfJoining,omitempty"`
	BloodGroup     *string          `json:"bloodGroup,omitempty"`
	MobileNumber   *string          `json:"mobileNumber,omitempty"`
	MailID         *string          `json:"mailId,omitempty"`
	Address        *string          `json:"address,omitempty"`
	BankDetails    *BankDetails     `json:"bankDetails,omitempty"`
	PANNumber      *string          `json:"PANNumber,omitempty"`
	AadhaarNo      *string          `json:"aadhaarNo,omitempty"`
	UANNo          *string          `json:"UANNo,omitempty"`
	ESICID         *string          `json:"esicId,omitempty"`
	EPFID          *string          `json:"epfId,omitempty"`
	Salary         *decimal.Decimal `json:"salary,omitempty"`
	Allowance      *decimal.Decimal `json:"allowance,omitempty"`
	HRA            *decimal.Decimal `json:"hra,omitempty"`
	ESIC           *decimal.Decimal `json:"esic,omitempty"`
	EPF            *decimal.Decimal `json:"epf,omitempty"`
	Status         *bool            `json:"status,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeName != nil {
		name := strings.TrimSpace(*r.EmployeeName)
		if len(name) < 3 || len(name) > 100 {
			errs.Add("employeeName", "employeeName must be between 3 and 100 characters")
		}
	}
	if r.MailID != nil && !validator.IsValidEmail(strings.TrimSpace(*r.MailID)) {
		errs.Add("mailId", "mailId must be a valid email address")
	}

	fields := profileFields{}
	if r.DateOfBirth != nil {
		fields.dateOfBirth = *r.DateOfBirth
	}
	if r.DateOfJoining != nil {
		fields.dateOfJoining = *r.DateOfJoining
	}
	if r.BloodGroup != nil {
		fields.bloodGroup = *r.BloodGroup
	}
	if r.MobileNumber != nil {
		fields.mobileNumber = *r.MobileNumber
	}
	if r.BankDetails != nil {
		fields.bank = *r.BankDetails
	}
	if r.PANNumber != nil {
		fields.pan = *r.PANNumber
	}
	if r.AadhaarNo != nil {
		fields.aadhaar = *r.AadhaarNo
	}
	if r.UANNo != nil {
		fields.uan = *r.UANNo
	}
	validateProfile(&errs, fields)
	validateAmounts(&errs, map[string]*decimal.Decimal{
		"salary": r.Salary, "allowance": r.Allowance, "hra": r.HRA, "esic": r.ESIC, "epf": r.EPF,
	})

	return errs.Err()
}

// Apply merges the set fields of r into e.
func (r *UpdateEmployeeRequest) Apply(e *Employee) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&e.EmployeeName, r.EmployeeName)
	setString(&e.Department, r.Department)
	setString(&e.DepartmentCode, r.DepartmentCode)
	setString(&e.Designation, r.Designation)
	setString(&e.Qualification, r.Qualification)
	setString(&e.BloodGroup, r.BloodGroup)
	setString(&e.MobileNumber, r.MobileNumber)
	setString(&e.Address, r.Address)
	setString(&e.AadhaarNo, r.AadhaarNo)
	setString(&e.UANNo, r.UANNo)
	setString(&e.ESICID, r.ESICID)
	setString(&e.EPFID, r.EPFID)

	if r.DateOfBirth != nil {
		e.DateOfBirth = parseOptionalDate(*r.DateOfBirth)
	}
	if r.DateOfJoining != nil {
		e.DateOfJoining = parseOptionalDate(*r.DateOfJoining)
	}
	if r.MailID != nil {
		e.MailID = strings.ToLower(strings.TrimSpace(*r.MailID))
		e.IsPlaceholder = false
	}
	if r.BankDetails != nil {
		e.Bank = normalizeBank(*r.BankDetails)
	}
	if r.PANNumber != nil {
		e.PANNumber = strings.ToUpper(strings.TrimSpace(*r.PANNumber))
	}
	if r.Salary != nil {
		e.Salary = *r.Salary
	}
	if r.Allowance != nil {
		e.Allowance = *r.Allowance
	}
	if r.HRA != nil {
		e.HRA = *r.HRA
	}
	if r.ESIC != nil {
		e.ESIC = *r.ESIC
	}
	if r.EPF != nil {
		e.EPF = *r.EPF
	}
	if r.Status != nil {
		e.Status = *r.Status
	}
}

type EmployeeFilter struct {
	Search     string
	Department string
	Status     *bool
	Page       int
	Limit      int
}

func (f *EmployeeFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 500 {
		f.Limit = 50
	}
}

type EmployeeResponse struct {
	EmployeeID     string          `json:"employeeId"`
	EmployeeName   string          `json:"employeeName"`
	Department     string          `json:"department"`
	DepartmentCode string          `json:"departmentCode"`
	Designation    string          `json:"designation"`
	Qualification  string          `json:"qualification"`
	DateOfBirth    *string         `json:"dateOfBirth"`
	DateOfJoining  *string         `json:"dateOfJoining"`
	BloodGroup     string          `json:"bloodGroup"`
	MobileNumber   string          `json:"mobileNumber"`
	MailID         string          `json:"mailId"`
	Address        string          `json:"address"`
	BankDetails    BankDetails     `json:"bankDetails"`
	PANNumber      string          `json:"PANNumber"`
	AadhaarNo      string          `json:"aadhaarNo"`
	UANNo          string          `json:"UANNo"`
	ESICID         string          `json:"esicId"`
	EPFID          string          `json:"epfId"`
	Salary         decimal.Decimal `json:"salary"`
	Allowance      decimal.Decimal `json:"allowance"`
	HRA            decimal.Decimal `json:"hra"`
	ESIC           decimal.Decimal `json:"esic"`
	EPF            decimal.Decimal `json:"epf"`
	Status         bool            `json:"status"`
	IsPlaceholder  bool            `json:"isPlaceholder"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		EmployeeID:     e.EmployeeID,
		EmployeeName:   e.EmployeeName,
		Department:     e.Department,
		DepartmentCode: e.DepartmentCode,
		Designation:    e.Designation,
		Qualification:  e.Qualification,
		DateOfBirth:    formatOptionalDate(e.DateOfBirth),
		DateOfJoining:  formatOptionalDate(e.DateOfJoining),
		BloodGroup:     e.BloodGroup,
		MobileNumber:   e.MobileNumber,
		MailID:         e.MailID,
		Address:        e.Address,
		BankDetails:    e.Bank,
		PANNumber:      e.PANNumber,
		AadhaarNo:      e.AadhaarNo,
		UANNo:          e.UANNo,
		ESICID:         e.ESICID,
		EPFID:          e.EPFID,
		Salary:         e.Salary,
		Allowance:      e.Allowance,
		HRA:            e.HRA,
		ESIC:           e.ESIC,
		EPF:            e.EPF,
		Status:         e.Status,
		IsPlaceholder:  e.IsPlaceholder,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

type ListEmployeeResponse struct {
	Employees  []EmployeeResponse `json:"employees"`
	TotalCount int64              `json:"totalCount"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
}

// PlaceholderHint carries the identity fields known from attendance data.
type PlaceholderHint struct {
	EmployeeName string
	Department   string
	Designation  string
}

type CreateMissingRequest struct {
	EmployeeIDs []string `json:"employeeIds"`
}

func (r *CreateMissingRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r.EmployeeIDs) == 0 {
		errs.Add("employeeIds", "employeeIds array is required")
	}
	for _, id := range r.EmployeeIDs {
		if !validator.IsValidEmployeeID(strings.TrimSpace(id)) {
			errs.Add("employeeIds", "employeeIds contains an invalid id: "+id)
			break
		}
	}
	return errs.Err()
}

type ItemError struct {
	EmployeeID string `json:"employeeId"`
	Error      string `json:"error"`
}

type CreateMissingSummary struct {
	TotalProcessed int `json:"totalProcessed"`
	Created        int `json:"created"`
	Existing       int `json:"existing"`
	Errors         int `json:"errors"`
}

type CreateMissingResponse struct {
	Created  []string             `json:"created"`
	Existing []string             `json:"existing"`
	Errors   []ItemError          `json:"errors"`
	Summary  CreateMissingSummary `json:"summary"`
}

type profileFields struct {
	dateOfBirth   string
	dateOfJoining string
	bloodGroup    string
	mobileNumber  string
	bank          BankDetails
	pan           string
	aadhaar       string
	uan           string
}

func validateProfile(errs *validator.ValidationErrors, f profileFields) {
	if d := strings.TrimSpace(f.dateOfBirth); d != "" {
		if _, ok := validator.IsValidDate(d); !ok {
			errs.Add("dateOfBirth", "dateOfBirth must be in YYYY-MM-DD format")
		}
	}
	if d := strings.TrimSpace(f.dateOfJoining); d != "" {
		if _, ok := validator.IsValidDate(d); !ok {
			errs.Add("dateOfJoining", "dateOfJoining must be in YYYY-MM-DD format")
		}
	}
	if bg := strings.TrimSpace(f.bloodGroup); bg != "" && !validator.IsInSlice(bg, bloodGroups) {
		errs.Add("bloodGroup", "bloodGroup must be one of "+strings.Join(bloodGroups, ", "))
	}
	if m := strings.TrimSpace(f.mobileNumber); m != "" && !validator.IsValidMobileNumber(m) {
		errs.Add("mobileNumber", "mobileNumber must contain 10 to 15 digits")
	}
	if acc := strings.TrimSpace(f.bank.BankAccountNumber); acc != "" && (!validator.IsNumeric(acc) || len(acc) < 9 || len(acc) > 18) {
		errs.Add("bankDetails.bankAccountNumber", "bankAccountNumber must be 9 to 18 digits")
	}
	if ifsc := strings.TrimSpace(f.bank.BankIFSCCode); ifsc != "" && !validator.IsValidIFSC(ifsc) {
		errs.Add("bankDetails.bankIFSCCode", "bankIFSCCode must look like SBIN0001234")
	}
	if pan := strings.TrimSpace(f.pan); pan != "" && !validator.IsValidPAN(pan) {
		errs.Add("PANNumber", "PANNumber must look like ABCDE1234F")
	}
	if a := strings.TrimSpace(f.aadhaar); a != "" && (len(a) != 12 || !validator.IsNumeric(a)) {
		errs.Add("aadhaarNo", "aadhaarNo must be 12 digits")
	}
	if u := strings.TrimSpace(f.uan); u != "" && (len(u) != 12 || !validator.IsNumeric(u)) {
		errs.Add("UANNo", "UANNo must be 12 digits")
	}
}

func validateAmounts(errs *validator.ValidationErrors, amounts map[string]*decimal.Decimal) {
	for _, field := range []string{"salary", "allowance", "hra", "esic", "epf"} {
		if v := amounts[field]; v != nil && v.IsNegative() {
			errs.Add(field, field+" must not be negative")
		}
	}
}

func normalizeBank(b BankDetails) BankDetails {
	return BankDetails{
		BankName:          strings.TrimSpace(b.BankName),
		BankBranch:        strings.TrimSpace(b.BankBranch),
		BankAccountNumber: strings.TrimSpace(b.BankAccountNumber),
		BankIFSCCode:      strings.ToUpper(strings.TrimSpace(b.BankIFSCCode)),
	}
}

func parseOptionalDate(s string) *time.Time {
	if t, ok := validator.IsValidDate(strings.TrimSpace(s)); ok {
		return &t
	}
	return nil
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
