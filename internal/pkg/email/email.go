package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending emails
type EmailService interface {
	SendPayslip(to string, data PayslipData) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	backoff   time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := ParseTemplates()
	if err != nil {
		return nil, err
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		backoff:   time.Second,
	}, nil
}

// ParseTemplates parses the embedded mail templates.
func ParseTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return tmpl, nil
}

// PayslipData is everything printed on a payslip. Amounts are preformatted.
type PayslipData struct {
	CompanyName    string
	CompanyAddress string
	MonthName      string
	Year           int

	EmployeeID    string
	EmployeeName  string
	Designation   string
	Department    string
	DateOfJoining string
	MobileNumber  string
	AadhaarNo     string
	PANNumber     string
	UANNo         string
	BankName      string
	BankBranch    string
	BankAccount   string
	BankIFSC      string

	PayableDays  string
	LeaveDays    string
	PerDaySalary string

	Basic           string
	Incentives      string
	Allowances      string
	HouseRent       string
	OT1Hours        string
	OT1Amount       string
	OT2Hours        string
	OT2Amount       string
	Gross           string
	EPF             string
	ESIC            string
	Advance         string
	PaymentLoss     string
	TotalDeductions string
	NetPay          string
}

// Subject returns the mail subject line of a payslip.
func (d PayslipData) Subject() string {
	return fmt.Sprintf("Payslip for %s %d - %s", d.MonthName, d.Year, d.EmployeeName)
}

// RenderPayslip renders the payslip body.
func RenderPayslip(tmpl *template.Template, data PayslipData) (string, error) {
	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "payslip.html", data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}

// SendPayslip renders and sends a payslip email
func (s *emailServiceImpl) SendPayslip(to string, data PayslipData) error {
	body, err := RenderPayslip(s.templates, data)
	if err != nil {
		return err
	}
	return s.sendHTML(to, data.Subject(), body)
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := smtp.SendMail(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Exponential backoff: 1s, 2s
		if attempt < maxRetries {
			time.Sleep(s.backoff << (attempt - 1))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
