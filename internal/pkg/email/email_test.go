package email

import (
	"testing"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayslipSubject(t *testing.T) {
	d := PayslipData{MonthName: "March", Year: 2025, EmployeeName: "Asha Rao"}
	assert.Equal(t, "Payslip for March 2025 - Asha Rao", d.Subject())
}

func TestRenderPayslip(t *testing.T) {
	tmpl, err := ParseTemplates()
	require.NoError(t, err)

	body, err := RenderPayslip(tmpl, PayslipData{
		CompanyName:     "Acme <Textiles>",
		MonthName:       "March",
		Year:            2025,
		EmployeeID:      "E1",
		EmployeeName:    "Asha Rao",
		Basic:           "20800.00",
		OT1Hours:        "0.75",
		OT1Amount:       "93.75",
		Gross:           "20893.75",
		TotalDeductions: "2496.00",
		NetPay:          "18397.75",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Payslip for March 2025")
	assert.Contains(t, body, "Acme &lt;Textiles&gt;")
	assert.Contains(t, body, "OT @1.25 (0.75 hrs)")
	assert.Contains(t, body, "18397.75")
}

func TestSendPayslip_SkipsWithoutSMTP(t *testing.T) {
	svc, err := NewEmailService(config.SMTPConfig{})
	require.NoError(t, err)
	assert.NoError(t, svc.SendPayslip("asha@example.com", PayslipData{EmployeeName: "Asha"}))
}
