package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/validator"
	"github.com/spf13/cobra"
)

func newPayrollCommand(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Compute, inspect and export payruns.",
	}
	cmd.AddCommand(
		newPayrollProcessCommand(open),
		newPayrollListCommand(open),
		newPayrollExportCommand(open),
	)
	return cmd
}

func newPayrollProcessCommand(open opener) *cobra.Command {
	var req payroll.ProcessFromAttendanceRequest

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Derive payruns from the attendance of an exact report period.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := req.Validate(); err != nil {
				return err
			}

			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.services.Payroll.ComputePayrollForPeriod(cmd.Context(), req)
			if err != nil {
				return err
			}
			printProcessSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.PeriodFrom, "from", "", "report period start")
	cmd.Flags().StringVar(&req.PeriodTo, "to", "", "report period end")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

type monthFlags struct {
	month int
	year  int
}

func (m *monthFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&m.month, "month", 0, "salary month (1-12)")
	cmd.Flags().IntVar(&m.year, "year", 0, "salary year")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("year")
}

func (m *monthFlags) validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidMonth(m.month) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if !validator.IsValidYear(m.year) {
		errs.Add("year", "year must be a four-digit year")
	}
	return errs.Err()
}

func newPayrollListCommand(open opener) *cobra.Command {
	var period monthFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show every payrun of a salary month.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := period.validate(); err != nil {
				return err
			}

			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			rows, err := s.services.Payroll.GetByMonth(cmd.Context(), period.month, period.year)
			if err != nil {
				return err
			}
			return printPayrollTable(cmd.OutOrStdout(), rows)
		},
	}
	period.bind(cmd)
	return cmd
}

func newPayrollExportCommand(open opener) *cobra.Command {
	var (
		period monthFlags
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the payruns of a salary month to an xlsx workbook.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := period.validate(); err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("payroll_%s_%d.xlsx", payroll.MonthName(period.month), period.year)
			}

			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var buf bytes.Buffer
			if err := s.services.Payroll.ExportMonth(cmd.Context(), period.month, period.year, &buf); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), success("Wrote "+out))
			return nil
		},
	}
	period.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default payroll_<Month>_<year>.xlsx)")
	return cmd
}
