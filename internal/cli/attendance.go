package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/attendance"
	"github.com/spf13/cobra"
)

func newAttendanceCommand(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Manage attendance records.",
	}
	cmd.AddCommand(newAttendanceImportCommand(open))
	return cmd
}

func newAttendanceImportCommand(open opener) *cobra.Command {
	var req attendance.ImportFileRequest

	cmd := &cobra.Command{
		Use:     "import <file>",
		Short:   "Import an .xlsx, .xls or .csv attendance sheet.",
		Example: `  payrollctl attendance import march.xlsx --from 2025-03-01 --to 2025-03-31`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.FileName = filepath.Base(args[0])
			if err := req.Validate(); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open attendance file: %w", err)
			}
			defer f.Close()

			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.services.Attendance.ImportFile(cmd.Context(), f, req)
			if err != nil {
				return err
			}
			printUploadSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.PeriodFrom, "from", "", "report period start (YYYY-MM-DD or DD-MM-YYYY)")
	cmd.Flags().StringVar(&req.PeriodTo, "to", "", "report period end (YYYY-MM-DD or DD-MM-YYYY)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
