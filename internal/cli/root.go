// Package cli implements payrollctl, the operator command line for the
// attendance and payroll pipeline.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/app"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/config"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/database"
	"github.com/spf13/cobra"
)

var version = "dev"

// session holds what a command needs once it has connected.
type session struct {
	cfg      *config.Config
	db       *database.DB
	services *app.Services
}

func (s *session) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// opener loads configuration and connects. Tests replace it.
type opener func(ctx context.Context) (*session, error)

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	services, err := app.NewServices(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &session{cfg: cfg, db: db, services: services}, nil
}

// NewRootCommand builds the payrollctl command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openSession, os.Stdout)
}

func newRootCommand(open opener, out io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "payrollctl",
		Short:         "Operate the attendance to payroll pipeline.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newMigrateCommand(),
		newAttendanceCommand(open),
		newPayrollCommand(open),
	)
	return root
}

// Execute runs payrollctl and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failure("Error:"), err)
		return 1
	}
	return 0
}
