package cli

import (
	"fmt"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/config"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema.",
	}
	for _, dir := range []database.Direction{database.Up, database.Down} {
		cmd.AddCommand(&cobra.Command{
			Use:   string(dir),
			Short: fmt.Sprintf("Migrate the schema %s.", dir),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				if err := database.Migrate(cfg.MigrationURL(), dir); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), success("Migrated "+string(dir)))
				return nil
			},
		})
	}
	return cmd
}
