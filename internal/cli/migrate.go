package cli

import (
	"github.com/freelanceos/freelanceos/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return database.Migrate(cfg.Database)
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
