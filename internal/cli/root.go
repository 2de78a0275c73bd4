package cli

import (
	"github.com/freelanceos/freelanceos/internal/config"
	"github.com/spf13/cobra"
)

var Version = "dev"

var configPath string

// RootCmd serves the API when called without a subcommand.
var RootCmd = &cobra.Command{
	Use:     "freelanceos",
	Version: Version,
	Short:   "Time tracking and invoicing for freelancers",
	Long: `FreelanceOS tracks billable time per activity, turns finished work into
invoices, and watches yearly revenue against the regulatory caps.`,
	SilenceUsage: true,
	RunE:         runServeCmd,
}

// Execute runs the command line. It is called once by main.main().
func Execute() error {
	return RootCmd.Execute()
}

func loadConfig() (config.Application, error) {
	return config.Load(configPath)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "./config/application.yaml",
		"Path to the YAML configuration file")
}
