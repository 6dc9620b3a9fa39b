package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title           Huron Portal API
// @version         1.0
// @description     Administration API for CNC machines, clients, the machine type catalogue and portal users.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name session
func main() {
	rootCmd := &cobra.Command{
		Use:          "huronportal",
		Short:        "Huron Portal - CNC machine administration API",
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSeedCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
