package main

import (
	"github.com/spf13/cobra"

	"huronportal/internal/database"
	"huronportal/internal/seed"
)

func newSeedCommand() *cobra.Command {
	var withMachineTypes, withDemo bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and optional reference data",
		Long: `Creates the "admin" account when it does not exist yet, using seed.admin_password.
--machine-types loads the factory machine type catalogue and --demo adds demo clients and machines.
Running it again only adds what is missing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, false)
			if err != nil {
				return err
			}
			defer func() { _ = a.close() }()

			db, err := a.connector.DB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}

			seeder := seed.New(a.users, a.machineTypes, a.clients, a.machines,
				a.clientService(nil), a.machineService(nil), a.hasher)

			if _, err := seeder.Admin(ctx, a.cfg.Seed.AdminPassword); err != nil {
				return err
			}
			if withMachineTypes {
				if _, err := seeder.MachineTypes(ctx); err != nil {
					return err
				}
			}
			if withDemo {
				if _, err := seeder.Demo(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withMachineTypes, "machine-types", false, "Load the machine type catalogue")
	cmd.Flags().BoolVar(&withDemo, "demo", false, "Create demo clients and machines")
	return cmd
}
