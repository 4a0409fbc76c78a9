package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tenantctl",
		Short:        "Tenant lifecycle administration",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newMigrateCmd(),
		newOnboardCmd(),
		newPlanCmd(),
		newStatusCmd("suspend", "Suspend a tenant; requests are denied until reactivated"),
		newStatusCmd("reactivate", "Reactivate a suspended tenant"),
		newStatusCmd("cancel", "Cancel a tenant subscription"),
		newOffboardCmd(),
		newListCmd(),
	)
	return cmd
}
