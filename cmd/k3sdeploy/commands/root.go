// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the k3sdeploy CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "k3sdeploy",
		Short: "Deploy and manage k3s cluster VMs on Proxmox",
	}

	// Power commands
	cmd.AddCommand(Start())
	cmd.AddCommand(Stop())
	cmd.AddCommand(Restart())

	// Configuration commands
	cmd.AddCommand(ConfigureVM())
	cmd.AddCommand(Provision())

	// Utility commands
	cmd.AddCommand(CheckVersion())
	cmd.AddCommand(Version())

	return cmd
}
