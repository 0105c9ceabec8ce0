package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k3sdeploy/cmd/k3sdeploy/handlers"
)

// Start returns the command that powers on all discovered cluster VMs.
//
// VMs already running are left alone; only stopped VMs receive a start
// call. Hosts or VMs that cannot be reached are logged and skipped.
func Start() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start all k3s cluster VMs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Power(cmd.Context(), configPath, "start")
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

// Stop returns the command that gracefully shuts down all discovered
// cluster VMs. Stopped VMs are left alone.
func Stop() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Gracefully shut down all k3s cluster VMs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Power(cmd.Context(), configPath, "stop")
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

// Restart returns the command that reboots all discovered cluster VMs.
// VMs that are not running are started instead of rebooted.
func Restart() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart all k3s cluster VMs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Power(cmd.Context(), configPath, "restart")
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

// addConfigFlag binds the shared --config flag.
func addConfigFlag(cmd *cobra.Command, configPath *string) {
	cmd.Flags().StringVarP(configPath, "config", "c", "", "Path to configuration file (default: k3sdeploy.yaml)")
}
