package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k3sdeploy/cmd/k3sdeploy/handlers"
)

// ConfigureVM returns the command that converges cloud-init network and
// identity configuration on all discovered cluster VMs.
//
// Each VM is diffed against its live configuration first; VMs already at
// the desired state are skipped unless --force is given. Running VMs that
// were modified need a restart for cloud-init to pick up the change,
// which --restart performs automatically.
//
// Optional flags:
//
//	--force:   write configuration even when the live state already matches
//	--restart: restart modified running VMs afterwards
//
// Examples:
//
//	# Converge network config, skipping up-to-date VMs
//	k3sdeploy configure-vm
//
//	# Rewrite config everywhere and restart what changed
//	k3sdeploy configure-vm --force --restart
func ConfigureVM() *cobra.Command {
	var (
		configPath   string
		force        bool
		restartAfter bool
	)

	cmd := &cobra.Command{
		Use:   "configure-vm",
		Short: "Converge static IP and SSH key configuration on cluster VMs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ConfigureVM(cmd.Context(), configPath, force, restartAfter)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&force, "force", false, "Apply configuration even when live state already matches")
	cmd.Flags().BoolVar(&restartAfter, "restart", false, "Restart modified running VMs afterwards")

	return cmd
}

// Provision returns the command reserved for the remote k3s installation
// workflow. Discovery and connectivity run so misconfiguration surfaces
// early, but no installation is performed yet.
func Provision() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Install k3s on the cluster VMs (not yet implemented)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Provision(cmd.Context(), configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
