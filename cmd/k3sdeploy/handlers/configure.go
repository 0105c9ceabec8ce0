package handlers

import (
	"context"

	"github.com/imamik/k3sdeploy/internal/discovery"
	"github.com/imamik/k3sdeploy/internal/reconcile"
	"github.com/imamik/k3sdeploy/internal/ui"
)

// ConfigureVM converges cloud-init network and identity configuration on
// all discovered cluster VMs.
//
// The SSH public key is resolved from, in order: the environment or config
// file, the node definition file, and finally the configured key file. An
// unresolvable key downgrades to a warning; address configuration still
// proceeds without key injection.
func ConfigureVM(ctx context.Context, configPath string, force, restartAfter bool) error {
	cfg, client, reg, err := setup(ctx, configPath)
	if err != nil {
		return err
	}

	nodeFileKey, _ := discovery.SSHKeyFromNodeFile(cfg.NodeFile)
	sshKey, ok := reconcile.ResolveSSHKey(cfg.SSH, nodeFileKey)
	if !ok {
		ui.Warn("No usable SSH public key resolved; skipping key injection")
	}

	ui.Section("Reconciling network configuration for %d VMs", reg.Len())

	result, err := reconcile.ReconcileConfiguration(ctx, client, reg, cfg, reconcile.ConfigureOptions{
		Force:        force,
		RestartAfter: restartAfter,
		SSHKey:       sshKey,
	})
	if err != nil {
		return err
	}

	if len(result.Modified) == 0 {
		ui.Success("All VMs already at desired configuration")
		return nil
	}

	ui.Success("Updated configuration on %d VM(s)", len(result.Modified))
	if len(result.NeedsRestart) > 0 && !restartAfter {
		ui.Warn("%d running VM(s) need a restart to apply staged changes (use --restart)", len(result.NeedsRestart))
	}
	return nil
}

// Provision is reserved for the remote k3s installation workflow. It
// validates configuration, connectivity and discovery so problems surface
// now, then reports that installation is not implemented yet.
func Provision(ctx context.Context, configPath string) error {
	cfg, _, reg, err := setup(ctx, configPath)
	if err != nil {
		return err
	}

	primary, ok := reg.Primary()
	if !ok {
		ui.Warn("No server node found; a k3s cluster needs at least one")
	} else {
		ui.Info("Primary server node: %s", primary)
	}

	ui.Info("Discovered %d VM(s): %d server, %d agent, %d storage",
		reg.Len(), len(reg.Servers()), len(reg.Agents()), len(reg.Storage()))
	ui.Warn("k3s installation (version %s) is not implemented yet", cfg.K3s.Version)
	return nil
}
