package handlers

import (
	"context"

	"github.com/imamik/k3sdeploy/internal/reconcile"
	"github.com/imamik/k3sdeploy/internal/ui"
)

// Power converges the power state of all discovered cluster VMs toward
// the requested action (start, stop or restart).
//
// Individual node failures are logged by the reconciler and do not fail
// the command; only configuration and discovery errors do.
func Power(ctx context.Context, configPath, action string) error {
	powerAction, err := reconcile.ParsePowerAction(action)
	if err != nil {
		return err
	}

	_, client, reg, err := setup(ctx, configPath)
	if err != nil {
		return err
	}

	ui.Section("Reconciling power state (%s) for %d VMs", action, reg.Len())

	if err := reconcile.ReconcilePower(ctx, client, reg, powerAction); err != nil {
		return err
	}

	ui.Success("Power reconciliation complete")
	return nil
}
