// Package reconcile converges the observed state of cluster VMs toward a
// desired state: power state toward a requested action, and cloud-init
// network/identity configuration toward the configured static layout. Both
// reconcilers issue the minimal set of mutating calls and treat per-node
// failures as local: they log and move on, never aborting the rest of the
// fan-out.
package reconcile

import (
	"context"
	"fmt"
	"log"

	"github.com/imamik/k3sdeploy/internal/cluster"
	"github.com/imamik/k3sdeploy/internal/platform/proxmox"
)

// PowerAction is a requested power reconciliation target.
type PowerAction string

const (
	PowerStart   PowerAction = "start"
	PowerStop    PowerAction = "stop"
	PowerRestart PowerAction = "restart"
)

// ParsePowerAction validates a CLI-provided action name.
func ParsePowerAction(s string) (PowerAction, error) {
	switch PowerAction(s) {
	case PowerStart, PowerStop, PowerRestart:
		return PowerAction(s), nil
	default:
		return "", fmt.Errorf("invalid power action %q (expected start, stop or restart)", s)
	}
}

// ReconcilePower converges every node in the registry toward the requested
// action. Each node is handled independently: its current status is
// fetched, the minimal control call (if any) is issued, and failures are
// logged without stopping the remaining nodes. The observed status is
// recorded on each node as a side effect.
func ReconcilePower(ctx context.Context, client proxmox.Client, reg *cluster.Registry, action PowerAction) error {
	if _, err := ParsePowerAction(string(action)); err != nil {
		return err
	}

	log.Printf("Reconciling power state toward %q for %d node(s)...", action, reg.Len())
	for _, node := range reg.All() {
		status, err := client.GetVMStatus(ctx, node.Host, node.VMID)
		if err != nil {
			log.Printf("Error: could not get status for %s, skipping: %v", node, err)
			continue
		}
		node.Status = cluster.PowerStatus(status)

		if err := stepPower(ctx, client, node, action); err != nil {
			log.Printf("Error: power action failed for %s: %v", node, err)
		}
	}
	return nil
}

// stepPower issues at most one control call for a node, given its observed
// status.
func stepPower(ctx context.Context, client proxmox.Client, node *cluster.Node, action PowerAction) error {
	switch action {
	case PowerStart:
		if node.Status == cluster.StatusRunning {
			log.Printf("VM %s is already running", node)
			return nil
		}
		log.Printf("VM %s is %q, starting...", node, node.Status)
		return client.ControlVM(ctx, node.Host, node.VMID, proxmox.ActionStart)

	case PowerStop:
		if node.Status == cluster.StatusStopped {
			log.Printf("VM %s is already stopped", node)
			return nil
		}
		log.Printf("VM %s is %q, shutting down gracefully...", node, node.Status)
		return client.ControlVM(ctx, node.Host, node.VMID, proxmox.ActionShutdown)

	case PowerRestart:
		if node.Status != cluster.StatusRunning {
			// Rebooting a powered-off VM is undefined; degrade to start.
			log.Printf("VM %s is %q, starting instead of rebooting", node, node.Status)
			return client.ControlVM(ctx, node.Host, node.VMID, proxmox.ActionStart)
		}
		log.Printf("VM %s is running, rebooting...", node)
		return client.ControlVM(ctx, node.Host, node.VMID, proxmox.ActionReboot)
	}
	return fmt.Errorf("invalid power action %q", action)
}
