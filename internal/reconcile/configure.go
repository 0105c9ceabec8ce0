package reconcile

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/imamik/k3sdeploy/internal/cluster"
	"github.com/imamik/k3sdeploy/internal/config"
	"github.com/imamik/k3sdeploy/internal/platform/proxmox"
)

// ConfigureOptions controls a configuration reconciliation run.
type ConfigureOptions struct {
	// Force issues the configuration call even when no field differs from
	// the live state.
	Force bool
	// RestartAfter reboots the nodes whose staged configuration requires a
	// restart, instead of only printing a reminder.
	RestartAfter bool
	// SSHKey is the resolved public key material, empty for no injection.
	SSHKey string
}

// ConfigureResult reports what a configuration run changed.
type ConfigureResult struct {
	// Modified lists nodes whose configuration call succeeded.
	Modified []*cluster.Node
	// NeedsRestart lists the subset of Modified that was running at
	// mutation time; their staged cloud-init changes only apply after a
	// reboot. Up-to-date nodes never appear here.
	NeedsRestart []*cluster.Node
}

// ReconcileConfiguration walks the all-nodes view in sorted (host, vmid)
// order and converges each VM's cloud-init network configuration to the
// desired static layout. The ordering matters: nodes without an explicit
// address receive consecutive addresses from the configured range, so the
// Nth node in sorted order gets the Nth address.
//
// Per-node failures (status fetch, config fetch, mutation) are logged and
// skipped. Only whole-run-invalidating conditions fail the call: an
// exhausted address range aborts before any further mutation.
func ReconcileConfiguration(ctx context.Context, client proxmox.Client, reg *cluster.Registry, cfg *config.Config, opts ConfigureOptions) (*ConfigureResult, error) {
	alloc, err := newIPAllocator(cfg.Network.IPRangeStart, cfg.Network.IPRangeEnd)
	if err != nil {
		return nil, err
	}

	ipConfigKey := fmt.Sprintf("ipconfig%d", cfg.Network.IPConfigSlot)
	targetNameserver := strings.Join(cfg.Network.Nameservers, " ")
	result := &ConfigureResult{}

	log.Printf("Reconciling network configuration for %d node(s)...", reg.Len())
	for _, node := range reg.All() {
		status, err := client.GetVMStatus(ctx, node.Host, node.VMID)
		if err != nil {
			log.Printf("Warning: could not get status for %s, assuming unknown: %v", node, err)
			node.Status = cluster.StatusUnknown
		} else {
			node.Status = cluster.PowerStatus(status)
		}

		live, ok := node.CachedConfig()
		if !ok || live[ipConfigKey] == "" {
			live, err = client.GetVMConfig(ctx, node.Host, node.VMID)
			if err != nil {
				log.Printf("Error: could not get config for %s, skipping: %v", node, err)
				continue
			}
			node.SetCachedConfig(live)
			if name := live["name"]; name != "" && node.Name == "" {
				node.Name = name
			}
		}

		ip := node.StaticIP
		if ip == "" {
			addr, err := alloc.Next()
			if err != nil {
				return nil, fmt.Errorf("configuring %s: %w (range %s - %s)",
					node, err, cfg.Network.IPRangeStart, cfg.Network.IPRangeEnd)
			}
			ip = addr.String()
		}

		target := proxmox.NetworkTarget{
			IPConfigSlot: cfg.Network.IPConfigSlot,
			IPConfig:     fmt.Sprintf("ip=%s/%d,gw=%s", ip, cfg.Network.CIDR, cfg.Network.Gateway),
			Nameserver:   targetNameserver,
			SearchDomain: cfg.Network.SearchDomain,
			SSHKeys:      opts.SSHKey,
		}

		if !opts.Force && !configDiffers(live, ipConfigKey, target) {
			log.Printf("%s on %s is already configured with %s, skipping", node.DisplayName(), node.Host, ip)
			continue
		}

		log.Printf("Assigning %s (gw %s, dns %q) to %s", target.IPConfig, cfg.Network.Gateway, targetNameserver, node.DisplayName())
		if err := client.SetVMNetworkConfig(ctx, node.Host, node.VMID, target); err != nil {
			// The cursor has already moved; the address stays reserved for
			// this node and is not handed to the next one.
			log.Printf("Error: could not configure %s: %v", node, err)
			continue
		}

		// The cached snapshot no longer reflects the VM; drop it so a later
		// run re-fetches instead of diffing against stale state.
		node.InvalidateConfig()

		result.Modified = append(result.Modified, node)
		if node.Status == cluster.StatusRunning {
			result.NeedsRestart = append(result.NeedsRestart, node)
		}
	}

	finishConfigure(ctx, client, result, opts)
	return result, nil
}

// configDiffers compares the composed target against the live VM
// configuration field by field. Empty target fields are not managed and
// never count as a difference.
func configDiffers(live map[string]string, ipConfigKey string, target proxmox.NetworkTarget) bool {
	if live[ipConfigKey] != target.IPConfig {
		return true
	}
	if target.Nameserver != "" && live["nameserver"] != target.Nameserver {
		return true
	}
	if target.SearchDomain != "" && live["searchdomain"] != target.SearchDomain {
		return true
	}
	return false
}

// finishConfigure handles restart coordination: reboot the flagged nodes
// when requested, otherwise emit one consolidated reminder.
func finishConfigure(ctx context.Context, client proxmox.Client, result *ConfigureResult, opts ConfigureOptions) {
	if len(result.NeedsRestart) == 0 {
		return
	}

	if opts.RestartAfter {
		log.Printf("Restarting %d modified node(s) to apply cloud-init changes...", len(result.NeedsRestart))
		// Restart only what was actually staged; untouched nodes keep
		// running undisturbed.
		if err := ReconcilePower(ctx, client, cluster.NewRegistry(result.NeedsRestart), PowerRestart); err != nil {
			log.Printf("Error: restart pass failed: %v", err)
		}
		return
	}

	names := make([]string, 0, len(result.NeedsRestart))
	for _, node := range result.NeedsRestart {
		names = append(names, node.DisplayName())
	}
	log.Printf("The following running VMs were modified and need a restart for cloud-init changes to apply: %s",
		strings.Join(names, ", "))
}
