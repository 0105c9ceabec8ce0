package discovery

import (
	"context"
	"fmt"
	"log"

	"github.com/imamik/k3sdeploy/internal/cluster"
	"github.com/imamik/k3sdeploy/internal/platform/proxmox"
)

// DiscoverByTags scans every Proxmox host node for VMs whose tags classify
// them into exactly one cluster role.
//
// Failure handling is deliberately layered: failing to list the host nodes
// at all aborts discovery, an unreachable host contributes zero VMs with a
// warning, and a single VM whose config cannot be fetched is skipped with
// a warning.
func DiscoverByTags(ctx context.Context, client proxmox.Client, roleTags cluster.RoleTags) (*cluster.Registry, error) {
	log.Printf("Discovering k3s nodes by Proxmox tags...")

	hosts, err := client.ListHostNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering nodes: %w", err)
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("discovering nodes: no proxmox host nodes found")
	}

	var nodes []*cluster.Node
	for _, host := range hosts {
		vmids, err := client.ListVMIDs(ctx, host)
		if err != nil {
			log.Printf("Warning: skipping host %s: %v", host, err)
			continue
		}

		for _, vmid := range vmids {
			cfg, err := client.GetVMConfig(ctx, host, vmid)
			if err != nil {
				log.Printf("Warning: skipping VM %d on %s: %v", vmid, host, err)
				continue
			}

			tags := cluster.SplitTags(cfg["tags"])
			role, ok := cluster.ClassifyTags(tags, roleTags)
			if !ok {
				continue
			}

			node := &cluster.Node{
				Host: host,
				VMID: vmid,
				Role: role,
				Name: cfg["name"],
				Tags: tags,
			}
			node.SetCachedConfig(cfg)
			nodes = append(nodes, node)
			log.Printf("Discovered k3s %s node %s", role, node)
		}
	}

	if len(nodes) == 0 {
		log.Printf("Warning: no VMs carry any of the role tags (%s, %s, %s)",
			roleTags.Server, roleTags.Agent, roleTags.Storage)
	}
	return cluster.NewRegistry(nodes), nil
}
