package cluster

import "sort"

// Registry is the canonical collection of cluster-role VMs for one
// discovery pass. Every view is deduplicated by (host, vmid) and sorted by
// host name, then vmid. The ordering is the contract downstream steps rely
// on: the first server in sorted order is the primary node, and positional
// IP allocation walks the all-nodes view in this order.
//
// A Registry is built wholesale by NewRegistry and never patched
// incrementally; a new discovery pass replaces it entirely.
type Registry struct {
	all     []*Node
	servers []*Node
	agents  []*Node
	storage []*Node
}

// NewRegistry builds a registry from discovered nodes. Duplicate
// (host, vmid) entries collapse to the first occurrence.
func NewRegistry(nodes []*Node) *Registry {
	r := &Registry{}
	seen := make(map[NodeKey]bool, len(nodes))
	for _, n := range nodes {
		if seen[n.Key()] {
			continue
		}
		seen[n.Key()] = true
		r.all = append(r.all, n)
		switch n.Role {
		case RoleServer:
			r.servers = append(r.servers, n)
		case RoleAgent:
			r.agents = append(r.agents, n)
		case RoleStorage:
			r.storage = append(r.storage, n)
		}
	}
	for _, view := range [][]*Node{r.all, r.servers, r.agents, r.storage} {
		sortNodes(view)
	}
	return r
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Host != nodes[j].Host {
			return nodes[i].Host < nodes[j].Host
		}
		return nodes[i].VMID < nodes[j].VMID
	})
}

// All returns every cluster node in sorted order.
func (r *Registry) All() []*Node { return copyNodes(r.all) }

// Servers returns the control plane nodes in sorted order.
func (r *Registry) Servers() []*Node { return copyNodes(r.servers) }

// Agents returns the worker nodes in sorted order.
func (r *Registry) Agents() []*Node { return copyNodes(r.agents) }

// Storage returns the storage nodes in sorted order.
func (r *Registry) Storage() []*Node { return copyNodes(r.storage) }

// copyNodes shields the registry's views from appending or reordering
// callers. The nodes themselves are shared; status and config cache
// updates during reconciliation are meant to stick.
func copyNodes(nodes []*Node) []*Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*Node, len(nodes))
	copy(out, nodes)
	return out
}

// Len reports the number of cluster nodes.
func (r *Registry) Len() int { return len(r.all) }

// Primary returns the elected primary node: the first server in sorted
// order. The second return is false when no servers were discovered.
func (r *Registry) Primary() (*Node, bool) {
	if len(r.servers) == 0 {
		return nil, false
	}
	return r.servers[0], true
}

// SecondaryServers returns the control plane nodes other than the primary.
func (r *Registry) SecondaryServers() []*Node {
	if len(r.servers) <= 1 {
		return nil
	}
	return copyNodes(r.servers[1:])
}
