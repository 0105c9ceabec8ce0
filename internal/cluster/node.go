// Package cluster holds the in-memory model of the k3s cluster: the VMs
// that act as nodes, their roles, and the deduplicated, deterministically
// ordered registry built from them.
package cluster

import "fmt"

// PowerStatus is the observed power state of a VM as reported by Proxmox.
type PowerStatus string

const (
	StatusRunning PowerStatus = "running"
	StatusStopped PowerStatus = "stopped"
	StatusUnknown PowerStatus = "unknown"
)

// NodeKey is the identity of a VM: the Proxmox host node it lives on and
// its vmid. VMIDs are only unique within a host node.
type NodeKey struct {
	Host string
	VMID int
}

func (k NodeKey) String() string {
	return fmt.Sprintf("%s:%d", k.Host, k.VMID)
}

// Node is one cluster-role VM. Identity is (Host, VMID) only; name, tags
// and status are metadata and may differ between discovery sources for the
// same VM.
type Node struct {
	Host string
	VMID int
	Role Role

	// Name is the VM display name, if known.
	Name string
	// StaticIP is an explicit address declared in the node file. When set,
	// configuration reconciliation uses it instead of allocating from the
	// range.
	StaticIP string
	// Tags as received from Proxmox, in order.
	Tags []string

	// Status is the last observed power status, refreshed in place during
	// reconciliation.
	Status PowerStatus

	// config caches the live VM configuration for the duration of one
	// reconciliation run. It is never carried across registry rebuilds.
	config map[string]string
}

// Key returns the node's identity.
func (n *Node) Key() NodeKey {
	return NodeKey{Host: n.Host, VMID: n.VMID}
}

func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s:%d (%s)", n.Host, n.VMID, n.Name)
	}
	return fmt.Sprintf("%s:%d", n.Host, n.VMID)
}

// DisplayName returns the VM name, falling back to the vmid.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("VMID %d", n.VMID)
}

// CachedConfig returns the live configuration snapshot cached on this node,
// if one has been fetched during the current run.
func (n *Node) CachedConfig() (map[string]string, bool) {
	if n.config == nil {
		return nil, false
	}
	return n.config, true
}

// SetCachedConfig stores a live configuration snapshot on the node.
func (n *Node) SetCachedConfig(cfg map[string]string) {
	n.config = cfg
}

// InvalidateConfig drops the cached configuration snapshot.
func (n *Node) InvalidateConfig() {
	n.config = nil
}
