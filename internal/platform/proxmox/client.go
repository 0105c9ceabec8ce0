// Package proxmox wraps the Proxmox VE API behind the narrow surface the
// rest of the tool consumes. Core packages depend on the Client interface
// only; the real implementation lives in real.go and an in-memory fake for
// tests lives in the proxmoxtest subpackage.
package proxmox

import "context"

// PowerAction is a VM power control operation. The tool's "stop" command
// maps to ActionShutdown: a graceful guest shutdown, not a hard stop.
type PowerAction string

const (
	ActionStart    PowerAction = "start"
	ActionShutdown PowerAction = "shutdown"
	ActionReboot   PowerAction = "reboot"
)

// NetworkTarget is the desired cloud-init network and identity
// configuration for one VM.
type NetworkTarget struct {
	// IPConfigSlot selects which cloud-init ipconfigN key to write.
	IPConfigSlot int
	// IPConfig is the composed value, e.g. "ip=10.10.0.201/24,gw=10.10.0.1".
	IPConfig string
	// Nameserver is a space-separated DNS server list. Empty means leave
	// unset.
	Nameserver string
	// SearchDomain is the DNS search domain. Empty means leave unset.
	SearchDomain string
	// SSHKeys is raw authorized-keys material. The client URL-encodes it as
	// the Proxmox cloud-init API requires. Empty means no key injection.
	SSHKeys string
}

// Client is the Proxmox VE operation surface consumed by discovery and
// reconciliation. Every call is one blocking API round-trip.
type Client interface {
	// ListHostNodes returns the names of the Proxmox cluster host nodes,
	// sorted ascending.
	ListHostNodes(ctx context.Context) ([]string, error)

	// ListVMIDs returns the vmids of the QEMU VMs on one host node, sorted
	// ascending. An unreachable host yields an error for which
	// IsConnectivity reports true.
	ListVMIDs(ctx context.Context, host string) ([]int, error)

	// GetVMConfig returns the raw configuration of a VM as a flat key-value
	// map (name, tags, ipconfigN, nameserver, searchdomain, ...).
	GetVMConfig(ctx context.Context, host string, vmid int) (map[string]string, error)

	// GetVMStatus returns the current power status of a VM ("running" or
	// "stopped").
	GetVMStatus(ctx context.Context, host string, vmid int) (string, error)

	// ControlVM issues a power control operation against a VM.
	ControlVM(ctx context.Context, host string, vmid int, action PowerAction) error

	// SetVMNetworkConfig writes the cloud-init network configuration of a
	// VM. The change is staged; a running VM must reboot for cloud-init to
	// apply it.
	SetVMNetworkConfig(ctx context.Context, host string, vmid int, target NetworkTarget) error
}
