// Package discovery resolves the authoritative set of cluster-role VMs.
// Two mutually exclusive strategies feed the registry: a declarative node
// file, and a live scan of Proxmox tags. The file wins whenever it exists
// and declares at least one node; the two sources are never merged.
package discovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/imamik/k3sdeploy/internal/cluster"
)

// NodeFileError marks a node file that exists but cannot be used: invalid
// JSON, a missing required field, or an unrecognized role. The whole file
// is rejected; there is no partial recovery.
type NodeFileError struct {
	Path string
	Err  error
}

func (e *NodeFileError) Error() string {
	return fmt.Sprintf("invalid node file %s: %v", e.Path, e.Err)
}

func (e *NodeFileError) Unwrap() error { return e.Err }

// IsNodeFileError checks whether an error came from node file parsing.
func IsNodeFileError(err error) bool {
	var nfe *NodeFileError
	return errors.As(err, &nfe)
}

type nodeFile struct {
	Nodes  []nodeFileHost `json:"nodes"`
	SSHKey string         `json:"ssh_key"`
}

type nodeFileHost struct {
	ID  string       `json:"id"`
	VMs []nodeFileVM `json:"vms"`
}

type nodeFileVM struct {
	VMID int    `json:"vmid"`
	Role string `json:"role"`
	Name string `json:"name"`
	IP   string `json:"ip"`
}

// LoadNodeFile reads the declarative node file. It returns (nil, nil) when
// the file does not exist, and a NodeFileError when it exists but is
// malformed. An existing file that declares no VMs yields an empty, non-nil
// registry; the caller decides whether to fall back to tag discovery.
func LoadNodeFile(path string) (*cluster.Registry, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &NodeFileError{Path: path, Err: err}
	}

	var parsed nodeFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &NodeFileError{Path: path, Err: err}
	}

	var nodes []*cluster.Node
	for _, host := range parsed.Nodes {
		if host.ID == "" {
			return nil, &NodeFileError{Path: path, Err: fmt.Errorf("node entry is missing required field %q", "id")}
		}
		for _, vm := range host.VMs {
			if vm.VMID == 0 {
				return nil, &NodeFileError{Path: path, Err: fmt.Errorf("vm entry on %s is missing required field %q", host.ID, "vmid")}
			}
			role, err := cluster.ParseRole(vm.Role)
			if err != nil {
				return nil, &NodeFileError{Path: path, Err: fmt.Errorf("vm %s:%d: %w", host.ID, vm.VMID, err)}
			}
			nodes = append(nodes, &cluster.Node{
				Host:     host.ID,
				VMID:     vm.VMID,
				Role:     role,
				Name:     vm.Name,
				StaticIP: vm.IP,
			})
		}
	}
	return cluster.NewRegistry(nodes), nil
}

// SSHKeyFromNodeFile returns the ssh_key field of the node file, if the
// file exists and carries one. Read failures are swallowed here; the key
// is part of a fallback chain and a broken file already fails discovery.
func SSHKeyFromNodeFile(path string) (string, bool) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return "", false
	}
	var parsed nodeFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", false
	}
	return parsed.SSHKey, parsed.SSHKey != ""
}
