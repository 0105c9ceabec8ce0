package cluster

import (
	"fmt"
	"strings"
)

// Role identifies the function a VM performs in the k3s cluster.
type Role int

const (
	// RoleServer is a k3s control plane node.
	RoleServer Role = iota
	// RoleAgent is a k3s worker node.
	RoleAgent
	// RoleStorage is a dedicated storage node.
	RoleStorage
)

func (r Role) String() string {
	switch r {
	case RoleServer:
		return "server"
	case RoleAgent:
		return "agent"
	case RoleStorage:
		return "storage"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole maps a node-file role value (SERVER, AGENT or STORAGE,
// case-insensitive) to a Role. Any other value is an error.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SERVER":
		return RoleServer, nil
	case "AGENT":
		return RoleAgent, nil
	case "STORAGE":
		return RoleStorage, nil
	default:
		return 0, fmt.Errorf("unknown node role %q (expected SERVER, AGENT or STORAGE)", s)
	}
}

// RoleTags holds the Proxmox tag that marks a VM as belonging to each role.
type RoleTags struct {
	Server  string
	Agent   string
	Storage string
}

// SplitTags splits a raw Proxmox tag string (semicolon-delimited) into a
// list of trimmed, non-empty tags.
func SplitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ";") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ClassifyTags determines the cluster role of a VM from its tag set.
//
// Tags are matched as a set: a repeated tag counts once. A VM is a
// cluster node only if its tags match exactly one of the three roles.
// Zero matches means the VM is not part of the cluster; matching more
// than one role is ambiguous and the VM is likewise excluded rather than
// assigned a role by precedence.
func ClassifyTags(tags []string, rt RoleTags) (Role, bool) {
	matched := make(map[Role]bool)
	for _, t := range tags {
		switch t {
		case rt.Server:
			matched[RoleServer] = true
		case rt.Agent:
			matched[RoleAgent] = true
		case rt.Storage:
			matched[RoleStorage] = true
		}
	}
	if len(matched) != 1 {
		return 0, false
	}
	for role := range matched {
		return role, true
	}
	return 0, false
}
