package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/k3sdeploy/internal/cluster"
	"github.com/imamik/k3sdeploy/internal/platform/proxmox/proxmoxtest"
)

var roleTags = cluster.RoleTags{
	Server:  "k3s-server",
	Agent:   "k3s-agent",
	Storage: "k3s-storage",
}

func TestDiscoverByTags(t *testing.T) {
	fake := proxmoxtest.NewFakeClient()
	fake.AddVM("pve1", 101, &proxmoxtest.VM{Name: "cp-1", Tags: "k3s-server;prod"})
	fake.AddVM("pve1", 102, &proxmoxtest.VM{Name: "worker-1", Tags: "k3s-agent"})
	fake.AddVM("pve1", 103, &proxmoxtest.VM{Name: "db", Tags: "postgres"})
	fake.AddVM("pve2", 201, &proxmoxtest.VM{Name: "store-1", Tags: "k3s-storage"})
	fake.AddVM("pve2", 202, &proxmoxtest.VM{Name: "untagged"})

	reg, err := DiscoverByTags(context.Background(), fake, roleTags)
	require.NoError(t, err)

	assert.Equal(t, 3, reg.Len())
	require.Len(t, reg.Servers(), 1)
	assert.Equal(t, "cp-1", reg.Servers()[0].Name)
	assert.Equal(t, []string{"k3s-server", "prod"}, reg.Servers()[0].Tags)
	assert.Len(t, reg.Agents(), 1)
	assert.Len(t, reg.Storage(), 1)

	// Tag discovery caches the fetched config on the node for the run.
	_, cached := reg.Servers()[0].CachedConfig()
	assert.True(t, cached)
}

func TestDiscoverByTagsMultiRoleExcluded(t *testing.T) {
	fake := proxmoxtest.NewFakeClient()
	fake.AddVM("pve1", 101, &proxmoxtest.VM{Tags: "k3s-server;k3s-agent"})
	fake.AddVM("pve1", 102, &proxmoxtest.VM{Tags: "k3s-agent"})

	reg, err := DiscoverByTags(context.Background(), fake, roleTags)
	require.NoError(t, err)

	// The doubly-tagged VM appears in no view at all.
	assert.Equal(t, 1, reg.Len())
	assert.Empty(t, reg.Servers())
	require.Len(t, reg.Agents(), 1)
	assert.Equal(t, cluster.NodeKey{Host: "pve1", VMID: 102}, reg.Agents()[0].Key())
}

func TestDiscoverByTagsUnreachableHostIsSkipped(t *testing.T) {
	fake := proxmoxtest.NewFakeClient()
	fake.AddVM("pve1", 101, &proxmoxtest.VM{Tags: "k3s-server"})
	fake.AddHost("pve2")
	fake.UnreachableHosts["pve2"] = true
	fake.AddVM("pve3", 301, &proxmoxtest.VM{Tags: "k3s-agent"})

	reg, err := DiscoverByTags(context.Background(), fake, roleTags)
	require.NoError(t, err)

	// pve2 contributes nothing; the other hosts' VMs still register.
	assert.Equal(t, 2, reg.Len())
	assert.Len(t, reg.Servers(), 1)
	assert.Len(t, reg.Agents(), 1)
}

func TestDiscoverByTagsVMConfigFailureIsSkipped(t *testing.T) {
	fake := proxmoxtest.NewFakeClient()
	fake.AddVM("pve1", 101, &proxmoxtest.VM{Tags: "k3s-server"})
	fake.AddVM("pve1", 102, &proxmoxtest.VM{Tags: "k3s-agent", ConfigErr: errors.New("qmp timeout")})

	reg, err := DiscoverByTags(context.Background(), fake, roleTags)
	require.NoError(t, err)

	assert.Equal(t, 1, reg.Len())
	assert.Len(t, reg.Servers(), 1)
	assert.Empty(t, reg.Agents())
}

func TestDiscoverByTagsListHostsFailureIsFatal(t *testing.T) {
	fake := proxmoxtest.NewFakeClient()
	fake.ListHostsErr = errors.New("api unreachable")

	_, err := DiscoverByTags(context.Background(), fake, roleTags)
	assert.Error(t, err)
}

func TestDiscoverByTagsNoHostsIsFatal(t *testing.T) {
	fake := proxmoxtest.NewFakeClient()

	_, err := DiscoverByTags(context.Background(), fake, roleTags)
	assert.Error(t, err)
}
