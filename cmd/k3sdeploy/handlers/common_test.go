package handlers

import (
	"context"
	"testing"

	"github.com/imamik/k3sdeploy/internal/cluster"
	"github.com/imamik/k3sdeploy/internal/config"
	"github.com/imamik/k3sdeploy/internal/platform/proxmox"
	"github.com/imamik/k3sdeploy/internal/platform/proxmox/proxmoxtest"
)

func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origLoadConfig := loadConfig
	origConnectProxmox := connectProxmox
	origNewNodeSource := newNodeSource
	origCheckRelease := checkRelease
	origConfirmUpdate := confirmUpdate

	t.Cleanup(func() {
		loadConfig = origLoadConfig
		connectProxmox = origConnectProxmox
		newNodeSource = origNewNodeSource
		checkRelease = origCheckRelease
		confirmUpdate = origConfirmUpdate
	})
}

// stubNodeSource returns a fixed registry without touching the API.
type stubNodeSource struct {
	reg *cluster.Registry
	err error
}

func (s *stubNodeSource) EnsureDiscovered(_ context.Context) (*cluster.Registry, error) {
	return s.reg, s.err
}

// installFakes points the factory variables at an in-memory Proxmox
// cluster and a pre-built registry.
func installFakes(t *testing.T, fake *proxmoxtest.FakeClient, nodes []*cluster.Node) *config.Config {
	t.Helper()
	saveAndRestoreFactories(t)

	cfg := config.Default()
	cfg.Proxmox.Host = "pve.test"
	cfg.Proxmox.User = "root@pam"
	cfg.Proxmox.Password = "secret"

	loadConfig = func(_ string) (*config.Config, error) { return cfg, nil }
	connectProxmox = func(_ context.Context, _ proxmox.Options) (proxmox.Client, error) {
		return fake, nil
	}
	newNodeSource = func(_ proxmox.Client, _ *config.Config) nodeSource {
		return &stubNodeSource{reg: cluster.NewRegistry(nodes)}
	}

	return cfg
}
