// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/k3sdeploy/internal/cluster"
	"github.com/imamik/k3sdeploy/internal/config"
	"github.com/imamik/k3sdeploy/internal/discovery"
	"github.com/imamik/k3sdeploy/internal/platform/proxmox"
)

// nodeSource discovers the cluster registry - matches discovery.Discoverer.
type nodeSource interface {
	EnsureDiscovered(ctx context.Context) (*cluster.Registry, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig resolves the tool configuration.
	loadConfig = config.Load

	// connectProxmox establishes the Proxmox API client.
	connectProxmox = func(ctx context.Context, opts proxmox.Options) (proxmox.Client, error) {
		return proxmox.Connect(ctx, opts)
	}

	// newNodeSource creates the discovery engine.
	newNodeSource = func(client proxmox.Client, cfg *config.Config) nodeSource {
		return discovery.NewDiscoverer(client, cfg)
	}
)

// setup loads configuration, connects to the Proxmox API, and discovers
// the cluster registry. Every VM-touching command starts here.
func setup(ctx context.Context, configPath string) (*config.Config, proxmox.Client, *cluster.Registry, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	client, err := connectProxmox(ctx, clientOptions(cfg))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to Proxmox: %w", err)
	}

	reg, err := newNodeSource(client, cfg).EnsureDiscovered(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, client, reg, nil
}

func clientOptions(cfg *config.Config) proxmox.Options {
	return proxmox.Options{
		Host:        cfg.Proxmox.Host,
		Port:        cfg.Proxmox.Port,
		User:        cfg.Proxmox.User,
		Password:    cfg.Proxmox.Password,
		TokenID:     cfg.Proxmox.TokenID,
		TokenSecret: cfg.Proxmox.TokenSecret,
		SSLVerify:   cfg.Proxmox.SSLVerify,
	}
}
