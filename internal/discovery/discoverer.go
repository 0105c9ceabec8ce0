package discovery

import (
	"context"
	"errors"
	"log"

	"github.com/imamik/k3sdeploy/internal/cluster"
	"github.com/imamik/k3sdeploy/internal/config"
	"github.com/imamik/k3sdeploy/internal/platform/proxmox"
)

// ErrNoNodes means neither the node file nor the tag scan produced any
// cluster nodes. Operations that require nodes cannot proceed.
var ErrNoNodes = errors.New("no k3s nodes found: node file absent or empty and tag discovery found nothing")

// Discoverer owns the discovery guard for one command invocation: the
// registry is built at most once, lazily, and handed out on every
// subsequent call.
type Discoverer struct {
	client   proxmox.Client
	cfg      *config.Config
	registry *cluster.Registry
}

// NewDiscoverer returns a Discoverer with an empty registry.
func NewDiscoverer(client proxmox.Client, cfg *config.Config) *Discoverer {
	return &Discoverer{client: client, cfg: cfg}
}

// EnsureDiscovered returns the registry, running discovery first if none
// has been built yet. Calling it again after a successful discovery is a
// no-op that returns the same registry.
func (d *Discoverer) EnsureDiscovered(ctx context.Context) (*cluster.Registry, error) {
	if d.registry != nil && d.registry.Len() > 0 {
		return d.registry, nil
	}
	return d.Rediscover(ctx)
}

// Rediscover unconditionally rebuilds the registry, replacing any previous
// one. The node file takes precedence; the tag scan runs only when the
// file is absent or declares no nodes.
func (d *Discoverer) Rediscover(ctx context.Context) (*cluster.Registry, error) {
	d.registry = nil

	reg, err := LoadNodeFile(d.cfg.NodeFile)
	if err != nil {
		return nil, err
	}
	if reg != nil {
		if reg.Len() > 0 {
			log.Printf("Loaded %d node(s) from %s (%d server, %d agent, %d storage)",
				reg.Len(), d.cfg.NodeFile, len(reg.Servers()), len(reg.Agents()), len(reg.Storage()))
			d.logPrimary(reg)
			d.registry = reg
			return reg, nil
		}
		log.Printf("Node file %s declares no k3s nodes, falling back to tag discovery", d.cfg.NodeFile)
	}

	reg, err = DiscoverByTags(ctx, d.client, d.cfg.Roles.Tags())
	if err != nil {
		return nil, err
	}
	if reg.Len() == 0 {
		return nil, ErrNoNodes
	}
	d.logPrimary(reg)
	d.registry = reg
	return reg, nil
}

func (d *Discoverer) logPrimary(reg *cluster.Registry) {
	if primary, ok := reg.Primary(); ok {
		log.Printf("Primary server node: %s", primary)
		for _, s := range reg.SecondaryServers() {
			log.Printf("Secondary server node: %s", s)
		}
	} else {
		log.Printf("Warning: no server nodes discovered")
	}
}
