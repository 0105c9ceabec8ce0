// Package config holds the tool configuration: Proxmox connection details,
// the role tags that mark cluster VMs, and the network parameters applied
// during configuration reconciliation.
//
// Configuration is resolved in three layers: built-in defaults, an optional
// k3sdeploy.yaml file, then environment variable overrides.
package config

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"

	"github.com/imamik/k3sdeploy/internal/cluster"
)

// DefaultFile is the config file picked up from the working directory when
// no --config flag is given.
const DefaultFile = "k3sdeploy.yaml"

// Config is the full tool configuration.
type Config struct {
	Proxmox ProxmoxConfig `mapstructure:"proxmox" yaml:"proxmox"`
	Roles   RolesConfig   `mapstructure:"roles" yaml:"roles"`
	Network NetworkConfig `mapstructure:"network" yaml:"network"`
	SSH     SSHConfig     `mapstructure:"ssh" yaml:"ssh"`
	K3s     K3sConfig     `mapstructure:"k3s" yaml:"k3s"`

	// NodeFile is the path to the declarative node definition file. When
	// the file exists and declares nodes, it is authoritative and
	// tag-based discovery is skipped.
	NodeFile string `mapstructure:"node_file" yaml:"node_file"`
}

// ProxmoxConfig holds API connection details, normally sourced from the
// environment (PROXMOX_* variables).
type ProxmoxConfig struct {
	Host        string `mapstructure:"host" yaml:"host"`
	Port        int    `mapstructure:"port" yaml:"port"`
	User        string `mapstructure:"user" yaml:"user"`
	Password    string `mapstructure:"password" yaml:"password"`
	TokenID     string `mapstructure:"token_id" yaml:"token_id"`
	TokenSecret string `mapstructure:"token_secret" yaml:"token_secret"`
	SSLVerify   bool   `mapstructure:"ssl_verify" yaml:"ssl_verify"`
}

// RolesConfig names the Proxmox tags that classify VMs into cluster roles.
type RolesConfig struct {
	ServerTag  string `mapstructure:"server_tag" yaml:"server_tag"`
	AgentTag   string `mapstructure:"agent_tag" yaml:"agent_tag"`
	StorageTag string `mapstructure:"storage_tag" yaml:"storage_tag"`
}

// Tags returns the role tags in the form the cluster package consumes.
func (r RolesConfig) Tags() cluster.RoleTags {
	return cluster.RoleTags{Server: r.ServerTag, Agent: r.AgentTag, Storage: r.StorageTag}
}

// NetworkConfig is the desired static network state for cluster VMs.
type NetworkConfig struct {
	IPRangeStart string   `mapstructure:"ip_range_start" yaml:"ip_range_start"`
	IPRangeEnd   string   `mapstructure:"ip_range_end" yaml:"ip_range_end"`
	CIDR         int      `mapstructure:"cidr" yaml:"cidr"`
	Gateway      string   `mapstructure:"gateway" yaml:"gateway"`
	Nameservers  []string `mapstructure:"nameservers" yaml:"nameservers"`
	SearchDomain string   `mapstructure:"search_domain" yaml:"search_domain"`
	// IPConfigSlot selects the cloud-init ipconfigN slot to manage.
	IPConfigSlot int `mapstructure:"ipconfig_slot" yaml:"ipconfig_slot"`
}

// SSHConfig controls SSH public key injection via cloud-init.
type SSHConfig struct {
	// PublicKey is explicit key material, normally from K3S_SSH_PUBLIC_KEY.
	PublicKey string `mapstructure:"public_key" yaml:"public_key"`
	// PublicKeyPath is read when PublicKey is empty and the node file
	// carries no key.
	PublicKeyPath string `mapstructure:"public_key_path" yaml:"public_key_path"`
}

// K3sConfig pins the k3s release this deployment targets.
type K3sConfig struct {
	Version     string `mapstructure:"version" yaml:"version"`
	ReleasesURL string `mapstructure:"releases_url" yaml:"releases_url"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Proxmox: ProxmoxConfig{
			Port:      8006,
			SSLVerify: true,
		},
		Roles: RolesConfig{
			ServerTag:  "k3s-server",
			AgentTag:   "k3s-agent",
			StorageTag: "k3s-storage",
		},
		Network: NetworkConfig{
			IPRangeStart: "10.10.0.201",
			IPRangeEnd:   "10.10.0.229",
			CIDR:         24,
			Gateway:      "10.10.0.1",
			Nameservers:  []string{"10.10.0.1"},
			IPConfigSlot: 0,
		},
		SSH: SSHConfig{
			PublicKeyPath: filepath.Join(home, ".ssh", "id_rsa.pub"),
		},
		K3s: K3sConfig{
			Version:     "v1.32.4+k3s1",
			ReleasesURL: "https://api.github.com/repos/k3s-io/k3s/releases/latest",
		},
		NodeFile: "config.json",
	}
}

// Validate checks the parts of the configuration every command relies on.
// Connection credentials are validated later, at connect time, so commands
// that never touch the API can run without them.
func (c *Config) Validate() error {
	start, err := netip.ParseAddr(c.Network.IPRangeStart)
	if err != nil {
		return fmt.Errorf("invalid ip_range_start %q: %w", c.Network.IPRangeStart, err)
	}
	end, err := netip.ParseAddr(c.Network.IPRangeEnd)
	if err != nil {
		return fmt.Errorf("invalid ip_range_end %q: %w", c.Network.IPRangeEnd, err)
	}
	if !start.Is4() || !end.Is4() {
		return fmt.Errorf("ip range must be IPv4 (%s - %s)", start, end)
	}
	if end.Less(start) {
		return fmt.Errorf("ip_range_end %s precedes ip_range_start %s", end, start)
	}
	if c.Network.CIDR < 1 || c.Network.CIDR > 32 {
		return fmt.Errorf("invalid cidr prefix length %d", c.Network.CIDR)
	}
	if _, err := netip.ParseAddr(c.Network.Gateway); err != nil {
		return fmt.Errorf("invalid gateway %q: %w", c.Network.Gateway, err)
	}
	for _, ns := range c.Network.Nameservers {
		if _, err := netip.ParseAddr(ns); err != nil {
			return fmt.Errorf("invalid nameserver %q: %w", ns, err)
		}
	}
	if c.Network.IPConfigSlot < 0 || c.Network.IPConfigSlot > 9 {
		return fmt.Errorf("ipconfig_slot must be between 0 and 9, got %d", c.Network.IPConfigSlot)
	}
	if c.Roles.ServerTag == "" || c.Roles.AgentTag == "" || c.Roles.StorageTag == "" {
		return fmt.Errorf("all three role tags must be set")
	}
	return nil
}
