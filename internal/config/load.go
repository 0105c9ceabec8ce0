package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Load resolves the tool configuration. A non-empty path names a YAML file
// that must exist; an empty path means "use k3sdeploy.yaml if present".
// Environment variables override file values, so Proxmox credentials can be
// kept out of the config file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path) // #nosec G304
	switch {
	case err == nil:
		var rawConfig map[string]interface{}
		if err := yaml.Unmarshal(data, &rawConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
		if err := mapstructure.Decode(rawConfig, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// Optional default file, nothing to merge.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays PROXMOX_* and K3S_* environment variables onto the
// configuration.
func applyEnv(cfg *Config) {
	setString(&cfg.Proxmox.Host, "PROXMOX_HOST")
	setString(&cfg.Proxmox.User, "PROXMOX_USER")
	setString(&cfg.Proxmox.Password, "PROXMOX_PASSWORD")
	setString(&cfg.Proxmox.TokenID, "PROXMOX_API_TOKEN_ID")
	setString(&cfg.Proxmox.TokenSecret, "PROXMOX_API_TOKEN_SECRET")

	if v := os.Getenv("PROXMOX_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Proxmox.Port = port
		}
	}
	if v := os.Getenv("PROXMOX_SSL_VERIFY"); v != "" {
		cfg.Proxmox.SSLVerify = !isFalsy(v)
	}

	setString(&cfg.SSH.PublicKey, "K3S_SSH_PUBLIC_KEY")
	setString(&cfg.SSH.PublicKeyPath, "K3S_SSH_PUBLIC_KEY_PATH")
	setString(&cfg.NodeFile, "K3S_NODE_FILE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func isFalsy(v string) bool {
	switch strings.ToLower(v) {
	case "0", "false":
		return true
	default:
		return false
	}
}
