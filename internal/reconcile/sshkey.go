package reconcile

import (
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/k3sdeploy/internal/config"
)

// ResolveSSHKey resolves the SSH public key to inject via cloud-init,
// trying in order: explicit key material from configuration
// (K3S_SSH_PUBLIC_KEY), the node file's ssh_key field, then the configured
// key file path. Whatever source wins, the material must parse as an
// authorized key; otherwise resolution fails and configuration proceeds
// without key injection.
func ResolveSSHKey(cfg config.SSHConfig, nodeFileKey string) (string, bool) {
	if cfg.PublicKey != "" {
		log.Printf("Using SSH public key from K3S_SSH_PUBLIC_KEY")
		return validateKey(cfg.PublicKey)
	}

	if nodeFileKey != "" {
		log.Printf("Using SSH public key from node file")
		return validateKey(nodeFileKey)
	}

	data, err := os.ReadFile(cfg.PublicKeyPath) // #nosec G304
	if err != nil {
		log.Printf("Warning: SSH key file %s not readable, skipping key injection: %v", cfg.PublicKeyPath, err)
		return "", false
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		log.Printf("Warning: SSH key file %s is empty, skipping key injection", cfg.PublicKeyPath)
		return "", false
	}
	log.Printf("Using SSH public key from %s", cfg.PublicKeyPath)
	return validateKey(key)
}

func validateKey(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key)); err != nil {
		log.Printf("Warning: resolved SSH public key is not valid authorized_keys material, skipping key injection: %v", err)
		return "", false
	}
	return key, true
}
