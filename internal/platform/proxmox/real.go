package proxmox

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	goproxmox "github.com/luthermonson/go-proxmox"

	"github.com/imamik/k3sdeploy/internal/util/retry"
)

// Options holds the connection parameters for the Proxmox VE API.
// Token auth (TokenID + TokenSecret) takes precedence over password auth.
type Options struct {
	Host        string
	Port        int
	User        string
	Password    string
	TokenID     string
	TokenSecret string
	// SSLVerify disables TLS certificate verification when false. Proxmox
	// installations commonly run with self-signed certificates.
	SSLVerify bool
}

// RealClient implements Client against a live Proxmox VE API endpoint.
type RealClient struct {
	px *goproxmox.Client
}

var _ Client = (*RealClient)(nil)

// Connect builds a client for the given endpoint and verifies the
// connection with a version call before returning it. The verification is
// retried briefly to ride out transient network hiccups; an authentication
// failure is not retried.
func Connect(ctx context.Context, opts Options) (*RealClient, error) {
	if opts.Host == "" || opts.User == "" {
		return nil, fmt.Errorf("proxmox host and user must be configured (PROXMOX_HOST, PROXMOX_USER)")
	}
	if opts.TokenID == "" && opts.Password == "" {
		return nil, fmt.Errorf("either a proxmox password (PROXMOX_PASSWORD) or an api token (PROXMOX_API_TOKEN_ID, PROXMOX_API_TOKEN_SECRET) must be configured")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	if !opts.SSLVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402
		}
	}

	baseURL := fmt.Sprintf("https://%s:%d/api2/json", opts.Host, opts.Port)
	clientOpts := []goproxmox.Option{goproxmox.WithHTTPClient(httpClient)}
	switch {
	case opts.TokenID != "" && opts.TokenSecret != "":
		tokenID := fmt.Sprintf("%s!%s", opts.User, opts.TokenID)
		log.Printf("Connecting to Proxmox API at %s:%d using api token %q", opts.Host, opts.Port, tokenID)
		clientOpts = append(clientOpts, goproxmox.WithAPIToken(tokenID, opts.TokenSecret))
	default:
		if !strings.Contains(opts.User, "@") {
			log.Printf("Warning: proxmox user %q has no realm suffix (e.g. @pam, @pve); authentication may fail", opts.User)
		}
		log.Printf("Connecting to Proxmox API at %s:%d as %q", opts.Host, opts.Port, opts.User)
		clientOpts = append(clientOpts, goproxmox.WithCredentials(&goproxmox.Credentials{
			Username: opts.User,
			Password: opts.Password,
		}))
	}

	c := &RealClient{px: goproxmox.NewClient(baseURL, clientOpts...)}

	err := retry.WithExponentialBackoff(ctx, func() error {
		version, err := c.px.Version(ctx)
		if err != nil {
			if isTransportError(err) {
				return err
			}
			return retry.Fatal(err)
		}
		log.Printf("Connected to Proxmox VE %s at %s:%d", version.Version, opts.Host, opts.Port)
		return nil
	}, retry.WithMaxRetries(2), retry.WithInitialDelay(time.Second))
	if err != nil {
		return nil, &ConnectivityError{Err: fmt.Errorf("verifying proxmox api connection: %w", err)}
	}
	return c, nil
}

func (c *RealClient) ListHostNodes(ctx context.Context) ([]string, error) {
	var raw []struct {
		Node string `json:"node"`
	}
	if err := c.px.Get(ctx, "/nodes", &raw); err != nil {
		if isTransportError(err) {
			return nil, &ConnectivityError{Err: err}
		}
		return nil, fmt.Errorf("listing proxmox host nodes: %w", err)
	}
	names := make([]string, 0, len(raw))
	for _, n := range raw {
		if n.Node != "" {
			names = append(names, n.Node)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (c *RealClient) ListVMIDs(ctx context.Context, host string) ([]int, error) {
	var raw []struct {
		VMID int `json:"vmid"`
	}
	if err := c.px.Get(ctx, fmt.Sprintf("/nodes/%s/qemu", host), &raw); err != nil {
		// The API proxies per-host listings through the cluster; in
		// practice a failure here means the host is down or unreachable.
		return nil, &ConnectivityError{Host: host, Err: err}
	}
	vmids := make([]int, 0, len(raw))
	for _, vm := range raw {
		if vm.VMID != 0 {
			vmids = append(vmids, vm.VMID)
		}
	}
	sort.Ints(vmids)
	return vmids, nil
}

func (c *RealClient) GetVMConfig(ctx context.Context, host string, vmid int) (map[string]string, error) {
	var raw map[string]interface{}
	if err := c.px.Get(ctx, fmt.Sprintf("/nodes/%s/qemu/%d/config", host, vmid), &raw); err != nil {
		return nil, fmt.Errorf("fetching config for VM %d on %s: %w", vmid, host, err)
	}
	cfg := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		cfg[k] = configValueString(v)
	}
	return cfg, nil
}

// configValueString flattens a JSON config value to its API string form.
// JSON numbers decode as float64; formatting them with 'f' keeps large
// values like memory sizes out of scientific notation.
func configValueString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (c *RealClient) GetVMStatus(ctx context.Context, host string, vmid int) (string, error) {
	var raw struct {
		Status string `json:"status"`
	}
	if err := c.px.Get(ctx, fmt.Sprintf("/nodes/%s/qemu/%d/status/current", host, vmid), &raw); err != nil {
		return "", fmt.Errorf("fetching status for VM %d on %s: %w", vmid, host, err)
	}
	return raw.Status, nil
}

func (c *RealClient) ControlVM(ctx context.Context, host string, vmid int, action PowerAction) error {
	switch action {
	case ActionStart, ActionShutdown, ActionReboot:
	default:
		return fmt.Errorf("invalid power action %q", action)
	}
	var upid string
	path := fmt.Sprintf("/nodes/%s/qemu/%d/status/%s", host, vmid, action)
	if err := c.px.Post(ctx, path, nil, &upid); err != nil {
		return fmt.Errorf("issuing %s for VM %d on %s: %w", action, vmid, host, err)
	}
	log.Printf("Initiated %s for VM %d on %s (task %s)", action, vmid, host, upid)
	return nil
}

func (c *RealClient) SetVMNetworkConfig(ctx context.Context, host string, vmid int, target NetworkTarget) error {
	params := map[string]interface{}{
		fmt.Sprintf("ipconfig%d", target.IPConfigSlot): target.IPConfig,
	}
	if target.Nameserver != "" {
		params["nameserver"] = target.Nameserver
	}
	if target.SearchDomain != "" {
		params["searchdomain"] = target.SearchDomain
	}
	if target.SSHKeys != "" {
		// The cloud-init sshkeys value must be percent-encoded, with
		// spaces as %20 rather than '+'.
		params["sshkeys"] = strings.ReplaceAll(url.QueryEscape(target.SSHKeys), "+", "%20")
	}

	var upid string
	if err := c.px.Put(ctx, fmt.Sprintf("/nodes/%s/qemu/%d/config", host, vmid), params, &upid); err != nil {
		return fmt.Errorf("setting network config for VM %d on %s: %w", vmid, host, err)
	}
	return nil
}
