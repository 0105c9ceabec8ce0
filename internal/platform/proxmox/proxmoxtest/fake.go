// Package proxmoxtest provides an in-memory fake of the proxmox.Client
// interface for tests. The fake records every control and config-mutation
// call so tests can assert exactly which API operations a reconciliation
// pass issued.
package proxmoxtest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/imamik/k3sdeploy/internal/platform/proxmox"
)

// VM is the simulated state of one QEMU VM.
type VM struct {
	Name   string
	Tags   string
	Status string
	// Config are extra raw config keys beyond name/tags (ipconfigN,
	// nameserver, searchdomain, sshkeys, ...).
	Config map[string]string
	// StatusErr, ConfigErr and ControlErr inject per-VM failures.
	StatusErr  error
	ConfigErr  error
	ControlErr error
}

// ControlCall records one ControlVM invocation.
type ControlCall struct {
	Host   string
	VMID   int
	Action proxmox.PowerAction
}

// SetConfigCall records one SetVMNetworkConfig invocation.
type SetConfigCall struct {
	Host   string
	VMID   int
	Target proxmox.NetworkTarget
}

// FakeClient simulates a Proxmox cluster.
type FakeClient struct {
	mu sync.Mutex

	hosts []string
	vms   map[string]map[int]*VM

	// UnreachableHosts makes ListVMIDs fail with a connectivity error for
	// the named hosts.
	UnreachableHosts map[string]bool
	// ListHostsErr makes ListHostNodes fail entirely.
	ListHostsErr error
	// SetConfigErr injects a failure for SetVMNetworkConfig on the keyed
	// "host:vmid".
	SetConfigErr map[string]error

	ControlCalls   []ControlCall
	SetConfigCalls []SetConfigCall
	ConfigFetches  map[string]int
	ListHostsCalls int
	ListVMIDsCalls int
	GetStatusCalls int
}

var _ proxmox.Client = (*FakeClient)(nil)

// NewFakeClient returns an empty fake cluster.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		vms:              make(map[string]map[int]*VM),
		UnreachableHosts: make(map[string]bool),
		SetConfigErr:     make(map[string]error),
		ConfigFetches:    make(map[string]int),
	}
}

func vmKey(host string, vmid int) string {
	return fmt.Sprintf("%s:%d", host, vmid)
}

// AddVM registers a VM on a host, creating the host if needed.
func (f *FakeClient) AddVM(host string, vmid int, vm *VM) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.vms[host] == nil {
		f.vms[host] = make(map[int]*VM)
		f.hosts = append(f.hosts, host)
		sort.Strings(f.hosts)
	}
	if vm.Status == "" {
		vm.Status = "running"
	}
	if vm.Config == nil {
		vm.Config = make(map[string]string)
	}
	f.vms[host][vmid] = vm
}

// AddHost registers an empty host node.
func (f *FakeClient) AddHost(host string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.vms[host] == nil {
		f.vms[host] = make(map[int]*VM)
		f.hosts = append(f.hosts, host)
		sort.Strings(f.hosts)
	}
}

// VM returns the simulated VM, panicking if absent (test setup error).
func (f *FakeClient) VM(host string, vmid int) *VM {
	f.mu.Lock()
	defer f.mu.Unlock()
	vm, ok := f.vms[host][vmid]
	if !ok {
		panic(fmt.Sprintf("proxmoxtest: no such vm %s:%d", host, vmid))
	}
	return vm
}

func (f *FakeClient) ListHostNodes(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListHostsCalls++
	if f.ListHostsErr != nil {
		return nil, f.ListHostsErr
	}
	return append([]string(nil), f.hosts...), nil
}

func (f *FakeClient) ListVMIDs(_ context.Context, host string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListVMIDsCalls++
	if f.UnreachableHosts[host] {
		return nil, &proxmox.ConnectivityError{Host: host, Err: fmt.Errorf("connection refused")}
	}
	vms, ok := f.vms[host]
	if !ok {
		return nil, &proxmox.ConnectivityError{Host: host, Err: fmt.Errorf("no such host")}
	}
	vmids := make([]int, 0, len(vms))
	for vmid := range vms {
		vmids = append(vmids, vmid)
	}
	sort.Ints(vmids)
	return vmids, nil
}

func (f *FakeClient) GetVMConfig(_ context.Context, host string, vmid int) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ConfigFetches[vmKey(host, vmid)]++
	vm, ok := f.vms[host][vmid]
	if !ok {
		return nil, fmt.Errorf("vm %d not found on %s", vmid, host)
	}
	if vm.ConfigErr != nil {
		return nil, vm.ConfigErr
	}
	cfg := make(map[string]string, len(vm.Config)+2)
	for k, v := range vm.Config {
		cfg[k] = v
	}
	if vm.Name != "" {
		cfg["name"] = vm.Name
	}
	if vm.Tags != "" {
		cfg["tags"] = vm.Tags
	}
	return cfg, nil
}

func (f *FakeClient) GetVMStatus(_ context.Context, host string, vmid int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetStatusCalls++
	vm, ok := f.vms[host][vmid]
	if !ok {
		return "", fmt.Errorf("vm %d not found on %s", vmid, host)
	}
	if vm.StatusErr != nil {
		return "", vm.StatusErr
	}
	return vm.Status, nil
}

func (f *FakeClient) ControlVM(_ context.Context, host string, vmid int, action proxmox.PowerAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vm, ok := f.vms[host][vmid]
	if !ok {
		return fmt.Errorf("vm %d not found on %s", vmid, host)
	}
	if vm.ControlErr != nil {
		return vm.ControlErr
	}
	f.ControlCalls = append(f.ControlCalls, ControlCall{Host: host, VMID: vmid, Action: action})
	switch action {
	case proxmox.ActionStart, proxmox.ActionReboot:
		vm.Status = "running"
	case proxmox.ActionShutdown:
		vm.Status = "stopped"
	default:
		return fmt.Errorf("invalid power action %q", action)
	}
	return nil
}

func (f *FakeClient) SetVMNetworkConfig(_ context.Context, host string, vmid int, target proxmox.NetworkTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vm, ok := f.vms[host][vmid]
	if !ok {
		return fmt.Errorf("vm %d not found on %s", vmid, host)
	}
	if err := f.SetConfigErr[vmKey(host, vmid)]; err != nil {
		return err
	}
	f.SetConfigCalls = append(f.SetConfigCalls, SetConfigCall{Host: host, VMID: vmid, Target: target})
	vm.Config[fmt.Sprintf("ipconfig%d", target.IPConfigSlot)] = target.IPConfig
	if target.Nameserver != "" {
		vm.Config["nameserver"] = target.Nameserver
	}
	if target.SearchDomain != "" {
		vm.Config["searchdomain"] = target.SearchDomain
	}
	if target.SSHKeys != "" {
		vm.Config["sshkeys"] = target.SSHKeys
	}
	return nil
}

// ControlCallsFor returns the recorded power actions for one VM.
func (f *FakeClient) ControlCallsFor(host string, vmid int) []proxmox.PowerAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	var actions []proxmox.PowerAction
	for _, c := range f.ControlCalls {
		if c.Host == host && c.VMID == vmid {
			actions = append(actions, c.Action)
		}
	}
	return actions
}
