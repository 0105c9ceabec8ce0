// Package main is the entry point for the k3sdeploy CLI.
//
// k3sdeploy manages the Proxmox VMs that make up a k3s cluster: it
// discovers nodes from a declarative file or live tag scan, converges
// their cloud-init network configuration, and drives their power state.
//
// Commands: start, stop, restart, configure-vm, check-version, provision.
//
// For detailed usage information, run:
//
//	k3sdeploy --help
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/imamik/k3sdeploy/cmd/k3sdeploy/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// A .env file in the working directory is optional. Variables already
	// present in the environment win over file values.
	_ = godotenv.Load()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
