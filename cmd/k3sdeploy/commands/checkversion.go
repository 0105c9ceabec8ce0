package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k3sdeploy/cmd/k3sdeploy/handlers"
)

// CheckVersion returns the command that compares the configured k3s
// version against the latest release on GitHub.
//
// With --update, an interactive prompt offers to adopt the latest
// version for subsequent steps of the current run. A network failure is
// reported as a warning; the command still exits zero.
func CheckVersion() *cobra.Command {
	var (
		configPath string
		update     bool
	)

	cmd := &cobra.Command{
		Use:   "check-version",
		Short: "Check the configured k3s version against the latest release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.CheckVersion(cmd.Context(), configPath, update)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&update, "update", false, "Offer to adopt the latest release version")

	return cmd
}
